package chainio

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/briwylde08/dead-mans-draw/types"
)

func TestPublicInputsFieldOrder(t *testing.T) {
	payload := &types.ProofPayload{
		Seed1:     types.NewInt(11),
		Seed2:     types.NewInt(22),
		Commit1:   types.NewInt(33),
		Commit2:   types.NewInt(44),
		SessionID: 55,
		Winner:    1,
	}

	pubs := PublicInputs(payload)

	var want [PublicInputCount][32]byte
	want[0][31] = 11
	want[1][31] = 22
	want[2][31] = 33
	want[3][31] = 44
	want[4][31] = 55
	want[5][31] = 1

	qt.Assert(t, bytes.Equal(pubs[0][:], want[0][:]), qt.IsTrue, qt.Commentf("seed1 must be word 0"))
	qt.Assert(t, bytes.Equal(pubs[1][:], want[1][:]), qt.IsTrue, qt.Commentf("seed2 must be word 1"))
	qt.Assert(t, bytes.Equal(pubs[2][:], want[2][:]), qt.IsTrue, qt.Commentf("commit1 must be word 2"))
	qt.Assert(t, bytes.Equal(pubs[3][:], want[3][:]), qt.IsTrue, qt.Commentf("commit2 must be word 3"))
	qt.Assert(t, bytes.Equal(pubs[4][:], want[4][:]), qt.IsTrue, qt.Commentf("sessionId must be word 4"))
	qt.Assert(t, bytes.Equal(pubs[5][:], want[5][:]), qt.IsTrue, qt.Commentf("winner must be word 5"))
}
