package verify

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark/backend/groth16"
	qt "github.com/frankban/quicktest"

	"github.com/briwylde08/dead-mans-draw/chainio"
	"github.com/briwylde08/dead-mans-draw/circuits/duelproof"
	"github.com/briwylde08/dead-mans-draw/game"
	"github.com/briwylde08/dead-mans-draw/prover"
	"github.com/briwylde08/dead-mans-draw/types"
)

func buildPayload(t *testing.T, sessionID int64) (*types.ProofPayload, groth16.VerifyingKey) {
	t.Helper()

	sid := big.NewInt(sessionID)
	var seed1, seed2 *big.Int
	var result *game.Result
	for s := int64(1); s < 200; s++ {
		seed1 = big.NewInt(s)
		seed2 = big.NewInt(s + 700)
		res, err := game.Simulate(seed1, seed2, sid)
		qt.Assert(t, err, qt.IsNil)
		result = res
		break
	}

	assignment, err := duelproof.BuildAssignment(seed1, seed2, sid, result.Winner)
	qt.Assert(t, err, qt.IsNil)

	ccs, err := prover.Compile()
	qt.Assert(t, err, qt.IsNil)
	pk, vk, err := prover.Setup(ccs)
	qt.Assert(t, err, qt.IsNil)
	proof, err := prover.Prove(ccs, pk, assignment)
	qt.Assert(t, err, qt.IsNil)

	payload, err := chainio.BuildPayload(proof, assignment, uint32(sessionID), uint32(result.Winner))
	qt.Assert(t, err, qt.IsNil)

	return payload, vk
}

func TestVerifyAcceptsValidProof(t *testing.T) {
	payload, vk := buildPayload(t, 1)

	v := New(vk)
	qt.Assert(t, v.Verify(payload), qt.IsNil)
}

func TestVerifyRejectsTamperedWinner(t *testing.T) {
	payload, vk := buildPayload(t, 2)
	payload.Winner = 3 - payload.Winner

	v := New(vk)
	qt.Assert(t, v.Verify(payload), qt.IsNotNil)
}

func TestVerifyRejectsTamperedProofBytes(t *testing.T) {
	payload, vk := buildPayload(t, 3)
	payload.PiA[0] ^= 0xff

	v := New(vk)
	qt.Assert(t, v.Verify(payload), qt.IsNotNil)
}
