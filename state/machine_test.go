package state

import (
	"errors"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/briwylde08/dead-mans-draw/crypto/hash/poseidon"
	"github.com/briwylde08/dead-mans-draw/db"
	"github.com/briwylde08/dead-mans-draw/db/inmemory"
	"github.com/briwylde08/dead-mans-draw/types"
)

type stubVerifier struct {
	err error
}

func (v *stubVerifier) Verify(*types.ProofPayload) error { return v.err }

func newMachine(t *testing.T, verifierErr error) *Machine {
	t.Helper()
	database, err := inmemory.New(db.Options{})
	qt.Assert(t, err, qt.IsNil)
	return New(database, &stubVerifier{err: verifierErr})
}

func commitFor(t *testing.T, seed int64) (*types.BigInt, *types.BigInt) {
	t.Helper()
	s := big.NewInt(seed)
	c, err := poseidon.Hash1(s)
	qt.Assert(t, err, qt.IsNil)
	return new(types.BigInt).SetBigInt(s), new(types.BigInt).SetBigInt(c)
}

func TestLifecycleHappyPath(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, nil)

	seed1, commit1 := commitFor(t, 1)
	seed2, commit2 := commitFor(t, 2)

	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)

	s, err := m.Get(1)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Phase, qt.Equals, types.PhaseOpen)

	c.Assert(m.Join(1, types.HexBytes("p2"), commit2), qt.IsNil)
	s, err = m.Get(1)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Phase, qt.Equals, types.PhaseCommitted)

	c.Assert(m.Reveal(1, 1, seed1), qt.IsNil)
	s, err = m.Get(1)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Phase, qt.Equals, types.PhaseCommitted, qt.Commentf("only one seed revealed"))

	c.Assert(m.Reveal(1, 2, seed2), qt.IsNil)
	s, err = m.Get(1)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Phase, qt.Equals, types.PhaseRevealed)

	payload := &types.ProofPayload{
		Seed1: seed1, Seed2: seed2,
		Commit1: commit1, Commit2: commit2,
		SessionID: 1, Winner: 1,
	}
	c.Assert(m.Settle(payload), qt.IsNil)
	s, err = m.Get(1)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Phase, qt.Equals, types.PhaseSettled)
	c.Assert(s.Winner, qt.Equals, uint32(1))
}

func TestCreateSessionExists(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, nil)
	_, commit1 := commitFor(t, 1)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.Equals, ErrSessionExists)
}

func TestJoinSelf(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, nil)
	_, commit1 := commitFor(t, 1)
	_, commit2 := commitFor(t, 2)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)
	c.Assert(m.Join(1, types.HexBytes("p1"), commit2), qt.Equals, ErrSelfJoin)
}

func TestJoinNotOpen(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, nil)
	_, commit1 := commitFor(t, 1)
	_, commit2 := commitFor(t, 2)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)
	c.Assert(m.Join(1, types.HexBytes("p2"), commit2), qt.IsNil)
	c.Assert(m.Join(1, types.HexBytes("p3"), commit2), qt.Equals, ErrNotOpen)
}

func TestRevealBadOpening(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, nil)
	_, commit1 := commitFor(t, 1)
	_, commit2 := commitFor(t, 2)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)
	c.Assert(m.Join(1, types.HexBytes("p2"), commit2), qt.IsNil)

	wrongSeed := new(types.BigInt).SetBigInt(big.NewInt(999))
	c.Assert(m.Reveal(1, 1, wrongSeed), qt.Equals, ErrBadOpening)
}

func TestRevealAlreadyRevealed(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, nil)
	seed1, commit1 := commitFor(t, 1)
	_, commit2 := commitFor(t, 2)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)
	c.Assert(m.Join(1, types.HexBytes("p2"), commit2), qt.IsNil)
	c.Assert(m.Reveal(1, 1, seed1), qt.IsNil)
	c.Assert(m.Reveal(1, 1, seed1), qt.Equals, ErrAlreadyRevealed)
}

func TestSettleAlreadySettledRace(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, nil)
	seed1, commit1 := commitFor(t, 1)
	seed2, commit2 := commitFor(t, 2)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)
	c.Assert(m.Join(1, types.HexBytes("p2"), commit2), qt.IsNil)
	c.Assert(m.Reveal(1, 1, seed1), qt.IsNil)
	c.Assert(m.Reveal(1, 2, seed2), qt.IsNil)

	payload := &types.ProofPayload{
		Seed1: seed1, Seed2: seed2,
		Commit1: commit1, Commit2: commit2,
		SessionID: 1, Winner: 1,
	}
	c.Assert(m.Settle(payload), qt.IsNil)

	// A second settlement, even with a flipped winner, must fail and leave
	// the first winner intact.
	payload2 := &types.ProofPayload{
		Seed1: seed1, Seed2: seed2,
		Commit1: commit1, Commit2: commit2,
		SessionID: 1, Winner: 2,
	}
	c.Assert(m.Settle(payload2), qt.Equals, ErrAlreadySettled)

	s, err := m.Get(1)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Winner, qt.Equals, uint32(1))
}

func TestSettleInputMismatch(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, nil)
	seed1, commit1 := commitFor(t, 1)
	seed2, commit2 := commitFor(t, 2)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)
	c.Assert(m.Join(1, types.HexBytes("p2"), commit2), qt.IsNil)
	c.Assert(m.Reveal(1, 1, seed1), qt.IsNil)
	c.Assert(m.Reveal(1, 2, seed2), qt.IsNil)

	payload := &types.ProofPayload{
		Seed1: new(types.BigInt).SetBigInt(big.NewInt(777)), Seed2: seed2,
		Commit1: commit1, Commit2: commit2,
		SessionID: 1, Winner: 1,
	}
	c.Assert(m.Settle(payload), qt.Equals, ErrInputMismatch)
}

func TestSettleInvalidProof(t *testing.T) {
	c := qt.New(t)
	m := newMachine(t, errors.New("pairing check failed"))
	seed1, commit1 := commitFor(t, 1)
	seed2, commit2 := commitFor(t, 2)
	c.Assert(m.Create(1, types.HexBytes("p1"), commit1), qt.IsNil)
	c.Assert(m.Join(1, types.HexBytes("p2"), commit2), qt.IsNil)
	c.Assert(m.Reveal(1, 1, seed1), qt.IsNil)
	c.Assert(m.Reveal(1, 2, seed2), qt.IsNil)

	payload := &types.ProofPayload{
		Seed1: seed1, Seed2: seed2,
		Commit1: commit1, Commit2: commit2,
		SessionID: 1, Winner: 1,
	}
	c.Assert(errors.Is(m.Settle(payload), ErrInvalidProof), qt.IsTrue)
}
