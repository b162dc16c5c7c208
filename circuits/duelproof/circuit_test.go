package duelproof

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"

	"github.com/briwylde08/dead-mans-draw/game"
)

func findWinningSeeds(t *testing.T, sessionID int64, want int) (*big.Int, *big.Int, *game.Result) {
	t.Helper()
	sid := big.NewInt(sessionID)
	for s1 := int64(1); s1 < 200; s1++ {
		seed1 := big.NewInt(s1)
		seed2 := big.NewInt(s1 + 1000)
		res, err := game.Simulate(seed1, seed2, sid)
		qt.Assert(t, err, qt.IsNil)
		if res.Winner == want {
			return seed1, seed2, res
		}
	}
	t.Fatalf("no seed pair produced winner %d for session %d in range", want, sessionID)
	return nil, nil, nil
}

func TestDuelCircuitSolvingSucceeded(t *testing.T) {
	seed1, seed2, res := findWinningSeeds(t, 1, 1)

	assignment, err := BuildAssignment(seed1, seed2, big.NewInt(1), res.Winner)
	qt.Assert(t, err, qt.IsNil)

	assert := test.NewAssert(t)
	assert.SolvingSucceeded(&DuelCircuit{}, assignment,
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16))
}

func TestDuelCircuitSolvingFailedOnWrongWinner(t *testing.T) {
	seed1, seed2, res := findWinningSeeds(t, 2, 1)
	wrongWinner := 3 - res.Winner // flips 1<->2

	assignment, err := BuildAssignment(seed1, seed2, big.NewInt(2), wrongWinner)
	qt.Assert(t, err, qt.IsNil)
	// assignment.Winner is the fabricated claim; the circuit's simulation
	// trace derives the true winner internally and the final AssertIsEqual
	// must reject the mismatch.

	assert := test.NewAssert(t)
	assert.SolvingFailed(&DuelCircuit{}, assignment,
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16))
}

func TestDuelCircuitSolvingFailedOnBadCommitment(t *testing.T) {
	seed1, seed2, res := findWinningSeeds(t, 3, 1)

	assignment, err := BuildAssignment(seed1, seed2, big.NewInt(3), res.Winner)
	qt.Assert(t, err, qt.IsNil)
	assignment.Commit1 = big.NewInt(42)

	assert := test.NewAssert(t)
	assert.SolvingFailed(&DuelCircuit{}, assignment,
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16))
}

// TestDuelCircuitSolvingFailedOnDuplicatedCard forces a deck containing two
// copies of the same card index (and missing another) directly onto an
// otherwise-valid assignment, leaving the stale inverse witness from the
// real deck in place. BuildAssignment itself refuses to produce this
// witness (ModInverse has no solution for a zero difference), so an honest
// witness generator never reaches the circuit with it; this test instead
// checks the in-circuit pairwise-distinctness assertion rejects it should
// an adversarial prover submit it anyway.
func TestDuelCircuitSolvingFailedOnDuplicatedCard(t *testing.T) {
	seed1, seed2, res := findWinningSeeds(t, 4, 1)

	assignment, err := BuildAssignment(seed1, seed2, big.NewInt(4), res.Winner)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, assignment.Deck[0].(*big.Int).Cmp(assignment.Deck[1].(*big.Int)), qt.Not(qt.Equals), 0)

	// Duplicate card 0 into slot 1 (dropping whatever card 1 used to hold);
	// inv_{0,1}*(Deck[0]-Deck[1]) must now equal inv_{0,1}*0 = 0, never 1.
	assignment.Deck[1] = assignment.Deck[0]

	assert := test.NewAssert(t)
	assert.SolvingFailed(&DuelCircuit{}, assignment,
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16))
}
