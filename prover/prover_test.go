package prover

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/briwylde08/dead-mans-draw/game"

	"github.com/briwylde08/dead-mans-draw/circuits/duelproof"
)

func TestCompileSetupProveRoundTrip(t *testing.T) {
	c := qt.New(t)

	sessionID := big.NewInt(42)
	var seed1, seed2 *big.Int
	var result *game.Result
	for s := int64(1); s < 100; s++ {
		seed1 = big.NewInt(s)
		seed2 = big.NewInt(s + 500)
		res, err := game.Simulate(seed1, seed2, sessionID)
		c.Assert(err, qt.IsNil)
		result = res
		break
	}

	assignment, err := duelproof.BuildAssignment(seed1, seed2, sessionID, result.Winner)
	c.Assert(err, qt.IsNil)

	ccs, err := Compile()
	c.Assert(err, qt.IsNil)

	pk, vk, err := Setup(ccs)
	c.Assert(err, qt.IsNil)
	c.Assert(vk, qt.IsNotNil)

	proof, err := Prove(ccs, pk, assignment)
	c.Assert(err, qt.IsNil)
	c.Assert(proof, qt.IsNotNil)

	pub, err := PublicWitness(assignment)
	c.Assert(err, qt.IsNil)
	c.Assert(pub, qt.IsNotNil)
}
