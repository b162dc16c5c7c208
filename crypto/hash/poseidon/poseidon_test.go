package poseidon

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHashDeterministic(t *testing.T) {
	c := qt.New(t)

	h1, err := Hash1(big.NewInt(1))
	c.Assert(err, qt.IsNil)
	h2, err := Hash1(big.NewInt(1))
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(h2), qt.Equals, 0)

	other, err := Hash1(big.NewInt(2))
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(other), qt.Not(qt.Equals), 0)
}

func TestHashArityDistinctFromConcatenation(t *testing.T) {
	c := qt.New(t)

	h2, err := Hash2(big.NewInt(1), big.NewInt(2))
	c.Assert(err, qt.IsNil)
	h3, err := Hash3(big.NewInt(1), big.NewInt(2), big.NewInt(0))
	c.Assert(err, qt.IsNil)
	// Poseidon's domain separation between arities means these must differ
	// even though the "logical" values overlap.
	c.Assert(h2.Cmp(h3), qt.Not(qt.Equals), 0)
}

func TestHashRejectsNoInputs(t *testing.T) {
	c := qt.New(t)
	_, err := hash()
	c.Assert(err, qt.ErrorMatches, "poseidon: no inputs provided")
}

func TestHashRejectsNilInput(t *testing.T) {
	c := qt.New(t)
	_, err := Hash2(big.NewInt(1), nil)
	c.Assert(err, qt.ErrorMatches, "poseidon: nil input at position 1")
}
