package game

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDeckIsPermutation(t *testing.T) {
	c := qt.New(t)

	for _, tc := range []struct{ s1, s2, sid int64 }{
		{1, 2, 1},
		{0x1111, 0x2222, 42},
		{9999999, 1, 7},
	} {
		cs, err := CombinedSeed(big.NewInt(tc.s1), big.NewInt(tc.s2), big.NewInt(tc.sid))
		c.Assert(err, qt.IsNil)
		deck, err := Deck(cs)
		c.Assert(err, qt.IsNil)

		seen := make(map[int]bool, DeckSize)
		for _, card := range deck {
			c.Assert(card >= 0 && card < DeckSize, qt.IsTrue)
			c.Assert(seen[card], qt.IsFalse, qt.Commentf("duplicate card %d", card))
			seen[card] = true
		}
		c.Assert(len(seen), qt.Equals, DeckSize)
	}
}

func TestSimulateWinnerInRange(t *testing.T) {
	c := qt.New(t)

	for sid := int64(0); sid < 20; sid++ {
		res, err := Simulate(big.NewInt(1), big.NewInt(2), big.NewInt(sid))
		c.Assert(err, qt.IsNil)
		c.Assert(res.Winner == 1 || res.Winner == 2, qt.IsTrue)
	}
}

func TestSimulateDeterministic(t *testing.T) {
	c := qt.New(t)

	r1, err := Simulate(big.NewInt(1), big.NewInt(2), big.NewInt(1))
	c.Assert(err, qt.IsNil)
	r2, err := Simulate(big.NewInt(1), big.NewInt(2), big.NewInt(1))
	c.Assert(err, qt.IsNil)

	c.Assert(r1.Deck, qt.Equals, r2.Deck)
	c.Assert(r1.Winner, qt.Equals, r2.Winner)
	c.Assert(r1.EndReason, qt.Equals, r2.EndReason)
}

// Swap symmetry is not guaranteed: the role assignment is positional, so
// simulate(s1,s2,sid) and simulate(s2,s1,sid) may produce different decks
// and different winners. For the (1,2,1) case this test checks only that
// the two decks differ; it asserts nothing about the winners.
func TestSimulateNotSwapSymmetric(t *testing.T) {
	c := qt.New(t)

	forward, err := Simulate(big.NewInt(1), big.NewInt(2), big.NewInt(1))
	c.Assert(err, qt.IsNil)
	swapped, err := Simulate(big.NewInt(2), big.NewInt(1), big.NewInt(1))
	c.Assert(err, qt.IsNil)

	// Combined seed differs because Poseidon3 is not symmetric in its first
	// two arguments, so the decks are expected to differ.
	c.Assert(forward.Deck, qt.Not(qt.Equals), swapped.Deck)
}

func TestCardType(t *testing.T) {
	c := qt.New(t)
	c.Assert(CardType(0), qt.Equals, Rum)
	c.Assert(CardType(7), qt.Equals, Rum)
	c.Assert(CardType(8), qt.Equals, Skull)
	c.Assert(CardType(15), qt.Equals, Skull)
	c.Assert(CardType(16), qt.Equals, Backstabber)
	c.Assert(CardType(23), qt.Equals, Backstabber)
	c.Assert(CardType(24), qt.Equals, BlackSpot)
}

func TestRoundWinnerRPS(t *testing.T) {
	c := qt.New(t)
	c.Assert(roundWinnerRPS(Rum, Rum), qt.Equals, 0)
	c.Assert(roundWinnerRPS(Rum, Skull), qt.Equals, 1)
	c.Assert(roundWinnerRPS(Skull, Backstabber), qt.Equals, 1)
	c.Assert(roundWinnerRPS(Backstabber, Rum), qt.Equals, 1)
	c.Assert(roundWinnerRPS(Skull, Rum), qt.Equals, 2)
}

// TestCoinflipBranch looks for a session id where deck derivation exhausts
// all 12 rounds with tied scores, exercising the Poseidon2(cs,25) coinflip
// path explicitly.
func TestCoinflipBranch(t *testing.T) {
	c := qt.New(t)

	found := false
	for sid := int64(0); sid < 2000 && !found; sid++ {
		res, err := Simulate(big.NewInt(1), big.NewInt(2), big.NewInt(sid))
		c.Assert(err, qt.IsNil)
		if res.EndReason == EndReasonCoinflip {
			found = true
			c.Assert(res.Winner == 1 || res.Winner == 2, qt.IsTrue)
		}
	}
	c.Assert(found, qt.IsTrue, qt.Commentf("expected at least one coinflip game in the scanned range"))
}
