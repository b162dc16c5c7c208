package game

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/briwylde08/dead-mans-draw/crypto/field"
	"github.com/briwylde08/dead-mans-draw/crypto/hash/poseidon"
)

// TruncationBits is the width the circuit's sort comparator operates on. The
// 128-bit truncation keeps the in-circuit comparator cheap; see the
// collision-probability note where it's applied.
const TruncationBits = 128

// CombinedSeed derives Poseidon3(seed1, seed2, sessionID), the single value
// the entire deck (and the tiebreak coin) is derived from.
func CombinedSeed(seed1, seed2, sessionID *big.Int) (*big.Int, error) {
	cs, err := poseidon.Hash3(seed1, seed2, sessionID)
	if err != nil {
		return nil, fmt.Errorf("game: deriving combined seed: %w", err)
	}
	return cs, nil
}

// cardWeight is one card's full Poseidon weight alongside its 128-bit
// truncation, the value the sort actually orders by.
type cardWeight struct {
	index  int
	weight *big.Int
	trunc  *big.Int
}

// Deck derives the 25-card permutation from a combined seed: each card index
// gets a Poseidon-derived weight, weights are truncated to 128 bits, and the
// deck is the stable sort of indices by ascending truncated weight.
//
// A truncated-weight collision between any two cards is a soundness hazard
// for the in-circuit sort (see the design note on truncated-weight
// collisions) and is rejected outright rather than silently resolved by the
// index tiebreak.
func Deck(combinedSeed *big.Int) ([DeckSize]int, error) {
	var deck [DeckSize]int

	weights := make([]cardWeight, DeckSize)
	for i := 0; i < DeckSize; i++ {
		w, err := poseidon.Hash2(combinedSeed, big.NewInt(int64(i)))
		if err != nil {
			return deck, fmt.Errorf("game: deriving weight for card %d: %w", i, err)
		}
		weights[i] = cardWeight{
			index:  i,
			weight: w,
			trunc:  field.TruncateToLowerBits(w, TruncationBits),
		}
	}

	if err := checkNoTruncationCollision(weights); err != nil {
		return deck, err
	}

	sort.SliceStable(weights, func(a, b int) bool {
		return weights[a].trunc.Cmp(weights[b].trunc) < 0
	})

	for k, cw := range weights {
		deck[k] = cw.index
	}
	return deck, nil
}

// checkNoTruncationCollision rejects any pair of cards whose 128-bit
// truncated weights collide. With 25 samples in a 2^128 space the
// probability is negligible (~25^2/2^129) but not zero, and an honest
// witness generator must refuse to produce a proof over a colliding deck
// rather than let the index tiebreak silently pick an order the circuit
// didn't intend.
func checkNoTruncationCollision(weights []cardWeight) error {
	seen := make(map[string]int, len(weights))
	for _, cw := range weights {
		key := cw.trunc.String()
		if other, ok := seen[key]; ok {
			return fmt.Errorf("game: truncated weight collision between cards %d and %d", other, cw.index)
		}
		seen[key] = cw.index
	}
	return nil
}
