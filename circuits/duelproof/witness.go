package duelproof

import (
	"fmt"
	"math/big"

	"github.com/briwylde08/dead-mans-draw/crypto/field"
	"github.com/briwylde08/dead-mans-draw/crypto/hash/poseidon"
	"github.com/briwylde08/dead-mans-draw/game"
)

// BuildAssignment derives every witness the circuit needs from the two
// revealed seeds, the session id, and the winner the proof asserts. It
// reruns the same deck derivation and weight decomposition game.Deck and
// game.Simulate perform natively, so a valid assignment always exists for
// any game.Simulate output; callers proving a fabricated winner will fail
// at the final AssertIsEqual in assertSimulation, not here.
func BuildAssignment(seed1, seed2, sessionID *big.Int, winner int) (*DuelCircuit, error) {
	commit1, err := poseidon.Hash1(seed1)
	if err != nil {
		return nil, fmt.Errorf("duelproof: witness: commit1: %w", err)
	}
	commit2, err := poseidon.Hash1(seed2)
	if err != nil {
		return nil, fmt.Errorf("duelproof: witness: commit2: %w", err)
	}

	combinedSeed, err := game.CombinedSeed(seed1, seed2, sessionID)
	if err != nil {
		return nil, fmt.Errorf("duelproof: witness: combined seed: %w", err)
	}

	deck, err := game.Deck(combinedSeed)
	if err != nil {
		return nil, fmt.Errorf("duelproof: witness: deck: %w", err)
	}

	assignment := &DuelCircuit{
		Commit1:   commit1,
		Commit2:   commit2,
		Seed1:     seed1,
		Seed2:     seed2,
		SessionID: sessionID,
		Winner:    big.NewInt(int64(winner)),
	}

	deckValues := make([]*big.Int, deckSize)
	for i := 0; i < deckSize; i++ {
		deckValues[i] = big.NewInt(int64(deck[i]))
		assignment.Deck[i] = deckValues[i]

		weight, err := poseidon.Hash2(combinedSeed, deckValues[i])
		if err != nil {
			return nil, fmt.Errorf("duelproof: witness: weight %d: %w", i, err)
		}
		// Recombination identity the circuit re-derives: weight ==
		// TruncWeights[i] + HighWeights[i]*2^128.
		assignment.TruncWeights[i] = field.TruncateToLowerBits(weight, truncBits)
		assignment.HighWeights[i] = new(big.Int).Rsh(weight, truncBits)
	}

	for i := 0; i < deckSize; i++ {
		for j := i + 1; j < deckSize; j++ {
			diff := new(big.Int).Sub(deckValues[i], deckValues[j])
			diff.Mod(diff, field.Modulus)
			inv := new(big.Int).ModInverse(diff, field.Modulus)
			if inv == nil {
				return nil, fmt.Errorf("duelproof: witness: cards %d and %d are not distinct", deck[i], deck[j])
			}
			assignment.Inverses[i][j] = inv
		}
	}

	return assignment, nil
}

// PublicAssignment builds a DuelCircuit populated with only the six public
// inputs; every private witness field is zeroed. A verifier never needs the
// private witnesses, but frontend.NewWitness requires every field to carry
// a valid field-element value to derive the public witness from the same
// schema the prover used.
func PublicAssignment(commit1, commit2, seed1, seed2, sessionID, winner *big.Int) *DuelCircuit {
	c := &DuelCircuit{
		Commit1:   commit1,
		Commit2:   commit2,
		Seed1:     seed1,
		Seed2:     seed2,
		SessionID: sessionID,
		Winner:    winner,
	}
	for i := 0; i < deckSize; i++ {
		c.Deck[i] = big.NewInt(0)
		c.TruncWeights[i] = big.NewInt(0)
		c.HighWeights[i] = big.NewInt(0)
		for j := 0; j < deckSize; j++ {
			c.Inverses[i][j] = big.NewInt(0)
		}
	}
	return c
}
