// Package poseidon wraps the circomlib-parameterized Poseidon hash for the
// three fixed arities this protocol needs: committing a seed (arity 1),
// deriving deck weights and the tiebreak coin (arity 2), and deriving the
// combined seed from both seeds plus the session id (arity 3). It must
// produce bit-identical digests to the in-circuit gadget in
// circuits/duelproof, since the witness generator, simulator, and verifier
// all depend on the two agreeing.
package poseidon

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// Hash1 computes Poseidon over a single input, used for commitment openings:
// Poseidon1(seed) = commitment.
func Hash1(a *big.Int) (*big.Int, error) {
	return hash(a)
}

// Hash2 computes Poseidon over two inputs, used for per-card weight
// derivation (Poseidon2(combinedSeed, i)) and the tiebreak coin flip
// (Poseidon2(combinedSeed, 25)).
func Hash2(a, b *big.Int) (*big.Int, error) {
	return hash(a, b)
}

// Hash3 computes Poseidon over three inputs, used for the combined seed:
// Poseidon3(seed1, seed2, sessionID).
func Hash3(a, b, c *big.Int) (*big.Int, error) {
	return hash(a, b, c)
}

func hash(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("poseidon: no inputs provided")
	}
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("poseidon: nil input at position %d", i)
		}
	}
	return poseidon.Hash(inputs)
}
