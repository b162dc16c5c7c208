// Package field holds BN254 scalar-field constants and the small set of
// arithmetic helpers (random seed sampling, 128-bit truncation) the deck
// derivation and witness generator both need.
package field

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Modulus is the BN254 scalar field modulus r, shared by the Poseidon
// instances, the Groth16 proving system, and every commitment/seed value in
// this protocol.
var Modulus = fr.Modulus()

// seedBytes is the number of random bytes sampled for a seed: 31 bytes keep
// the sampled value strictly below the ~254-bit modulus without needing to
// reduce, avoiding the bias a naive 32-byte-then-mod would introduce.
const seedBytes = 31

// RandomSeed samples a uniformly random field element by drawing 31 random
// bytes and interpreting them big-endian, per the seed-sampling hygiene note:
// do not sample 32 bytes and reduce mod r.
func RandomSeed() (*big.Int, error) {
	buf := make([]byte, seedBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("field: sampling random seed: %w", err)
	}
	return new(big.Int).SetBytes(buf), nil
}

// TruncateToLowerBits returns input masked to its least-significant `bits`
// bits, the operation the deck-derivation sort and the in-circuit sort
// comparator both apply to Poseidon-derived weights.
func TruncateToLowerBits(input *big.Int, bits uint) *big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), bits)
	mask.Sub(mask, big.NewInt(1))
	return new(big.Int).And(input, mask)
}

// Reduce folds value into [0, Modulus), with the same logic as
// types.BigInt.ToFF, for a caller-supplied value that might exceed the
// field.
func Reduce(value *big.Int) *big.Int {
	z := big.NewInt(0)
	if c := value.Cmp(Modulus); c == 0 {
		return z
	} else if c != 1 && value.Cmp(z) != -1 {
		return new(big.Int).Set(value)
	}
	return z.Mod(value, Modulus)
}

// InField reports whether value lies in [0, Modulus).
func InField(value *big.Int) bool {
	return value.Sign() >= 0 && value.Cmp(Modulus) < 0
}
