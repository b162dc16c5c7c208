package field

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestRandomSeedBelowModulus(t *testing.T) {
	c := qt.New(t)
	for range 50 {
		seed, err := RandomSeed()
		c.Assert(err, qt.IsNil)
		c.Assert(seed.Sign() >= 0, qt.IsTrue)
		c.Assert(seed.Cmp(Modulus) < 0, qt.IsTrue)
		// 31 random bytes can never reach the 254-bit modulus's top byte.
		c.Assert(seed.BitLen() <= 31*8, qt.IsTrue)
	}
}

func TestTruncateToLowerBits(t *testing.T) {
	c := qt.New(t)

	in := new(big.Int).SetBytes([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	got := TruncateToLowerBits(in, 8)
	c.Assert(got.Uint64(), qt.Equals, uint64(0xFF))

	got128 := TruncateToLowerBits(in, 128)
	c.Assert(got128.Cmp(in), qt.Equals, 0)
}

func TestReduceAndInField(t *testing.T) {
	c := qt.New(t)

	c.Assert(InField(big.NewInt(0)), qt.IsTrue)
	c.Assert(InField(new(big.Int).Sub(Modulus, big.NewInt(1))), qt.IsTrue)
	c.Assert(InField(Modulus), qt.IsFalse)

	over := new(big.Int).Add(Modulus, big.NewInt(5))
	c.Assert(Reduce(over).Cmp(big.NewInt(5)), qt.Equals, 0)
	c.Assert(Reduce(Modulus).Sign(), qt.Equals, 0)
	c.Assert(Reduce(big.NewInt(7)).Cmp(big.NewInt(7)), qt.Equals, 0)
}
