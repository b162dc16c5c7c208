package types

// Session is the on-chain record for one duel, keyed by a 32-bit session id.
// Field elements (commitments, seeds) are stored as BigInt so they marshal
// identically whether they travel over JSON (CLI/demo output) or CBOR
// (durable storage snapshots).
type Session struct {
	SessionID      uint32   `json:"sessionId" cbor:"1,keyasint"`
	Player1Address HexBytes `json:"player1Address" cbor:"2,keyasint"`
	Player2Address HexBytes `json:"player2Address" cbor:"3,keyasint"`
	Commit1        *BigInt  `json:"commit1" cbor:"4,keyasint"`
	Commit2        *BigInt  `json:"commit2" cbor:"5,keyasint"`
	Seed1          *BigInt  `json:"seed1" cbor:"6,keyasint"`
	Seed2          *BigInt  `json:"seed2" cbor:"7,keyasint"`
	Phase          Phase    `json:"phase" cbor:"8,keyasint"`
	Winner         uint32   `json:"winner" cbor:"9,keyasint"`
}

// SeedRevealed reports whether a seed is a non-zero-sentinel value, i.e. it
// has actually been revealed rather than left at its zero default.
func SeedRevealed(seed *BigInt) bool {
	return seed != nil && seed.MathBigInt().Sign() != 0
}

// Player1Revealed reports whether player 1's seed has been published.
func (s *Session) Player1Revealed() bool {
	return SeedRevealed(s.Seed1)
}

// Player2Revealed reports whether player 2's seed has been published.
func (s *Session) Player2Revealed() bool {
	return SeedRevealed(s.Seed2)
}

// BothRevealed reports whether both seeds have been published.
func (s *Session) BothRevealed() bool {
	return s.Player1Revealed() && s.Player2Revealed()
}
