// Package duelproof defines the Rank-1 constraint system that proves a
// declared winner is the unique consequence of two committed seeds and a
// session id: commitment openings, combined-seed derivation, deck
// permutation validity, the truncated-weight sort, the 12-round game
// simulation, and winner binding. The circuit is native BN254 (no
// recursion, no field emulation), matching the flat Groth16 statement this
// protocol verifies on-chain.
package duelproof

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/cmp"
	"github.com/vocdoni/gnark-crypto-primitives/hash/bn254/poseidon"

	"github.com/briwylde08/dead-mans-draw/game"
)

// HashFn is the in-circuit Poseidon gadget. It must agree bit-for-bit with
// crypto/hash/poseidon's native digest; both ultimately run the same
// circomlib-parameterized permutation over BN254.
var HashFn = poseidon.MultiHash

const (
	deckSize  = game.DeckSize
	rounds    = game.Rounds
	truncBits = game.TruncationBits
	highBits  = 126 // spec-mandated bound: high_weights[i] < 2^126
)

// DuelCircuit is the statement: given the six public inputs, there exists a
// deck, a weight decomposition, and a pairwise-inequality witness such that
// simulating the game on that deck yields exactly Winner.
type DuelCircuit struct {
	// Public inputs, declared commit-first. This is the order of the public
	// witness groth16.Verify checks, not the seed-first calldata order that
	// chainio.PublicInputs emits.
	Commit1   frontend.Variable `gnark:",public"`
	Commit2   frontend.Variable `gnark:",public"`
	Seed1     frontend.Variable `gnark:",public"`
	Seed2     frontend.Variable `gnark:",public"`
	SessionID frontend.Variable `gnark:",public"`
	Winner    frontend.Variable `gnark:",public"`

	// Private witnesses.
	Deck         [deckSize]frontend.Variable
	TruncWeights [deckSize]frontend.Variable
	HighWeights  [deckSize]frontend.Variable
	// Inverses[i][j] for i<j satisfies Inverses[i][j]*(Deck[i]-Deck[j]) = 1,
	// forcing Deck[i] != Deck[j]. Entries with i>=j are unused padding.
	Inverses [deckSize][deckSize]frontend.Variable
}

func (c *DuelCircuit) Define(api frontend.API) error {
	if err := c.assertCommitmentOpenings(api); err != nil {
		return err
	}
	combinedSeed, err := HashFn(api, c.Seed1, c.Seed2, c.SessionID)
	if err != nil {
		return fmt.Errorf("duelproof: combined seed: %w", err)
	}

	if err := c.assertPermutation(api); err != nil {
		return err
	}
	if err := c.assertWeightsAndSort(api, combinedSeed); err != nil {
		return err
	}

	return c.assertSimulation(api, combinedSeed)
}

func (c *DuelCircuit) assertCommitmentOpenings(api frontend.API) error {
	commit1, err := HashFn(api, c.Seed1)
	if err != nil {
		return fmt.Errorf("duelproof: opening seed1: %w", err)
	}
	api.AssertIsEqual(commit1, c.Commit1)

	commit2, err := HashFn(api, c.Seed2)
	if err != nil {
		return fmt.Errorf("duelproof: opening seed2: %w", err)
	}
	api.AssertIsEqual(commit2, c.Commit2)
	return nil
}

// assertPermutation range-checks each card index into [0,25) and forces
// pairwise distinctness via the inverse-witness trick: 300 = 25*24/2
// non-zero assertions that, combined with the range check, pin Deck down
// to a bijection onto [0,25).
func (c *DuelCircuit) assertPermutation(api frontend.API) error {
	for i := 0; i < deckSize; i++ {
		api.AssertIsLessOrEqual(c.Deck[i], deckSize-1)
	}
	for i := 0; i < deckSize; i++ {
		for j := i + 1; j < deckSize; j++ {
			diff := api.Sub(c.Deck[i], c.Deck[j])
			product := api.Mul(c.Inverses[i][j], diff)
			api.AssertIsEqual(product, 1)
		}
	}
	return nil
}

// assertWeightsAndSort enforces Poseidon2(cs, deck[i]) = trunc[i] +
// high[i]*2^128 with range-checked halves, then the ascending sort order on
// the truncated halves only (the comparator the real circuit can afford).
func (c *DuelCircuit) assertWeightsAndSort(api frontend.API, combinedSeed frontend.Variable) error {
	pow128 := pow2(truncBits)
	maxTrunc := pow2Minus1(truncBits)
	maxHigh := pow2Minus1(highBits)

	for i := 0; i < deckSize; i++ {
		weight, err := HashFn(api, combinedSeed, c.Deck[i])
		if err != nil {
			return fmt.Errorf("duelproof: weight %d: %w", i, err)
		}
		recombined := api.Add(c.TruncWeights[i], api.Mul(c.HighWeights[i], pow128))
		api.AssertIsEqual(recombined, weight)
		api.AssertIsLessOrEqual(c.TruncWeights[i], maxTrunc)
		api.AssertIsLessOrEqual(c.HighWeights[i], maxHigh)
	}

	for i := 0; i < deckSize-1; i++ {
		// TruncWeights[i] <= TruncWeights[i+1]
		gt := cmp.IsLess(api, c.TruncWeights[i+1], c.TruncWeights[i])
		api.AssertIsEqual(gt, 0)
	}
	return nil
}

// assertSimulation chains 12 round subcircuits carrying (score1, score2,
// winner, active) and finally asserts the resulting winner equals the
// public Winner input.
func (c *DuelCircuit) assertSimulation(api frontend.API, combinedSeed frontend.Variable) error {
	var score1, score2, winner, active frontend.Variable = 0, 0, 0, 1

	for i := 0; i < rounds; i++ {
		var err error
		score1, score2, winner, active, err = roundStep(api, c.Deck[2*i], c.Deck[2*i+1], score1, score2, winner, active)
		if err != nil {
			return fmt.Errorf("duelproof: round %d: %w", i, err)
		}
	}

	p1Greater := cmp.IsLess(api, score2, score1)
	p2Greater := cmp.IsLess(api, score1, score2)

	coin, err := HashFn(api, combinedSeed, deckSize)
	if err != nil {
		return fmt.Errorf("duelproof: coinflip: %w", err)
	}
	coinBit := api.ToBinary(coin)[0]
	tiebreakWinner := api.Add(coinBit, 1)

	exhaustedWinner := api.Select(p1Greater, 1, api.Select(p2Greater, 2, tiebreakWinner))
	finalWinner := api.Select(active, exhaustedWinner, winner)

	api.AssertIsEqual(finalWinner, c.Winner)
	return nil
}

func pow2(bits int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(bits))
}

func pow2Minus1(bits int) *big.Int {
	return new(big.Int).Sub(pow2(bits), big.NewInt(1))
}

// isEqual returns 1 if a == b, 0 otherwise.
func isEqual(api frontend.API, a, b frontend.Variable) frontend.Variable {
	return api.IsZero(api.Sub(a, b))
}

// orPair returns the boolean OR of two 0/1 variables: a+b-a*b.
func orPair(api frontend.API, a, b frontend.Variable) frontend.Variable {
	return api.Sub(api.Add(a, b), api.Mul(a, b))
}

// cardType maps a card index into its type: 0 (Rum) for [0,8), 1 (Skull)
// for [8,16), 2 (Backstabber) for [16,24), 3 (Black Spot) for 24. Mirrors
// game.CardType in-circuit.
func cardType(api frontend.API, idx frontend.Variable) frontend.Variable {
	lt8 := cmp.IsLess(api, idx, 8)
	lt16 := cmp.IsLess(api, idx, 16)
	lt24 := cmp.IsLess(api, idx, 24)
	return api.Select(lt8, 0, api.Select(lt16, 1, api.Select(lt24, 2, 3)))
}

// roundStep advances the chained game-simulation state by one round,
// following the RPS/Black-Spot/score-threshold priority of the simulator:
// a Black Spot ends the game immediately; otherwise RPS resolves the round
// and a player reaching WinThreshold ends the game. Once active is 0 the
// state is frozen (spec's game-over freeze), matching the simulator's
// `for ... while active` loop unrolled to a fixed 12 iterations.
//
// The winner code is built additively per the design note on winner
// overflow: score3_p1*1 + score3_p2*2, with score3_p2 gated by (1-score3_p1)
// to prevent double counting, and the Black-Spot both-sides correction term
// -3*(isBS1*isBS2) preserved even though only one Black Spot exists.
func roundStep(api frontend.API, c1, c2, score1, score2, winner, active frontend.Variable) (
	newScore1, newScore2, newWinner, newActive frontend.Variable, err error,
) {
	t1 := cardType(api, c1)
	t2 := cardType(api, c2)
	isBS1 := isEqual(api, t1, 3)
	isBS2 := isEqual(api, t2, 3)

	eq := isEqual(api, t1, t2)
	t1Lt2 := cmp.IsLess(api, t1, 2)
	t1Plus1Mod3 := api.Select(t1Lt2, api.Add(t1, 1), 0)
	p1BeatsP2 := isEqual(api, t1Plus1Mod3, t2)

	notTie := api.Sub(1, eq)
	p1WinsRPS := api.Mul(notTie, p1BeatsP2)
	p2WinsRPS := api.Mul(notTie, api.Sub(1, p1BeatsP2))

	notBS := api.Mul(api.Sub(1, isBS1), api.Sub(1, isBS2))
	scoreInc1 := api.Mul(notBS, p1WinsRPS)
	scoreInc2 := api.Mul(notBS, p2WinsRPS)

	candidateScore1 := api.Add(score1, scoreInc1)
	candidateScore2 := api.Add(score2, scoreInc2)
	newScore1 = api.Select(active, candidateScore1, score1)
	newScore2 = api.Select(active, candidateScore2, score2)

	score1Hits3 := api.Sub(1, cmp.IsLess(api, newScore1, 3))
	score2Hits3Raw := api.Sub(1, cmp.IsLess(api, newScore2, 3))
	score2Hits3 := api.Mul(score2Hits3Raw, api.Sub(1, score1Hits3))

	bsWinnerCode := api.Sub(api.Add(api.Mul(isBS1, 2), isBS2), api.Mul(api.Mul(isBS1, isBS2), 3))
	scoreWinnerCode := api.Add(score1Hits3, api.Mul(score2Hits3, 2))
	anyBS := orPair(api, isBS1, isBS2)
	roundWinnerCode := api.Select(anyBS, bsWinnerCode, scoreWinnerCode)

	roundEnds := orPair(api, anyBS, orPair(api, score1Hits3, score2Hits3))

	candidateWinner := api.Select(roundEnds, roundWinnerCode, winner)
	newWinner = api.Select(active, candidateWinner, winner)
	newActive = api.Select(active, api.Sub(1, roundEnds), active)
	return newScore1, newScore2, newWinner, newActive, nil
}
