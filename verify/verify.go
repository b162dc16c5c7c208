// Package verify wraps groth16.Verify for the duel circuit: given a wire
// proof and its six public inputs, it rebuilds the public witness the
// prover would have produced and checks the Groth16 pairing equation
// against an embedded verifying key. This is the on-chain verifier's
// reference implementation (spec.md places the real contract storage out
// of scope; this package is what a contract's verify() call wraps).
package verify

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/briwylde08/dead-mans-draw/chainio"
	"github.com/briwylde08/dead-mans-draw/circuits/duelproof"
	"github.com/briwylde08/dead-mans-draw/types"
)

// Verifier checks a ProofPayload against a fixed Groth16 verifying key. It
// implements state.Verifier, so a *Verifier can be handed directly to
// state.New.
type Verifier struct {
	vk groth16.VerifyingKey
}

// New returns a Verifier over the given verifying key.
func New(vk groth16.VerifyingKey) *Verifier {
	return &Verifier{vk: vk}
}

// Verify decodes payload's wire-form proof and public inputs, rebuilds the
// public witness the circuit expects, and runs the Groth16 pairing check.
// It returns a non-nil error for any malformed encoding or failed proof,
// which state.Machine.Settle wraps in ErrInvalidProof.
func (v *Verifier) Verify(payload *types.ProofPayload) error {
	proof, err := chainio.DecodeProof(payload.PiA, payload.PiB, payload.PiC)
	if err != nil {
		return fmt.Errorf("verify: decoding proof: %w", err)
	}

	assignment := duelproof.PublicAssignment(
		payload.Commit1.MathBigInt(),
		payload.Commit2.MathBigInt(),
		payload.Seed1.MathBigInt(),
		payload.Seed2.MathBigInt(),
		new(big.Int).SetUint64(uint64(payload.SessionID)),
		new(big.Int).SetUint64(uint64(payload.Winner)),
	)

	full, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return fmt.Errorf("verify: building witness: %w", err)
	}
	pub, err := full.Public()
	if err != nil {
		return fmt.Errorf("verify: extracting public witness: %w", err)
	}

	if err := groth16.Verify(proof, v.vk, pub); err != nil {
		return fmt.Errorf("verify: groth16 verification failed: %w", err)
	}
	return nil
}
