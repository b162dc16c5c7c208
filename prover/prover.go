// Package prover wraps gnark's Groth16 setup and proving for the duel
// circuit, with exactly one backend: CPU groth16.Prove. A single duel proof
// is one constraint system evaluation, not a batch workload that would
// justify GPU acceleration.
package prover

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/briwylde08/dead-mans-draw/circuits/duelproof"
)

// Curve is the scalar field every duel proof is produced over.
const Curve = ecc.BN254

// Compile builds the R1CS constraint system for the duel circuit.
func Compile() (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(Curve.ScalarField(), r1cs.NewBuilder, &duelproof.DuelCircuit{})
	if err != nil {
		return nil, fmt.Errorf("prover: compiling duel circuit: %w", err)
	}
	return ccs, nil
}

// Setup runs the Groth16 trusted setup for an already-compiled constraint
// system, producing the proving and verifying keys.
func Setup(ccs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("prover: groth16 setup: %w", err)
	}
	return pk, vk, nil
}

// Prove builds a full witness from a DuelCircuit assignment and produces a
// Groth16 proof. assignment should come from duelproof.BuildAssignment.
func Prove(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, assignment *duelproof.DuelCircuit) (groth16.Proof, error) {
	witness, err := frontend.NewWitness(assignment, Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("prover: building witness: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prover: groth16 prove: %w", err)
	}
	return proof, nil
}

// PublicWitness extracts the public-input-only witness from an assignment,
// the value a verifier checks a proof against.
func PublicWitness(assignment *duelproof.DuelCircuit) (witness.Witness, error) {
	full, err := frontend.NewWitness(assignment, Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("prover: building witness: %w", err)
	}
	pub, err := full.Public()
	if err != nil {
		return nil, fmt.Errorf("prover: extracting public witness: %w", err)
	}
	return pub, nil
}
