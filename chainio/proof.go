// Package chainio encodes a Groth16 duel proof into the fixed wire format a
// settlement transaction carries: two 64-byte G1 points, one 128-byte G2
// point, and six 32-byte big-endian public inputs. This mirrors the
// solidity package's ABI-encoding of a gnark proof, minus the Pedersen
// commitment extension neither this circuit nor its verifier needs.
package chainio

import (
	"fmt"
	"math/big"

	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/groth16"

	"github.com/briwylde08/dead-mans-draw/circuits/duelproof"
	"github.com/briwylde08/dead-mans-draw/types"
)

// G1Size is the wire size of a G1 point: be(X)||be(Y).
const G1Size = 64

// G2Size is the wire size of a G2 point: be(X.A1)||be(X.A0)||be(Y.A1)||be(Y.A0).
// The A1/A0 (c1,c0) swap relative to the field element's natural (A0,A1)
// order matches what the on-chain pairing precompile expects, the same
// swap EncodeProof applies when it reads Bs.X.A1 before Bs.X.A0.
const G2Size = 128

// PublicInputCount is the number of field-element public inputs a proof
// carries.
const PublicInputCount = 6

// EncodeProof converts a gnark Groth16 proof over the duel circuit into its
// wire form: PiA and PiC are 64 bytes each, PiB is 128 bytes with the G2
// coordinate swap applied.
func EncodeProof(proof groth16.Proof) (piA, piB, piC types.HexBytes, err error) {
	g16proof, ok := proof.(*groth16_bn254.Proof)
	if !ok {
		return nil, nil, nil, fmt.Errorf("chainio: expected groth16_bn254.Proof, got %T", proof)
	}

	piA = encodeG1(g16proof.Ar.X.BigInt(new(big.Int)), g16proof.Ar.Y.BigInt(new(big.Int)))
	piC = encodeG1(g16proof.Krs.X.BigInt(new(big.Int)), g16proof.Krs.Y.BigInt(new(big.Int)))
	piB = encodeG2(
		g16proof.Bs.X.A1.BigInt(new(big.Int)), g16proof.Bs.X.A0.BigInt(new(big.Int)),
		g16proof.Bs.Y.A1.BigInt(new(big.Int)), g16proof.Bs.Y.A0.BigInt(new(big.Int)),
	)
	return piA, piB, piC, nil
}

func encodeG1(x, y *big.Int) types.HexBytes {
	out := make(types.HexBytes, G1Size)
	x.FillBytes(out[:32])
	y.FillBytes(out[32:64])
	return out
}

func encodeG2(xc1, xc0, yc1, yc0 *big.Int) types.HexBytes {
	out := make(types.HexBytes, G2Size)
	xc1.FillBytes(out[:32])
	xc0.FillBytes(out[32:64])
	yc1.FillBytes(out[64:96])
	yc0.FillBytes(out[96:128])
	return out
}

// PublicInputs returns a proof's six public inputs as 32-byte big-endian
// words in the settle() calldata's external field order: seed1, seed2,
// commit1, commit2, sessionId, winner. This is the contract-facing layout a
// settlement transaction submits alongside the encoded proof; it is not the
// order the circuit itself declares its public variables in (commit-first,
// the order groth16.Verify's internal public witness uses via
// frontend.NewWitness(...).Public() in the verify package) — the two only
// need to agree on which six values they carry, not on their array position.
func PublicInputs(payload *types.ProofPayload) [PublicInputCount][32]byte {
	var out [PublicInputCount][32]byte
	values := []*big.Int{
		payload.Seed1.MathBigInt(),
		payload.Seed2.MathBigInt(),
		payload.Commit1.MathBigInt(),
		payload.Commit2.MathBigInt(),
		new(big.Int).SetUint64(uint64(payload.SessionID)),
		new(big.Int).SetUint64(uint64(payload.Winner)),
	}
	for i, v := range values {
		v.FillBytes(out[i][:])
	}
	return out
}

// DecodeProof parses the wire form of a proof back into a gnark Groth16
// proof, reversing EncodeProof including the G2 coordinate swap. It is the
// verify package's entry point: proofs arrive over the wire in this layout,
// never as gnark's native in-memory type.
func DecodeProof(piA, piB, piC []byte) (groth16.Proof, error) {
	if len(piA) != G1Size {
		return nil, fmt.Errorf("chainio: piA must be %d bytes, got %d", G1Size, len(piA))
	}
	if len(piB) != G2Size {
		return nil, fmt.Errorf("chainio: piB must be %d bytes, got %d", G2Size, len(piB))
	}
	if len(piC) != G1Size {
		return nil, fmt.Errorf("chainio: piC must be %d bytes, got %d", G1Size, len(piC))
	}

	proof := &groth16_bn254.Proof{}
	proof.Ar.X.SetBytes(piA[:32])
	proof.Ar.Y.SetBytes(piA[32:64])
	proof.Krs.X.SetBytes(piC[:32])
	proof.Krs.Y.SetBytes(piC[32:64])

	// The wire layout carries (c1,c0); swap back to gnark's native (c0,c1).
	proof.Bs.X.A1.SetBytes(piB[0:32])
	proof.Bs.X.A0.SetBytes(piB[32:64])
	proof.Bs.Y.A1.SetBytes(piB[64:96])
	proof.Bs.Y.A0.SetBytes(piB[96:128])

	return proof, nil
}

// BuildPayload assembles a ProofPayload from a proof, its assignment, and
// the session id/winner the assignment was built for. It is the inverse
// half of the pipeline BuildAssignment and prover.Prove produce a proof
// from: this is what a client posts to the relay/settle endpoint.
func BuildPayload(proof groth16.Proof, assignment *duelproof.DuelCircuit, sessionID uint32, winner uint32) (*types.ProofPayload, error) {
	piA, piB, piC, err := EncodeProof(proof)
	if err != nil {
		return nil, err
	}

	toBigInt := func(v interface{}) *types.BigInt {
		bi, _ := v.(*big.Int)
		return new(types.BigInt).SetBigInt(bi)
	}

	return &types.ProofPayload{
		PiA:       piA,
		PiB:       piB,
		PiC:       piC,
		Seed1:     toBigInt(assignment.Seed1),
		Seed2:     toBigInt(assignment.Seed2),
		Commit1:   toBigInt(assignment.Commit1),
		Commit2:   toBigInt(assignment.Commit2),
		SessionID: sessionID,
		Winner:    winner,
	}, nil
}
