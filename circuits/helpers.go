package circuits

import (
	"log"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
)

// StoreConstraintSystem stores the constraint system in a file.
func StoreConstraintSystem(cs constraint.ConstraintSystem, filepath string) error {
	// persist the constraint system
	csFd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if err := csFd.Close(); err != nil {
			log.Printf("error closing constraint system file: %v", err)
		}
	}()
	if _, err := cs.WriteTo(csFd); err != nil {
		return err
	}
	log.Printf("constraint system written to %s", filepath)
	return nil
}

// StoreProvingKey stores the proving key in a file.
func StoreProvingKey(pk groth16.ProvingKey, filepath string) error {
	fd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if err := fd.Close(); err != nil {
			log.Printf("error closing proving key file: %v", err)
		}
	}()
	if _, err := pk.WriteTo(fd); err != nil {
		return err
	}
	log.Printf("proving key written to %s", filepath)
	return nil
}

// StoreVerificationKey stores the verification key in a file.
func StoreVerificationKey(vkey groth16.VerifyingKey, filepath string) error {
	fd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if err := fd.Close(); err != nil {
			log.Printf("error closing verification key file: %v", err)
		}
	}()
	if _, err := vkey.WriteRawTo(fd); err != nil {
		return err
	}
	log.Printf("verification key written to %s", filepath)
	return nil
}

// StoreProof stores the proof in a file.
func StoreProof(proof groth16.Proof, filepath string) error {
	// persist the proof
	proofFd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if err := proofFd.Close(); err != nil {
			log.Printf("error closing proof file: %v", err)
		}
	}()
	if _, err := proof.WriteTo(proofFd); err != nil {
		return err
	}
	log.Printf("proof written to %s", filepath)
	return nil
}

// StoreWitness stores the witness in a file.
func StoreWitness(witness witness.Witness, filepath string) error {
	// persist the witness
	witnessFd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if err := witnessFd.Close(); err != nil {
			log.Printf("error closing witness file: %v", err)
		}
	}()
	bWitness, err := witness.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := witnessFd.Write(bWitness); err != nil {
		return err
	}
	return nil
}

// LoadConstraintSystem reads a constraint system previously written by
// StoreConstraintSystem for the given curve.
func LoadConstraintSystem(curve ecc.ID, filepath string) (constraint.ConstraintSystem, error) {
	fd, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fd.Close(); err != nil {
			log.Printf("error closing constraint system file: %v", err)
		}
	}()
	ccs := groth16.NewCS(curve)
	if _, err := ccs.ReadFrom(fd); err != nil {
		return nil, err
	}
	return ccs, nil
}

// LoadProvingKey reads a proving key previously written by StoreProvingKey.
// It uses UnsafeReadFrom, skipping the subgroup checks groth16.Setup's own
// output never needs re-verified for.
func LoadProvingKey(curve ecc.ID, filepath string) (groth16.ProvingKey, error) {
	fd, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fd.Close(); err != nil {
			log.Printf("error closing proving key file: %v", err)
		}
	}()
	pk := groth16.NewProvingKey(curve)
	if _, err := pk.UnsafeReadFrom(fd); err != nil {
		return nil, err
	}
	return pk, nil
}

// LoadVerifyingKey reads a verifying key previously written by
// StoreVerificationKey.
func LoadVerifyingKey(curve ecc.ID, filepath string) (groth16.VerifyingKey, error) {
	fd, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fd.Close(); err != nil {
			log.Printf("error closing verification key file: %v", err)
		}
	}()
	vk := groth16.NewVerifyingKey(curve)
	if _, err := vk.UnsafeReadFrom(fd); err != nil {
		return nil, err
	}
	return vk, nil
}

// LoadProof reads a proof previously written by StoreProof.
func LoadProof(curve ecc.ID, filepath string) (groth16.Proof, error) {
	fd, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fd.Close(); err != nil {
			log.Printf("error closing proof file: %v", err)
		}
	}()
	proof := groth16.NewProof(curve)
	if _, err := proof.ReadFrom(fd); err != nil {
		return nil, err
	}
	return proof, nil
}
