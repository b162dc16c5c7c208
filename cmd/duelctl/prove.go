package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/briwylde08/dead-mans-draw/chainio"
	"github.com/briwylde08/dead-mans-draw/circuits"
	"github.com/briwylde08/dead-mans-draw/circuits/duelproof"
	"github.com/briwylde08/dead-mans-draw/game"
	"github.com/briwylde08/dead-mans-draw/log"
	"github.com/briwylde08/dead-mans-draw/prover"
)

func runProve(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	ccsPath := fs.String("ccs", "duel.ccs", "path to a compiled constraint system")
	pkPath := fs.String("pk", "duel.pk", "path to the proving key")
	seed1 := fs.String("seed1", "", "player 1's revealed seed, decimal (required)")
	seed2 := fs.String("seed2", "", "player 2's revealed seed, decimal (required)")
	sessionID := fs.Uint32("sessionId", 0, "session id")
	out := fs.String("out", "proof.json", "output path for the proof payload JSON")
	logLevel := fs.String("log.level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	log.Init(*logLevel, "stdout", nil)

	s1, ok := new(big.Int).SetString(*seed1, 10)
	if !ok {
		return fmt.Errorf("invalid --seed1 %q", *seed1)
	}
	s2, ok := new(big.Int).SetString(*seed2, 10)
	if !ok {
		return fmt.Errorf("invalid --seed2 %q", *seed2)
	}
	sid := new(big.Int).SetUint64(uint64(*sessionID))

	result, err := game.Simulate(s1, s2, sid)
	if err != nil {
		return fmt.Errorf("simulating game: %w", err)
	}
	log.Infow("game simulated", "winner", result.Winner, "endReason", result.EndReason)

	assignment, err := duelproof.BuildAssignment(s1, s2, sid, result.Winner)
	if err != nil {
		return fmt.Errorf("building witness: %w", err)
	}

	ccs, err := circuits.LoadConstraintSystem(prover.Curve, *ccsPath)
	if err != nil {
		return fmt.Errorf("loading constraint system: %w", err)
	}
	pk, err := circuits.LoadProvingKey(prover.Curve, *pkPath)
	if err != nil {
		return fmt.Errorf("loading proving key: %w", err)
	}

	proof, err := prover.Prove(ccs, pk, assignment)
	if err != nil {
		return fmt.Errorf("proving: %w", err)
	}

	payload, err := chainio.BuildPayload(proof, assignment, *sessionID, uint32(result.Winner))
	if err != nil {
		return fmt.Errorf("building proof payload: %w", err)
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling proof payload: %w", err)
	}
	if err := os.WriteFile(*out, raw, 0o644); err != nil {
		return fmt.Errorf("writing proof payload: %w", err)
	}
	log.Infow("proof generated", "out", *out, "winner", result.Winner)
	return nil
}
