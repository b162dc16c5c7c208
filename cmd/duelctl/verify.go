package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/briwylde08/dead-mans-draw/circuits"
	"github.com/briwylde08/dead-mans-draw/log"
	"github.com/briwylde08/dead-mans-draw/prover"
	"github.com/briwylde08/dead-mans-draw/types"
	"github.com/briwylde08/dead-mans-draw/verify"
)

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	vkPath := fs.String("vk", "duel.vk", "path to the verifying key")
	proofPath := fs.String("proof", "proof.json", "path to a proof payload JSON (from duelctl prove)")
	logLevel := fs.String("log.level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	log.Init(*logLevel, "stdout", nil)

	raw, err := os.ReadFile(*proofPath)
	if err != nil {
		return fmt.Errorf("reading proof payload: %w", err)
	}
	var payload types.ProofPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("unmarshaling proof payload: %w", err)
	}

	vk, err := circuits.LoadVerifyingKey(prover.Curve, *vkPath)
	if err != nil {
		return fmt.Errorf("loading verifying key: %w", err)
	}

	v := verify.New(vk)
	if err := v.Verify(&payload); err != nil {
		log.Infow("proof rejected", "sessionId", payload.SessionID, "error", err)
		return fmt.Errorf("proof does not verify: %w", err)
	}
	log.Infow("proof verified", "sessionId", payload.SessionID, "winner", payload.Winner)
	return nil
}
