package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/briwylde08/dead-mans-draw/circuits"
	"github.com/briwylde08/dead-mans-draw/log"
	"github.com/briwylde08/dead-mans-draw/prover"
)

func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	ccsPath := fs.String("ccs", "duel.ccs", "path to a compiled constraint system (from duelctl compile)")
	pkOut := fs.String("pk", "duel.pk", "output path for the proving key")
	vkOut := fs.String("vk", "duel.vk", "output path for the verifying key")
	logLevel := fs.String("log.level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	log.Init(*logLevel, "stdout", nil)

	ccs, err := circuits.LoadConstraintSystem(prover.Curve, *ccsPath)
	if err != nil {
		return fmt.Errorf("loading constraint system: %w", err)
	}

	pk, vk, err := prover.Setup(ccs)
	if err != nil {
		return fmt.Errorf("running groth16 setup: %w", err)
	}

	if err := circuits.StoreProvingKey(pk, *pkOut); err != nil {
		return fmt.Errorf("storing proving key: %w", err)
	}
	if err := circuits.StoreVerificationKey(vk, *vkOut); err != nil {
		return fmt.Errorf("storing verifying key: %w", err)
	}
	log.Infow("groth16 setup complete", "provingKey", *pkOut, "verifyingKey", *vkOut)
	return nil
}
