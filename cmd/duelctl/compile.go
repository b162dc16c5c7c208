package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/briwylde08/dead-mans-draw/circuits"
	"github.com/briwylde08/dead-mans-draw/log"
	"github.com/briwylde08/dead-mans-draw/prover"
)

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	out := fs.String("out", "duel.ccs", "output path for the compiled constraint system")
	logLevel := fs.String("log.level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	log.Init(*logLevel, "stdout", nil)

	ccs, err := prover.Compile()
	if err != nil {
		return fmt.Errorf("compiling circuit: %w", err)
	}
	log.Infow("circuit compiled", "constraints", ccs.GetNbConstraints())

	if err := circuits.StoreConstraintSystem(ccs, *out); err != nil {
		return fmt.Errorf("storing constraint system: %w", err)
	}
	return nil
}
