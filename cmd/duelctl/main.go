// Command duelctl is the build and demo surface for the duel protocol's
// core: compiling the circuit, running its Groth16 setup, proving a
// session's outcome, verifying a proof, and running an in-process demo of
// the full commit-reveal-settle lifecycle, collapsed into one binary since
// this protocol has a single circuit rather than a multi-circuit pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/briwylde08/dead-mans-draw/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "compile":
		err = runCompile(args)
	case "setup":
		err = runSetup(args)
	case "fetch":
		err = runFetch(args)
	case "prove":
		err = runProve(args)
	case "verify":
		err = runVerify(args)
	case "demo":
		err = runDemo(args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "duelctl: unknown subcommand %q\n\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("duelctl %s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `duelctl: build and exercise the Dead Man's Draw proof circuit

Usage:
  duelctl compile [flags]   compile the R1CS constraint system
  duelctl setup   [flags]   run the Groth16 trusted setup
  duelctl fetch   [flags]   download hash-pinned circuit artifacts instead of running setup
  duelctl prove   [flags]   build a witness and produce a proof
  duelctl verify  [flags]   verify a proof payload against a verifying key
  duelctl demo    [flags]   run the full commit/join/reveal/settle lifecycle in-process

Run "duelctl <subcommand> --help" for subcommand-specific flags.`)
}
