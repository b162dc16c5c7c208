package main

import (
	"encoding/hex"
	"fmt"
	"math/big"

	flag "github.com/spf13/pflag"

	"github.com/briwylde08/dead-mans-draw/chainio"
	"github.com/briwylde08/dead-mans-draw/circuits/duelproof"
	"github.com/briwylde08/dead-mans-draw/config"
	"github.com/briwylde08/dead-mans-draw/db"
	"github.com/briwylde08/dead-mans-draw/db/inmemory"
	"github.com/briwylde08/dead-mans-draw/db/pebbledb"
	"github.com/briwylde08/dead-mans-draw/internal/testutil"
	"github.com/briwylde08/dead-mans-draw/log"
	"github.com/briwylde08/dead-mans-draw/prover"
	"github.com/briwylde08/dead-mans-draw/relay"
	"github.com/briwylde08/dead-mans-draw/state"
	"github.com/briwylde08/dead-mans-draw/types"
	"github.com/briwylde08/dead-mans-draw/verify"
)

// runDemo drives the full commit/join/reveal/settle lifecycle in-process,
// using a real Groth16 setup, publishes a STATE_SNAPSHOT relay event after
// every phase transition, and prints the final outcome. It is the one
// place that exercises the whole stack together: config for runtime
// settings, a real storage backend for the session, the relay's in-memory
// broker for UI-synchrony events, and the proof pipeline for settlement.
func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	sessionID := fs.Uint32("sessionId", 1, "session id to run the demo under")
	persist := fs.Bool("persist", false, "use the pebble-backed store under --datadir instead of an in-memory one")
	fs.String("datadir", "", "directory for the pebble-backed store used with --persist (default $HOME/.duel)")
	fs.String("log.level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output, nil)

	sid := *sessionID
	sidBig := new(big.Int).SetUint64(uint64(sid))

	seed1, seed2, result := testutil.SeedPairForWinner(sidBig, 1, 500)
	log.Infow("demo seeds chosen", "seed1", seed1, "seed2", seed2, "winner", result.Winner, "endReason", result.EndReason)

	commit1 := testutil.Commitment(seed1)
	commit2 := testutil.Commitment(seed2)
	player1 := testutil.DeterministicAddress(1)
	player2 := testutil.DeterministicAddress(2)

	ccs, err := prover.Compile()
	if err != nil {
		return fmt.Errorf("compiling circuit: %w", err)
	}
	log.Infow("circuit compiled", "constraints", ccs.GetNbConstraints())

	pk, vk, err := prover.Setup(ccs)
	if err != nil {
		return fmt.Errorf("running groth16 setup: %w", err)
	}

	var database db.Database
	if *persist {
		database, err = pebbledb.New(db.Options{Path: cfg.Datadir})
		if err != nil {
			return fmt.Errorf("opening pebble database at %s: %w", cfg.Datadir, err)
		}
	} else {
		database, err = inmemory.New(db.Options{})
		if err != nil {
			return fmt.Errorf("opening in-memory database: %w", err)
		}
	}
	defer database.Close()

	machine := state.New(database, verify.New(vk))

	broker := relay.NewInMemoryBroker()
	watcherID, _ := broker.Join(sid)
	defer broker.Leave(sid, watcherID)
	publishSnapshot := func(phase types.Phase) {
		if err := broker.Publish(sid, watcherID, relay.EventStateSnapshot, []byte(phase.String())); err != nil {
			log.Warnw("relay: publishing snapshot failed", "sessionId", sid, "error", err)
		}
	}

	if err := machine.Create(sid, player1, new(types.BigInt).SetBigInt(commit1)); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	publishSnapshot(types.PhaseOpen)
	log.Infow("session created", "sessionId", sid, "player1", player1.String())

	if err := machine.Join(sid, player2, new(types.BigInt).SetBigInt(commit2)); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	publishSnapshot(types.PhaseCommitted)
	log.Infow("session joined", "sessionId", sid, "player2", player2.String())

	if err := machine.Reveal(sid, 1, new(types.BigInt).SetBigInt(seed1)); err != nil {
		return fmt.Errorf("reveal player1: %w", err)
	}
	if err := machine.Reveal(sid, 2, new(types.BigInt).SetBigInt(seed2)); err != nil {
		return fmt.Errorf("reveal player2: %w", err)
	}
	publishSnapshot(types.PhaseRevealed)
	log.Infow("both seeds revealed", "sessionId", sid)

	assignment, err := duelproof.BuildAssignment(seed1, seed2, sidBig, result.Winner)
	if err != nil {
		return fmt.Errorf("building witness: %w", err)
	}

	proof, err := prover.Prove(ccs, pk, assignment)
	if err != nil {
		return fmt.Errorf("proving: %w", err)
	}

	payload, err := chainio.BuildPayload(proof, assignment, sid, uint32(result.Winner))
	if err != nil {
		return fmt.Errorf("building proof payload: %w", err)
	}

	if err := machine.Settle(payload); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	publishSnapshot(types.PhaseSettled)

	snapshot, err := machine.Get(sid)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	pubs := chainio.PublicInputs(payload)
	log.Debugw("settle() calldata public inputs", "seed1", hexWord(pubs[0]), "seed2", hexWord(pubs[1]),
		"commit1", hexWord(pubs[2]), "commit2", hexWord(pubs[3]), "sessionId", hexWord(pubs[4]), "winner", hexWord(pubs[5]))
	log.Infow("session settled", "sessionId", sid, "phase", snapshot.Phase.String(), "winner", snapshot.Winner,
		"relayEvents", len(broker.History(sid)))
	fmt.Printf("duel %d settled: player %d wins (%s)\n", sid, snapshot.Winner, result.EndReason)
	return nil
}

func hexWord(w [32]byte) string {
	return hex.EncodeToString(w[:])
}
