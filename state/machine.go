// Package state implements the per-session on-chain lifecycle: a session
// moves monotonically Open -> Committed -> Revealed -> Settled, with every
// transition validated against the stored commitments and, at settlement,
// against a Groth16 proof. This is the in-process analogue of the contract
// storage schema the real deployment keeps on-chain (spec.md places the
// actual contract storage layer out of scope; this package is its
// reference implementation and the one the CLI/demo binary drives).
package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/briwylde08/dead-mans-draw/crypto/hash/poseidon"
	"github.com/briwylde08/dead-mans-draw/db"
	"github.com/briwylde08/dead-mans-draw/log"
	"github.com/briwylde08/dead-mans-draw/types"
)

var sessionKeyPrefix = []byte("session/")

// Verifier checks a settlement proof against its six public inputs. The
// circuits/duelproof package's witness generator together with the verify
// package's wrapper around groth16.Verify is the production implementation;
// tests can substitute a stub.
type Verifier interface {
	Verify(payload *types.ProofPayload) error
}

// Machine is the session lifecycle state machine, backed by a db.Database.
// All operations are keyed by session id and are safe for concurrent use:
// each db.WriteTx is committed with optimistic conflict detection, so two
// concurrent settle attempts on the same session race safely (see Settle).
type Machine struct {
	db       db.Database
	verifier Verifier
}

// New returns a Machine over the given database. verifier may be nil only
// if the caller never invokes Settle (e.g. read-only snapshotting or tests
// that only exercise Create/Join/Reveal).
func New(database db.Database, verifier Verifier) *Machine {
	return &Machine{db: database, verifier: verifier}
}

func sessionKey(sessionID uint32) []byte {
	key := make([]byte, len(sessionKeyPrefix)+4)
	copy(key, sessionKeyPrefix)
	binary.BigEndian.PutUint32(key[len(sessionKeyPrefix):], sessionID)
	return key
}

func decodeSession(raw []byte) (*types.Session, error) {
	var s types.Session
	if err := cbor.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("state: decoding session: %w", err)
	}
	return &s, nil
}

func encodeSession(s *types.Session) ([]byte, error) {
	raw, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("state: encoding session %d: %w", s.SessionID, err)
	}
	return raw, nil
}

func (m *Machine) getTx(tx db.WriteTx, sessionID uint32) (*types.Session, error) {
	raw, err := tx.Get(sessionKey(sessionID))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(raw)
}

// Get returns a snapshot of the session's current state.
func (m *Machine) Get(sessionID uint32) (*types.Session, error) {
	raw, err := m.db.Get(sessionKey(sessionID))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(raw)
}

// Create opens a new session: player1 publishes their seed commitment.
// Fails with ErrSessionExists if sessionID is already in use.
func (m *Machine) Create(sessionID uint32, player1 types.HexBytes, commit1 *types.BigInt) error {
	tx := m.db.WriteTx()
	defer tx.Discard()

	if _, err := tx.Get(sessionKey(sessionID)); err == nil {
		return ErrSessionExists
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return err
	}

	s := &types.Session{
		SessionID:      sessionID,
		Player1Address: player1,
		Commit1:        commit1,
		Seed1:          types.NewInt(0),
		Seed2:          types.NewInt(0),
		Phase:          types.PhaseOpen,
	}
	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := tx.Set(sessionKey(sessionID), raw); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debugw("session created", "sessionId", sessionID)
	return nil
}

// Join publishes player2's seed commitment, advancing Open -> Committed.
// Fails with ErrNotOpen if the session isn't Open, or ErrSelfJoin if
// player2 equals player1.
func (m *Machine) Join(sessionID uint32, player2 types.HexBytes, commit2 *types.BigInt) error {
	tx := m.db.WriteTx()
	defer tx.Discard()

	s, err := m.getTx(tx, sessionID)
	if err != nil {
		return err
	}
	if s.Phase != types.PhaseOpen {
		return ErrNotOpen
	}
	if s.Player1Address.Equal(player2) {
		return ErrSelfJoin
	}

	s.Player2Address = player2
	s.Commit2 = commit2
	s.Phase = types.PhaseCommitted

	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := tx.Set(sessionKey(sessionID), raw); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debugw("session joined", "sessionId", sessionID)
	return nil
}

// Reveal publishes one player's seed, opening their commitment. who must be
// 1 or 2. Once both seeds are present the session advances Committed ->
// Revealed. Fails with ErrNotCommitted if the session isn't Committed,
// ErrAlreadyRevealed if that player already revealed, or ErrBadOpening if
// Poseidon1(seed) does not match the stored commitment.
func (m *Machine) Reveal(sessionID uint32, who int, seed *types.BigInt) error {
	if who != 1 && who != 2 {
		return fmt.Errorf("state: reveal: who must be 1 or 2, got %d", who)
	}

	tx := m.db.WriteTx()
	defer tx.Discard()

	s, err := m.getTx(tx, sessionID)
	if err != nil {
		return err
	}
	if s.Phase != types.PhaseCommitted {
		return ErrNotCommitted
	}

	commit := s.Commit1
	if who == 2 {
		commit = s.Commit2
	}
	if who == 1 && types.SeedRevealed(s.Seed1) {
		return ErrAlreadyRevealed
	}
	if who == 2 && types.SeedRevealed(s.Seed2) {
		return ErrAlreadyRevealed
	}

	opened, err := poseidon.Hash1(seed.MathBigInt())
	if err != nil {
		return fmt.Errorf("state: reveal: hashing seed: %w", err)
	}
	if new(types.BigInt).SetBigInt(opened).MathBigInt().Cmp(commit.MathBigInt()) != 0 {
		return ErrBadOpening
	}

	if who == 1 {
		s.Seed1 = seed
	} else {
		s.Seed2 = seed
	}
	if s.BothRevealed() {
		s.Phase = types.PhaseRevealed
	}

	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := tx.Set(sessionKey(sessionID), raw); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debugw("seed revealed", "sessionId", sessionID, "player", who, "phase", s.Phase.String())
	return nil
}

// Settle records the proof-asserted winner, advancing Revealed -> Settled.
// payload's commit1/commit2/seed1/seed2/sessionId must match the stored
// session exactly (ErrInputMismatch otherwise), winner must be 1 or 2, and
// the proof must verify (ErrInvalidProof otherwise). Two concurrent settle
// attempts race safely: the optimistic write-conflict check in the
// database means only one WriteTx commits, and a retry on the loser
// observes the already-updated phase and returns ErrAlreadySettled.
func (m *Machine) Settle(payload *types.ProofPayload) error {
	if payload.Winner != 1 && payload.Winner != 2 {
		return fmt.Errorf("state: settle: winner must be 1 or 2, got %d", payload.Winner)
	}

	tx := m.db.WriteTx()
	defer tx.Discard()

	s, err := m.getTx(tx, payload.SessionID)
	if err != nil {
		return err
	}
	switch s.Phase {
	case types.PhaseSettled:
		return ErrAlreadySettled
	case types.PhaseRevealed:
		// proceed
	default:
		return ErrNotRevealed
	}

	if !payload.Commit1.Equal(s.Commit1) || !payload.Commit2.Equal(s.Commit2) ||
		!payload.Seed1.Equal(s.Seed1) || !payload.Seed2.Equal(s.Seed2) ||
		payload.SessionID != s.SessionID {
		return ErrInputMismatch
	}

	if m.verifier == nil {
		return fmt.Errorf("state: settle: no verifier configured")
	}
	if err := m.verifier.Verify(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	s.Winner = payload.Winner
	s.Phase = types.PhaseSettled

	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := tx.Set(sessionKey(payload.SessionID), raw); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if errors.Is(err, db.ErrConflict) {
			// Another settle landed first; surface the authoritative state.
			if current, gerr := m.Get(payload.SessionID); gerr == nil && current.Phase == types.PhaseSettled {
				return ErrAlreadySettled
			}
		}
		return err
	}
	log.Infow("session settled", "sessionId", payload.SessionID, "winner", payload.Winner)
	return nil
}
