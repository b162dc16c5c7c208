// Package db defines the key-value storage abstraction the session state
// machine is built on: a small Database/WriteTx interface with optimistic
// write-conflict detection, backed by either an ephemeral in-memory store
// (db/inmemory) or a durable one (db/pebbledb).
package db

import "errors"

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("db: key not found")

// ErrConflict is returned by WriteTx.Commit when a key read during the
// transaction was modified by another writer before the commit landed.
var ErrConflict = errors.New("db: write conflict")

// Options configures a Database backend. Path is only meaningful for
// on-disk backends (db/pebbledb); in-memory backends ignore it.
type Options struct {
	Path string
}

// Database is a simple key-value store with prefix iteration and
// transactional writes. Implementations must make Get and Iterate safe to
// call concurrently with WriteTx usage from other goroutines.
type Database interface {
	// Get returns the value for key, or ErrKeyNotFound if absent.
	Get(key []byte) ([]byte, error)
	// Iterate calls callback for every key with the given prefix, in
	// ascending key order, stopping early if callback returns false. The
	// prefix is stripped from the key passed to callback.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
	// WriteTx opens a new read-write transaction.
	WriteTx() WriteTx
	// Compact reclaims space from deleted/overwritten keys.
	Compact() error
	// Close releases the backend's resources.
	Close() error
}

// WriteTx is a read-write transaction over a Database. Keys read during the
// transaction are tracked; Commit fails with ErrConflict if any of them
// were modified since the transaction started.
type WriteTx interface {
	Get(key []byte) ([]byte, error)
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
	Set(key, value []byte) error
	Delete(key []byte) error
	// Apply replays another transaction's pending writes into this one.
	Apply(other WriteTx) error
	Commit() error
	Discard()
}

// UnwrapWriteTx exposes a backend-specific WriteTx for implementations
// (such as pebbledb) whose Apply needs access to the other transaction's
// concrete type rather than just the interface.
func UnwrapWriteTx(tx WriteTx) WriteTx {
	return tx
}
