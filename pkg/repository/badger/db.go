// Package badger is a reference/example embedded-KV implementation of the
// repository contracts (pkg/repository), standing in for "the encrypted
// at-rest store" that spec.md §1 keeps external to this module. It exists
// so the repository contract can be exercised against real persistence in
// integration tests, not only against pkg/repository/memory's in-memory
// fake; it is not the production store this module ships.
package badger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Config controls how a DB is opened, mirroring the teacher pack's
// DefaultConfig/InMemoryConfig split between a durable on-disk mode and a
// throwaway in-memory mode used by tests.
type Config struct {
	InMemory          bool
	Path              string
	SyncWrites        bool
	NumVersionsToKeep int
	GCInterval        time.Duration
}

// DefaultConfig is the durable, on-disk configuration: synchronous writes,
// a single version retained per key, and a GCInterval of five minutes. Open
// does not read GCInterval and runs no value-log GC.
func DefaultConfig() Config {
	return Config{
		SyncWrites:        true,
		NumVersionsToKeep: 1,
		GCInterval:        5 * time.Minute,
	}
}

// InMemoryConfig is the throwaway configuration used by tests: no sync, no
// GC (there is nothing on disk to reclaim).
func InMemoryConfig() Config {
	return Config{
		InMemory:   true,
		SyncWrites: false,
		GCInterval: 0,
	}
}

// DB wraps a badger.DB with context-aware transaction helpers.
type DB struct {
	bdb *badger.DB
}

// Open opens a DB per cfg. A non-in-memory Config requires a non-empty Path.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger: path is required for a persistent store")
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts = opts.WithInMemory(cfg.InMemory)
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithLogger(nil)
	if cfg.NumVersionsToKeep > 0 {
		opts = opts.WithNumVersionsToKeep(cfg.NumVersionsToKeep)
	}

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	return &DB{bdb: bdb}, nil
}

// OpenInMemory opens a throwaway in-memory DB, used by this package's own
// tests for real badger transaction semantics without touching disk.
func OpenInMemory() (*DB, error) {
	return Open(InMemoryConfig())
}

// OpenWithPath opens a durable on-disk DB rooted at dir.
func OpenWithPath(dir string) (*DB, error) {
	cfg := DefaultConfig()
	cfg.Path = dir
	return Open(cfg)
}

// TempDir creates a temporary directory for a persistent test DB.
func TempDir(prefix string) (string, error) {
	return os.MkdirTemp("", prefix)
}

// CleanupDir removes a directory created by TempDir, ignoring errors (best
// effort test cleanup).
func CleanupDir(dir string) {
	_ = os.RemoveAll(dir)
}

// Close closes the underlying badger DB.
func (d *DB) Close() error {
	return d.bdb.Close()
}

// WithTxn runs fn inside a read-write badger transaction, committing on a
// nil return and rolling back otherwise. ctx cancellation is checked before
// the transaction starts.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("badger: context cancelled: %w", err)
	}
	return d.bdb.Update(fn)
}

// WithReadTxn runs fn inside a read-only badger transaction.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("badger: context cancelled: %w", err)
	}
	return d.bdb.View(fn)
}
