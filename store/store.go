// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists LoopMeIn's two entities in SQLite: the
// mirror of the workspace's public channels and the per-user listener
// rules.
//
// The channel mirror is bulk-replaced by the resync engine every
// interval and upserted one row at a time when a channel_created
// event arrives. Replacement is a single IMMEDIATE transaction —
// readers either see the previous mirror or the complete new one,
// never a partially inserted batch. Listener rules are plain CRUD.
//
// Connections come from a fixed-size sqlitex pool with WAL mode, so
// the resync writer and concurrent dispatch reads never block each
// other. For tests, open with Path ":memory:" and PoolSize 1 (each
// in-memory connection is an independent database).
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// schema creates both tables. Runs once per pooled connection; every
// statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS channels (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created     INTEGER NOT NULL,
	num_members INTEGER
);
CREATE INDEX IF NOT EXISTS idx_channels_name ON channels(name);

CREATE TABLE IF NOT EXISTS listeners (
	id         TEXT PRIMARY KEY,
	slack_user TEXT NOT NULL,
	pattern    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listeners_user ON listeners(slack_user);
`

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the SQLite database file, created if absent. Use
	// ":memory:" with PoolSize 1 in tests.
	Path string

	// PoolSize is the number of pooled connections. Defaults to 4:
	// SQLite serializes writes regardless, and four readers cover
	// the dispatcher's concurrency.
	PoolSize int

	// Logger receives operational messages. If nil, logging is
	// discarded.
	Logger *slog.Logger
}

// Store is the SQLite-backed mirror store. Safe for concurrent use;
// each operation borrows its own pooled connection.
type Store struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open opens (and if needed creates) the database, applying pragmas
// and schema to every pooled connection on first use. The caller
// must Close the store when done.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", cfg.Path, err)
	}

	logger.Info("mirror store opened", "path", cfg.Path, "pool_size", poolSize)

	return &Store{
		pool:   pool,
		logger: logger,
		path:   cfg.Path,
	}, nil
}

// Close closes all pooled connections. Blocks until borrowed
// connections are returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("store: closing %s: %w", s.path, err)
	}
	s.logger.Info("mirror store closed", "path", s.path)
	return nil
}

// take borrows a pooled connection. Callers must put it back,
// typically via defer s.pool.Put(conn).
func (s *Store) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: take connection: %w", err)
	}
	return conn, nil
}

// prepareConnection applies pragmas and the schema. WAL keeps
// readers unblocked during the resync's replace transaction.
func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("store: creating schema: %w", err)
	}
	return nil
}
