// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Listener is one user's standing subscription: a case-insensitive
// regular expression evaluated against every new channel name.
type Listener struct {
	// ID is a locally generated UUID.
	ID string
	// SlackUser is the owning user's Slack ID.
	SlackUser string
	// Pattern is the regular expression. Validated before it ever
	// reaches the store — see watch.Dispatcher.
	Pattern string
}

// CreateListener persists a new rule.
func (s *Store) CreateListener(ctx context.Context, listener Listener) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"INSERT INTO listeners (id, slack_user, pattern) VALUES (?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{listener.ID, listener.SlackUser, listener.Pattern}})
	if err != nil {
		return fmt.Errorf("store: creating listener for %s: %w", listener.SlackUser, err)
	}
	return nil
}

// DeleteListener removes a rule by ID. Deleting an absent ID is a
// no-op, which makes the Remove button idempotent under replayed
// interactions.
func (s *Store) DeleteListener(ctx context.Context, id string) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM listeners WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("store: deleting listener %s: %w", id, err)
	}
	return nil
}

// ListenersForUser returns one user's rules, ordered by pattern for
// stable home-tab rendering.
func (s *Store) ListenersForUser(ctx context.Context, userID string) ([]Listener, error) {
	listeners, err := s.queryListeners(ctx,
		"SELECT id, slack_user, pattern FROM listeners WHERE slack_user = ? ORDER BY pattern",
		userID)
	if err != nil {
		return nil, fmt.Errorf("store: listing listeners for %s: %w", userID, err)
	}
	return listeners, nil
}

// Listeners returns every rule across all users.
func (s *Store) Listeners(ctx context.Context) ([]Listener, error) {
	listeners, err := s.queryListeners(ctx,
		"SELECT id, slack_user, pattern FROM listeners ORDER BY slack_user, pattern")
	if err != nil {
		return nil, fmt.Errorf("store: listing listeners: %w", err)
	}
	return listeners, nil
}

func (s *Store) queryListeners(ctx context.Context, query string, args ...any) ([]Listener, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var listeners []Listener
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			listeners = append(listeners, Listener{
				ID:        stmt.ColumnText(0),
				SlackUser: stmt.ColumnText(1),
				Pattern:   stmt.ColumnText(2),
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return listeners, nil
}
