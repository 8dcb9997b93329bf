// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Channel is one row of the workspace channel mirror. NumMembers is
// nil when the platform did not report a member count.
type Channel struct {
	ID         string
	Name       string
	Created    int64
	NumMembers *int64
}

// insertBatchSize is how many channels one multi-row INSERT carries
// during a full replace.
const insertBatchSize = 100

// ReplaceChannels atomically replaces the entire mirror with the
// given sequence, preserving its order-independent content. All
// existing rows are deleted and the new rows inserted in batches of
// 100, inside one IMMEDIATE transaction: a failure anywhere rolls
// the whole replacement back and the previous mirror stays intact.
func (s *Store) ReplaceChannels(ctx context.Context, channels []Channel) (err error) {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: begin replace transaction: %w", err)
	}
	defer endTransaction(&err)

	if err := sqlitex.ExecuteTransient(conn, "DELETE FROM channels", nil); err != nil {
		return fmt.Errorf("store: clearing channel mirror: %w", err)
	}

	for start := 0; start < len(channels); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(channels) {
			end = len(channels)
		}
		if err := insertChannelBatch(conn, channels[start:end]); err != nil {
			return fmt.Errorf("store: inserting channel batch at %d: %w", start, err)
		}
	}

	return nil
}

// insertChannelBatch inserts up to insertBatchSize rows with a
// single multi-row INSERT.
func insertChannelBatch(conn *sqlite.Conn, batch []Channel) error {
	if len(batch) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString("INSERT INTO channels (id, name, created, num_members) VALUES ")
	args := make([]any, 0, len(batch)*4)
	for i, channel := range batch {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(?, ?, ?, ?)")
		args = append(args, channel.ID, channel.Name, channel.Created, numMembersArg(channel.NumMembers))
	}

	return sqlitex.ExecuteTransient(conn, query.String(), &sqlitex.ExecOptions{Args: args})
}

// UpsertChannel inserts or replaces a single mirror row. Used by the
// dispatcher when a channel_created event arrives between resyncs.
func (s *Store) UpsertChannel(ctx context.Context, channel Channel) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"INSERT OR REPLACE INTO channels (id, name, created, num_members) VALUES (?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{channel.ID, channel.Name, channel.Created, numMembersArg(channel.NumMembers)},
		})
	if err != nil {
		return fmt.Errorf("store: upserting channel %s: %w", channel.ID, err)
	}
	return nil
}

// Channels returns the full mirror ordered by name, for stable
// home-tab rendering.
func (s *Store) Channels(ctx context.Context) ([]Channel, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var channels []Channel
	err = sqlitex.Execute(conn,
		"SELECT id, name, created, num_members FROM channels ORDER BY name",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				channel := Channel{
					ID:      stmt.ColumnText(0),
					Name:    stmt.ColumnText(1),
					Created: stmt.ColumnInt64(2),
				}
				if !stmt.ColumnIsNull(3) {
					members := stmt.ColumnInt64(3)
					channel.NumMembers = &members
				}
				channels = append(channels, channel)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("store: listing channels: %w", err)
	}
	return channels, nil
}

// CountChannels returns the mirror size.
func (s *Store) CountChannels(ctx context.Context) (int, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	var count int
	err = sqlitex.Execute(conn, "SELECT COUNT(*) FROM channels", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("store: counting channels: %w", err)
	}
	return count, nil
}

// numMembersArg converts the optional member count to a SQL
// argument, mapping nil to NULL.
func numMembersArg(numMembers *int64) any {
	if numMembers == nil {
		return nil
	}
	return *numMembers
}
