// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// testStore opens a store on a temp-file database, closed with the
// test. A file (not :memory:) so multiple pooled connections see the
// same data.
func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return s
}

func int64Ptr(v int64) *int64 { return &v }

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestUpsertAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.UpsertChannel(ctx, Channel{ID: "C2", Name: "beta", Created: 200}); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}
	if err := s.UpsertChannel(ctx, Channel{ID: "C1", Name: "alpha", Created: 100, NumMembers: int64Ptr(7)}); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}

	channels, err := s.Channels(ctx)
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(channels))
	}
	// Ordered by name.
	if channels[0].Name != "alpha" || channels[1].Name != "beta" {
		t.Errorf("order = %s, %s; want alpha, beta", channels[0].Name, channels[1].Name)
	}
	if channels[0].NumMembers == nil || *channels[0].NumMembers != 7 {
		t.Errorf("alpha NumMembers = %v, want 7", channels[0].NumMembers)
	}
	if channels[1].NumMembers != nil {
		t.Errorf("beta NumMembers = %v, want nil", channels[1].NumMembers)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.UpsertChannel(ctx, Channel{ID: "C1", Name: "old-name", Created: 100}); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}
	if err := s.UpsertChannel(ctx, Channel{ID: "C1", Name: "new-name", Created: 100}); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}

	channels, err := s.Channels(ctx)
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(channels) != 1 || channels[0].Name != "new-name" {
		t.Errorf("channels = %+v, want single new-name row", channels)
	}
}

func TestReplaceChannels(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.UpsertChannel(ctx, Channel{ID: "stale", Name: "stale", Created: 1}); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}

	// 250 channels exercises multiple insert batches.
	fresh := make([]Channel, 250)
	for i := range fresh {
		fresh[i] = Channel{
			ID:      fmt.Sprintf("C%03d", i),
			Name:    fmt.Sprintf("channel-%03d", i),
			Created: int64(1700000000 + i),
		}
	}
	if err := s.ReplaceChannels(ctx, fresh); err != nil {
		t.Fatalf("ReplaceChannels: %v", err)
	}

	count, err := s.CountChannels(ctx)
	if err != nil {
		t.Fatalf("CountChannels: %v", err)
	}
	if count != 250 {
		t.Errorf("count = %d, want 250", count)
	}

	channels, err := s.Channels(ctx)
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	for _, channel := range channels {
		if channel.ID == "stale" {
			t.Error("stale row survived the replace")
		}
	}
}

func TestReplaceChannelsEmpty(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.UpsertChannel(ctx, Channel{ID: "C1", Name: "one", Created: 1}); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}
	if err := s.ReplaceChannels(ctx, nil); err != nil {
		t.Fatalf("ReplaceChannels(nil): %v", err)
	}

	count, err := s.CountChannels(ctx)
	if err != nil {
		t.Fatalf("CountChannels: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after empty replace", count)
	}
}

func TestReplaceChannelsRollsBack(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.UpsertChannel(ctx, Channel{ID: "keep", Name: "keep", Created: 1}); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}

	// A duplicate primary key in the second batch fails the
	// transaction; the prior mirror must be untouched.
	bad := make([]Channel, 150)
	for i := range bad {
		bad[i] = Channel{ID: fmt.Sprintf("C%03d", i), Name: "x", Created: 1}
	}
	bad[149] = bad[0]

	if err := s.ReplaceChannels(ctx, bad); err == nil {
		t.Fatal("expected error from duplicate-ID replace")
	}

	channels, err := s.Channels(ctx)
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != "keep" {
		t.Errorf("mirror after failed replace = %+v, want the original row", channels)
	}
}

func TestListeners(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rules := []Listener{
		{ID: "a", SlackUser: "U1", Pattern: "^hotfix-.*"},
		{ID: "b", SlackUser: "U1", Pattern: "release"},
		{ID: "c", SlackUser: "U2", Pattern: "incident"},
	}
	for _, rule := range rules {
		if err := s.CreateListener(ctx, rule); err != nil {
			t.Fatalf("CreateListener(%s): %v", rule.ID, err)
		}
	}

	mine, err := s.ListenersForUser(ctx, "U1")
	if err != nil {
		t.Fatalf("ListenersForUser: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("U1 has %d rules, want 2", len(mine))
	}

	all, err := s.Listeners(ctx)
	if err != nil {
		t.Fatalf("Listeners: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("total rules = %d, want 3", len(all))
	}
}

func TestDeleteListener(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateListener(ctx, Listener{ID: "a", SlackUser: "U1", Pattern: "x"}); err != nil {
		t.Fatalf("CreateListener: %v", err)
	}
	if err := s.DeleteListener(ctx, "a"); err != nil {
		t.Fatalf("DeleteListener: %v", err)
	}
	// Idempotent.
	if err := s.DeleteListener(ctx, "a"); err != nil {
		t.Fatalf("second DeleteListener: %v", err)
	}

	remaining, err := s.ListenersForUser(ctx, "U1")
	if err != nil {
		t.Fatalf("ListenersForUser: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("remaining = %+v, want none", remaining)
	}
}
