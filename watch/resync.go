// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/loopmein/loopmein/lib/clock"
	"github.com/loopmein/loopmein/slack"
	"github.com/loopmein/loopmein/store"
)

// ErrNoChannels marks a roster page that was ok but carried no
// channels field. It is distinct from an empty workspace, which
// arrives as an ok page with an empty channels array.
var ErrNoChannels = errors.New("watch: channel listing carried no channels field")

// ChannelLister is the one Web API call the resyncer makes.
type ChannelLister interface {
	ListChannelsPage(ctx context.Context, cursor string) (*slack.ConversationsListResponse, error)
}

// ResyncerConfig configures a Resyncer. Slack and Store are required.
// A zero Interval disables the periodic loop (ResyncAll still works);
// a nil Clock uses the real one.
type ResyncerConfig struct {
	Slack    ChannelLister
	Store    *store.Store
	Clock    clock.Clock
	Interval time.Duration
	Logger   *slog.Logger
}

// Resyncer periodically rebuilds the channel mirror from the full
// workspace roster. Channel membership counts drift as people join
// and leave, and creation events can be missed while disconnected;
// the resync is the catch-all that heals both.
type Resyncer struct {
	slack    ChannelLister
	store    *store.Store
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

// NewResyncer creates a Resyncer from the given configuration.
func NewResyncer(cfg ResyncerConfig) *Resyncer {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resyncer{
		slack:    cfg.Slack,
		store:    cfg.Store,
		clock:    clk,
		interval: cfg.Interval,
		logger:   logger,
	}
}

// Run resyncs immediately, then on every interval tick until the
// context is canceled. A failed resync is logged and the previous
// mirror stays in place until the next tick.
func (r *Resyncer) Run(ctx context.Context) {
	r.resyncOnce(ctx)
	if r.interval <= 0 {
		return
	}
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.resyncOnce(ctx)
		}
	}
}

func (r *Resyncer) resyncOnce(ctx context.Context) {
	start := r.clock.Now()
	count, err := r.ResyncAll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("channel resync failed", "error", err)
		}
		return
	}
	r.logger.Info("channel mirror resynced",
		"channels", count,
		"elapsed", r.clock.Now().Sub(start))
}

// ResyncAll fetches the complete workspace roster page by page and
// replaces the mirror with it in one transaction. It returns the
// number of channels now mirrored. On any error the mirror is left
// untouched; remote refusals surface as a wrapped *slack.APIError and
// store failures as wrapped store errors.
func (r *Resyncer) ResyncAll(ctx context.Context) (int, error) {
	var channels []store.Channel
	cursor := ""
	for {
		page, err := r.slack.ListChannelsPage(ctx, cursor)
		if err != nil {
			return 0, fmt.Errorf("watch: fetching channel page: %w", err)
		}
		if !page.HasChannels() {
			return 0, ErrNoChannels
		}
		for i := range page.Channels {
			channels = append(channels, mirrorChannel(&page.Channels[i]))
		}
		cursor = page.NextCursor()
		if cursor == "" {
			break
		}
	}
	if err := r.store.ReplaceChannels(ctx, channels); err != nil {
		return 0, fmt.Errorf("watch: replacing channel mirror: %w", err)
	}
	return len(channels), nil
}
