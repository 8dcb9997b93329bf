// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/loopmein/loopmein/slack"
	"github.com/loopmein/loopmein/store"
)

// SlackAPI is the subset of the Web API client the dispatcher calls.
type SlackAPI interface {
	JoinChannel(ctx context.Context, channelID string) error
	InviteUsers(ctx context.Context, channelID string, userIDs []string) error
	PublishHomeView(ctx context.Context, userID string, view slack.ViewPayload) error
	OpenView(ctx context.Context, triggerID string, view slack.ViewPayload) error
}

// DispatcherConfig configures a Dispatcher. Store and Slack are
// required; a nil Logger falls back to slog.Default().
type DispatcherConfig struct {
	Store  *store.Store
	Slack  SlackAPI
	Logger *slog.Logger
}

// Dispatcher decodes stream messages and routes them to handlers. A
// handler failure never escapes HandleMessage: every envelope that
// carries an ID is acknowledged exactly once regardless of what its
// handler did.
type Dispatcher struct {
	store  *store.Store
	slack  SlackAPI
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher from the given configuration.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:  cfg.Store,
		slack:  cfg.Slack,
		logger: logger,
	}
}

// HandleMessage processes one raw stream message and returns the
// acknowledgment to write back, or nil when none is owed (undecodable
// input, or an envelope without an ID such as the hello frame).
func (d *Dispatcher) HandleMessage(ctx context.Context, raw []byte) *slack.Acknowledgement {
	var envelope slack.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		d.logger.Warn("dropping undecodable stream message", "error", err)
		return nil
	}
	validation := d.dispatch(ctx, &envelope)
	if envelope.EnvelopeID == "" {
		return nil
	}
	if len(validation) > 0 {
		return slack.AckErrors(envelope.EnvelopeID, validation)
	}
	return slack.Ack(envelope.EnvelopeID)
}

// dispatch routes one decoded envelope. Handler errors and panics are
// logged here and never propagate; the only value flowing back to the
// acknowledgment is the view_submission validation-error map.
func (d *Dispatcher) dispatch(ctx context.Context, envelope *slack.Envelope) (validation map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic",
				"envelope_id", envelope.EnvelopeID,
				"panic", r)
		}
	}()
	if envelope.Payload == nil {
		return nil
	}
	payload := envelope.Payload

	switch envelope.Type {
	case slack.EnvelopeEventsAPI:
		if payload.Type != slack.PayloadEventCallback || payload.Event == nil {
			return nil
		}
		d.dispatchEvent(ctx, payload.Event)
	case slack.EnvelopeInteractive:
		switch payload.Type {
		case slack.PayloadBlockActions:
			d.handleBlockActions(ctx, payload)
		case slack.PayloadViewSubmission:
			return d.handleViewSubmission(ctx, payload)
		}
	}
	return nil
}

func (d *Dispatcher) dispatchEvent(ctx context.Context, event *slack.Event) {
	switch event.Type {
	case slack.EventAppHomeOpened:
		if event.User == "" {
			d.logger.Warn("app_home_opened event without user")
			return
		}
		if err := d.refreshHome(ctx, event.User); err != nil {
			d.logger.Error("home tab refresh failed",
				"user", event.User,
				"error", err)
		}
	case slack.EventChannelCreated:
		if event.Channel == nil {
			d.logger.Warn("channel_created event without channel object")
			return
		}
		if err := d.handleChannelCreated(ctx, event.Channel); err != nil {
			d.logger.Error("channel_created handling failed",
				"channel", event.Channel.Name,
				"error", err)
		}
	}
}

// handleChannelCreated records the new channel in the mirror, then
// joins and invites in sequence when any listener matches its name.
// The invite is skipped entirely if the join fails.
func (d *Dispatcher) handleChannelCreated(ctx context.Context, info *slack.ChannelInfo) error {
	if err := d.store.UpsertChannel(ctx, mirrorChannel(info)); err != nil {
		return fmt.Errorf("recording new channel: %w", err)
	}

	listeners, err := d.store.Listeners(ctx)
	if err != nil {
		return fmt.Errorf("fetching listeners: %w", err)
	}
	users := make(map[string]struct{})
	for _, listener := range listeners {
		if matches(d.logger, listener.Pattern, info.Name) {
			users[listener.SlackUser] = struct{}{}
		}
	}
	if len(users) == 0 {
		return nil
	}

	if err := d.slack.JoinChannel(ctx, info.ID); err != nil {
		return fmt.Errorf("joining channel: %w", err)
	}
	invitees := make([]string, 0, len(users))
	for user := range users {
		invitees = append(invitees, user)
	}
	slices.Sort(invitees)
	if err := d.slack.InviteUsers(ctx, info.ID, invitees); err != nil {
		return fmt.Errorf("inviting users: %w", err)
	}
	d.logger.Info("invited listeners to new channel",
		"channel", info.Name,
		"users", len(invitees))
	return nil
}

func (d *Dispatcher) handleBlockActions(ctx context.Context, payload *slack.Payload) {
	for _, action := range payload.Actions {
		switch action.ActionID {
		case slack.ActionNewPattern:
			if payload.TriggerID == "" {
				d.logger.Warn("block action without trigger_id", "action_id", action.ActionID)
				continue
			}
			if err := d.slack.OpenView(ctx, payload.TriggerID, slack.NewPatternModal()); err != nil {
				d.logger.Error("opening new-pattern modal failed", "error", err)
			}
		case slack.ActionRemoveListener:
			if action.Value == "" {
				d.logger.Warn("remove action without listener id")
				continue
			}
			if err := d.store.DeleteListener(ctx, action.Value); err != nil {
				d.logger.Error("removing listener failed",
					"listener", action.Value,
					"error", err)
				continue
			}
			if payload.User != nil {
				if err := d.refreshHome(ctx, payload.User.ID); err != nil {
					d.logger.Error("home tab refresh failed",
						"user", payload.User.ID,
						"error", err)
				}
			}
		default:
			d.logger.Debug("ignoring unhandled action", "action_id", action.ActionID)
		}
	}
}

// handleViewSubmission validates and persists a submitted pattern. A
// pattern that fails to compile produces the returned validation map
// instead of a listener row; the acknowledgment surfaces it inline on
// the input block.
func (d *Dispatcher) handleViewSubmission(ctx context.Context, payload *slack.Payload) map[string]string {
	if payload.View == nil || payload.View.CallbackID != slack.CallbackNewPatternModal {
		return nil
	}
	pattern, ok := payload.View.InputValue(slack.BlockPatternInput, slack.InputPatternAction)
	if !ok {
		d.logger.Warn("view_submission without pattern input")
		return nil
	}
	if _, err := CompilePattern(pattern); err != nil {
		return map[string]string{
			slack.BlockPatternInput: fmt.Sprintf("This regex seems faulty: %v", err),
		}
	}
	if payload.User == nil {
		d.logger.Warn("view_submission without user")
		return nil
	}
	userID := payload.User.ID

	listener := store.Listener{
		ID:        uuid.NewString(),
		SlackUser: userID,
		Pattern:   pattern,
	}
	if err := d.store.CreateListener(ctx, listener); err != nil {
		d.logger.Error("persisting listener failed",
			"user", userID,
			"error", err)
		return nil
	}
	d.logger.Info("listener created",
		"listener", listener.ID,
		"user", userID,
		"pattern", pattern)

	// Refresh after the acknowledgment is on the wire; the envelope
	// context ends with the connection, so detach from it.
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := d.refreshHome(ctx, userID); err != nil {
			d.logger.Error("home tab refresh failed",
				"user", userID,
				"error", err)
		}
	}()
	return nil
}

// refreshHome republishes a user's home tab from current store state.
func (d *Dispatcher) refreshHome(ctx context.Context, userID string) error {
	listeners, err := d.store.ListenersForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetching listeners: %w", err)
	}
	channels, err := d.store.Channels(ctx)
	if err != nil {
		return fmt.Errorf("fetching channel mirror: %w", err)
	}

	rules := make([]slack.HomeRule, 0, len(listeners))
	for _, listener := range listeners {
		rule := slack.HomeRule{ID: listener.ID, Pattern: listener.Pattern}
		for _, channel := range channels {
			if !matches(d.logger, listener.Pattern, channel.Name) {
				continue
			}
			example := slack.ChannelExample{ID: channel.ID}
			if channel.NumMembers != nil {
				example.NumMembers = *channel.NumMembers
			}
			rule.Examples = append(rule.Examples, example)
		}
		rules = append(rules, rule)
	}
	if err := d.slack.PublishHomeView(ctx, userID, slack.HomeTab(rules)); err != nil {
		return fmt.Errorf("publishing home view: %w", err)
	}
	return nil
}

// mirrorChannel converts a wire channel object to its mirror row.
func mirrorChannel(info *slack.ChannelInfo) store.Channel {
	return store.Channel{
		ID:         info.ID,
		Name:       info.Name,
		Created:    info.Created,
		NumMembers: info.NumMembers,
	}
}
