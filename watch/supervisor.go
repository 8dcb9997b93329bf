// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/loopmein/loopmein/lib/clock"
	"github.com/loopmein/loopmein/slack"
)

// streamReadLimit bounds a single stream frame. Envelopes are small;
// a frame anywhere near this is garbage.
const streamReadLimit = 1 << 20

// Handshaker opens a fresh stream endpoint. *slack.Client implements
// it against apps.connections.open.
type Handshaker interface {
	OpenConnection(ctx context.Context) (string, error)
}

// MessageHandler processes one raw stream message and returns the
// acknowledgment owed for it, or nil.
type MessageHandler interface {
	HandleMessage(ctx context.Context, raw []byte) *slack.Acknowledgement
}

// StreamConn is one live stream connection. Read returns the next
// message; Write sends a JSON acknowledgment.
type StreamConn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, v any) error
	Close() error
}

// DialFunc opens a stream connection to an endpoint URL.
type DialFunc func(ctx context.Context, endpoint string) (StreamConn, error)

// SupervisorConfig configures a Supervisor. Slack and Handler are
// required. A nil Dial uses the production websocket dialer; a nil
// Clock uses the real one; a zero RetryDelay means no wait between
// failed handshake attempts.
type SupervisorConfig struct {
	Slack      Handshaker
	Handler    MessageHandler
	Dial       DialFunc
	Clock      clock.Clock
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Supervisor owns the stream connection lifecycle: handshake, serve
// until close, reconnect. At most one connection is live at a time;
// a failed handshake waits RetryDelay before the next attempt, while
// a dropped connection re-handshakes immediately.
type Supervisor struct {
	slack      Handshaker
	handler    MessageHandler
	dial       DialFunc
	clock      clock.Clock
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewSupervisor creates a Supervisor from the given configuration.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	dial := cfg.Dial
	if dial == nil {
		dial = dialStream
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		slack:      cfg.Slack,
		handler:    cfg.Handler,
		dial:       dial,
		clock:      clk,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Run drives the connection loop until the context is canceled. It
// returns the context's error on cancellation, or a fatal error when
// the handshake hands back an endpoint that is not a usable URL.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		endpoint, err := s.slack.OpenConnection(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("stream handshake failed",
				"error", err,
				"retry_in", s.retryDelay)
			select {
			case <-s.clock.After(s.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		if _, err := url.Parse(endpoint); err != nil {
			return fmt.Errorf("watch: unusable stream endpoint %q: %w", endpoint, err)
		}

		conn, err := s.dial(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("stream dial failed", "error", err)
			continue
		}
		s.logger.Info("stream connected")
		s.serve(ctx, conn)
	}
}

// serve reads messages until the connection dies, acknowledging each
// envelope that owes one. It returns when Read or a Write fails; the
// caller decides what happens next.
func (s *Supervisor) serve(ctx context.Context, conn StreamConn) {
	defer conn.Close()
	for {
		raw, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Info("stream closed", "error", err)
			}
			return
		}
		ack := s.handler.HandleMessage(ctx, raw)
		if ack == nil {
			continue
		}
		if err := conn.Write(ctx, ack); err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("acknowledgment write failed",
					"envelope_id", ack.EnvelopeID,
					"error", err)
			}
			return
		}
	}
}

type wsConn struct {
	conn *websocket.Conn
}

// dialStream is the production DialFunc.
func dialStream(ctx context.Context, endpoint string) (StreamConn, error) {
	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("watch: dialing stream: %w", err)
	}
	conn.SetReadLimit(streamReadLimit)
	return &wsConn{conn: conn}, nil
}

func (c *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

func (c *wsConn) Write(ctx context.Context, v any) error {
	return wsjson.Write(ctx, c.conn, v)
}

func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
