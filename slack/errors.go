// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"errors"
	"fmt"
)

// APIError represents a Slack Web API call that reached the platform
// but was refused: HTTP success with "ok": false, or a non-2xx
// status. Callers can use errors.As to inspect the Slack error code:
//
//	var apiErr *slack.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Code == "already_in_channel" { ... }
//	}
type APIError struct {
	// Method is the Web API method, e.g. "conversations.join".
	Method string
	// Code is the Slack error string, e.g. "channel_not_found".
	// Empty when the failure was a bare HTTP status.
	Code string
	// StatusCode is the HTTP status of the response.
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("slack: %s: unexpected HTTP status %d", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("slack: %s: %s", e.Method, e.Code)
}

// IsAPIError checks whether err is an *APIError with the given Slack
// error code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// HandshakeKind classifies how an apps.connections.open call failed.
// The supervisor treats every kind identically (log, fixed delay,
// retry) — the classification exists for operator-visible logs.
type HandshakeKind string

const (
	// HandshakeNetwork: the request never produced an HTTP response.
	HandshakeNetwork HandshakeKind = "network"
	// HandshakeBadStatus: a non-2xx HTTP status.
	HandshakeBadStatus HandshakeKind = "bad_status"
	// HandshakeNotJSON: a 2xx response whose body did not decode.
	HandshakeNotJSON HandshakeKind = "not_json"
	// HandshakeRemote: Slack answered "ok": false, or ok without a
	// connection URL.
	HandshakeRemote HandshakeKind = "remote"
)

// HandshakeError is a classified failure of the Socket Mode
// handshake. It carries whichever of StatusCode and Message the kind
// makes meaningful.
type HandshakeError struct {
	Kind       HandshakeKind
	StatusCode int    // set for HandshakeBadStatus
	Message    string // set for HandshakeRemote
	Err        error  // set for HandshakeNetwork and HandshakeNotJSON
}

func (e *HandshakeError) Error() string {
	switch e.Kind {
	case HandshakeNetwork:
		return fmt.Sprintf("slack: handshake network failure: %v", e.Err)
	case HandshakeBadStatus:
		return fmt.Sprintf("slack: handshake returned HTTP %d", e.StatusCode)
	case HandshakeNotJSON:
		return fmt.Sprintf("slack: handshake response is not JSON: %v", e.Err)
	default:
		return fmt.Sprintf("slack: handshake refused: %s", e.Message)
	}
}

func (e *HandshakeError) Unwrap() error { return e.Err }
