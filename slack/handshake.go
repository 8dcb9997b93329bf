// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"context"
	"encoding/json"
	"net/http"
)

// connectionsOpenResponse is the body of apps.connections.open.
type connectionsOpenResponse struct {
	OK    bool   `json:"ok"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// OpenConnection performs the Socket Mode handshake: one app-token
// POST to apps.connections.open that yields a fresh, single-use
// websocket URL. No retry happens here — retry policy belongs to the
// connection supervisor.
//
// Every failure is returned as a [*HandshakeError] classifying what
// went wrong: the request never completed (network), Slack answered
// with a non-2xx status, the body was not JSON, or the platform
// refused the handshake ("ok": false, or ok with no URL).
func (c *Client) OpenConnection(ctx context.Context) (string, error) {
	body, status, err := c.do(ctx, http.MethodPost, "apps.connections.open", c.appToken, nil, nil)
	if err != nil {
		return "", &HandshakeError{Kind: HandshakeNetwork, Err: err}
	}
	if status < 200 || status >= 300 {
		return "", &HandshakeError{Kind: HandshakeBadStatus, StatusCode: status}
	}

	var response connectionsOpenResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &HandshakeError{Kind: HandshakeNotJSON, Err: err}
	}
	if !response.OK {
		message := response.Error
		if message == "" {
			message = `"ok": false with no error provided`
		}
		return "", &HandshakeError{Kind: HandshakeRemote, Message: message}
	}
	if response.URL == "" {
		return "", &HandshakeError{Kind: HandshakeRemote, Message: "no connection URL provided"}
	}
	return response.URL, nil
}
