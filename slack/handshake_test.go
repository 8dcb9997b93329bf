// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func handshakeKind(t *testing.T, err error) HandshakeKind {
	t.Helper()
	var handshakeErr *HandshakeError
	if !errors.As(err, &handshakeErr) {
		t.Fatalf("error = %v, want *HandshakeError", err)
	}
	return handshakeErr.Kind
}

func TestOpenConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", request.Method)
		}
		if request.URL.Path != "/apps.connections.open" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		if got := request.Header.Get("Authorization"); got != "Bearer xapp-test" {
			t.Errorf("Authorization = %q, want app token", got)
		}
		json.NewEncoder(writer).Encode(map[string]any{
			"ok":  true,
			"url": "wss://wss-primary.slack.com/link/?ticket=abc",
		})
	}))
	defer server.Close()

	client := testClient(t, server)
	url, err := client.OpenConnection(context.Background())
	if err != nil {
		t.Fatalf("OpenConnection failed: %v", err)
	}
	if url != "wss://wss-primary.slack.com/link/?ticket=abc" {
		t.Errorf("url = %q", url)
	}
}

func TestOpenConnectionBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.OpenConnection(context.Background())
	if kind := handshakeKind(t, err); kind != HandshakeBadStatus {
		t.Errorf("kind = %s, want bad_status", kind)
	}
}

func TestOpenConnectionNotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("<html>rate limited</html>"))
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.OpenConnection(context.Background())
	if kind := handshakeKind(t, err); kind != HandshakeNotJSON {
		t.Errorf("kind = %s, want not_json", kind)
	}
}

func TestOpenConnectionRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode(map[string]any{"ok": false, "error": "invalid_auth"})
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.OpenConnection(context.Background())
	var handshakeErr *HandshakeError
	if !errors.As(err, &handshakeErr) {
		t.Fatalf("error = %v, want *HandshakeError", err)
	}
	if handshakeErr.Kind != HandshakeRemote {
		t.Errorf("kind = %s, want remote", handshakeErr.Kind)
	}
	if handshakeErr.Message != "invalid_auth" {
		t.Errorf("message = %q, want invalid_auth", handshakeErr.Message)
	}
}

func TestOpenConnectionMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.OpenConnection(context.Background())
	if kind := handshakeKind(t, err); kind != HandshakeRemote {
		t.Errorf("kind = %s, want remote", kind)
	}
}

func TestOpenConnectionNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
	server.Close() // refuse all connections

	client := testClient(t, server)
	_, err := client.OpenConnection(context.Background())
	if kind := handshakeKind(t, err); kind != HandshakeNetwork {
		t.Errorf("kind = %s, want network", kind)
	}
}
