// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/loopmein/loopmein/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the Web API base (e.g. "https://slack.com/api").
	// Only overridden in tests.
	BaseURL string

	// AppToken authenticates apps.connections.open. Required.
	AppToken *secret.Token

	// BotToken authenticates every other call. Required.
	BotToken *secret.Token

	// HTTPClient is used for all requests. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is a Slack Web API client scoped to one workspace app. It is
// safe for concurrent use; the dispatcher, the resync engine, and the
// connection supervisor all share one Client.
type Client struct {
	baseURL    string
	appToken   *secret.Token
	botToken   *secret.Token
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Web API client. Both tokens are required; the
// base URL defaults to the public Slack endpoint.
func NewClient(config ClientConfig) (*Client, error) {
	if config.AppToken == nil {
		return nil, fmt.Errorf("slack: AppToken is required")
	}
	if config.BotToken == nil {
		return nil, fmt.Errorf("slack: BotToken is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://slack.com/api"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("slack: invalid BaseURL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		appToken:   config.AppToken,
		botToken:   config.BotToken,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CloseIdleConnections drops idle HTTP connections in the transport
// pool. Call after a network disruption so the next request opens a
// fresh TCP connection instead of reusing a poisoned one.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// do performs one HTTP request against the Web API and returns the
// body and status code. A non-nil error means the request never
// produced a response (encode failure, transport error, unreadable
// body) — HTTP-level and platform-level failures are left to the
// caller, which knows the response shape.
func (c *Client) do(ctx context.Context, method, apiMethod string, token *secret.Token, requestBody any, query url.Values) ([]byte, int, error) {
	requestURL := c.baseURL + "/" + apiMethod
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, 0, fmt.Errorf("slack: encoding %s request: %w", apiMethod, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("slack: creating %s request: %w", apiMethod, err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	request.Header.Set("Authorization", "Bearer "+token.String())

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, fmt.Errorf("slack: %s request failed: %w", apiMethod, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("slack: reading %s response: %w", apiMethod, err)
	}
	return responseBody, response.StatusCode, nil
}

// callBot performs a bot-token Web API call and decodes the standard
// ok/error response frame into out, which must embed the OK and Error
// fields (see apiResponse). Returns *APIError for non-2xx status or
// "ok": false.
func (c *Client) callBot(ctx context.Context, method, apiMethod string, requestBody any, query url.Values, out apiStatus) error {
	body, status, err := c.do(ctx, method, apiMethod, c.botToken, requestBody, query)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{Method: apiMethod, StatusCode: status}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("slack: parsing %s response: %w", apiMethod, err)
	}
	if !out.ok() {
		return &APIError{Method: apiMethod, Code: out.errorCode(), StatusCode: status}
	}
	return nil
}

// apiStatus is implemented by response types embedding apiResponse.
type apiStatus interface {
	ok() bool
	errorCode() string
}

// apiResponse is the frame every Web API response carries. Embed it
// in concrete response types.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (r *apiResponse) ok() bool          { return r.OK }
func (r *apiResponse) errorCode() string { return r.Error }
