// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// listPageLimit is the platform maximum page size for
// conversations.list.
const listPageLimit = "1000"

// ListChannelsPage fetches one page of the workspace's public,
// non-archived channels. Pass the cursor from the previous page's
// response metadata, or "" for the first page. The pagination loop
// lives in the resync engine, not here.
func (c *Client) ListChannelsPage(ctx context.Context, cursor string) (*ConversationsListResponse, error) {
	query := url.Values{
		"limit":            {listPageLimit},
		"exclude_archived": {"true"},
		"types":            {"public_channel"},
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var response ConversationsListResponse
	if err := c.callBot(ctx, http.MethodGet, "conversations.list", nil, query, &response); err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	return &response, nil
}

// JoinChannel joins the bot to a public channel. The bot must be in
// a channel before it can invite anyone, so the dispatcher calls
// this ahead of InviteUsers and skips the invite when it fails.
func (c *Client) JoinChannel(ctx context.Context, channelID string) error {
	request := struct {
		Channel string `json:"channel"`
	}{Channel: channelID}

	var response struct{ apiResponse }
	if err := c.callBot(ctx, http.MethodPost, "conversations.join", request, nil, &response); err != nil {
		return fmt.Errorf("joining channel %s: %w", channelID, err)
	}
	return nil
}

// InviteUsers invites users to a channel the bot has already joined.
func (c *Client) InviteUsers(ctx context.Context, channelID string, userIDs []string) error {
	request := struct {
		Channel string   `json:"channel"`
		Users   []string `json:"users"`
	}{Channel: channelID, Users: userIDs}

	var response struct{ apiResponse }
	if err := c.callBot(ctx, http.MethodPost, "conversations.invite", request, nil, &response); err != nil {
		return fmt.Errorf("inviting %d users to channel %s: %w", len(userIDs), channelID, err)
	}
	return nil
}
