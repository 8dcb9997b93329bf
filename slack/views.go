// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"context"
	"fmt"
	"net/http"
)

// PublishHomeView replaces a user's App Home tab with the given view.
func (c *Client) PublishHomeView(ctx context.Context, userID string, view ViewPayload) error {
	request := struct {
		UserID string      `json:"user_id"`
		View   ViewPayload `json:"view"`
	}{UserID: userID, View: view}

	var response struct{ apiResponse }
	if err := c.callBot(ctx, http.MethodPost, "views.publish", request, nil, &response); err != nil {
		return fmt.Errorf("publishing home view for %s: %w", userID, err)
	}
	return nil
}

// OpenView opens a modal against an interaction's trigger ID.
// Trigger IDs expire after a few seconds, so callers invoke this
// directly from dispatch rather than queueing it.
func (c *Client) OpenView(ctx context.Context, triggerID string, view ViewPayload) error {
	request := struct {
		TriggerID string      `json:"trigger_id"`
		View      ViewPayload `json:"view"`
	}{TriggerID: triggerID, View: view}

	var response struct{ apiResponse }
	if err := c.callBot(ctx, http.MethodPost, "views.open", request, nil, &response); err != nil {
		return fmt.Errorf("opening view for trigger %s: %w", triggerID, err)
	}
	return nil
}
