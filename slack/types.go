// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

// Socket Mode envelope categories and payload types the dispatcher
// routes on. Categories are orthogonal: an envelope carries exactly
// one, and the nested payload type refines it.
const (
	EnvelopeEventsAPI   = "events_api"
	EnvelopeInteractive = "interactive"

	PayloadEventCallback  = "event_callback"
	PayloadBlockActions   = "block_actions"
	PayloadViewSubmission = "view_submission"

	EventAppHomeOpened  = "app_home_opened"
	EventChannelCreated = "channel_created"
)

// Identifiers baked into the Block Kit views. The dispatcher matches
// interactive envelopes against these.
const (
	// ActionNewPattern is the Home tab button that opens the
	// new-pattern modal.
	ActionNewPattern = "new-regex-view"

	// ActionRemoveListener is the per-rule Remove button; its value
	// carries the listener ID.
	ActionRemoveListener = "remove"

	// CallbackNewPatternModal identifies the new-pattern modal on
	// view_submission.
	CallbackNewPatternModal = "new-regex-modal"

	// BlockPatternInput is the modal's input block ID. Validation
	// errors in the submission acknowledgment are keyed by it.
	BlockPatternInput = "new-regex-input-block"

	// InputPatternAction is the plain-text input element inside
	// BlockPatternInput.
	InputPatternAction = "new-regex-input"
)

// Envelope is one decoded Socket Mode message. EnvelopeID is empty
// for messages that need no acknowledgment (e.g. the "hello" frame).
type Envelope struct {
	Type       string   `json:"type"`
	EnvelopeID string   `json:"envelope_id,omitempty"`
	Payload    *Payload `json:"payload,omitempty"`
}

// Payload is the category-specific body of an envelope. The same
// struct covers events_api and interactive envelopes; unused fields
// are nil.
type Payload struct {
	Type string `json:"type"`

	// events_api
	Event *Event `json:"event,omitempty"`

	// interactive
	User      *User          `json:"user,omitempty"`
	Actions   []Action       `json:"actions,omitempty"`
	TriggerID string         `json:"trigger_id,omitempty"`
	View      *SubmittedView `json:"view,omitempty"`
}

// Event is the nested event of an event_callback payload.
type Event struct {
	Type string `json:"type"`

	// User is set for app_home_opened.
	User string `json:"user,omitempty"`

	// Channel is set for channel_created.
	Channel *ChannelInfo `json:"channel,omitempty"`
}

// ChannelInfo mirrors one conversations.list item and the channel
// object of a channel_created event.
type ChannelInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Created    int64  `json:"created"`
	NumMembers *int64 `json:"num_members,omitempty"`
}

// User identifies the person behind an interactive payload.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
}

// Action is one element of a block_actions payload.
type Action struct {
	ActionID string `json:"action_id"`
	Value    string `json:"value,omitempty"`
}

// SubmittedView is the view object of block_actions and
// view_submission payloads.
type SubmittedView struct {
	Type       string     `json:"type"`
	CallbackID string     `json:"callback_id,omitempty"`
	State      *ViewState `json:"state,omitempty"`
}

// ViewState holds submitted form values, keyed by block ID then
// action ID.
type ViewState struct {
	Values map[string]map[string]ViewStateValue `json:"values"`
}

// ViewStateValue is one submitted input value.
type ViewStateValue struct {
	Value string `json:"value"`
}

// InputValue extracts the submitted value for a block/action pair.
// Returns false when any level of the nesting is absent.
func (v *SubmittedView) InputValue(blockID, actionID string) (string, bool) {
	if v == nil || v.State == nil {
		return "", false
	}
	actions, ok := v.State.Values[blockID]
	if !ok {
		return "", false
	}
	value, ok := actions[actionID]
	if !ok {
		return "", false
	}
	return value.Value, true
}

// Acknowledgement is the response written back over the stream for
// every envelope that carries an envelope ID. Payload is the
// structured response: the view_submission validation errors object,
// or an empty object.
type Acknowledgement struct {
	EnvelopeID string `json:"envelope_id"`
	Payload    any    `json:"payload"`
}

// Ack builds an acknowledgment with an empty payload.
func Ack(envelopeID string) *Acknowledgement {
	return &Acknowledgement{EnvelopeID: envelopeID, Payload: map[string]any{}}
}

// AckErrors builds a view_submission acknowledgment that surfaces
// inline validation errors keyed by block ID.
func AckErrors(envelopeID string, errors map[string]string) *Acknowledgement {
	return &Acknowledgement{
		EnvelopeID: envelopeID,
		Payload: map[string]any{
			"response_action": "errors",
			"errors":          errors,
		},
	}
}

// ConversationsListResponse is one page of conversations.list.
type ConversationsListResponse struct {
	apiResponse
	Channels         []ChannelInfo     `json:"channels"`
	ResponseMetadata *ResponseMetadata `json:"response_metadata,omitempty"`
}

// ResponseMetadata carries the pagination cursor. An empty or absent
// NextCursor means the final page.
type ResponseMetadata struct {
	NextCursor string `json:"next_cursor"`
}

// NextCursor returns the continuation cursor, or "" on the last page.
func (r *ConversationsListResponse) NextCursor() string {
	if r.ResponseMetadata == nil {
		return ""
	}
	return r.ResponseMetadata.NextCursor
}

// HasChannels reports whether the page carried a channels field at
// all. A page that is ok but has no channels field is a malformed
// response, distinct from an empty workspace (ok with "channels": []).
func (r *ConversationsListResponse) HasChannels() bool {
	return r.Channels != nil
}
