// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"strings"
	"testing"
)

func TestHomeTabEmpty(t *testing.T) {
	view := HomeTab(nil)

	if view.Type != "home" {
		t.Errorf("type = %q, want home", view.Type)
	}
	// Header, explanation, divider, actions — no rule sections, no
	// second divider.
	if len(view.Blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(view.Blocks))
	}
	actions := view.Blocks[3]
	if actions.Type != "actions" || len(actions.Elements) != 1 {
		t.Fatalf("last block = %+v, want actions with one element", actions)
	}
	if actions.Elements[0].ActionID != ActionNewPattern {
		t.Errorf("button action = %q, want %q", actions.Elements[0].ActionID, ActionNewPattern)
	}
}

func TestHomeTabRules(t *testing.T) {
	view := HomeTab([]HomeRule{
		{ID: "rule-1", Pattern: "^hotfix-.*", Examples: []ChannelExample{{ID: "C1", NumMembers: 3}}},
		{ID: "rule-2", Pattern: "release"},
	})

	// Header, explanation, divider, two rule sections, divider,
	// actions.
	if len(view.Blocks) != 7 {
		t.Fatalf("got %d blocks, want 7", len(view.Blocks))
	}

	first := view.Blocks[3]
	if !strings.Contains(first.Text.Text, "`^hotfix-.*`") {
		t.Errorf("rule section text = %q", first.Text.Text)
	}
	if !strings.Contains(first.Text.Text, "<#C1>") {
		t.Errorf("rule section missing channel mention: %q", first.Text.Text)
	}
	if first.Accessory == nil || first.Accessory.ActionID != ActionRemoveListener {
		t.Errorf("rule section accessory = %+v, want Remove button", first.Accessory)
	}
	if first.Accessory.Value != "rule-1" {
		t.Errorf("Remove button value = %q, want rule-1", first.Accessory.Value)
	}

	second := view.Blocks[4]
	if !strings.Contains(second.Text.Text, "No examples") {
		t.Errorf("rule without matches should say No examples: %q", second.Text.Text)
	}
}

func TestHomeTabExampleOrderAndCap(t *testing.T) {
	examples := []ChannelExample{
		{ID: "C-small", NumMembers: 1},
		{ID: "C-big", NumMembers: 900},
		{ID: "C-mid1", NumMembers: 50},
		{ID: "C-mid2", NumMembers: 40},
		{ID: "C-mid3", NumMembers: 30},
		{ID: "C-mid4", NumMembers: 20},
	}
	view := HomeTab([]HomeRule{{ID: "r", Pattern: "x", Examples: examples}})

	text := view.Blocks[3].Text.Text
	if strings.Contains(text, "<#C-small>") {
		t.Errorf("smallest channel should be capped out of top five: %q", text)
	}
	bigIndex := strings.Index(text, "<#C-big>")
	midIndex := strings.Index(text, "<#C-mid1>")
	if bigIndex == -1 || midIndex == -1 || bigIndex > midIndex {
		t.Errorf("examples not ordered by member count: %q", text)
	}
}

func TestNewPatternModal(t *testing.T) {
	view := NewPatternModal()

	if view.Type != "modal" {
		t.Errorf("type = %q, want modal", view.Type)
	}
	if view.CallbackID != CallbackNewPatternModal {
		t.Errorf("callback_id = %q, want %q", view.CallbackID, CallbackNewPatternModal)
	}

	var input *Block
	for i := range view.Blocks {
		if view.Blocks[i].Type == "input" {
			input = &view.Blocks[i]
		}
	}
	if input == nil {
		t.Fatal("modal has no input block")
	}
	if input.BlockID != BlockPatternInput {
		t.Errorf("input block_id = %q, want %q", input.BlockID, BlockPatternInput)
	}
	if input.Element == nil || input.Element.ActionID != InputPatternAction {
		t.Errorf("input element = %+v, want %q action", input.Element, InputPatternAction)
	}
}

func TestInputValue(t *testing.T) {
	view := &SubmittedView{
		Type:       "modal",
		CallbackID: CallbackNewPatternModal,
		State: &ViewState{Values: map[string]map[string]ViewStateValue{
			BlockPatternInput: {InputPatternAction: {Value: "^team-.*"}},
		}},
	}

	value, ok := view.InputValue(BlockPatternInput, InputPatternAction)
	if !ok || value != "^team-.*" {
		t.Errorf("InputValue = %q, %v", value, ok)
	}

	if _, ok := view.InputValue("missing-block", InputPatternAction); ok {
		t.Error("missing block should report not found")
	}
	var nilView *SubmittedView
	if _, ok := nilView.InputValue(BlockPatternInput, InputPatternAction); ok {
		t.Error("nil view should report not found")
	}
}
