// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"fmt"
	"sort"
	"strings"
)

// Block Kit payload types. These mirror the subset of
// https://api.slack.com/reference/block-kit that LoopMeIn renders:
// home tabs and one modal. Everything is plain data with omitempty
// tags; the zero value of an optional field is simply not sent.

// ViewPayload is a complete view document for views.publish or
// views.open.
type ViewPayload struct {
	Type       string  `json:"type"` // "home" or "modal"
	Blocks     []Block `json:"blocks"`
	Title      *Text   `json:"title,omitempty"`
	Submit     *Text   `json:"submit,omitempty"`
	Close      *Text   `json:"close,omitempty"`
	CallbackID string  `json:"callback_id,omitempty"`
}

// Block is one layout block.
type Block struct {
	Type      string    `json:"type"`
	BlockID   string    `json:"block_id,omitempty"`
	Text      *Text     `json:"text,omitempty"`
	Accessory *Element  `json:"accessory,omitempty"`
	Elements  []Element `json:"elements,omitempty"`

	// Input blocks.
	Label   *Text    `json:"label,omitempty"`
	Element *Element `json:"element,omitempty"`
}

// Element is one interactive block element.
type Element struct {
	Type     string `json:"type"`
	ActionID string `json:"action_id,omitempty"`
	Text     *Text  `json:"text,omitempty"`
	Value    string `json:"value,omitempty"`
	Style    string `json:"style,omitempty"` // "primary" / "danger"
}

// Text is a Block Kit text object.
type Text struct {
	Type  string `json:"type"` // "plain_text" or "mrkdwn"
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func plainText(text string) *Text { return &Text{Type: "plain_text", Text: text, Emoji: true} }
func markdown(text string) *Text  { return &Text{Type: "mrkdwn", Text: text} }

// HomeRule is one listener rule prepared for home-tab rendering. The
// caller (the dispatcher) resolves Examples by matching the rule's
// pattern against the channel mirror; the builder only formats.
type HomeRule struct {
	// ID is the listener's ID, carried in the Remove button value.
	ID string
	// Pattern is the rule's regular expression, rendered verbatim.
	Pattern string
	// Examples are mirror channels the pattern matches.
	Examples []ChannelExample
}

// ChannelExample is a matching channel shown under a rule.
type ChannelExample struct {
	ID         string
	NumMembers int64
}

// maxExampleChannels caps how many matching channels are shown per
// rule, largest first.
const maxExampleChannels = 5

// HomeTab renders the App Home view: a header, an explanation, one
// section per rule with example channels and a Remove button, and
// the add-pattern button.
func HomeTab(rules []HomeRule) ViewPayload {
	blocks := []Block{
		{Type: "header", Text: plainText("LoopMeIn")},
		{Type: "section", Text: markdown("When someone creates a new channel I'll add you automatically.\n\nAll you have to do is give me regular expressions to match :smiling_imp:")},
		{Type: "divider"},
	}

	if len(rules) > 0 {
		for _, rule := range rules {
			blocks = append(blocks, ruleSection(rule))
		}
		blocks = append(blocks, Block{Type: "divider"})
	}

	blocks = append(blocks, Block{
		Type: "actions",
		Elements: []Element{{
			Type:     "button",
			Text:     plainText(":heavy_plus_sign: Add a regular expression"),
			ActionID: ActionNewPattern,
			Value:    "add-regex",
			Style:    "primary",
		}},
	})

	return ViewPayload{Type: "home", Blocks: blocks}
}

// ruleSection renders one listener rule with up to five example
// channels, most populous first.
func ruleSection(rule HomeRule) Block {
	subtext := "No examples"
	if len(rule.Examples) > 0 {
		examples := make([]ChannelExample, len(rule.Examples))
		copy(examples, rule.Examples)
		sort.SliceStable(examples, func(i, j int) bool {
			return examples[i].NumMembers > examples[j].NumMembers
		})
		if len(examples) > maxExampleChannels {
			examples = examples[:maxExampleChannels]
		}

		mentions := make([]string, len(examples))
		for i, example := range examples {
			mentions[i] = "<#" + example.ID + ">"
		}
		subtext = "*Example channels*: " + strings.Join(mentions, ", ")
	}

	return Block{
		Type: "section",
		Text: markdown(fmt.Sprintf(":computer: `%s`\n%s", rule.Pattern, subtext)),
		Accessory: &Element{
			Type:     "button",
			Text:     plainText("Remove"),
			ActionID: ActionRemoveListener,
			Value:    rule.ID,
		},
	}
}

// NewPatternModal renders the modal that collects a new regular
// expression. The input block and callback IDs are what the
// dispatcher matches on view_submission.
func NewPatternModal() ViewPayload {
	return ViewPayload{
		Type:       "modal",
		CallbackID: CallbackNewPatternModal,
		Title:      plainText("Add a regular expression"),
		Submit:     plainText("Add"),
		Close:      plainText("Cancel"),
		Blocks: []Block{
			{
				Type: "section",
				Text: markdown("Add a regular expression to match against a channel name. For example, `^hotfix-.*` matches all channels that start with `hotfix-`.\n\nNeed some help? Try https://regexr.com/"),
			},
			{
				Type:    "input",
				BlockID: BlockPatternInput,
				Label:   plainText("Regular expression"),
				Element: &Element{Type: "plain_text_input", ActionID: InputPatternAction},
			},
		},
	}
}
