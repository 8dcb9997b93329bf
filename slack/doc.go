// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

// Package slack wraps the subset of the Slack Web API and Socket
// Mode wire format that LoopMeIn uses.
//
// [Client] holds the API base URL, the HTTP transport, and the two
// bearer tokens: the app-level token authenticates the Socket Mode
// handshake ([Client.OpenConnection]); the bot token authenticates
// everything else (channel listing, join, invite, view publishing).
// Tokens live in mlock-backed secret.Token memory and are converted
// to strings only when the Authorization header is written.
//
// Handshake failures are classified into [*HandshakeError] (network,
// bad status, non-JSON body, remote refusal) so the connection
// supervisor can log the category before its fixed-delay retry. All
// other calls surface platform-reported failures ("ok": false) as
// [*APIError] carrying the Slack error string.
//
// The package also contains the Socket Mode envelope types consumed
// by the dispatcher and the Block Kit view builders for the App Home
// tab and the new-pattern modal. Builders are pure data construction;
// nothing here dispatches or retries.
package slack
