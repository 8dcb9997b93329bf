// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

// Package watch contains the long-running core of the bot: the socket
// mode supervisor that keeps a single stream connection alive, the
// dispatcher that routes decoded envelopes to handlers, and the
// resyncer that periodically rebuilds the local channel mirror from
// the workspace roster.
package watch
