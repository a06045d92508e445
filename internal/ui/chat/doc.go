// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive tutoring view for the TUI.
//
// The chat view composes the session sidebar, the conversation viewport,
// the question input, and the toast stack into a single Bubble Tea model.
// Questions are applied to the active session optimistically: the user
// message appears immediately, the remote call runs as a command, and on
// failure the history rolls back and the typed question is restored to
// the input field. Answers play back with a typewriter reveal driven by a
// fixed-interval tick.
package chat
