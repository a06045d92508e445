// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for tutoring sessions and
// messages: the chat transcript, the attached document metadata, and the
// helpers that turn a session into the flat transcript sent to the tutor
// backend.
package model
