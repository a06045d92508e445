// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller drives one tutoring exchange at a time.
//
// An exchange is optimistic: the user's question lands in the history
// immediately, then the remote call runs, then the answer is appended. When
// the call fails the history is restored to its pre-question snapshot and
// the typed input is handed back, so nothing the user wrote is lost. If the
// session was deleted while the call was in flight the outcome is dropped
// silently.
//
// Only one exchange may be pending at a time.
package controller
