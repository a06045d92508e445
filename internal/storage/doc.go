// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session persistence for pdftutor.
//
// Each user's sessions are stored as one JSON array under a per-user key
// ("chatSessions_" + uid). Two backends implement that contract:
//
//   - FileBackend: one JSON file per key under ~/.pdftutor/sessions/,
//     written atomically with fsync
//   - SQLiteBackend: a key/value table in a single SQLite database,
//     useful when several tools share the same state file
//
// The stored shapes (StoredSession, StoredMessage) deliberately exclude
// transient fields like reveal progress, so a reloaded session always comes
// back fully readable.
package storage
