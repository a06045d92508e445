// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the identity layer for pdftutor.
//
// The Provider interface abstracts who the current user is so the rest of
// the application only ever sees a User and an auth state. The bundled
// LocalProvider keeps accounts on disk with PBKDF2 password hashes and
// optional TOTP, which is plenty for a single-machine tool while keeping the
// interface ready for a hosted identity service.
package auth
