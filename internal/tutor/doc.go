// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tutor provides the Gemini integration for document tutoring.
//
// Each question travels with the full PDF (as inline base64 data) and the
// flattened chat transcript, so the backend is stateless: the answer depends
// only on the request.
//
// TUTOR: Secure logging, retry logic, and rate limiting
package tutor
