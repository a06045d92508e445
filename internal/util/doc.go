// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for pdftutor.
//
// It contains:
//   - Atomic file writes with fsync for crash-safe persistence
//   - Rune-aware string truncation for Unicode-safe display
//   - Allocation-free integer formatting for hot render paths
package util
