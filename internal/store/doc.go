// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store manages the in-memory session list and its persistence.
//
// The Store owns every session for one user, tracks which one is active,
// and writes the whole list back to the persistence backend after every
// mutation. Persistence failures never break the in-memory state: the
// mutation stands and the failure is reported through a warning callback.
package store
