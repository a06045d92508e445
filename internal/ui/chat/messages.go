// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive tutoring view for the TUI.
//
// This file defines the Bubble Tea message types used by the chat view:
//   - Tutoring: answer delivery and failure
//   - Reveal: typewriter animation ticks
//   - Documents: PDF load results
//   - Identity: auth state changes
package chat

import (
	"time"

	"github.com/morganforge/pdftutor/internal/auth"
	"github.com/morganforge/pdftutor/internal/config"
	"github.com/morganforge/pdftutor/internal/model"
)

// =============================================================================
// TUTORING MESSAGES
// =============================================================================

// AnswerReceivedMsg delivers a tutor answer for a pending exchange.
type AnswerReceivedMsg struct {
	SessionID string
	Answer    string
}

// AnswerFailedMsg signals that the remote call for a pending exchange failed.
type AnswerFailedMsg struct {
	SessionID string
	Err       error
}

// =============================================================================
// REVEAL MESSAGES
// =============================================================================

// RevealTickMsg drives the typewriter animation. One tick reveals a fixed
// number of runes of the newest answer.
type RevealTickMsg struct {
	Time time.Time
}

// =============================================================================
// DOCUMENT MESSAGES
// =============================================================================

// DocumentLoadedMsg reports the outcome of loading a PDF from disk.
type DocumentLoadedMsg struct {
	Doc model.Document
	Err error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a fresh configuration after the config file
// changed on disk.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}

// =============================================================================
// IDENTITY MESSAGES
// =============================================================================

// AuthChangedMsg reports an identity state transition.
type AuthChangedMsg struct {
	User  auth.User
	State auth.State
}
