// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Tutor"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a tutoring session.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Reveal state (not persisted). RevealedRunes counts how many runes of
	// Content are currently visible while the answer types itself out.
	IsRevealing   bool `json:"-"`
	RevealedRunes int  `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewModelMessage creates a new tutor answer message with the reveal
// animation armed.
func NewModelMessage(content string) *Message {
	msg := NewMessage(RoleModel, content)
	msg.IsRevealing = true
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// VisibleContent returns the part of the content currently revealed.
// Fully revealed (or non-revealing) messages return the whole content.
func (m *Message) VisibleContent() string {
	if !m.IsRevealing {
		return m.Content
	}
	runes := []rune(m.Content)
	if m.RevealedRunes >= len(runes) {
		return m.Content
	}
	if m.RevealedRunes <= 0 {
		return ""
	}
	return string(runes[:m.RevealedRunes])
}

// AdvanceReveal reveals up to step more runes and reports whether the
// message is now fully revealed.
func (m *Message) AdvanceReveal(step int) bool {
	if !m.IsRevealing {
		return true
	}
	if step < 1 {
		step = 1
	}
	total := len([]rune(m.Content))
	m.RevealedRunes += step
	if m.RevealedRunes >= total {
		m.RevealedRunes = total
		m.IsRevealing = false
		return true
	}
	return false
}

// FinishReveal makes the whole content visible immediately.
func (m *Message) FinishReveal() {
	m.RevealedRunes = len([]rune(m.Content))
	m.IsRevealing = false
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	c := *m
	return &c
}
