// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxMessages is the maximum number of messages to keep in a session.
// When exceeded, old messages are pruned to prevent unbounded memory growth.
const MaxMessages = 1000

// =============================================================================
// DOCUMENT TYPE
// =============================================================================

// Document describes the PDF attached to a session. The data URI carries the
// full base64-encoded file and is what gets sent to the tutor backend with
// every question.
type Document struct {
	Name    string `json:"name"`
	DataURI string `json:"data_uri"`
	Size    int64  `json:"size"`
}

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds one tutoring conversation: the attached document, the chat
// history, and the ELIF ("explain like I'm five") flag.
type Session struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Attached document
	Document Document `json:"document"`

	// Messages
	Messages []*Message `json:"messages"`

	// ELIFMode asks the tutor to simplify every answer.
	ELIFMode bool `json:"elif_mode"`
}

// NewSession creates a new session for the given document with a generated ID.
func NewSession(doc Document) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Title:     doc.Name,
		CreatedAt: now,
		UpdatedAt: now,
		Document:  doc,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the session.
func (s *Session) AddMessage(msg *Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	s.pruneOldMessages()
}

// AddUserMessage creates and appends a user message.
func (s *Session) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	s.AddMessage(msg)
	return msg
}

// AddModelMessage creates and appends a tutor answer message.
func (s *Session) AddModelMessage(content string) *Message {
	msg := NewModelMessage(content)
	s.AddMessage(msg)
	return msg
}

// ReplaceHistory swaps the whole message slice. Used to restore a snapshot
// taken before an optimistic append.
func (s *Session) ReplaceHistory(msgs []*Message) {
	if msgs == nil {
		msgs = make([]*Message, 0)
	}
	s.Messages = msgs
	s.UpdatedAt = time.Now()
}

// RemoveLast drops the most recent message and returns it, or nil if the
// session is empty.
func (s *Session) RemoveLast() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	last := s.Messages[len(s.Messages)-1]
	s.Messages = s.Messages[:len(s.Messages)-1]
	s.UpdatedAt = time.Now()
	return last
}

// GetLastMessage returns the most recent message, or nil if empty.
func (s *Session) GetLastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// GetLastModelMessage returns the most recent tutor message.
func (s *Session) GetLastModelMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleModel {
			return s.Messages[i]
		}
	}
	return nil
}

// GetMessageByID returns a message by its ID, or nil.
func (s *Session) GetMessageByID(id string) *Message {
	for _, msg := range s.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if there are no messages.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// pruneOldMessages drops the oldest messages when the cap is exceeded.
func (s *Session) pruneOldMessages() {
	if len(s.Messages) <= MaxMessages {
		return
	}
	excess := len(s.Messages) - MaxMessages
	s.Messages = s.Messages[excess:]
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript flattens the history into the newline-joined "role: content"
// form the tutor backend expects. Message order is preserved.
func (s *Session) Transcript() string {
	var b strings.Builder
	for i, msg := range s.Messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(msg.Role.String())
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}

// SnapshotHistory returns a copy of the message slice. The messages
// themselves are shared; the slice is safe to restore later.
func (s *Session) SnapshotHistory() []*Message {
	snap := make([]*Message, len(s.Messages))
	copy(snap, s.Messages)
	return snap
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = make([]*Message, len(s.Messages))
	for i, msg := range s.Messages {
		c.Messages[i] = msg.Clone()
	}
	return &c
}
