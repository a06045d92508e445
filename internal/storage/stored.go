// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/morganforge/pdftutor/internal/model"
)

// KeyPrefix is prepended to the user ID to form the persistence key, so
// different users of the same machine never see each other's sessions.
const KeyPrefix = "chatSessions_"

// SessionKey returns the persistence key for a user's session list.
func SessionKey(uid string) string {
	return KeyPrefix + uid
}

// =============================================================================
// STORED TYPES
// =============================================================================

// StoredSession represents a persisted tutoring session.
type StoredSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DocumentName    string `json:"document_name"`
	DocumentDataURI string `json:"document_data_uri"`
	DocumentSize    int64  `json:"document_size"`

	Messages []StoredMessage `json:"messages"`

	ELIFMode bool `json:"elif_mode,omitempty"`
}

// StoredMessage represents a persisted message.
type StoredMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "model"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// ToStored converts a live session to its persisted shape. Reveal state is
// dropped on purpose; a reloaded answer is always fully visible.
func ToStored(s *model.Session) StoredSession {
	stored := StoredSession{
		ID:              s.ID,
		Title:           s.Title,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		DocumentName:    s.Document.Name,
		DocumentDataURI: s.Document.DataURI,
		DocumentSize:    s.Document.Size,
		Messages:        make([]StoredMessage, 0, len(s.Messages)),
		ELIFMode:        s.ELIFMode,
	}
	for _, msg := range s.Messages {
		stored.Messages = append(stored.Messages, StoredMessage{
			ID:        msg.ID,
			Role:      msg.Role.String(),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	return stored
}

// ToModel converts a persisted session back to the live shape.
func (s StoredSession) ToModel() *model.Session {
	sess := &model.Session{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Document: model.Document{
			Name:    s.DocumentName,
			DataURI: s.DocumentDataURI,
			Size:    s.DocumentSize,
		},
		Messages: make([]*model.Message, 0, len(s.Messages)),
		ELIFMode: s.ELIFMode,
	}
	for _, msg := range s.Messages {
		sess.Messages = append(sess.Messages, &model.Message{
			ID:        msg.ID,
			Role:      model.Role(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	return sess
}

// EncodeSessions marshals a session list to the JSON array stored under the
// per-user key.
func EncodeSessions(sessions []*model.Session) ([]byte, error) {
	stored := make([]StoredSession, 0, len(sessions))
	for _, s := range sessions {
		stored = append(stored, ToStored(s))
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sessions: %w", err)
	}
	return data, nil
}

// DecodeSessions unmarshals the JSON array stored under the per-user key.
func DecodeSessions(data []byte) ([]*model.Session, error) {
	var stored []StoredSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	sessions := make([]*model.Session, 0, len(stored))
	for _, s := range stored {
		sessions = append(sessions, s.ToModel())
	}
	return sessions, nil
}
