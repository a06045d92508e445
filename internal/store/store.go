// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/morganforge/pdftutor/internal/model"
	"github.com/morganforge/pdftutor/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session ID doesn't exist.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &SessionError{Message: "session not found"}

// SessionError represents a session store error.
// It implements the error interface and can be compared using errors.Is.
type SessionError struct {
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// STORE
// =============================================================================

// Store owns one user's session list and keeps it persisted.
//
// Every mutation writes the full list back to the backend. A failed write is
// reported through the warning callback but never rolls back the in-memory
// change; losing a save must not lose the conversation on screen.
type Store struct {
	mu sync.Mutex

	uid     string
	backend storage.Backend

	sessions []*model.Session
	activeID string
	loaded   bool

	// onWarn receives non-fatal persistence errors.
	onWarn func(error)
}

// New creates a store for the given user backed by the given backend.
func New(uid string, backend storage.Backend) *Store {
	return &Store{
		uid:      uid,
		backend:  backend,
		sessions: make([]*model.Session, 0),
	}
}

// SetWarnFunc registers the callback for non-fatal persistence errors.
func (s *Store) SetWarnFunc(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWarn = fn
}

// Load seeds the store from the backend. A missing key means a first run and
// yields an empty list. Load is idempotent; calls after the first are no-ops.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	data, err := s.backend.Load(storage.SessionKey(s.uid))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	sessions, err := storage.DecodeSessions(data)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	s.sessions = sessions
	if len(sessions) > 0 {
		s.activeID = sessions[0].ID
	}
	s.loaded = true
	return nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Sessions returns the session list, newest first. The slice is a copy; the
// sessions themselves are shared.
func (s *Store) Sessions() []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Count returns the number of sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Active returns the active session, or nil when none is selected.
func (s *Store) Active() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.activeID)
}

// ActiveID returns the active session ID, or "".
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Get returns a session by ID, or nil.
func (s *Store) Get(id string) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create adds a new session for the document at the front of the list and
// makes it active.
func (s *Store) Create(doc model.Document) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := model.NewSession(doc)
	s.sessions = append([]*model.Session{sess}, s.sessions...)
	s.activeID = sess.ID
	s.persistLocked()
	return sess
}

// Delete removes a session. When the active session is deleted the newest
// remaining session becomes active; deleting the last session leaves no
// active session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrSessionNotFound
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.activeID == id {
		s.activeID = ""
		if len(s.sessions) > 0 {
			s.activeID = s.sessions[0].ID
		}
	}
	s.persistLocked()
	return nil
}

// Select makes a session active. Selecting an unknown ID changes nothing and
// returns false.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return false
	}
	s.activeID = id
	return true
}

// AppendMessage appends a message to a session's history.
func (s *Store) AppendMessage(sessionID string, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.AddMessage(msg)
	s.persistLocked()
	return nil
}

// ReplaceHistory swaps a session's whole message list. Used to restore a
// snapshot after a failed exchange.
func (s *Store) ReplaceHistory(sessionID string, msgs []*model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.ReplaceHistory(msgs)
	s.persistLocked()
	return nil
}

// SetELIFMode toggles the simplified-answers flag on a session.
func (s *Store) SetELIFMode(sessionID string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.ELIFMode = on
	s.persistLocked()
	return nil
}

// Flush forces a save of the current state.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := storage.EncodeSessions(s.sessions)
	if err != nil {
		return err
	}
	return s.backend.Save(storage.SessionKey(s.uid), data)
}

// =============================================================================
// INTERNAL
// =============================================================================

// findLocked returns the session with the given ID. Caller holds the lock.
func (s *Store) findLocked(id string) *model.Session {
	if id == "" {
		return nil
	}
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// persistLocked writes the session list to the backend. Failures go to the
// warning callback; the in-memory mutation stands either way.
func (s *Store) persistLocked() {
	data, err := storage.EncodeSessions(s.sessions)
	if err == nil {
		err = s.backend.Save(storage.SessionKey(s.uid), data)
	}
	if err != nil && s.onWarn != nil {
		s.onWarn(fmt.Errorf("failed to save sessions: %w", err))
	}
}
