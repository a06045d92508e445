// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/morganforge/pdftutor/internal/model"
	"github.com/morganforge/pdftutor/internal/store"
	"github.com/morganforge/pdftutor/internal/tutor"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput indicates the question was empty or whitespace.
	ErrEmptyInput = errors.New("empty question")

	// ErrBusy indicates an exchange is already pending.
	ErrBusy = errors.New("an exchange is already pending")

	// ErrNoActiveSession indicates no session is selected.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionGone indicates the exchange's session was deleted while
	// the remote call was in flight, so the answer was dropped.
	ErrSessionGone = errors.New("session deleted during exchange")
)

// =============================================================================
// TYPES
// =============================================================================

// TutorClient is the remote call contract. *tutor.Client satisfies it.
type TutorClient interface {
	Ask(ctx context.Context, req tutor.Request) (*tutor.Response, error)
}

// Exchange describes a question that has been optimistically applied and is
// waiting for its answer.
type Exchange struct {
	// SessionID pins the exchange to the session it started in.
	SessionID string

	// UserMessageID is the optimistically appended question.
	UserMessageID string

	// Request is ready to hand to the tutor client.
	Request tutor.Request
}

// Controller serializes exchanges against a session store.
type Controller struct {
	mu sync.Mutex

	store  *store.Store
	client TutorClient

	// Pending exchange state. snapshot and savedInput restore the world
	// on failure.
	pending    bool
	sessionID  string
	snapshot   []*model.Message
	savedInput string
}

// New creates a controller over a store and a tutor client.
func New(st *store.Store, client TutorClient) *Controller {
	return &Controller{store: st, client: client}
}

// IsPending reports whether an exchange is in flight.
func (c *Controller) IsPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// =============================================================================
// EXCHANGE LIFECYCLE
// =============================================================================

// Begin starts an exchange for the active session: validates the input,
// snapshots the history, appends the question, and locks the controller
// until Complete or Fail is called.
func (c *Controller) Begin(input string) (*Exchange, error) {
	question := strings.TrimSpace(input)
	if question == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		return nil, ErrBusy
	}

	sess := c.store.Active()
	if sess == nil {
		return nil, ErrNoActiveSession
	}

	// Snapshot before the optimistic append so Fail restores exactly the
	// pre-question history.
	c.snapshot = sess.SnapshotHistory()
	c.savedInput = input
	c.sessionID = sess.ID

	userMsg := model.NewUserMessage(question)
	if err := c.store.AppendMessage(sess.ID, userMsg); err != nil {
		c.snapshot = nil
		c.savedInput = ""
		c.sessionID = ""
		return nil, err
	}
	c.pending = true

	return &Exchange{
		SessionID:     sess.ID,
		UserMessageID: userMsg.ID,
		Request: tutor.Request{
			DocumentDataURI: sess.Document.DataURI,
			Question:        question,
			ChatHistory:     buildTranscript(c.snapshot),
			ELIFMode:        sess.ELIFMode,
		},
	}, nil
}

// Complete resolves a pending exchange with the tutor's answer. The answer
// is appended to the session it started in; if that session is gone (or a
// different exchange superseded this one) the answer is dropped silently.
func (c *Controller) Complete(sessionID, answer string) (*model.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending || c.sessionID != sessionID {
		return nil, nil
	}
	c.clearLocked()

	if c.store.Get(sessionID) == nil {
		return nil, nil
	}

	msg := model.NewModelMessage(answer)
	if err := c.store.AppendMessage(sessionID, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Fail resolves a pending exchange that errored. The session's history is
// restored to the pre-question snapshot and the typed input comes back for
// the composer. A deleted session makes this a silent no-op.
func (c *Controller) Fail(sessionID string) (restoredInput string, rolledBack bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending || c.sessionID != sessionID {
		return "", false
	}
	snapshot, input := c.snapshot, c.savedInput
	c.clearLocked()

	if c.store.Get(sessionID) == nil {
		return "", false
	}
	if err := c.store.ReplaceHistory(sessionID, snapshot); err != nil {
		return "", false
	}
	return input, true
}

// clearLocked resets the pending state. Caller holds the lock.
func (c *Controller) clearLocked() {
	c.pending = false
	c.sessionID = ""
	c.snapshot = nil
	c.savedInput = ""
}

// =============================================================================
// SYNCHRONOUS ASK
// =============================================================================

// Ask runs a whole exchange in one call: Begin, the remote call, and
// Complete or Fail. Used by the plain REPL where nothing else can happen
// while the call runs. Returns the appended answer message.
func (c *Controller) Ask(ctx context.Context, input string) (*model.Message, error) {
	ex, err := c.Begin(input)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Ask(ctx, ex.Request)
	if err != nil {
		c.Fail(ex.SessionID)
		return nil, err
	}

	msg, err := c.Complete(ex.SessionID, resp.Answer)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrSessionGone
	}
	return msg, nil
}

// buildTranscript flattens a message snapshot the same way a session does.
func buildTranscript(msgs []*model.Message) string {
	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(msg.Role.String())
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
	}
	return sb.String()
}
