// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/morganforge/pdftutor/internal/model"
	"github.com/morganforge/pdftutor/internal/storage"
	"github.com/morganforge/pdftutor/internal/store"
	"github.com/morganforge/pdftutor/internal/tutor"
)

// fakeClient returns canned answers or errors. onAsk, when set, runs before
// the response is produced.
type fakeClient struct {
	answer   string
	err      error
	requests []tutor.Request
	onAsk    func()
}

func (f *fakeClient) Ask(ctx context.Context, req tutor.Request) (*tutor.Response, error) {
	f.requests = append(f.requests, req)
	if f.onAsk != nil {
		f.onAsk()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &tutor.Response{Answer: f.answer}, nil
}

func newTestController(t *testing.T) (*Controller, *store.Store, *fakeClient) {
	t.Helper()
	backend, err := storage.NewFileBackendWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st := store.New("alice", backend)
	if err := st.Load(); err != nil {
		t.Fatal(err)
	}
	client := &fakeClient{answer: "An answer."}
	return New(st, client), st, client
}

func createSession(t *testing.T, st *store.Store) *model.Session {
	t.Helper()
	return st.Create(model.Document{
		Name:    "biology.pdf",
		DataURI: "data:application/pdf;base64,JVBERi0=",
		Size:    8,
	})
}

// =============================================================================
// GUARD TESTS
// =============================================================================

func TestBegin_RejectsEmptyInput(t *testing.T) {
	c, st, _ := newTestController(t)
	createSession(t, st)

	for _, input := range []string{"", "   ", "\n\t "} {
		if _, err := c.Begin(input); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Begin(%q) = %v, want ErrEmptyInput", input, err)
		}
	}
	if st.Active().MessageCount() != 0 {
		t.Error("Rejected input still appended a message")
	}
}

func TestBegin_RejectsWithoutActiveSession(t *testing.T) {
	c, _, _ := newTestController(t)
	if _, err := c.Begin("question"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Expected ErrNoActiveSession, got %v", err)
	}
}

func TestBegin_RejectsWhilePending(t *testing.T) {
	c, st, _ := newTestController(t)
	createSession(t, st)

	if _, err := c.Begin("first"); err != nil {
		t.Fatalf("First Begin failed: %v", err)
	}
	if _, err := c.Begin("second"); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
}

// =============================================================================
// OPTIMISTIC APPEND
// =============================================================================

func TestBegin_AppendsQuestionImmediately(t *testing.T) {
	c, st, _ := newTestController(t)
	sess := createSession(t, st)

	ex, err := c.Begin("  What is photosynthesis?  ")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if sess.MessageCount() != 1 {
		t.Fatalf("MessageCount = %d, want 1", sess.MessageCount())
	}
	msg := sess.Messages[0]
	if msg.Role != model.RoleUser || msg.Content != "What is photosynthesis?" {
		t.Errorf("Appended message = %s %q", msg.Role, msg.Content)
	}
	if ex.UserMessageID != msg.ID {
		t.Error("Exchange does not reference the appended message")
	}
	if !c.IsPending() {
		t.Error("Controller should be pending")
	}
}

func TestBegin_RequestExcludesCurrentQuestionFromHistory(t *testing.T) {
	c, st, _ := newTestController(t)
	sess := createSession(t, st)
	sess.AddUserMessage("earlier question")
	sess.AddModelMessage("earlier answer")
	st.Get(sess.ID).GetLastModelMessage().FinishReveal()

	ex, err := c.Begin("new question")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	want := "user: earlier question\nmodel: earlier answer"
	if ex.Request.ChatHistory != want {
		t.Errorf("ChatHistory = %q, want %q", ex.Request.ChatHistory, want)
	}
	if ex.Request.Question != "new question" {
		t.Errorf("Question = %q", ex.Request.Question)
	}
	if ex.Request.DocumentDataURI != sess.Document.DataURI {
		t.Error("Request missing document")
	}
}

// =============================================================================
// COMPLETE / FAIL
// =============================================================================

func TestComplete_AppendsAnswer(t *testing.T) {
	c, st, _ := newTestController(t)
	sess := createSession(t, st)

	ex, _ := c.Begin("question")
	msg, err := c.Complete(ex.SessionID, "the answer")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if msg == nil || msg.Role != model.RoleModel || msg.Content != "the answer" {
		t.Fatalf("Unexpected answer message: %+v", msg)
	}
	if sess.MessageCount() != 2 {
		t.Errorf("MessageCount = %d, want 2", sess.MessageCount())
	}
	if c.IsPending() {
		t.Error("Controller should be idle after Complete")
	}
}

func TestFail_RollsBackAndRestoresInput(t *testing.T) {
	c, st, _ := newTestController(t)
	sess := createSession(t, st)
	sess.AddUserMessage("kept question")
	sess.AddModelMessage("kept answer")

	ex, err := c.Begin("doomed question")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if sess.MessageCount() != 3 {
		t.Fatal("Optimistic append missing")
	}

	input, rolledBack := c.Fail(ex.SessionID)
	if !rolledBack {
		t.Fatal("Fail should report a rollback")
	}
	if input != "doomed question" {
		t.Errorf("Restored input = %q", input)
	}

	got := st.Get(sess.ID)
	if got.MessageCount() != 2 {
		t.Fatalf("MessageCount after rollback = %d, want 2", got.MessageCount())
	}
	if got.Messages[0].Content != "kept question" || got.Messages[1].Content != "kept answer" {
		t.Error("Rollback altered the kept history")
	}
	if c.IsPending() {
		t.Error("Controller should be idle after Fail")
	}
}

func TestComplete_StaleSessionIsSilentNoOp(t *testing.T) {
	c, st, _ := newTestController(t)
	sess := createSession(t, st)

	ex, _ := c.Begin("question")
	// The session disappears while the call is in flight.
	if err := st.Delete(sess.ID); err != nil {
		t.Fatal(err)
	}

	msg, err := c.Complete(ex.SessionID, "orphan answer")
	if err != nil {
		t.Fatalf("Stale Complete should not error: %v", err)
	}
	if msg != nil {
		t.Error("Stale Complete should drop the answer")
	}
	if c.IsPending() {
		t.Error("Controller should be idle after stale resolve")
	}
}

func TestFail_StaleSessionIsSilentNoOp(t *testing.T) {
	c, st, _ := newTestController(t)
	sess := createSession(t, st)

	ex, _ := c.Begin("question")
	if err := st.Delete(sess.ID); err != nil {
		t.Fatal(err)
	}

	input, rolledBack := c.Fail(ex.SessionID)
	if rolledBack || input != "" {
		t.Error("Stale Fail should be a silent no-op")
	}
}

func TestComplete_WrongSessionIDIsNoOp(t *testing.T) {
	c, st, _ := newTestController(t)
	sess := createSession(t, st)

	c.Begin("question")
	msg, err := c.Complete("some-other-id", "answer")
	if err != nil || msg != nil {
		t.Error("Complete with a foreign session ID should be a no-op")
	}
	// The real exchange was not consumed by the foreign resolve.
	if st.Get(sess.ID).MessageCount() != 1 {
		t.Error("History changed")
	}
}

// =============================================================================
// FULL EXCHANGES
// =============================================================================

func TestAsk_TwoExchangesBuildTranscript(t *testing.T) {
	c, st, client := newTestController(t)
	createSession(t, st)

	client.answer = "It is how plants make food from light."
	if _, err := c.Ask(context.Background(), "What is photosynthesis?"); err != nil {
		t.Fatalf("First Ask failed: %v", err)
	}

	client.answer = "Chlorophyll reflects green light."
	if _, err := c.Ask(context.Background(), "Why do leaves look green?"); err != nil {
		t.Fatalf("Second Ask failed: %v", err)
	}

	if len(client.requests) != 2 {
		t.Fatalf("Requests = %d, want 2", len(client.requests))
	}
	if client.requests[0].ChatHistory != "" {
		t.Errorf("First request history = %q, want empty", client.requests[0].ChatHistory)
	}
	want := "user: What is photosynthesis?\n" +
		"model: It is how plants make food from light."
	if client.requests[1].ChatHistory != want {
		t.Errorf("Second request history = %q, want %q", client.requests[1].ChatHistory, want)
	}

	sess := st.Active()
	if sess.MessageCount() != 4 {
		t.Errorf("MessageCount = %d, want 4", sess.MessageCount())
	}
}

func TestAsk_FailureLeavesHistoryUntouched(t *testing.T) {
	c, st, client := newTestController(t)
	sess := createSession(t, st)
	client.err = tutor.ErrRemoteCallFailed

	_, err := c.Ask(context.Background(), "question")
	if !errors.Is(err, tutor.ErrRemoteCallFailed) {
		t.Fatalf("Expected remote failure, got %v", err)
	}
	if st.Get(sess.ID).MessageCount() != 0 {
		t.Error("Failed exchange left messages behind")
	}
	if c.IsPending() {
		t.Error("Controller stuck pending after failure")
	}
}

func TestAsk_SessionDeletedMidCallReturnsError(t *testing.T) {
	c, st, client := newTestController(t)
	sess := createSession(t, st)
	client.onAsk = func() {
		if err := st.Delete(sess.ID); err != nil {
			t.Errorf("Delete: %v", err)
		}
	}

	msg, err := c.Ask(context.Background(), "question")
	if !errors.Is(err, ErrSessionGone) {
		t.Fatalf("err = %v, want ErrSessionGone", err)
	}
	if msg != nil {
		t.Errorf("msg = %v, want nil", msg)
	}
	if c.IsPending() {
		t.Error("Controller stuck pending after dropped answer")
	}
}

func TestAsk_ELIFModeFlowsThrough(t *testing.T) {
	c, st, client := newTestController(t)
	sess := createSession(t, st)
	if err := st.SetELIFMode(sess.ID, true); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Ask(context.Background(), "question"); err != nil {
		t.Fatal(err)
	}
	if !client.requests[0].ELIFMode {
		t.Error("ELIF mode not passed to the client")
	}
}
