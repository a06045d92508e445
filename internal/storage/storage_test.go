// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/morganforge/pdftutor/internal/model"
)

func testSession(t *testing.T) *model.Session {
	t.Helper()
	s := model.NewSession(model.Document{
		Name:    "biology.pdf",
		DataURI: "data:application/pdf;base64,JVBERi0=",
		Size:    8,
	})
	s.AddUserMessage("What is photosynthesis?")
	s.AddModelMessage("It is how plants make food from light.")
	return s
}

// =============================================================================
// STORED SHAPE TESTS
// =============================================================================

func TestSessionKey(t *testing.T) {
	if got := SessionKey("alice"); got != "chatSessions_alice" {
		t.Errorf("SessionKey = %q", got)
	}
}

func TestEncodeDecodeSessions_RoundTrip(t *testing.T) {
	orig := testSession(t)

	data, err := EncodeSessions([]*model.Session{orig})
	if err != nil {
		t.Fatalf("EncodeSessions failed: %v", err)
	}

	sessions, err := DecodeSessions(data)
	if err != nil {
		t.Fatalf("DecodeSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}

	got := sessions[0]
	if got.ID != orig.ID {
		t.Errorf("ID = %q, want %q", got.ID, orig.ID)
	}
	if got.Document.DataURI != orig.Document.DataURI {
		t.Error("Document data URI not preserved")
	}
	if got.MessageCount() != orig.MessageCount() {
		t.Fatalf("MessageCount = %d, want %d", got.MessageCount(), orig.MessageCount())
	}
	for i := range orig.Messages {
		if got.Messages[i].Content != orig.Messages[i].Content {
			t.Errorf("Messages[%d] content mismatch", i)
		}
		if got.Messages[i].Role != orig.Messages[i].Role {
			t.Errorf("Messages[%d] role mismatch", i)
		}
	}
}

func TestToStored_DropsRevealState(t *testing.T) {
	s := testSession(t)
	if !s.GetLastModelMessage().IsRevealing {
		t.Fatal("Precondition: model message should be revealing")
	}

	data, err := EncodeSessions([]*model.Session{s})
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := DecodeSessions(data)
	if err != nil {
		t.Fatal(err)
	}

	reloaded := sessions[0].GetLastModelMessage()
	if reloaded.IsRevealing {
		t.Error("Reloaded message should not be revealing")
	}
	if reloaded.VisibleContent() != reloaded.Content {
		t.Error("Reloaded message should be fully visible")
	}
}

// =============================================================================
// BACKEND TESTS
// =============================================================================

// backendFactories lets every contract test run against both backends.
func backendFactories(t *testing.T) map[string]func() Backend {
	t.Helper()
	return map[string]func() Backend{
		"file": func() Backend {
			b, err := NewFileBackendWithDir(t.TempDir())
			if err != nil {
				t.Fatalf("Failed to create file backend: %v", err)
			}
			return b
		},
		"sqlite": func() Backend {
			b, err := NewSQLiteBackendWithPath(filepath.Join(t.TempDir(), "sessions.db"))
			if err != nil {
				t.Fatalf("Failed to create sqlite backend: %v", err)
			}
			return b
		},
	}
}

func TestBackend_SaveLoadRoundTrip(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			key := SessionKey("alice")
			if err := b.Save(key, []byte(`[{"id":"s1"}]`)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			data, err := b.Load(key)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if string(data) != `[{"id":"s1"}]` {
				t.Errorf("Load = %q", string(data))
			}
		})
	}
}

func TestBackend_LoadMissingKey(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			_, err := b.Load(SessionKey("nobody"))
			if !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Expected ErrKeyNotFound, got %v", err)
			}
		})
	}
}

func TestBackend_Overwrite(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			key := SessionKey("alice")
			if err := b.Save(key, []byte("old")); err != nil {
				t.Fatal(err)
			}
			if err := b.Save(key, []byte("new")); err != nil {
				t.Fatal(err)
			}

			data, err := b.Load(key)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "new" {
				t.Errorf("Load = %q, want %q", string(data), "new")
			}
		})
	}
}

func TestBackend_KeysIsolatedPerUser(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			if err := b.Save(SessionKey("alice"), []byte("[]")); err != nil {
				t.Fatal(err)
			}
			if err := b.Save(SessionKey("bob"), []byte("[]")); err != nil {
				t.Fatal(err)
			}

			keys, err := b.Keys()
			if err != nil {
				t.Fatal(err)
			}
			if len(keys) != 2 {
				t.Fatalf("Keys = %v, want 2 entries", keys)
			}
			if keys[0] != "chatSessions_alice" || keys[1] != "chatSessions_bob" {
				t.Errorf("Keys = %v", keys)
			}
		})
	}
}

func TestBackend_DeleteAbsentKey(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			if err := b.Delete(SessionKey("ghost")); err != nil {
				t.Errorf("Delete of absent key should not error: %v", err)
			}
		})
	}
}

func TestBackend_Delete(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			key := SessionKey("alice")
			if err := b.Save(key, []byte("[]")); err != nil {
				t.Fatal(err)
			}
			if err := b.Delete(key); err != nil {
				t.Fatal(err)
			}
			if _, err := b.Load(key); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Expected ErrKeyNotFound after delete, got %v", err)
			}
		})
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	s := testSession(t)
	md := ExportMarkdown(s)

	if !strings.Contains(md, "# biology.pdf") {
		t.Error("Markdown missing title")
	}
	if !strings.Contains(md, "## You") || !strings.Contains(md, "## Tutor") {
		t.Error("Markdown missing role headings")
	}
	if !strings.Contains(md, "What is photosynthesis?") {
		t.Error("Markdown missing message content")
	}
	if strings.Contains(md, "base64") {
		t.Error("Markdown should not embed the document payload")
	}
}

func TestFormatSessionList(t *testing.T) {
	s := testSession(t)
	out := FormatSessionList([]*model.Session{s}, s.ID)

	if !strings.Contains(out, "biology.pdf") {
		t.Error("List missing document name")
	}
	if !strings.Contains(out, "* ") {
		t.Error("Active session should be marked")
	}
}

func TestFormatSessionList_Empty(t *testing.T) {
	if got := FormatSessionList(nil, ""); got != "No sessions found." {
		t.Errorf("Empty list = %q", got)
	}
}
