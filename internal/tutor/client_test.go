// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testDataURI = "data:application/pdf;base64,JVBERi0xLjQ="

// =============================================================================
// PROMPT TESTS
// =============================================================================

func TestBuildPrompt_ContainsQuestionAndHistory(t *testing.T) {
	prompt := BuildPrompt("What is photosynthesis?", "user: hi\nmodel: hello", false)

	if !strings.Contains(prompt, "My Question: What is photosynthesis?") {
		t.Error("Prompt missing question")
	}
	if !strings.Contains(prompt, "Previous Chat History: user: hi\nmodel: hello") {
		t.Error("Prompt missing chat history")
	}
	if !strings.Contains(prompt, "adaptive and highly effective tutor") {
		t.Error("Prompt missing persona")
	}
}

func TestBuildPrompt_ELIFToggle(t *testing.T) {
	without := BuildPrompt("q", "", false)
	if strings.Contains(without, "Explain Like I'm Five") {
		t.Error("ELIF block present when mode is off")
	}

	with := BuildPrompt("q", "", true)
	if !strings.Contains(with, "Explain Like I'm Five") {
		t.Error("ELIF block missing when mode is on")
	}
	if !strings.Contains(with, "do NOT announce") {
		t.Error("ELIF block should forbid announcing the mode")
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func answerResponse(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}]}}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestClient_Ask_Success(t *testing.T) {
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(answerResponse("Plants use light to make food.")))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	resp, err := client.Ask(context.Background(), Request{
		DocumentDataURI: testDataURI,
		Question:        "What is photosynthesis?",
		ChatHistory:     "user: hi\nmodel: hello",
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Answer != "Plants use light to make food." {
		t.Errorf("Answer = %q", resp.Answer)
	}

	// The document goes as inline data, the prompt as a text part.
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 2 {
		t.Fatal("Request should carry one content with two parts")
	}
	blob := gotBody.Contents[0].Parts[0].InlineData
	if blob == nil || blob.MimeType != "application/pdf" {
		t.Error("First part should be the PDF inline data")
	}
	text := gotBody.Contents[0].Parts[1].Text
	if !strings.Contains(text, "My Question: What is photosynthesis?") {
		t.Error("Text part missing question")
	}
	if !strings.Contains(text, "user: hi\nmodel: hello") {
		t.Error("Text part missing transcript")
	}
}

func TestClient_Ask_NotConfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Ask(context.Background(), Request{
		DocumentDataURI: testDataURI,
		Question:        "q",
	})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestClient_Ask_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"internal"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL).WithMaxRetries(1)
	_, err := client.Ask(context.Background(), Request{
		DocumentDataURI: testDataURI,
		Question:        "q",
	})
	if !errors.Is(err, ErrRemoteCallFailed) {
		t.Errorf("Expected ErrRemoteCallFailed, got %v", err)
	}
}

func TestClient_Ask_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"message":"bad key"}}`))
	}))
	defer server.Close()

	client := NewClient("bad-key").WithBaseURL(server.URL).WithMaxRetries(1)
	_, err := client.Ask(context.Background(), Request{
		DocumentDataURI: testDataURI,
		Question:        "q",
	})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed, got %v", err)
	}
	if !errors.Is(err, ErrRemoteCallFailed) {
		t.Error("Auth failures should also match ErrRemoteCallFailed")
	}
}

func TestClient_Ask_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"message":"transient"}}`))
			return
		}
		w.Write([]byte(answerResponse("recovered")))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	resp, err := client.Ask(context.Background(), Request{
		DocumentDataURI: testDataURI,
		Question:        "q",
	})
	if err != nil {
		t.Fatalf("Ask failed after retry: %v", err)
	}
	if resp.Answer != "recovered" || attempts != 2 {
		t.Errorf("Answer = %q, attempts = %d", resp.Answer, attempts)
	}
}

func TestClient_Ask_EmptyAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Ask(context.Background(), Request{
		DocumentDataURI: testDataURI,
		Question:        "q",
	})
	if !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("Expected ErrEmptyAnswer, got %v", err)
	}
}

func TestClient_Ask_BadDataURI(t *testing.T) {
	client := NewClient("test-key")
	_, err := client.Ask(context.Background(), Request{
		DocumentDataURI: "data:text/plain;base64,aGk=",
		Question:        "q",
	})
	if !errors.Is(err, ErrRemoteCallFailed) {
		t.Errorf("Expected ErrRemoteCallFailed, got %v", err)
	}
}

func TestClient_APIKeyMasked(t *testing.T) {
	client := NewClient("super-secret-key")
	masked := client.APIKeyMasked()
	if strings.Contains(masked, "secret") {
		t.Errorf("Masked key leaks content: %q", masked)
	}
	if NewClient("").APIKeyMasked() != "[not set]" {
		t.Error("Empty key should mask as [not set]")
	}
}
