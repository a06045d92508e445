// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/morganforge/pdftutor/internal/attach"
)

// Configuration constants for the Gemini API.
const (
	// DefaultBaseURL is the base URL for the Gemini API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used for tutoring answers.
	DefaultModel = "gemini-1.5-flash"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for transient errors.
	DefaultMaxRetries = 3

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// Error variables for common tutoring call failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("Gemini API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrRemoteCallFailed indicates the tutoring call failed for any other
	// reason. Callers roll back their optimistic state on this error.
	ErrRemoteCallFailed = errors.New("tutoring call failed")

	// ErrEmptyAnswer indicates the backend returned no usable answer.
	ErrEmptyAnswer = errors.New("empty answer from backend")
)

// APIError represents an error response from the Gemini API.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("Gemini error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// Request carries everything one tutoring exchange needs. The backend is
// stateless, so the document and the full transcript travel every time.
type Request struct {
	// DocumentDataURI is the attached PDF as a base64 data URI.
	DocumentDataURI string

	// Question is the user's current question.
	Question string

	// ChatHistory is the prior transcript, newline-joined "role: content".
	ChatHistory string

	// ELIFMode asks for simplified explanations.
	ELIFMode bool
}

// Response holds the tutor's answer.
type Response struct {
	Answer string
}

// Wire types for the generateContent endpoint.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the Gemini generateContent API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int

	// limiter spaces out requests so interactive typing can't hammer the
	// backend past its free-tier quota.
	limiter *rate.Limiter
}

// NewClient creates a new tutoring client with the given API key.
//
// If the API key is empty the client is still created, but Ask requests will
// fail with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithModel sets the model to use for tutoring requests.
func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// Model returns the current model.
func (c *Client) Model() string {
	return c.model
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a masked version of the API key for display.
// SECURITY: Never exposes key fragments - uses a fingerprint instead.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.keyFingerprint())
}

// keyFingerprint returns a SHA-256 based fingerprint of the API key.
func (c *Client) keyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// ASK
// =============================================================================

// Ask sends one tutoring question and returns the answer.
//
// Transient failures (5xx, rate limiting) are retried with exponential
// backoff. Every failure path wraps ErrRemoteCallFailed so callers can treat
// the whole taxonomy as one rollback trigger.
func (c *Client) Ask(ctx context.Context, req Request) (*Response, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: empty question", ErrRemoteCallFailed)
	}

	payload, err := attach.Base64Payload(req.DocumentDataURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteCallFailed, err)
	}

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: "application/pdf", Data: payload}},
				{Text: BuildPrompt(req.Question, req.ChatHistory, req.ELIFMode)},
			},
		}},
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.doRequest(ctx, body)
		if err != nil {
			if c.isRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, fmt.Errorf("max retries exceeded: %w", ErrRemoteCallFailed)
}

// doRequest performs a single generateContent request.
func (c *Client) doRequest(ctx context.Context, body generateRequest) (*Response, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrRemoteCallFailed, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrRemoteCallFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)
	httpReq.Header.Set("User-Agent", "pdftutor/0.3.0")

	c.logRequest(httpReq)
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)

	// SECURITY: Clear the key header immediately after the request so it
	// never reaches a log line.
	httpReq.Header.Del("x-goog-api-key")

	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrRemoteCallFailed, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	respBody, err := readResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteCallFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrRemoteCallFailed, err)
	}

	answer := extractAnswer(&genResp)
	if answer == "" {
		return nil, fmt.Errorf("%w: %w", ErrRemoteCallFailed, ErrEmptyAnswer)
	}
	return &Response{Answer: answer}, nil
}

// extractAnswer joins the text parts of the first candidate.
func extractAnswer(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to Go errors. Every
// branch wraps ErrRemoteCallFailed.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	message := http.StatusText(statusCode)
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	wireErr := &APIError{Status: statusCode, Message: message}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w: %s", ErrRemoteCallFailed, ErrAuthFailed, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %s", ErrRemoteCallFailed, ErrRateLimited, message)
	default:
		return fmt.Errorf("%w: %w", ErrRemoteCallFailed, wireErr)
	}
}

// isRetryable reports whether an error is worth another attempt.
func (c *Client) isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return false
}

// calculateBackoff returns the exponential backoff delay for an attempt.
// Delays: 500ms, 1s, 2s, capped at 10s.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := 500 * time.Millisecond * time.Duration(1<<(attempt-1))
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	return delay
}

// logRequest logs an API request without exposing sensitive data.
// TUTOR: Secure logging - no headers, no body.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}
