// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ai provides the HTTP client for streaming chat completions
// from a local Ollama-compatible model server.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnavailable
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeRateLimited
	ErrTypeMalformed
)

// ClientError represents an error from the model client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrUnavailable   = &ClientError{Type: ErrTypeUnavailable, Message: "model server is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
	ErrRateLimited   = &ClientError{Type: ErrTypeRateLimited, Message: "model server is rate limiting requests"}
	ErrMalformed     = &ClientError{Type: ErrTypeMalformed, Message: "model stream was malformed"}
)

// IsUnavailable reports whether err means the server is unreachable.
func IsUnavailable(err error) bool { return hasType(err, ErrTypeUnavailable) }

// IsTimeout reports whether err was caused by a timeout or cancellation.
func IsTimeout(err error) bool { return hasType(err, ErrTypeTimeout) }

// IsModelNotFound reports whether the requested model is missing.
func IsModelNotFound(err error) bool { return hasType(err, ErrTypeModelNotFound) }

// IsRateLimited reports whether the server rejected the request with 429.
func IsRateLimited(err error) bool { return hasType(err, ErrTypeRateLimited) }

// IsMalformed reports whether the response stream could not be parsed.
func IsMalformed(err error) bool { return hasType(err, ErrTypeMalformed) }

func hasType(err error, t ErrorType) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == t
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is one chat message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the streaming chat request body.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// serverError is the error body some endpoints return on failure.
type serverError struct {
	Error string `json:"error"`
}

// ModelInfo describes one model available on the server.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Config holds client options.
type Config struct {
	// BaseURL is the model server base URL. The explicit IPv4 default
	// avoids IPv6 localhost resolution problems on some platforms.
	BaseURL string

	// DefaultModel is used when a request does not name a model.
	DefaultModel string

	// Timeout applies to non-streaming requests only; streaming requests
	// are bounded by their context.
	Timeout time.Duration
}

// DefaultConfig returns the standard local-server configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://127.0.0.1:11434",
		DefaultModel: "qwen2.5-coder:7b",
		Timeout:      30 * time.Second,
	}
}

// Client talks to an Ollama-compatible chat API.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a client with the given configuration.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}
}

// DefaultModel returns the configured default model name.
func (c *Client) DefaultModel() string {
	return c.config.DefaultModel
}

// CheckRunning verifies the server is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrUnavailable
	}
	return nil
}

// ListModels returns the models available on the server.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp)
	}

	var payload struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &ClientError{Type: ErrTypeMalformed, Message: "failed to decode model list", Cause: err}
	}
	return payload.Models, nil
}

// ChatStream sends a streaming chat request and calls the callback for
// each chunk, synchronously and in arrival order. It returns when the
// stream completes, the context is cancelled, or the stream breaks.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message, callback StreamCallback) error {
	if model == "" {
		model = c.config.DefaultModel
	}

	body, err := json.Marshal(chatRequest{Model: model, Messages: messages, Stream: true})
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	// No client timeout for streaming; the context bounds the stream.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp)
	}

	return NewStreamReader(resp.Body).Process(ctx, callback)
}

// ChatStreamChan runs ChatStream in a goroutine and delivers chunks on
// a channel. Errors arrive as a final chunk with Err set; the channel
// is closed when the stream ends.
func (c *Client) ChatStreamChan(ctx context.Context, model string, messages []Message) <-chan StreamChunk {
	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		err := c.ChatStream(ctx, model, messages, func(chunk StreamChunk) {
			select {
			case ch <- chunk:
			case <-ctx.Done():
			}
		})
		if err != nil {
			select {
			case ch <- StreamChunk{Err: err, Done: true}:
			case <-ctx.Done():
			}
		}
	}()
	return ch
}

// classifyTransport maps transport failures to error categories.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	return &ClientError{Type: ErrTypeUnavailable, Message: ErrUnavailable.Message, Cause: err}
}

// classifyStatus maps HTTP error statuses to error categories, pulling
// the server's message out of the body when present.
func classifyStatus(resp *http.Response) error {
	var se serverError
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&se); err == nil && se.Error != "" {
		msg = se.Error
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return &ClientError{Type: ErrTypeModelNotFound, Message: msg}
	case http.StatusTooManyRequests:
		return &ClientError{Type: ErrTypeRateLimited, Message: msg}
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return &ClientError{Type: ErrTypeUnavailable, Message: msg}
	default:
		return &ClientError{Type: ErrTypeUnknown, Message: "request failed: " + msg}
	}
}
