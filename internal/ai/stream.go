// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// maxMalformedLines is how many consecutive unparseable lines the reader
// tolerates before treating the stream itself as broken.
const maxMalformedLines = 3

// StreamChunk is one parsed chunk of a streaming chat response.
type StreamChunk struct {
	// Content is the text delta in this chunk.
	Content string

	// Done marks the final chunk.
	Done bool

	// Model is the model name reported by the server.
	Model string

	// EvalCount is the generated token count (final chunk only).
	EvalCount int

	// Err is set on the terminal chunk when channel streaming fails.
	Err error
}

// StreamCallback is invoked for each chunk received during streaming.
type StreamCallback func(chunk StreamChunk)

// StreamReader parses newline-delimited JSON chat responses.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic accumulation
	accumulator strings.Builder
	model       string
	malformed   int
}

// NewStreamReader wraps an NDJSON response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Accumulated returns all content seen so far, including everything
// delivered before a mid-stream failure.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream completes or ctx is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: ctx.Err()}
		default:
		}

		chunk, err := s.readChunk()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if chunk != nil {
			callback(*chunk)
			if chunk.Done {
				return nil
			}
		}
	}
}

// readChunk reads and parses a single NDJSON line.
func (s *StreamReader) readChunk() (*StreamChunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &ClientError{Type: ErrTypeUnavailable, Message: "stream read failed", Cause: err}
	}

	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil, nil
	}

	var response struct {
		Model   string `json:"model"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		Done      bool   `json:"done"`
		ErrorMsg  string `json:"error,omitempty"`
		EvalCount int    `json:"eval_count,omitempty"`
	}
	if err := json.Unmarshal([]byte(trimmed), &response); err != nil {
		// Isolated garbage lines are skipped; a run of them means the
		// stream is broken and the accumulated prefix is all we get.
		s.malformed++
		if s.malformed >= maxMalformedLines {
			return nil, &ClientError{Type: ErrTypeMalformed, Message: ErrMalformed.Message, Cause: err}
		}
		return nil, nil
	}
	s.malformed = 0

	if response.ErrorMsg != "" {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: response.ErrorMsg}
	}
	if response.Model != "" {
		s.model = response.Model
	}
	if response.Message.Content != "" {
		s.accumulator.WriteString(response.Message.Content)
	}

	return &StreamChunk{
		Content:   response.Message.Content,
		Done:      response.Done,
		Model:     s.model,
		EvalCount: response.EvalCount,
	}, nil
}
