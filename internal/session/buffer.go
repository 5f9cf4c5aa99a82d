// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"sync"
	"time"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches streamed tokens for rendering. Tokens are
// accumulated and released either when the batch size threshold is
// reached or when enough time has passed since the last flush, capping
// the render rate. Unbounded per-token repaints cause flicker and burn
// CPU at high token rates.
//
// Thread-safety: Write runs on the streaming goroutine while Flush runs
// on the UI loop, so all operations hold the mutex.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	tokenCount int
	lastFlush  time.Time

	batchSize int
	minFlush  time.Duration
}

// NewStreamingBuffer creates a buffer with default settings: 15 tokens
// per batch, at most 30 flushes per second.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(15, 30)
}

// NewStreamingBufferWithConfig creates a buffer with a custom batch
// size and frame-rate cap.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = 15
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}
	return &StreamingBuffer{
		batchSize: batchSize,
		minFlush:  time.Duration(1000/maxFPS) * time.Millisecond,
		lastFlush: time.Now(),
	}
}

// Write appends one token. Called from the streaming goroutine.
func (sb *StreamingBuffer) Write(token string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buffer.WriteString(token)
	sb.tokenCount++
}

// Flush returns the accumulated content if either threshold has been
// reached. The second return is false when nothing should be rendered
// yet.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}
	if sb.tokenCount < sb.batchSize && time.Since(sb.lastFlush) < sb.minFlush {
		return "", false
	}
	return sb.drainLocked(), true
}

// FlushAll drains everything regardless of thresholds. Used when the
// stream completes so no trailing tokens are lost.
func (sb *StreamingBuffer) FlushAll() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}
	return sb.drainLocked(), true
}

// Pending reports whether undelivered content is buffered.
func (sb *StreamingBuffer) Pending() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buffer.Len() > 0
}

func (sb *StreamingBuffer) drainLocked() string {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.tokenCount = 0
	sb.lastFlush = time.Now()
	return content
}
