// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/sanitize"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is the state of one chat session: the conversation history,
// files being streamed, actions in flight, and the render buffer.
// It is owned by a single UI loop and is not safe for concurrent use
// except for Buffer, which is designed for cross-goroutine streaming.
type Session struct {
	Conversation *model.Conversation
	Buffer       *StreamingBuffer

	sanitizer *sanitize.Sanitizer
	files     []*StreamingFile
	byPath    map[string]*StreamingFile
	actions   []Action
	byID      map[string]int

	cancel  context.CancelFunc
	failure FailureCategory
}

// New creates a session for the given model name.
func New(modelName string, sanitizer *sanitize.Sanitizer) *Session {
	if sanitizer == nil {
		sanitizer = sanitize.NewDefault()
	}
	return &Session{
		Conversation: model.NewConversation(modelName),
		Buffer:       NewStreamingBuffer(),
		sanitizer:    sanitizer,
		byPath:       make(map[string]*StreamingFile),
		byID:         make(map[string]int),
	}
}

// =============================================================================
// STREAM LIFECYCLE
// =============================================================================

// StartStream derives a cancellable context for one generation run and
// resets the failure state.
func (s *Session) StartStream(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.failure = FailureNone
	return ctx
}

// Stop signals cooperative cancellation of the current stream. Content
// already streamed stays valid and displayable.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Fail records the terminal failure state for the current stream.
func (s *Session) Fail(err error) {
	s.failure = Classify(err)
}

// Failure returns the session's failure state, FailureNone when healthy.
func (s *Session) Failure() FailureCategory {
	return s.failure
}

// =============================================================================
// FILES
// =============================================================================

// FileFor returns the streaming file for a path, creating it on first
// use. originalLines is only consulted on creation.
func (s *Session) FileFor(path string, originalLines []string) *StreamingFile {
	if f, ok := s.byPath[path]; ok {
		return f
	}
	f := NewStreamingFile(path, originalLines, s.sanitizer)
	s.files = append(s.files, f)
	s.byPath[path] = f
	return f
}

// Files returns the session's files in creation order.
func (s *Session) Files() []*StreamingFile {
	return s.files
}

// FreezeAll freezes every file still streaming. Called when the stream
// completes or is cancelled.
func (s *Session) FreezeAll() {
	for _, f := range s.files {
		f.Freeze()
	}
}

// =============================================================================
// ACTIONS
// =============================================================================

// AddAction registers a new pending action and returns it.
func (s *Session) AddAction(name, filePath, fileContent string) Action {
	a := NewAction(name, filePath, fileContent)
	s.byID[a.ID] = len(s.actions)
	s.actions = append(s.actions, a)
	return a
}

// ApplyEvent advances one action through the reducer and stores the
// new value.
func (s *Session) ApplyEvent(actionID string, ev Event) (Action, error) {
	i, ok := s.byID[actionID]
	if !ok {
		return Action{}, ErrInvalidTransition
	}
	next, err := Apply(s.actions[i], ev)
	if err != nil {
		return s.actions[i], err
	}
	s.actions[i] = next
	return next, nil
}

// Actions returns a copy of the action list in creation order.
func (s *Session) Actions() []Action {
	out := make([]Action, len(s.actions))
	copy(out, s.actions)
	return out
}
