// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// messages.go - Bubble Tea message types for the chat view.

package chat

import (
	"time"

	"github.com/lingcode/lingcode-tui/internal/ai"
	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/terminal"
)

// =============================================================================
// WIRING MESSAGES
// =============================================================================

// AttachRunnerMsg delivers the stream runner once the tea.Program
// exists. The runner needs the program to send messages and the model
// needs the runner, so the cycle resolves through the message loop.
type AttachRunnerMsg struct {
	Runner *StreamRunner
}

// CommandDoneMsg reports a finished /run shell command.
type CommandDoneMsg struct {
	Command string
	Result  terminal.Result
	Err     error
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// ContextReadyMsg reports the finished mention expansion for a pending
// prompt. Prompt is what actually goes on the wire.
type ContextReadyMsg struct {
	MessageID    string
	Prompt       string
	MentionCount int
}

// StreamStartMsg indicates streaming has begun for a message.
type StreamStartMsg struct {
	MessageID string
	StartTime time.Time
}

// StreamTickMsg drives batched token flushes at the render frame rate.
type StreamTickMsg struct {
	Time time.Time
}

// StreamCompleteMsg indicates the stream finished successfully.
type StreamCompleteMsg struct {
	MessageID string
	Tokens    int
}

// StreamErrorMsg indicates the stream failed or was cancelled.
type StreamErrorMsg struct {
	MessageID string
	Err       error
}

// =============================================================================
// SERVER MESSAGES
// =============================================================================

// ServerStatusMsg reports whether the model server is reachable.
type ServerStatusMsg struct {
	Running bool
	Err     error
}

// ModelsMsg carries the list of installed models.
type ModelsMsg struct {
	Models []ai.ModelInfo
	Err    error
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// ConversationSavedMsg reports the result of a background save.
type ConversationSavedMsg struct {
	ID  string
	Err error
}

// SessionsListedMsg carries saved conversation summaries for /sessions.
type SessionsListedMsg struct {
	Metas []model.Meta
	Err   error
}

// ConversationLoadedMsg carries a conversation restored from the store.
type ConversationLoadedMsg struct {
	Conversation *model.Conversation
	Err          error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// StatusClearMsg clears a transient status line message.
type StatusClearMsg struct{}
