// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the conversation domain types.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lingcode/lingcode-tui/internal/util"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) String() string {
	return string(r)
}

// DisplayName returns the role name shown in the transcript.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "LingCode"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single message in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`

	// Streaming state, not persisted.
	// PERFORMANCE: strings.Builder avoids quadratic allocations while
	// tokens arrive.
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	TokenCount int `json:"token_count,omitempty"`

	// ContextMentions records the raw @mentions the user included.
	ContextMentions []string `json:"context_mentions,omitempty"`
}

// NewMessage creates a message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an empty assistant message in streaming state.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// AppendToken appends a streamed token. No-op once finalized.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
	}
}

// FinalizeStream merges streamed content into Content and leaves the
// streaming state. Safe to call more than once.
func (m *Message) FinalizeStream(tokenCount int) {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
	if tokenCount > 0 {
		m.TokenCount = tokenCount
	}
}

// DisplayContent returns the text to render, streamed or final.
func (m *Message) DisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns a single-line preview of the content.
func (m *Message) Preview(maxLen int) string {
	line := strings.ReplaceAll(m.DisplayContent(), "\n", " ")
	return util.TruncateRunes(strings.TrimSpace(line), maxLen)
}

// IsEmpty reports whether the message has no content at all.
func (m *Message) IsEmpty() bool {
	return m.DisplayContent() == ""
}

// EstimateTokens roughly estimates the token count (~4 chars per token).
func (m *Message) EstimateTokens() int {
	return len(m.DisplayContent()) / 4
}
