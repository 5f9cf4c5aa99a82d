// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lingcode/lingcode-tui/internal/ai"
	"github.com/lingcode/lingcode-tui/internal/util"
)

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is an ordered message history with metadata.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Model     string     `json:"model"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewConversation creates an empty conversation.
func NewConversation(modelName string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     "New Conversation",
		Model:     modelName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a message and refreshes metadata.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	if msg.Role == RoleUser && c.Title == "New Conversation" {
		c.Title = titleFrom(msg.Content)
	}
}

// AddUserMessage appends a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage appends an empty streaming assistant message.
func (c *Conversation) AddAssistantMessage() *Message {
	msg := NewAssistantMessage()
	c.AddMessage(msg)
	return msg
}

// LastMessage returns the most recent message, or nil when empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// AppendToLast streams a token into the last message.
func (c *Conversation) AppendToLast(token string) {
	if last := c.LastMessage(); last != nil {
		last.AppendToken(token)
	}
}

// FinalizeLast completes streaming on the last message.
func (c *Conversation) FinalizeLast(tokenCount int) {
	if last := c.LastMessage(); last != nil {
		last.FinalizeStream(tokenCount)
		c.UpdatedAt = time.Now()
	}
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty reports whether the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// EstimateTokens sums rough token estimates across the history.
func (c *Conversation) EstimateTokens() int {
	total := 0
	for _, m := range c.Messages {
		total += m.EstimateTokens()
	}
	return total
}

// ToWireMessages converts the history to the chat API wire format,
// skipping empty messages and unfinished streams.
func (c *Conversation) ToWireMessages() []ai.Message {
	out := make([]ai.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.IsStreaming || m.Content == "" {
			continue
		}
		out = append(out, ai.Message{Role: m.Role.String(), Content: m.Content})
	}
	return out
}

// ToWireMessagesWithOverride is ToWireMessages with the final user
// message replaced, used to substitute mention-expanded context for the
// raw prompt the user typed.
func (c *Conversation) ToWireMessagesWithOverride(lastUserContent string) []ai.Message {
	out := c.ToWireMessages()
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Role == string(RoleUser) {
			out[i].Content = lastUserContent
			break
		}
	}
	return out
}

// Meta summarizes a conversation for list views.
type Meta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Meta returns the conversation's summary metadata.
func (c *Conversation) Meta() Meta {
	return Meta{
		ID:           c.ID,
		Title:        c.Title,
		Model:        c.Model,
		MessageCount: len(c.Messages),
		UpdatedAt:    c.UpdatedAt,
	}
}

// titleFrom derives a short title from the first user prompt.
func titleFrom(content string) string {
	line := strings.TrimSpace(strings.SplitN(content, "\n", 2)[0])
	if line == "" {
		return "New Conversation"
	}
	return util.TruncateRunes(line, 50)
}
