// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingcode/lingcode-tui/internal/config"
	"github.com/lingcode/lingcode-tui/internal/session"
	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

// =============================================================================
// COMPLETION
// =============================================================================

func TestCompletionCandidates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"bare at sign matches everything", "@", []string{
			"@file:", "@folder", "@codebase", "@selection",
			"@terminal", "@web:", "@docs:", "@notepad",
		}},
		{"prefix narrows", "@f", []string{"@file:", "@folder"}},
		{"mid-sentence token", "explain @co", []string{"@codebase"}},
		{"no at sign", "hello", nil},
		{"trailing space resets", "@f ", nil},
		{"value part closes completion", "@file:main.go", nil},
		{"no self match", "@notepad", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completionCandidates(tt.input))
		})
	}
}

func TestReplaceLastToken(t *testing.T) {
	assert.Equal(t, "explain @codebase", replaceLastToken("explain @co", "@codebase"))
	assert.Equal(t, "@file:", replaceLastToken("@f", "@file:"))
	assert.Equal(t, "look at @file:", replaceLastToken("look at ", "@file:"))
}

func TestAcceptCompletion(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("check @f")
	m = m.updateCompletions()
	require.True(t, m.showCompletions)
	require.Equal(t, []string{"@file:", "@folder"}, m.completions)

	m.completionIndex = 1
	m = m.acceptCompletion()
	assert.Equal(t, "check @folder", m.input.Value())
	assert.False(t, m.showCompletions)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func TestParseSlashCommand(t *testing.T) {
	tests := []struct {
		input string
		name  string
		arg   string
	}{
		{"/help", "help", ""},
		{"/model llama3.2", "model", "llama3.2"},
		{"/MODEL llama3.2", "model", "llama3.2"},
		{"/load  abc-123 ", "load", "abc-123"},
		{"/new", "new", ""},
	}
	for _, tt := range tests {
		cmd := parseSlashCommand(tt.input)
		assert.Equal(t, tt.name, cmd.Name, tt.input)
		assert.Equal(t, tt.arg, cmd.Arg, tt.input)
	}
}

func TestSlashModelSwitch(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.handleSlashCommand("/model qwen2.5-coder")
	got := updated.(Model)
	assert.Equal(t, "qwen2.5-coder", got.sess.Conversation.Model)
}

func TestSlashUnknownCommand(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.handleSlashCommand("/bogus")
	got := updated.(Model)
	assert.Contains(t, got.statusMsg, "unknown command")
}

// =============================================================================
// STREAM LIFECYCLE
// =============================================================================

func TestStreamTickDrainsBuffer(t *testing.T) {
	m := newTestModel(t)
	m.width, m.height = 100, 30

	conv := m.sess.Conversation
	conv.AddUserMessage("hi")
	reply := conv.AddAssistantMessage()
	m.streamingMsgID = reply.ID
	m.state = StateStreaming

	// Batch size 1 so the first tick flushes without waiting out the
	// frame-rate cap.
	m.sess.Buffer = session.NewStreamingBufferWithConfig(1, 30)
	m.sess.Buffer.Write("hel")
	m.sess.Buffer.Write("lo")

	updated, cmd := m.handleStreamTick()
	got := updated.(Model)
	assert.Equal(t, "hello", reply.DisplayContent())
	assert.NotNil(t, cmd, "streaming keeps ticking")
	assert.Equal(t, StateStreaming, got.state)
}

func TestStreamCompleteFinalizesAndSanitizes(t *testing.T) {
	m := newTestModel(t)
	m.width, m.height = 100, 30

	conv := m.sess.Conversation
	conv.AddUserMessage("hi")
	reply := conv.AddAssistantMessage()
	m.streamingMsgID = reply.ID
	m.state = StateStreaming

	m.sess.Buffer.Write("Let me work through this first.\n")
	m.sess.Buffer.Write("the answer")

	updated, _ := m.handleStreamComplete(StreamCompleteMsg{MessageID: reply.ID, Tokens: 5})
	got := updated.(Model)

	assert.Equal(t, StateReady, got.state)
	assert.Empty(t, got.streamingMsgID)
	assert.Equal(t, "the answer", reply.Content, "narrative line stripped, answer kept")
	assert.False(t, reply.IsStreaming)
	assert.Equal(t, 5, reply.TokenCount)
}

func TestStreamCompleteIgnoresStaleMessage(t *testing.T) {
	m := newTestModel(t)
	m.streamingMsgID = "current"
	m.state = StateStreaming

	updated, _ := m.handleStreamComplete(StreamCompleteMsg{MessageID: "stale"})
	got := updated.(Model)
	assert.Equal(t, StateStreaming, got.state)
}

func TestStreamErrorKeepsPartialContent(t *testing.T) {
	m := newTestModel(t)
	m.width, m.height = 100, 30

	conv := m.sess.Conversation
	conv.AddUserMessage("hi")
	reply := conv.AddAssistantMessage()
	m.streamingMsgID = reply.ID
	m.lastPrompt = "hi"
	m.state = StateStreaming

	m.sess.Buffer.Write("partial ")
	updated, _ := m.handleStreamError(StreamErrorMsg{MessageID: reply.ID, Err: assert.AnError})
	got := updated.(Model)

	assert.Equal(t, StateError, got.state)
	assert.Equal(t, "partial ", reply.Content)
	assert.NotEmpty(t, got.statusMsg)
}

// =============================================================================
// HELPERS
// =============================================================================

func newTestModel(t *testing.T) Model {
	t.Helper()
	theme := styles.NewTheme()
	theme.SetSize(100, 30)
	return New(theme, Options{Config: config.Default()})
}
