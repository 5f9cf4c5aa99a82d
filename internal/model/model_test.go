// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestStreamingMessageLifecycle(t *testing.T) {
	msg := NewAssistantMessage()
	if !msg.IsStreaming {
		t.Fatal("new assistant message should be streaming")
	}

	msg.AppendToken("Hello")
	msg.AppendToken(", world")
	if got := msg.DisplayContent(); got != "Hello, world" {
		t.Errorf("DisplayContent() = %q during stream", got)
	}
	if msg.Content != "" {
		t.Errorf("Content = %q before finalize, want empty", msg.Content)
	}

	msg.FinalizeStream(2)
	if msg.IsStreaming {
		t.Error("still streaming after finalize")
	}
	if msg.Content != "Hello, world" {
		t.Errorf("Content = %q after finalize", msg.Content)
	}
	if msg.TokenCount != 2 {
		t.Errorf("TokenCount = %d, want 2", msg.TokenCount)
	}

	// Tokens after finalize are dropped.
	msg.AppendToken("extra")
	if msg.Content != "Hello, world" {
		t.Errorf("Content mutated after finalize: %q", msg.Content)
	}
}

func TestFinalizeStreamIdempotent(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AppendToken("done")
	msg.FinalizeStream(1)
	msg.FinalizeStream(99)
	if msg.Content != "done" || msg.TokenCount != 1 {
		t.Errorf("second finalize changed state: %q tokens=%d", msg.Content, msg.TokenCount)
	}
}

func TestConversationTitleFromFirstPrompt(t *testing.T) {
	c := NewConversation("test-model")
	if c.Title != "New Conversation" {
		t.Errorf("initial title = %q", c.Title)
	}

	c.AddUserMessage("Fix the race condition in the watcher\nplease")
	if c.Title != "Fix the race condition in the watcher" {
		t.Errorf("title = %q", c.Title)
	}

	// Later messages don't retitle.
	c.AddUserMessage("Another question")
	if c.Title != "Fix the race condition in the watcher" {
		t.Errorf("title changed to %q", c.Title)
	}
}

func TestConversationTitleTruncated(t *testing.T) {
	c := NewConversation("m")
	c.AddUserMessage(strings.Repeat("long prompt ", 20))
	if n := len([]rune(c.Title)); n > 50 {
		t.Errorf("title length = %d, want <= 50", n)
	}
}

func TestToWireMessagesSkipsStreaming(t *testing.T) {
	c := NewConversation("m")
	c.AddUserMessage("question")
	asst := c.AddAssistantMessage()
	asst.AppendToken("partial")

	wire := c.ToWireMessages()
	if len(wire) != 1 {
		t.Fatalf("wire count = %d, want 1 (streaming message excluded)", len(wire))
	}
	if wire[0].Role != "user" || wire[0].Content != "question" {
		t.Errorf("wire[0] = %+v", wire[0])
	}

	c.FinalizeLast(0)
	wire = c.ToWireMessages()
	if len(wire) != 2 || wire[1].Role != "assistant" || wire[1].Content != "partial" {
		t.Errorf("wire after finalize = %+v", wire)
	}
}

func TestToWireMessagesWithOverride(t *testing.T) {
	c := NewConversation("m")
	c.AddUserMessage("earlier")
	asst := c.AddAssistantMessage()
	asst.AppendToken("reply")
	c.FinalizeLast(0)
	c.AddUserMessage("@file:main.go explain")

	wire := c.ToWireMessagesWithOverride("expanded context\n\nexplain")
	last := wire[len(wire)-1]
	if last.Role != "user" || last.Content != "expanded context\n\nexplain" {
		t.Errorf("last wire message = %+v", last)
	}
	if wire[0].Content != "earlier" {
		t.Errorf("earlier user message modified: %+v", wire[0])
	}
}

func TestMessagePreview(t *testing.T) {
	msg := NewUserMessage("first line\nsecond line")
	got := msg.Preview(40)
	if strings.Contains(got, "\n") {
		t.Errorf("Preview contains newline: %q", got)
	}
	if !strings.HasPrefix(got, "first line") {
		t.Errorf("Preview = %q", got)
	}
}

func TestConversationMeta(t *testing.T) {
	c := NewConversation("qwen")
	c.AddUserMessage("hi")
	meta := c.Meta()
	if meta.ID != c.ID || meta.Model != "qwen" || meta.MessageCount != 1 {
		t.Errorf("Meta() = %+v", meta)
	}
}
