// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// stream.go - Async streaming plumbing for the chat view.
//
// The stream runner executes in its own goroutine and talks to the UI
// two ways: tokens go into the session's batched buffer (drained by the
// tick handler at the frame rate), lifecycle events go through
// program.Send. The Bubble Tea loop stays the only writer of UI state.

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingcode/lingcode-tui/internal/ai"
	"github.com/lingcode/lingcode-tui/internal/mention"
	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/session"
	"github.com/lingcode/lingcode-tui/internal/storage"
	"github.com/lingcode/lingcode-tui/internal/terminal"
)

// =============================================================================
// STREAM RUNNER
// =============================================================================

// StreamRunner streams model output for a Bubble Tea program.
type StreamRunner struct {
	program *tea.Program
	client  *ai.Client
}

// NewStreamRunner creates a runner bound to a program and client.
func NewStreamRunner(program *tea.Program, client *ai.Client) *StreamRunner {
	return &StreamRunner{program: program, client: client}
}

// Run streams one chat completion. Tokens are written to buf; start,
// completion, and error events are sent to the program. Run blocks
// until the stream ends, so call it in a goroutine.
func (r *StreamRunner) Run(ctx context.Context, modelName string, messages []ai.Message, buf *session.StreamingBuffer, messageID string) {
	if r.client == nil {
		r.program.Send(StreamErrorMsg{MessageID: messageID, Err: ai.ErrUnavailable})
		return
	}

	r.program.Send(StreamStartMsg{MessageID: messageID, StartTime: time.Now()})

	var tokens int
	err := r.client.ChatStream(ctx, modelName, messages, func(chunk ai.StreamChunk) {
		if chunk.Err != nil {
			return
		}
		if chunk.Content != "" {
			buf.Write(chunk.Content)
		}
		if chunk.Done {
			tokens = chunk.EvalCount
		}
	})
	if err != nil {
		r.program.Send(StreamErrorMsg{MessageID: messageID, Err: err})
		return
	}

	r.program.Send(StreamCompleteMsg{MessageID: messageID, Tokens: tokens})
}

// =============================================================================
// TICKS
// =============================================================================

// streamTickCmd drives buffer flushes at roughly 30fps while streaming.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// statusClearCmd clears a transient status message after a delay.
func statusClearCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return StatusClearMsg{}
	})
}

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

// checkServerCmd probes the model server.
func checkServerCmd(client *ai.Client) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return ServerStatusMsg{Running: false, Err: ai.ErrUnavailable}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := client.CheckRunning(ctx)
		return ServerStatusMsg{Running: err == nil, Err: err}
	}
}

// listModelsCmd fetches the installed model list.
func listModelsCmd(client *ai.Client) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return ModelsMsg{Err: ai.ErrUnavailable}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := client.ListModels(ctx)
		return ModelsMsg{Models: models, Err: err}
	}
}

// buildContextCmd expands mentions off the UI loop. Expansion can hit
// the filesystem, the index, and the network, so it never runs inline.
func buildContextCmd(builder *mention.Builder, env *mention.Env, input, messageID string) tea.Cmd {
	return func() tea.Msg {
		mentions := mention.Parse(input)
		prompt := input
		if len(mentions) > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if extra := builder.BuildContext(ctx, mentions, env); extra != "" {
				prompt = extra + "\n" + input
			}
		}
		return ContextReadyMsg{MessageID: messageID, Prompt: prompt, MentionCount: len(mentions)}
	}
}

// runCommandCmd executes a /run shell command off the UI loop.
func runCommandCmd(exec *terminal.Executor, command string) tea.Cmd {
	return func() tea.Msg {
		result, err := exec.Execute(context.Background(), command, terminal.Options{}, terminal.Callbacks{})
		return CommandDoneMsg{Command: command, Result: result, Err: err}
	}
}

// saveConversationCmd persists the conversation in the background.
func saveConversationCmd(store *storage.Store, conv *model.Conversation) tea.Cmd {
	return func() tea.Msg {
		if store == nil || conv.IsEmpty() {
			return ConversationSavedMsg{ID: conv.ID}
		}
		err := store.SaveConversation(conv)
		return ConversationSavedMsg{ID: conv.ID, Err: err}
	}
}

// listSessionsCmd lists saved conversations for /sessions.
func listSessionsCmd(store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return SessionsListedMsg{}
		}
		metas, err := store.ListConversations()
		return SessionsListedMsg{Metas: metas, Err: err}
	}
}

// loadConversationCmd restores a saved conversation for /load.
func loadConversationCmd(store *storage.Store, id string) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return ConversationLoadedMsg{Err: storage.ErrNotFound}
		}
		conv, err := store.LoadConversation(id)
		return ConversationLoadedMsg{Conversation: conv, Err: err}
	}
}
