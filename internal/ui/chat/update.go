// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// update.go - Event handling for the chat view.

package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/session"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case AttachRunnerMsg:
		m.runner = msg.Runner
		return m, nil

	case spinner.TickMsg:
		if m.state == StateThinking || m.state == StateStreaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case ServerStatusMsg:
		m.serverUp = msg.Running
		if !msg.Running {
			m.statusMsg = "model server unreachable, start it with: ollama serve"
		}
		return m, nil

	case ModelsMsg:
		return m.handleModels(msg)

	case ContextReadyMsg:
		return m.handleContextReady(msg)

	case StreamStartMsg:
		if msg.MessageID == m.streamingMsgID {
			m.state = StateStreaming
		}
		return m, nil

	case StreamTickMsg:
		return m.handleStreamTick()

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case ConversationSavedMsg:
		if msg.Err != nil {
			m.statusMsg = "save failed: " + msg.Err.Error()
			return m, statusClearCmd()
		}
		return m, nil

	case CommandDoneMsg:
		return m.handleCommandDone(msg)

	case SessionsListedMsg:
		return m.handleSessionsListed(msg)

	case ConversationLoadedMsg:
		return m.handleConversationLoaded(msg)

	case StatusClearMsg:
		m.statusMsg = ""
		return m, nil
	}

	return m, nil
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// header 2 + input 2 + status 1
	viewportHeight := msg.Height - 5
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = viewportHeight
	m.input.Width = msg.Width - 4
	m.renderer.SetWidth(msg.Width)

	m.refreshViewport(false)
	return m
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.sess.Stop()
		return m, tea.Sequence(
			saveConversationCmd(m.store, m.sess.Conversation),
			tea.Quit,
		)

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		return m.handleCancel()

	case key.Matches(msg, m.keyMap.Clear):
		return m.startNewConversation()

	case key.Matches(msg, m.keyMap.Retry):
		return m.retry()

	case key.Matches(msg, m.keyMap.Complete):
		return m.handleCompletionKey()

	case key.Matches(msg, m.keyMap.Submit):
		if m.showCompletions {
			m = m.acceptCompletion()
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	// Plain "r" retries from the failure state when the input is empty,
	// matching the failure messages shown to the user.
	if m.state == StateError && msg.String() == "r" && m.input.Value() == "" {
		return m.retry()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m = m.updateCompletions()
	return m, cmd
}

func (m Model) handleCancel() (tea.Model, tea.Cmd) {
	if m.showCompletions {
		m.showCompletions = false
		m.completions = nil
		return m, nil
	}
	if m.state == StateThinking || m.state == StateStreaming {
		// Cancellation keeps completed work; the error path turns the
		// context error into FailureCancelled.
		m.sess.Stop()
		return m, nil
	}
	if m.state == StateError {
		m.state = StateReady
		m.statusMsg = ""
	}
	return m, nil
}

// =============================================================================
// SUBMIT AND RETRY
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state == StateThinking || m.state == StateStreaming {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.showCompletions = false

	if strings.HasPrefix(text, "/") {
		return m.handleSlashCommand(text)
	}
	return m.startPrompt(text)
}

// startPrompt begins the full pipeline for one user message: context
// expansion, then streaming into the session buffer.
func (m Model) startPrompt(text string) (Model, tea.Cmd) {
	conv := m.sess.Conversation
	conv.AddUserMessage(text)
	reply := conv.AddAssistantMessage()

	m.streamingMsgID = reply.ID
	m.lastPrompt = text
	m.state = StateThinking
	m.thinkingStart = time.Now()
	m.statusMsg = ""
	m.refreshViewport(true)

	return m, tea.Batch(
		m.spinner.Tick,
		buildContextCmd(m.builder, m.env, text, reply.ID),
	)
}

func (m Model) retry() (tea.Model, tea.Cmd) {
	if m.state != StateError || m.lastPrompt == "" || !m.sess.Failure().Retryable() {
		return m, nil
	}

	// The failed assistant message stays in the transcript; the retry
	// appends a fresh one for the same prompt.
	conv := m.sess.Conversation
	reply := conv.AddAssistantMessage()
	m.streamingMsgID = reply.ID
	m.state = StateThinking
	m.thinkingStart = time.Now()
	m.statusMsg = ""
	m.refreshViewport(true)

	return m, tea.Batch(
		m.spinner.Tick,
		buildContextCmd(m.builder, m.env, m.lastPrompt, reply.ID),
	)
}

// =============================================================================
// STREAM LIFECYCLE
// =============================================================================

func (m Model) handleContextReady(msg ContextReadyMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID || m.state != StateThinking {
		return m, nil
	}
	if msg.MentionCount > 0 {
		m.statusMsg = "context: " + strconv.Itoa(msg.MentionCount) + " mention(s) expanded"
	}

	conv := m.sess.Conversation
	wire := conv.ToWireMessages()
	if msg.Prompt != m.lastPrompt {
		wire = conv.ToWireMessagesWithOverride(msg.Prompt)
	}

	ctx := m.sess.StartStream(context.Background())
	if m.runner != nil {
		go m.runner.Run(ctx, conv.Model, wire, m.sess.Buffer, msg.MessageID)
	}
	return m, streamTickCmd()
}

func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.state != StateStreaming && m.state != StateThinking {
		return m, nil
	}

	if content, ok := m.sess.Buffer.Flush(); ok {
		m.sess.Conversation.AppendToLast(content)
		m.refreshViewport(true)
	}
	return m, streamTickCmd()
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	conv := m.sess.Conversation
	if content, ok := m.sess.Buffer.FlushAll(); ok {
		conv.AppendToLast(content)
	}
	conv.FinalizeLast(msg.Tokens)

	// Final sanitize pass, then freeze any streamed files: after this
	// point the reply content is immutable.
	if last := conv.LastMessage(); last != nil {
		last.Content = m.sanitizer.Sanitize(last.Content)
	}
	m.sess.FreezeAll()

	m.state = StateReady
	m.streamingMsgID = ""
	if msg.Tokens > 0 {
		m.statusMsg = strconv.Itoa(msg.Tokens) + " tokens"
	}
	m.refreshViewport(true)

	return m, tea.Batch(
		saveConversationCmd(m.store, conv),
		statusClearCmd(),
	)
}

func (m Model) handleStreamError(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	conv := m.sess.Conversation
	// Keep whatever arrived before the failure.
	if content, ok := m.sess.Buffer.FlushAll(); ok {
		conv.AppendToLast(content)
	}
	conv.FinalizeLast(0)
	if last := conv.LastMessage(); last != nil {
		last.Content = m.sanitizer.Sanitize(last.Content)
	}

	m.sess.Fail(msg.Err)
	m.streamingMsgID = ""

	failure := m.sess.Failure()
	if failure == session.FailureCancelled {
		m.state = StateReady
		m.statusMsg = failure.Message()
		m.refreshViewport(true)
		return m, statusClearCmd()
	}

	m.state = StateError
	m.statusMsg = failure.Message()
	m.refreshViewport(true)
	return m, nil
}

// =============================================================================
// CONVERSATION MANAGEMENT
// =============================================================================

func (m Model) startNewConversation() (tea.Model, tea.Cmd) {
	if m.state == StateThinking || m.state == StateStreaming {
		return m, nil
	}

	old := m.sess.Conversation
	modelName := old.Model

	m.sess = session.New(modelName, m.sanitizer)
	if m.cfg.UI.StreamBatchSize > 0 || m.cfg.UI.StreamMaxFPS > 0 {
		m.sess.Buffer = session.NewStreamingBufferWithConfig(m.cfg.UI.StreamBatchSize, m.cfg.UI.StreamMaxFPS)
	}
	m.state = StateReady
	m.streamingMsgID = ""
	m.lastPrompt = ""
	m.statusMsg = "new conversation"
	m.refreshViewport(false)

	return m, tea.Batch(
		saveConversationCmd(m.store, old),
		statusClearCmd(),
	)
}

func (m Model) handleModels(msg ModelsMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusMsg = "cannot list models: " + msg.Err.Error()
		return m, statusClearCmd()
	}

	var names []string
	for _, info := range msg.Models {
		names = append(names, info.Name)
	}
	m.addSystemNote("Installed models:\n  " + strings.Join(names, "\n  "))
	m.refreshViewport(true)
	return m, nil
}

func (m Model) handleCommandDone(msg CommandDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusMsg = "command failed: " + msg.Err.Error()
		m.refreshViewport(true)
		return m, statusClearCmd()
	}

	output := msg.Result.Stdout
	if msg.Result.Stderr != "" {
		output += msg.Result.Stderr
	}
	if strings.TrimSpace(output) == "" {
		output = "(no output)"
	}
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	m.addSystemNote(fmt.Sprintf("$ %s\n```console\n%s```", msg.Command, output))

	// Subsequent @terminal mentions see this run's output.
	if m.env != nil {
		m.env.TerminalOutput = m.exec.LastOutput()
	}

	m.statusMsg = fmt.Sprintf("exit %d in %s", msg.Result.ExitCode, msg.Result.Duration.Round(time.Millisecond))
	m.refreshViewport(true)
	return m, statusClearCmd()
}

func (m Model) handleSessionsListed(msg SessionsListedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusMsg = "cannot list sessions: " + msg.Err.Error()
		return m, statusClearCmd()
	}
	if len(msg.Metas) == 0 {
		m.addSystemNote("No saved conversations.")
		m.refreshViewport(true)
		return m, nil
	}

	var sb strings.Builder
	sb.WriteString("Saved conversations (/load ID to restore):\n")
	for _, meta := range msg.Metas {
		sb.WriteString("  " + meta.ID + "  " + meta.Title + "\n")
	}
	m.addSystemNote(strings.TrimRight(sb.String(), "\n"))
	m.refreshViewport(true)
	return m, nil
}

func (m Model) handleConversationLoaded(msg ConversationLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusMsg = "load failed: " + msg.Err.Error()
		return m, statusClearCmd()
	}

	old := m.sess.Conversation
	m.sess = session.New(msg.Conversation.Model, m.sanitizer)
	m.sess.Conversation = msg.Conversation
	m.state = StateReady
	m.streamingMsgID = ""
	m.lastPrompt = ""
	m.statusMsg = "loaded: " + msg.Conversation.Title
	m.refreshViewport(false)

	return m, tea.Batch(
		saveConversationCmd(m.store, old),
		statusClearCmd(),
	)
}

// addSystemNote appends an informational system message.
func (m *Model) addSystemNote(text string) {
	m.sess.Conversation.AddMessage(model.NewSystemMessage(text))
}
