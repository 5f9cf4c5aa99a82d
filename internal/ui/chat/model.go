// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// model.go - Bubble Tea model for the chat view.

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingcode/lingcode-tui/internal/ai"
	"github.com/lingcode/lingcode-tui/internal/config"
	"github.com/lingcode/lingcode-tui/internal/mention"
	"github.com/lingcode/lingcode-tui/internal/sanitize"
	"github.com/lingcode/lingcode-tui/internal/session"
	"github.com/lingcode/lingcode-tui/internal/storage"
	"github.com/lingcode/lingcode-tui/internal/terminal"
	"github.com/lingcode/lingcode-tui/internal/ui/components"
	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// State is the chat view's top-level mode.
type State int

const (
	// StateReady accepts input.
	StateReady State = iota
	// StateThinking is waiting for context expansion or the first token.
	StateThinking
	// StateStreaming is receiving tokens.
	StateStreaming
	// StateError is showing a failure with an optional retry.
	StateError
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view. It owns the generation session, the mention
// environment, and the widgets; streaming goroutines communicate with
// it only through Bubble Tea messages and the session's token buffer.
type Model struct {
	state State
	theme *styles.Theme
	cfg   *config.Config

	width  int
	height int

	// Generation session: conversation, token buffer, failure state.
	sess      *session.Session
	sanitizer *sanitize.Sanitizer

	// ID of the assistant message currently streaming, "" when idle.
	streamingMsgID string

	// Pending user text kept for retry after a failure.
	lastPrompt string

	client  *ai.Client
	env     *mention.Env
	builder *mention.Builder
	store   *storage.Store // nil when persistence is unavailable
	exec    *terminal.Executor

	runner *StreamRunner

	renderer *components.MessageRenderer
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	completions     []string
	completionIndex int
	showCompletions bool

	statusMsg string
	serverUp  bool
	showHelp  bool

	thinkingStart time.Time
}

// Options carries the collaborators the chat view needs. Store may be
// nil; everything else must be set.
type Options struct {
	Config *config.Config
	Client *ai.Client
	Env    *mention.Env
	Store  *storage.Store
}

// New creates the chat model.
func New(theme *styles.Theme, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Message, @file:path to add context..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}
	sp.Style = theme.Spinner

	sanitizer := sanitize.New(cfg.Sanitizer.Policy())
	sess := session.New(cfg.DefaultModel, sanitizer)
	if cfg.UI.StreamBatchSize > 0 || cfg.UI.StreamMaxFPS > 0 {
		sess.Buffer = session.NewStreamingBufferWithConfig(cfg.UI.StreamBatchSize, cfg.UI.StreamMaxFPS)
	}

	renderer := components.NewMessageRenderer(theme, 80)
	renderer.ChromaStyle = cfg.UI.Theme

	return Model{
		state:     StateReady,
		theme:     theme,
		cfg:       cfg,
		sess:      sess,
		sanitizer: sanitizer,
		client:    opts.Client,
		env:       opts.Env,
		builder:   mention.NewBuilder(),
		store:     opts.Store,
		exec:      terminal.New(),
		renderer:  renderer,
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		keyMap:    DefaultKeyMap(),
	}
}

// Session returns the underlying generation session.
func (m Model) Session() *session.Session {
	return m.sess
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the spinner and probes the model server.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		checkServerCmd(m.client),
	)
}
