// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the lingcode CLI.
//
// USABILITY: Readline-style history and line editing via liner
//
// Handles "lingcode chat", a terminal REPL for conversing with the
// model without the full-screen TUI. Conversations are saved to the
// store on exit so the TUI and "sessions" command can pick them up.
//
// Interactive commands:
//   /help, /h        Show available commands
//   /clear, /c       Clear conversation history
//   /model [name]    Show or switch model
//   /history         Show conversation history
//   /quit, /q        Exit chat
//   Ctrl+C           Cancel current generation
//   Ctrl+D           Exit chat

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/lingcode/lingcode-tui/internal/ai"
	"github.com/lingcode/lingcode-tui/internal/config"
	"github.com/lingcode/lingcode-tui/internal/mention"
	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/sanitize"
	"github.com/lingcode/lingcode-tui/internal/storage"
	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	welcomeStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	commandStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation on the arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// chatSession holds the state for one interactive chat.
type chatSession struct {
	conv      *model.Conversation
	client    *ai.Client
	sanitizer *sanitize.Sanitizer
	env       *mention.Env
	cfg       *config.Config
	input     *ChatCLI
	quiet     bool

	// cancel aborts the in-flight generation, if any.
	cancel context.CancelFunc
}

func newChatSession(args Args, cfg *config.Config) *chatSession {
	modelName := args.Model
	if modelName == "" {
		modelName = cfg.DefaultModel
	}

	client := ai.NewClient(ai.Config{
		BaseURL:      cfg.Server.URL,
		DefaultModel: cfg.DefaultModel,
		Timeout:      time.Duration(cfg.Server.TimeoutSecs) * time.Second,
	})

	return &chatSession{
		conv:      model.NewConversation(modelName),
		client:    client,
		sanitizer: sanitize.New(cfg.Sanitizer.Policy()),
		env:       BuildMentionEnv(cfg),
		cfg:       cfg,
		input:     NewChatCLI(),
		quiet:     args.Quiet,
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command.
func HandleChatCommand(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	session := newChatSession(args, cfg)

	ctx := context.Background()
	if err := session.client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("model server is not running. Start it with: ollama serve")
	}

	if !session.quiet {
		printWelcome(session)
	}

	defer session.input.Close()
	defer saveConversation(session)

	// First Ctrl+C during generation cancels it; liner handles Ctrl+C
	// at the prompt itself via ErrPromptAborted.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if session.cancel != nil {
				session.cancel()
				session.cancel = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		input, err := session.input.ReadInput(promptStyle.Render("lingcode> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF (Ctrl+D) exits gracefully.
			if err != liner.ErrPromptAborted {
				fmt.Println()
			}
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !cont {
				printExitSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processMessage(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage sends one user message and streams the reply.
func processMessage(session *chatSession, input string) error {
	session.conv.AddUserMessage(input)

	// Expand @ mentions; the expansion replaces only the wire content,
	// the conversation keeps what the user actually typed.
	wire := session.conv.ToWireMessages()
	if mentions := mention.Parse(input); len(mentions) > 0 {
		extra := mention.NewBuilder().BuildContext(context.Background(), mentions, session.env)
		if extra != "" {
			wire = session.conv.ToWireMessagesWithOverride(extra + "\n" + input)
			if !session.quiet {
				fmt.Fprintf(os.Stderr, "%s Context: %d mention(s) expanded\n",
					noteStyle.Render("[+]"), len(mentions))
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	session.cancel = cancel
	defer func() {
		session.cancel = nil
		cancel()
	}()

	reply := session.conv.AddAssistantMessage()

	fmt.Println()
	var tokens int
	err := session.client.ChatStream(ctx, session.conv.Model, wire, func(chunk ai.StreamChunk) {
		if chunk.Err != nil {
			return
		}
		fmt.Print(chunk.Content)
		reply.AppendToken(chunk.Content)
		if chunk.Done {
			tokens = chunk.EvalCount
		}
	})
	fmt.Println()

	if err != nil {
		session.conv.FinalizeLast(0)
		return err
	}

	// The conversation stores the sanitized reply so saved transcripts
	// match what the TUI would have shown.
	session.conv.FinalizeLast(tokens)
	reply.Content = session.sanitizer.Sanitize(reply.Content)
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand executes an interactive command. Returns false
// when the session should end.
func handleSlashCommand(input string, session *chatSession) (bool, error) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "/help", "/h":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		saveConversation(session)
		session.conv = model.NewConversation(session.conv.Model)
		fmt.Println(infoStyle.Render("Conversation cleared."))
		return true, nil

	case "/model":
		if len(parts) > 1 {
			session.conv.Model = parts[1]
			fmt.Printf("%s %s\n", infoStyle.Render("Model switched to"), commandStyle.Render(parts[1]))
		} else {
			fmt.Printf("%s %s\n", infoStyle.Render("Current model:"), commandStyle.Render(session.conv.Model))
		}
		return true, nil

	case "/history":
		printHistory(session)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command %q, try /help", cmd)
	}
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printWelcome(session *chatSession) {
	fmt.Println(welcomeStyle.Render("lingcode chat"))
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), commandStyle.Render(session.conv.Model))
	fmt.Println(infoStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

func printChatHelp() {
	fmt.Println(commandStyle.Render("Commands:"))
	fmt.Println("  /help, /h        Show this help")
	fmt.Println("  /clear, /c       Clear conversation history")
	fmt.Println("  /model [name]    Show or switch model")
	fmt.Println("  /history         Show conversation history")
	fmt.Println("  /quit, /q        Exit chat")
}

func printHistory(session *chatSession) {
	if session.conv.IsEmpty() {
		fmt.Println(infoStyle.Render("No messages yet."))
		return
	}
	for _, m := range session.conv.Messages {
		fmt.Printf("%s %s\n",
			commandStyle.Render(m.Role.DisplayName()+":"),
			m.Preview(72))
	}
}

func printExitSummary(session *chatSession) {
	if session.quiet || session.conv.IsEmpty() {
		return
	}
	fmt.Printf("%s %d message(s), ~%d tokens\n",
		infoStyle.Render("Session:"),
		session.conv.MessageCount(),
		session.conv.EstimateTokens())
}

// saveConversation persists the conversation; best-effort, chat should
// not fail on storage problems.
func saveConversation(session *chatSession) {
	if session.conv.IsEmpty() {
		return
	}
	path, err := storage.DefaultPath()
	if err != nil {
		return
	}
	store, err := storage.Open(path)
	if err != nil {
		return
	}
	defer store.Close()
	store.SaveConversation(session.conv)
}
