// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for the lingcode CLI.
//
// USABILITY: Markdown rendering on TTYs, plain text on pipes
//
// Handles "lingcode ask", which sends one question to the model and
// streams the sanitized response to stdout.
//
// Examples:
//   lingcode ask "What does @file:main.go do?"
//   lingcode ask "Review this:" --file handler.go
//   cat error.log | lingcode ask "Explain this failure"

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/lingcode/lingcode-tui/internal/ai"
	"github.com/lingcode/lingcode-tui/internal/config"
	"github.com/lingcode/lingcode-tui/internal/mention"
	"github.com/lingcode/lingcode-tui/internal/sanitize"
	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// maxAskFileSize caps --file inclusion (50KB).
const maxAskFileSize = 50 * 1024

// =============================================================================
// STYLES
// =============================================================================

var (
	noteStyle  = lipgloss.NewStyle().Foreground(styles.Cyan)
	errorStyle = lipgloss.NewStyle().Foreground(styles.Rose)
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderMarkdown renders markdown for terminal display. Returns the
// input unchanged when rendering is unavailable or fails.
func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// FILE READING
// =============================================================================

// readFileForContext reads a file and formats it for prompt inclusion.
func readFileForContext(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("cannot access file: %w", err)
	}
	if info.Size() > maxAskFileSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d bytes)", info.Size(), maxAskFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n--- File: %s ---\n", path)
	b.Write(content)
	b.WriteString("\n--- End of file ---\n")
	return b.String(), nil
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command: question in, streamed
// answer out.
func HandleAskCommand(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	question := args.Query

	// Piped stdin becomes the question when none was given.
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err == nil && len(data) > 0 {
				question = strings.TrimSpace(string(data))
			}
		}
	}

	if question == "" {
		return fmt.Errorf("no question provided. Usage: lingcode ask \"your question\"")
	}

	if args.File != "" {
		fileContent, err := readFileForContext(args.File)
		if err != nil {
			return err
		}
		question += "\n" + fileContent

		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s Including file: %s\n", noteStyle.Render("[+]"), args.File)
		}
	}

	// Expand @ mentions into a context preamble before sending.
	prompt := question
	if mentions := mention.Parse(question); len(mentions) > 0 {
		env := BuildMentionEnv(cfg)
		extra := mention.NewBuilder().BuildContext(context.Background(), mentions, env)
		if extra != "" {
			prompt = extra + "\n" + question
			if !args.Quiet {
				fmt.Fprintf(os.Stderr, "%s Context: %d mention(s) expanded\n",
					noteStyle.Render("[+]"), len(mentions))
			}
		}
	}

	client := ai.NewClient(ai.Config{
		BaseURL:      cfg.Server.URL,
		DefaultModel: cfg.DefaultModel,
		Timeout:      time.Duration(cfg.Server.TimeoutSecs) * time.Second,
	})

	ctx := context.Background()
	if err := client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("model server is not running. Start it with: ollama serve")
	}

	model := args.Model
	if model == "" {
		model = cfg.DefaultModel
	}

	messages := []ai.Message{{Role: "user", Content: prompt}}

	// Stream raw tokens on pipes; on a TTY, accumulate and render the
	// sanitized result as markdown when the stream finishes.
	useMarkdown := IsStdoutTTY()

	var full strings.Builder
	err = client.ChatStream(ctx, model, messages, func(chunk ai.StreamChunk) {
		if chunk.Err != nil {
			return
		}
		full.WriteString(chunk.Content)
		if !useMarkdown {
			fmt.Print(chunk.Content)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		return err
	}

	clean := sanitize.New(cfg.Sanitizer.Policy()).Sanitize(full.String())
	if useMarkdown {
		fmt.Print(renderMarkdown(clean, TerminalWidth()))
	} else {
		fmt.Println()
	}
	return nil
}
