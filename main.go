// LingCode - An AI coding assistant for the terminal.
//
// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingcode/lingcode-tui/internal/ai"
	"github.com/lingcode/lingcode-tui/internal/cli"
	"github.com/lingcode/lingcode-tui/internal/config"
	"github.com/lingcode/lingcode-tui/internal/storage"
	"github.com/lingcode/lingcode-tui/internal/ui/chat"
	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		exitOnError(cli.HandleAskCommand(args))
	case cli.CmdChat:
		exitOnError(cli.HandleChatCommand(args))
	case cli.CmdIndex:
		exitOnError(cli.HandleIndexCommand(args))
	case cli.CmdSessions:
		exitOnError(cli.HandleSessionsCommand(args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	if !cli.IsTTY() {
		fmt.Fprintln(os.Stderr, "Error: the full-screen interface needs a terminal. Try: lingcode ask \"...\"")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot load config: %v\n", err)
		os.Exit(1)
	}
	if args.Model != "" {
		cfg.DefaultModel = args.Model
	}

	client := ai.NewClient(ai.Config{
		BaseURL:      cfg.Server.URL,
		DefaultModel: cfg.DefaultModel,
		Timeout:      time.Duration(cfg.Server.TimeoutSecs) * time.Second,
	})

	// Persistence is best effort: the chat still works without it.
	var store *storage.Store
	if path, err := storage.DefaultPath(); err == nil {
		if s, err := storage.Open(path); err == nil {
			store = s
			defer store.Close()
		}
	}

	model := chat.New(styles.NewTheme(), chat.Options{
		Config: cfg,
		Client: client,
		Env:    cli.BuildMentionEnv(cfg),
		Store:  store,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// The program must exist before the runner can send it messages, so
	// the runner is attached through the message loop.
	go program.Send(chat.AttachRunnerMsg{Runner: chat.NewStreamRunner(program, client)})

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
