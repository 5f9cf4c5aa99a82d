// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Slash commands typed into the chat input.

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// slashCommand is one parsed "/name arg" input.
type slashCommand struct {
	Name string
	Arg  string
}

// parseSlashCommand splits "/model llama3" into name and argument.
func parseSlashCommand(input string) slashCommand {
	trimmed := strings.TrimPrefix(strings.TrimSpace(input), "/")
	name, arg, _ := strings.Cut(trimmed, " ")
	return slashCommand{
		Name: strings.ToLower(name),
		Arg:  strings.TrimSpace(arg),
	}
}

func (m Model) handleSlashCommand(input string) (tea.Model, tea.Cmd) {
	cmd := parseSlashCommand(input)

	switch cmd.Name {
	case "help", "h":
		m.showHelp = true
		return m, nil

	case "new", "clear", "c":
		return m.startNewConversation()

	case "model":
		if cmd.Arg == "" {
			m.statusMsg = "model: " + m.sess.Conversation.Model
			return m, statusClearCmd()
		}
		m.sess.Conversation.Model = cmd.Arg
		m.statusMsg = "model set to " + cmd.Arg
		return m, statusClearCmd()

	case "models":
		return m, listModelsCmd(m.client)

	case "sessions", "history":
		return m, listSessionsCmd(m.store)

	case "load":
		if cmd.Arg == "" {
			m.statusMsg = "usage: /load ID"
			return m, statusClearCmd()
		}
		return m, loadConversationCmd(m.store, cmd.Arg)

	case "save":
		return m, saveConversationCmd(m.store, m.sess.Conversation)

	case "run":
		if cmd.Arg == "" {
			m.statusMsg = "usage: /run COMMAND"
			return m, statusClearCmd()
		}
		m.statusMsg = "running: " + cmd.Arg
		return m, runCommandCmd(m.exec, cmd.Arg)

	case "quit", "q", "exit":
		m.sess.Stop()
		return m, tea.Sequence(
			saveConversationCmd(m.store, m.sess.Conversation),
			tea.Quit,
		)
	}

	m.statusMsg = "unknown command: /" + cmd.Name + " (try /help)"
	return m, statusClearCmd()
}
