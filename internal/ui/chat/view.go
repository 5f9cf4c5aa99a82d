// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// view.go - Rendering for the chat view.

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the full chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.viewport.View())

	if m.showCompletions && len(m.completions) > 0 {
		sections = append(sections, m.renderCompletions())
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatusBar())

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return view
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("LingCode")
	modelName := m.theme.HeaderModel.Render(m.sess.Conversation.Model)

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(modelName) - 2
	if gap < 1 {
		gap = 1
	}
	line := title + strings.Repeat(" ", gap) + modelName
	return m.theme.Header.Width(m.width).Render(line)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

func (m Model) renderCompletions() string {
	var items []string
	for i, c := range m.completions {
		if i == m.completionIndex {
			items = append(items, m.theme.CompletionSelected.Render(c))
		} else {
			items = append(items, m.theme.CompletionItem.Render(c))
		}
	}
	return m.theme.CompletionPopup.Render(strings.Join(items, "\n"))
}

func (m Model) renderStatusBar() string {
	var left string
	switch m.state {
	case StateThinking:
		left = m.theme.StatusBusy.Render(m.spinner.View()+" thinking") +
			" " + m.theme.ThinkingText.Render(m.thinkingElapsed())
	case StateStreaming:
		left = m.theme.StatusBusy.Render(m.spinner.View() + " streaming")
	case StateError:
		left = m.theme.StatusError.Render("error")
	default:
		if m.serverUp {
			left = m.theme.StatusOK.Render("ready")
		} else {
			left = m.theme.StatusError.Render("offline")
		}
	}

	if m.statusMsg != "" {
		left += "  " + m.theme.ShortcutDesc.Render(m.statusMsg)
	}

	right := m.renderShortcuts()
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return m.theme.StatusBar.Width(m.width).Render(left)
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderShortcuts() string {
	var parts []string
	for _, binding := range m.keyMap.ShortHelp() {
		help := binding.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(help.Key)+" "+m.theme.ShortcutDesc.Render(help.Desc))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderHelpOverlay() string {
	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Keyboard shortcuts") + "\n\n")
	for _, group := range m.keyMap.FullHelp() {
		for _, binding := range group {
			help := binding.Help()
			sb.WriteString(m.theme.ShortcutKey.Render(padRight(help.Key, 12)))
			sb.WriteString(m.theme.ShortcutDesc.Render(help.Desc))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(m.theme.ShortcutDesc.Render("Slash commands: /help /new /model /models /run /sessions /load /save /quit"))

	box := m.theme.CompletionPopup.Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) thinkingElapsed() string {
	if m.thinkingStart.IsZero() {
		return ""
	}
	return time.Since(m.thinkingStart).Round(time.Second).String()
}

// =============================================================================
// VIEWPORT CONTENT
// =============================================================================

// refreshViewport re-renders the transcript into the viewport.
// scrollToBottom follows the newest output, as during streaming.
func (m *Model) refreshViewport(scrollToBottom bool) {
	conv := m.sess.Conversation
	if conv.MessageCount() == 0 {
		m.viewport.SetContent(m.welcomeText())
		return
	}

	var sb strings.Builder
	for _, msg := range conv.Messages {
		sb.WriteString(m.renderer.Render(msg))
		sb.WriteString("\n")
	}
	m.viewport.SetContent(sb.String())

	if scrollToBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) welcomeText() string {
	lines := []string{
		"",
		m.theme.HeaderTitle.Render("  Welcome to LingCode"),
		"",
		m.theme.ShortcutDesc.Render("  Type a message and press enter."),
		m.theme.ShortcutDesc.Render("  @file:path, @codebase:query, @web:query, @docs:topic and"),
		m.theme.ShortcutDesc.Render("  @notepad add project context to your prompt."),
		m.theme.ShortcutDesc.Render("  Tab completes mention types, /help lists commands."),
		"",
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
