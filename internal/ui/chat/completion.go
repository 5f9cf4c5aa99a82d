// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// completion.go - Tab completion for @ mention prefixes.

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingcode/lingcode-tui/internal/mention"
)

// completionCandidates returns the mention prefixes matching the token
// under the cursor, or nil when the token is not an @ mention start.
// Pure so it can be tested without a tea.Program.
func completionCandidates(input string) []string {
	token := lastToken(input)
	if !strings.HasPrefix(token, "@") {
		return nil
	}
	// A mention with a value part ("@file:main.go") is already complete.
	if strings.Contains(token, ":") && token[len(token)-1] != ':' {
		return nil
	}

	var matches []string
	for _, t := range mention.Types() {
		if strings.HasPrefix(t, token) && t != token {
			matches = append(matches, t)
		}
	}
	return matches
}

// lastToken returns the whitespace-delimited token the cursor sits in.
func lastToken(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 || strings.HasSuffix(input, " ") {
		return ""
	}
	return fields[len(fields)-1]
}

// replaceLastToken swaps the trailing token of input for replacement.
func replaceLastToken(input, replacement string) string {
	token := lastToken(input)
	if token == "" {
		return input + replacement
	}
	return input[:len(input)-len(token)] + replacement
}

// =============================================================================
// MODEL HOOKS
// =============================================================================

// updateCompletions recomputes the popup after every input change.
func (m Model) updateCompletions() Model {
	candidates := completionCandidates(m.input.Value())
	if len(candidates) == 0 {
		m.showCompletions = false
		m.completions = nil
		m.completionIndex = 0
		return m
	}
	m.completions = candidates
	m.showCompletions = true
	if m.completionIndex >= len(candidates) {
		m.completionIndex = 0
	}
	return m
}

// handleCompletionKey cycles the popup selection, opening it first if
// the current token has candidates.
func (m Model) handleCompletionKey() (tea.Model, tea.Cmd) {
	if !m.showCompletions {
		m = m.updateCompletions()
		return m, nil
	}
	m.completionIndex = (m.completionIndex + 1) % len(m.completions)
	return m, nil
}

// acceptCompletion inserts the selected candidate into the input.
func (m Model) acceptCompletion() Model {
	if !m.showCompletions || len(m.completions) == 0 {
		return m
	}
	selected := m.completions[m.completionIndex]
	m.input.SetValue(replaceLastToken(m.input.Value(), selected))
	m.input.CursorEnd()
	m.showCompletions = false
	m.completions = nil
	m.completionIndex = 0
	return m
}
