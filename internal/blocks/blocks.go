// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package blocks splits assistant responses into renderable content blocks.
package blocks

import (
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// CONTENT BLOCK
// =============================================================================

// Block is one contiguous run of an assistant response: either plain text
// or the body of one fenced code block. Blocks are immutable once created
// and are regenerated wholesale on each parse.
type Block struct {
	// ID uniquely identifies this block for rendering.
	ID string

	// Content is the block text with leading/trailing blank lines trimmed.
	Content string

	// IsCode is true for fenced code blocks.
	IsCode bool

	// Language is the fence language tag. Empty string (never absent) when
	// the fence carried no tag, and empty for plain-text blocks.
	Language string

	// IsTerminalCommand is true when Language names a shell.
	IsTerminalCommand bool
}

// terminalLanguages are fence tags treated as runnable terminal commands.
var terminalLanguages = map[string]bool{
	"bash":       true,
	"shell":      true,
	"sh":         true,
	"zsh":        true,
	"terminal":   true,
	"console":    true,
	"cmd":        true,
	"powershell": true,
}

// IsTerminalLanguage reports whether a fence language tag names a shell.
// The comparison is case-insensitive.
func IsTerminalLanguage(language string) bool {
	return terminalLanguages[strings.ToLower(language)]
}

// =============================================================================
// PARSER
// =============================================================================

// Parse splits text into an ordered sequence of blocks by scanning for
// triple-backtick fences. The scan is stateless per call: during streaming
// the caller re-parses the whole buffer as it grows.
//
// An opened fence that never closes is still emitted as a code block so
// that partial code renders while generation is in progress.
func Parse(text string) []Block {
	var result []Block

	lines := strings.Split(text, "\n")

	var (
		inCode    bool
		language  string
		textRun   []string
		codeLines []string
	)

	flushText := func() {
		content := trimBlankLines(textRun)
		textRun = nil
		if content == "" {
			return
		}
		result = append(result, Block{
			ID:      uuid.NewString(),
			Content: content,
		})
	}

	flushCode := func() {
		content := trimBlankLines(codeLines)
		codeLines = nil
		if content == "" {
			return
		}
		result = append(result, Block{
			ID:                uuid.NewString(),
			Content:           content,
			IsCode:            true,
			Language:          language,
			IsTerminalCommand: IsTerminalLanguage(language),
		})
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if inCode {
				flushCode()
				language = ""
				inCode = false
			} else {
				flushText()
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inCode = true
			}
			continue
		}

		if inCode {
			codeLines = append(codeLines, line)
		} else {
			textRun = append(textRun, line)
		}
	}

	// Unterminated fence: content is still streaming, emit what we have.
	if inCode {
		flushCode()
	} else {
		flushText()
	}

	return result
}

// trimBlankLines joins lines and trims leading/trailing blank lines while
// preserving interior blank lines.
func trimBlankLines(lines []string) string {
	start := 0
	end := len(lines)

	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	return strings.Join(lines[start:end], "\n")
}
