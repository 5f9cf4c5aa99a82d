// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the lingcode TUI.
package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders one fenced code block with syntax highlighting and
// line numbers.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int

	// ChromaStyle names the highlight style ("monokai" by default).
	ChromaStyle string

	// Terminal marks the block as a runnable shell command, which gets
	// a distinct badge so the user can spot executable output.
	Terminal bool
}

// NewCodeBlock creates a code block with defaults.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language:    language,
		Code:        code,
		MaxWidth:    80,
		ChromaStyle: "monokai",
	}
}

// SetMaxWidth sets the maximum rendered width.
func (c *CodeBlock) SetMaxWidth(width int) {
	c.MaxWidth = width
}

// Render renders the block with a language badge, line numbers, and
// highlighting.
// USABILITY: Syntax highlighting for better code readability
func (c CodeBlock) Render(theme *styles.Theme) string {
	code := strings.TrimRight(c.Code, "\n")

	language := c.Language
	if language == "" {
		language = detectLanguage(code)
	}

	highlighted := highlightCode(code, language, c.ChromaStyle)
	lines := strings.Split(highlighted, "\n")

	var rendered []string
	for i, line := range lines {
		num := theme.CodeLineNum.Render(strconv.Itoa(i + 1))
		// Chroma already emitted ANSI colors for the line itself.
		rendered = append(rendered, num+line)
	}

	var header string
	if c.Language != "" {
		badge := theme.CodeLangBadge
		if c.Terminal {
			badge = theme.TerminalBadge
		}
		header = badge.Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return theme.CodeBlock.
		MaxWidth(maxWidth).
		Render(header + strings.Join(rendered, "\n"))
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies chroma ANSI highlighting. Falls back to the
// plain input on any failure.
func highlightCode(code, language, styleName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// detectLanguage guesses the language of untagged code.
func detectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}

// =============================================================================
// INLINE CODE
// =============================================================================

// RenderInlineCode styles a `code` span.
func RenderInlineCode(code string) string {
	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.Cyan).
		Padding(0, 1).
		Render(code)
}

// ParseInlineCode replaces backtick spans with styled inline code. An
// unclosed backtick is passed through literally.
func ParseInlineCode(text string) string {
	var result strings.Builder
	var code strings.Builder
	inCode := false

	for _, r := range text {
		switch {
		case r == '`' && inCode:
			result.WriteString(RenderInlineCode(code.String()))
			code.Reset()
			inCode = false
		case r == '`':
			inCode = true
		case inCode:
			code.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}

	if inCode {
		result.WriteString("`")
		result.WriteString(code.String())
	}
	return result.String()
}
