// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/lingcode/lingcode-tui/internal/blocks"
	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer renders conversation messages for the viewport.
// Assistant content is split into text and code blocks; code goes
// through the highlighter, text through the markdown renderer.
type MessageRenderer struct {
	theme *styles.Theme
	width int

	// markdown is lazily (re)built when the width changes.
	markdown      *glamour.TermRenderer
	markdownWidth int

	// ChromaStyle names the highlight style applied to code blocks.
	ChromaStyle string
}

// NewMessageRenderer creates a renderer at the given width.
func NewMessageRenderer(theme *styles.Theme, width int) *MessageRenderer {
	return &MessageRenderer{
		theme:       theme,
		width:       width,
		ChromaStyle: "monokai",
	}
}

// SetWidth updates the render width.
func (r *MessageRenderer) SetWidth(width int) {
	r.width = width
}

// Render renders one message: a speaker label line followed by the
// formatted content.
func (r *MessageRenderer) Render(msg *model.Message) string {
	var sb strings.Builder

	sb.WriteString(r.renderLabel(msg))
	sb.WriteString("\n")

	content := msg.DisplayContent()
	if content == "" && msg.IsStreaming {
		sb.WriteString(r.theme.ThinkingText.Render("..."))
		return sb.String()
	}

	switch msg.Role {
	case model.RoleAssistant:
		sb.WriteString(r.renderAssistant(content))
	default:
		sb.WriteString(content)
	}
	return sb.String()
}

func (r *MessageRenderer) renderLabel(msg *model.Message) string {
	label := msg.Role.DisplayName()
	ts := r.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	switch msg.Role {
	case model.RoleUser:
		return r.theme.UserLabel.Render(label) + " " + ts
	case model.RoleAssistant:
		return r.theme.AssistantLabel.Render(label) + " " + ts
	default:
		return r.theme.SystemLabel.Render(label) + " " + ts
	}
}

// renderAssistant splits assistant output into blocks. During streaming
// the caller re-renders as the buffer grows; an unclosed fence still
// renders as code.
func (r *MessageRenderer) renderAssistant(content string) string {
	parsed := blocks.Parse(content)

	var parts []string
	for _, b := range parsed {
		if b.IsCode {
			cb := NewCodeBlock(b.Language, b.Content)
			cb.SetMaxWidth(r.width)
			cb.ChromaStyle = r.ChromaStyle
			cb.Terminal = b.IsTerminalCommand
			parts = append(parts, cb.Render(r.theme))
		} else {
			parts = append(parts, r.renderText(b.Content))
		}
	}
	return strings.Join(parts, "\n")
}

// renderText renders a plain-text block as markdown, falling back to
// inline-code styling when the markdown renderer is unavailable.
func (r *MessageRenderer) renderText(text string) string {
	if rend := r.renderer(); rend != nil {
		if out, err := rend.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return ParseInlineCode(text)
}

func (r *MessageRenderer) renderer() *glamour.TermRenderer {
	wrap := r.width - 4
	if wrap < 20 {
		wrap = 20
	}
	if r.markdown != nil && r.markdownWidth == wrap {
		return r.markdown
	}

	rend, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	r.markdown = rend
	r.markdownWidth = wrap
	return rend
}
