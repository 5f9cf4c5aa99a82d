// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/lingcode/lingcode-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders a conversation as a standalone dark-theme HTML
// page with no external assets, so the file can be shared as-is.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to an HTML page.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("export: conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("export: conversation has no messages")
	}

	var sb strings.Builder
	title := html.EscapeString(conv.Title)

	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", title))
	sb.WriteString("<style>\n" + pageCSS + "</style>\n</head>\n<body>\n")

	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", title))
	if e.options.IncludeMetadata {
		sb.WriteString("<div class=\"meta\">")
		sb.WriteString(fmt.Sprintf("Model: %s &middot; Created: %s &middot; %d messages",
			html.EscapeString(conv.Model),
			formatTimestamp(conv.CreatedAt),
			len(conv.Messages)))
		sb.WriteString("</div>\n")
	}

	for _, msg := range conv.Messages {
		e.writeMessage(&sb, msg)
	}

	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

func (e *HTMLExporter) writeMessage(sb *strings.Builder, msg *model.Message) {
	class := "system"
	switch msg.Role {
	case model.RoleUser:
		class = "user"
	case model.RoleAssistant:
		class = "assistant"
	}

	sb.WriteString(fmt.Sprintf("<div class=\"msg %s\">\n", class))
	sb.WriteString("<div class=\"label\">" + html.EscapeString(msg.Role.DisplayName()))
	if e.options.IncludeTimestamps {
		sb.WriteString(" <span class=\"ts\">" + formatShortTimestamp(msg.Timestamp) + "</span>")
	}
	sb.WriteString("</div>\n")

	sb.WriteString(renderContent(msg.DisplayContent()))
	sb.WriteString("</div>\n")
}

// renderContent converts message text to HTML, keeping fenced code
// blocks as <pre> and everything else as escaped paragraphs.
func renderContent(content string) string {
	var sb strings.Builder
	inFence := false
	var fence strings.Builder

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "```") {
			if inFence {
				sb.WriteString("<pre><code>" + html.EscapeString(fence.String()) + "</code></pre>\n")
				fence.Reset()
			}
			inFence = !inFence
			continue
		}
		if inFence {
			fence.WriteString(line)
			fence.WriteString("\n")
			continue
		}
		sb.WriteString("<p>" + html.EscapeString(line) + "</p>\n")
	}
	// Unclosed fence: emit what accumulated rather than dropping it.
	if inFence && fence.Len() > 0 {
		sb.WriteString("<pre><code>" + html.EscapeString(fence.String()) + "</code></pre>\n")
	}
	return sb.String()
}

const pageCSS = `body {
  font-family: -apple-system, "Segoe UI", sans-serif;
  background: #1a1b26; color: #c0caf5;
  max-width: 52rem; margin: 0 auto; padding: 2rem 1rem;
}
h1 { color: #bb9af7; }
.meta { color: #565f89; margin-bottom: 2rem; }
.msg { border-left: 3px solid #414868; padding: 0.5rem 1rem; margin: 1rem 0; }
.msg.user { border-color: #7dcfff; }
.msg.assistant { border-color: #bb9af7; }
.label { font-weight: 600; margin-bottom: 0.5rem; }
.user .label { color: #7dcfff; }
.assistant .label { color: #bb9af7; }
.ts { color: #565f89; font-weight: 400; font-size: 0.8rem; }
pre {
  background: #16161e; padding: 0.75rem; border-radius: 6px;
  overflow-x: auto; font-size: 0.9rem;
}
p { margin: 0.25rem 0; }
`
