// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lingcode/lingcode-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a conversation as a Markdown document with
// YAML frontmatter.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("export: conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("export: conversation has no messages")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(conv.Title)))
		sb.WriteString(fmt.Sprintf("model: %s\n", conv.Model))
		sb.WriteString(fmt.Sprintf("date: %s\n", conv.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(conv.Messages)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: lingcode\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(conv.Title)))

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("- **Model**: %s\n", conv.Model))
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(conv.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(conv.Messages)))
		if mentions := collectMentions(conv); len(mentions) > 0 {
			sb.WriteString(fmt.Sprintf("- **Context**: %s\n", strings.Join(mentions, ", ")))
		}
		sb.WriteString("\n---\n\n")
	}

	for i, msg := range conv.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				roleLabel(msg.Role), formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", roleLabel(msg.Role)))
		}

		sb.WriteString(strings.TrimSpace(msg.DisplayContent()))
		sb.WriteString("\n\n")

		if msg.Role == model.RoleAssistant && msg.TokenCount > 0 && e.options.IncludeMetadata {
			sb.WriteString(fmt.Sprintf("<sub>%d tokens</sub>\n\n", msg.TokenCount))
		}

		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// =============================================================================
// HELPERS
// =============================================================================

func roleLabel(role model.Role) string {
	switch role {
	case model.RoleUser:
		return "[User]"
	case model.RoleAssistant:
		return "[Assistant]"
	case model.RoleSystem:
		return "[System]"
	default:
		return string(role)
	}
}

// collectMentions gathers the unique @mentions used across the
// conversation, in first-use order.
func collectMentions(conv *model.Conversation) []string {
	seen := make(map[string]bool)
	var mentions []string
	for _, msg := range conv.Messages {
		for _, m := range msg.ContextMentions {
			if !seen[m] {
				seen[m] = true
				mentions = append(mentions, m)
			}
		}
	}
	return mentions
}

// escapeMarkdown escapes characters that would break heading formatting.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return replacer.Replace(s)
}

// escapeYAML quotes values containing YAML-significant characters.
func escapeYAML(s string) string {
	if !strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") &&
		!strings.HasPrefix(s, " ") && !strings.HasSuffix(s, " ") {
		return s
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return "\"" + s + "\""
}
