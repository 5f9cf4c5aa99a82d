// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lingcode/lingcode-tui/internal/model"
)

// =============================================================================
// EXPORTER INTERFACE
// =============================================================================

// Exporter renders a conversation in one output format.
type Exporter interface {
	// Export returns the formatted conversation.
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension returns the extension for the format (".md", ".html").
	FileExtension() string
}

// ForFormat returns the exporter for a format name. Accepted names:
// "markdown"/"md", "json", "html"/"htm".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md", "":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q (markdown, json, html)", format)
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures export output.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// IncludeMetadata adds a header with model, dates, and counts.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns the default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ExportToFile renders the conversation and writes it next to the
// working directory. Returns the output path.
func ExportToFile(conv *model.Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s%s",
		sanitizeFilename(conv.Title),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("export: create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("export: write file: %w", err)
	}
	return outputPath, nil
}

// sanitizeFilename replaces characters that are invalid in filenames
// on either Windows or Unix.
func sanitizeFilename(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		s = string(runes[:50])
	}

	var out strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			out.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out.WriteRune('_')
		case r < 32 || r == 127:
			out.WriteRune('-')
		default:
			out.WriteRune(r)
		}
	}
	if out.Len() == 0 {
		return "conversation"
	}
	return out.String()
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
