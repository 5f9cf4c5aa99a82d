// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// file.go - Files being rewritten by a streaming model response.

package session

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lingcode/lingcode-tui/internal/diff"
	"github.com/lingcode/lingcode-tui/internal/sanitize"
	"github.com/lingcode/lingcode-tui/internal/util"
)

// ErrFrozen indicates a write to a file whose stream already completed.
var ErrFrozen = errors.New("session: file is frozen")

// =============================================================================
// STREAMING FILE
// =============================================================================

// FileState is the lifecycle state of a streamed file.
type FileState int

const (
	// StateStreaming means content is still arriving and views read a
	// sanitized projection of the live buffer.
	StateStreaming FileState = iota

	// StateFrozen means the stream completed and views read an
	// immutable snapshot. The transition is one-way.
	StateFrozen
)

// StreamingFile is one file the model is generating or editing. While
// streaming, Content() sanitizes the live buffer on each call; after
// Freeze() it always returns the same snapshot, so text the user has
// selected can never shift under them.
type StreamingFile struct {
	ID       string
	Path     string
	Language string

	// OriginalLines is the on-disk content before the edit, nil when
	// the file does not exist yet.
	OriginalLines []string

	state     FileState
	buffer    strings.Builder
	snapshot  string
	sanitizer *sanitize.Sanitizer
}

// NewStreamingFile starts tracking one file. originalLines is nil for a
// file that does not exist on disk.
func NewStreamingFile(path string, originalLines []string, sanitizer *sanitize.Sanitizer) *StreamingFile {
	if sanitizer == nil {
		sanitizer = sanitize.New(sanitize.DefaultPolicy())
	}
	return &StreamingFile{
		ID:            uuid.NewString(),
		Path:          path,
		Language:      languageFromPath(path),
		OriginalLines: originalLines,
		sanitizer:     sanitizer,
	}
}

// Name returns the file's base name.
func (f *StreamingFile) Name() string {
	return filepath.Base(f.Path)
}

// IsStreaming reports whether content is still arriving.
func (f *StreamingFile) IsStreaming() bool {
	return f.state == StateStreaming
}

// Append adds a streamed chunk to the live buffer. Appending to a
// frozen file is an error, never a silent mutation.
func (f *StreamingFile) Append(chunk string) error {
	if f.state == StateFrozen {
		return ErrFrozen
	}
	f.buffer.WriteString(chunk)
	return nil
}

// Content returns the sanitized view of the file. While streaming this
// re-sanitizes the live buffer; after freezing it returns the snapshot.
func (f *StreamingFile) Content() string {
	if f.state == StateFrozen {
		return f.snapshot
	}
	return f.sanitizer.Sanitize(f.buffer.String())
}

// Raw returns the unsanitized buffer as received from the model.
func (f *StreamingFile) Raw() string {
	if f.state == StateFrozen {
		return f.snapshot
	}
	return f.buffer.String()
}

// Freeze completes the stream: one final sanitize pass, stored as the
// immutable snapshot. Calling Freeze again is a no-op.
func (f *StreamingFile) Freeze() {
	if f.state == StateFrozen {
		return
	}
	f.snapshot = f.sanitizer.Sanitize(f.buffer.String())
	f.buffer.Reset()
	f.state = StateFrozen
}

// Diff computes the line diff between the original content and the
// current (sanitized) content.
func (f *StreamingFile) Diff() []diff.UnifiedLine {
	return diff.StreamDiff(f.OriginalLines, diff.SplitLines(f.Content()))
}

// Info snapshots the file's progress for rendering.
func (f *StreamingFile) Info() FileInfo {
	content := f.Content()
	added, removed := diff.CountChanges(f.Diff())
	return FileInfo{
		Path:          f.Path,
		Name:          f.Name(),
		Content:       content,
		Language:      f.Language,
		IsStreaming:   f.state == StateStreaming,
		AddedLines:    added,
		RemovedLines:  removed,
		ChangeSummary: changeSummary(added, removed),
	}
}

// FileInfo is an immutable view of one file's generation progress.
type FileInfo struct {
	Path          string
	Name          string
	Content       string
	Language      string
	IsStreaming   bool
	AddedLines    int
	RemovedLines  int
	ChangeSummary string
}

// changeSummary formats "+N -M" counts, empty when nothing changed.
func changeSummary(added, removed int) string {
	if added == 0 && removed == 0 {
		return ""
	}
	return "+" + util.IntToString(added) + " -" + util.IntToString(removed)
}

// languageFromPath guesses a language tag from the file extension.
func languageFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".rs":
		return "rust"
	case ".sh":
		return "bash"
	case ".md":
		return "markdown"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}
