// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mention provides the @ mention system for attaching context to
// AI prompts.
package mention

import (
	"context"
	"fmt"
	"strings"

	"github.com/lingcode/lingcode-tui/internal/util"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// FileProvider reads files and enumerates directories for @file/@folder.
type FileProvider interface {
	// ReadFile returns the content of a file, path relative to the
	// project root.
	ReadFile(path string) (string, error)

	// WalkFiles lists regular files under dir (project root when empty),
	// recursively, skipping hidden files and package-internal directories,
	// scanning at most max entries.
	WalkFiles(dir string, max int) ([]string, error)
}

// Symbol is one indexed code symbol.
type Symbol struct {
	Kind      string
	Name      string
	FilePath  string
	Line      int
	Signature string
}

// FileSummary describes one indexed file for @codebase context.
type FileSummary struct {
	RelativePath string
	Summary      string
	SymbolCount  int
	LineCount    int
	KeySymbols   []string
}

// Index answers @codebase queries from a codebase index.
type Index interface {
	IsBuilt() bool
	Build(ctx context.Context) error
	FindSymbol(name string, limit int) ([]Symbol, error)
	RelevantFiles(query string, limit int) ([]FileSummary, error)
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearcher performs web searches for @web mentions.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// DocsFetcher resolves @docs references (URL, owner/repo, or free text).
type DocsFetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

// NotepadProvider returns scratch-note content for @notepad mentions.
type NotepadProvider interface {
	Note(name string) (string, bool)
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Env carries the collaborators and already-available data the builder
// consults. Collaborators are injected so tests can supply fakes; any nil
// collaborator simply contributes nothing.
type Env struct {
	Files FileProvider
	Index Index
	Web   WebSearcher
	Docs  DocsFetcher
	Notes NotepadProvider

	// Selection is the currently selected editor text, if any.
	Selection string

	// TerminalOutput is the last terminal output, if any.
	TerminalOutput string
}

// =============================================================================
// BUILDER
// =============================================================================

// Folder and codebase caps for context building.
const (
	maxFolderScan     = 20
	maxFolderRender   = 10
	maxFolderFileSize = 1000
	maxSymbolMatches  = 5
	maxRelevantFiles  = 5
	maxKeySymbols     = 3
	maxWebResults     = 5
)

// Builder expands mentions into a single context string, one delimited
// section per mention, in mention order.
type Builder struct{}

// NewBuilder creates a context builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build expands mentions synchronously. It only uses data already present
// in env (selection, terminal output, in-memory notes) and never performs
// I/O; mention types that require file or network access contribute
// nothing on this path.
func (b *Builder) Build(mentions []Mention, env *Env) string {
	var sb strings.Builder

	for _, m := range mentions {
		switch m.Type {
		case TypeSelection:
			b.writeSelection(&sb, env)
		case TypeTerminal:
			b.writeTerminal(&sb, env)
		case TypeNotepad:
			b.writeNotepad(&sb, m, env)
		}
	}

	return sb.String()
}

// BuildContext expands mentions asynchronously, performing file reads,
// index queries and network fetches one mention at a time in mention
// order. A failure on one mention degrades to an inline note or silent
// omission and never aborts the remaining mentions.
func (b *Builder) BuildContext(ctx context.Context, mentions []Mention, env *Env) string {
	var sb strings.Builder

	for _, m := range mentions {
		if ctx.Err() != nil {
			// Cancelled: partially-built context stays valid.
			break
		}

		switch m.Type {
		case TypeFile:
			b.writeFile(&sb, m, env)
		case TypeFolder:
			b.writeFolder(&sb, m, env)
		case TypeCodebase:
			b.writeCodebase(ctx, &sb, m, env)
		case TypeSelection:
			b.writeSelection(&sb, env)
		case TypeTerminal:
			b.writeTerminal(&sb, env)
		case TypeWeb:
			b.writeWeb(ctx, &sb, m, env)
		case TypeDocs:
			b.writeDocs(ctx, &sb, m, env)
		case TypeNotepad:
			b.writeNotepad(&sb, m, env)
		}
	}

	return sb.String()
}

// section writes the standard delimiter for one context section.
func section(sb *strings.Builder, title string) {
	sb.WriteString("\n\n--- ")
	sb.WriteString(title)
	sb.WriteString(" ---\n")
}

// =============================================================================
// PER-TYPE WRITERS
// =============================================================================

func (b *Builder) writeFile(sb *strings.Builder, m Mention, env *Env) {
	if env.Files == nil || m.Value == "" {
		return
	}
	content, err := env.Files.ReadFile(m.Value)
	if err != nil {
		// Unreadable file contributes nothing; the rest of the build
		// continues.
		return
	}
	section(sb, "File: "+m.Value)
	sb.WriteString(content)
}

func (b *Builder) writeFolder(sb *strings.Builder, m Mention, env *Env) {
	if env.Files == nil {
		return
	}
	paths, err := env.Files.WalkFiles(m.Value, maxFolderScan)
	if err != nil || len(paths) == 0 {
		return
	}

	title := "Folder: " + m.Value
	if m.Value == "" {
		title = "Folder: (project root)"
	}
	section(sb, title)

	rendered := 0
	for _, path := range paths {
		if rendered >= maxFolderRender {
			break
		}
		content, err := env.Files.ReadFile(path)
		if err != nil {
			continue
		}
		sb.WriteString("\n### ")
		sb.WriteString(path)
		sb.WriteString("\n")
		sb.WriteString(util.TruncateRunes(content, maxFolderFileSize))
		sb.WriteString("\n")
		rendered++
	}
}

func (b *Builder) writeCodebase(ctx context.Context, sb *strings.Builder, m Mention, env *Env) {
	if env.Index == nil {
		return
	}

	// First use triggers an index build as a side effect.
	if !env.Index.IsBuilt() {
		if err := env.Index.Build(ctx); err != nil {
			section(sb, "Codebase")
			sb.WriteString("[Codebase index unavailable: " + err.Error() + "]")
			return
		}
	}

	section(sb, "Codebase")

	if symbols, err := env.Index.FindSymbol(m.Value, maxSymbolMatches); err == nil && len(symbols) > 0 {
		sb.WriteString("Matching symbols:\n")
		for _, sym := range symbols {
			sb.WriteString(fmt.Sprintf("  %s %s  %s:%d", sym.Kind, sym.Name, sym.FilePath, sym.Line))
			if sym.Signature != "" {
				sb.WriteString("  " + sym.Signature)
			}
			sb.WriteString("\n")
		}
	}

	files, err := env.Index.RelevantFiles(m.Value, maxRelevantFiles)
	if err != nil || len(files) == 0 {
		return
	}
	sb.WriteString("Relevant files:\n")
	for _, f := range files {
		sb.WriteString("  " + f.RelativePath)
		if f.Summary != "" {
			sb.WriteString(" - " + f.Summary)
		}
		sb.WriteString(fmt.Sprintf(" (%d symbols, %d lines)", f.SymbolCount, f.LineCount))
		if len(f.KeySymbols) > 0 {
			keys := f.KeySymbols
			if len(keys) > maxKeySymbols {
				keys = keys[:maxKeySymbols]
			}
			sb.WriteString(" key: " + strings.Join(keys, ", "))
		}
		sb.WriteString("\n")
	}
}

func (b *Builder) writeSelection(sb *strings.Builder, env *Env) {
	if env.Selection == "" {
		return
	}
	section(sb, "Selection")
	sb.WriteString(env.Selection)
}

func (b *Builder) writeTerminal(sb *strings.Builder, env *Env) {
	if env.TerminalOutput == "" {
		return
	}
	section(sb, "Terminal Output")
	sb.WriteString(env.TerminalOutput)
}

func (b *Builder) writeWeb(ctx context.Context, sb *strings.Builder, m Mention, env *Env) {
	if env.Web == nil {
		return
	}
	results, err := env.Web.Search(ctx, m.Value)
	if err != nil {
		section(sb, "Web Search: "+m.Value)
		sb.WriteString("[Web search failed: " + err.Error() + "]")
		return
	}

	section(sb, "Web Search: "+m.Value)
	if len(results) == 0 {
		// Zero hits are stated explicitly rather than omitted.
		sb.WriteString("No results found.")
		return
	}
	if len(results) > maxWebResults {
		results = results[:maxWebResults]
	}
	for _, r := range results {
		sb.WriteString(r.Title + "\n")
		sb.WriteString(r.URL + "\n")
		sb.WriteString(r.Snippet + "\n\n")
	}
}

func (b *Builder) writeDocs(ctx context.Context, sb *strings.Builder, m Mention, env *Env) {
	if env.Docs == nil || m.Value == "" {
		return
	}
	section(sb, "Documentation: "+m.Value)

	content, err := env.Docs.Fetch(ctx, m.Value)
	if err != nil {
		sb.WriteString("[Failed to fetch documentation: " + err.Error() + "]")
		return
	}
	sb.WriteString(content)
}

func (b *Builder) writeNotepad(sb *strings.Builder, m Mention, env *Env) {
	if env.Notes == nil {
		return
	}
	content, ok := env.Notes.Note(m.Value)
	if !ok || content == "" {
		return
	}
	title := "Notepad"
	if m.Value != "" {
		title = "Notepad: " + m.Value
	}
	section(sb, title)
	sb.WriteString(content)
}
