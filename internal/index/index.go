// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lingcode/lingcode-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotBuilt indicates a search was attempted before any index build.
	ErrNotBuilt = errors.New("index: not built yet")

	// ErrBuildInProgress indicates a build is already running.
	ErrBuildInProgress = errors.New("index: build already in progress")
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Options configure an Index.
type Options struct {
	// MaxFileSize caps the size of files read during indexing.
	MaxFileSize int64

	// IgnoreDirs are directory names skipped during the walk.
	IgnoreDirs []string
}

// DefaultOptions returns sensible defaults for typical repositories.
func DefaultOptions() Options {
	return Options{
		MaxFileSize: 512 * 1024,
		IgnoreDirs: []string{
			"node_modules", "vendor", "__pycache__", ".venv", "venv",
			"dist", "build", "target", ".git",
		},
	}
}

// langParsers maps file extensions to symbol parsers.
func langParsers() map[string]LanguageParser {
	goParser := &GoParser{}
	pyParser := &PythonParser{}
	jsParser := &JSParser{}
	return map[string]LanguageParser{
		".go":  goParser,
		".py":  pyParser,
		".js":  jsParser,
		".jsx": jsParser,
		".ts":  jsParser,
		".tsx": jsParser,
	}
}

// languageForExt returns a display name for a source extension.
func languageForExt(ext string) string {
	switch ext {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

// =============================================================================
// INDEX
// =============================================================================

// Stats summarize the current index contents.
type Stats struct {
	Files       int
	Symbols     int
	LastBuildAt time.Time
}

// Index is a SQLite-backed symbol index over one project root.
type Index struct {
	db      *sql.DB
	root    string
	opts    Options
	parsers map[string]LanguageParser

	mu       sync.RWMutex
	built    bool
	building bool
	stats    Stats
}

// New opens (or creates) an index database for the given project root.
// Pass ":memory:" as dbPath for an ephemeral index.
func New(root, dbPath string, opts Options) (*Index, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("index: resolve root: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("index: open database: %w", err)
	}

	// modernc.org/sqlite is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("index: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: create schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: init metadata: %w", err)
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO metadata (key, value) VALUES ('root_path', ?)", absRoot); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: record root: %w", err)
	}

	idx := &Index{
		db:      db,
		root:    absRoot,
		opts:    opts,
		parsers: langParsers(),
	}

	// A previously built database counts as built.
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM files").Scan(&n); err == nil && n > 0 {
		idx.built = true
		idx.refreshStats()
	}

	return idx, nil
}

// Close releases the underlying database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// IsBuilt reports whether at least one successful build has completed.
func (idx *Index) IsBuilt() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.built
}

// Stats returns a snapshot of index statistics.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.stats
}

// Root returns the absolute project root this index covers.
func (idx *Index) Root() string {
	return idx.root
}

// =============================================================================
// BUILD
// =============================================================================

// Build walks the project root and (re)indexes every supported source file.
// The walk honors ctx: cancellation aborts the build and rolls back.
func (idx *Index) Build(ctx context.Context) error {
	idx.mu.Lock()
	if idx.building {
		idx.mu.Unlock()
		return ErrBuildInProgress
	}
	idx.building = true
	idx.mu.Unlock()

	defer func() {
		idx.mu.Lock()
		idx.building = false
		idx.mu.Unlock()
	}()

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin build: %w", err)
	}
	defer tx.Rollback()

	// Full rebuild: drop everything, re-walk. The FTS triggers keep the
	// search table in sync with the symbols table.
	if _, err := tx.ExecContext(ctx, "DELETE FROM symbols"); err != nil {
		return fmt.Errorf("index: clear symbols: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files"); err != nil {
		return fmt.Errorf("index: clear files: %w", err)
	}

	walkErr := filepath.WalkDir(idx.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != idx.root && (strings.HasPrefix(name, ".") || idx.ignored(name)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(name, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		parser, ok := idx.parsers[ext]
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > idx.opts.MaxFileSize {
			return nil
		}
		if err := idx.indexFile(ctx, tx, path, ext, parser, info); err != nil {
			return err
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("index: build walk: %w", walkErr)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('last_full_index', ?)", now); err != nil {
		return fmt.Errorf("index: record build time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit build: %w", err)
	}

	idx.mu.Lock()
	idx.built = true
	idx.mu.Unlock()
	idx.refreshStats()
	return nil
}

// indexFile parses one source file and inserts its rows inside tx.
func (idx *Index) indexFile(ctx context.Context, tx *sql.Tx, path, ext string, parser LanguageParser, info fs.FileInfo) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil // file vanished or unreadable, skip
	}
	content := string(data)

	symbols, err := parser.Parse(content, path)
	if err != nil {
		// Unparseable files still get a file row so folder listings work.
		symbols = nil
	}

	rel, err := filepath.Rel(idx.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	lineCount := strings.Count(content, "\n") + 1
	summary := fileSummary(symbols)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (path, mod_time, size, language, line_count, summary, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mod_time = excluded.mod_time,
			size = excluded.size,
			language = excluded.language,
			line_count = excluded.line_count,
			summary = excluded.summary,
			indexed_at = excluded.indexed_at`,
		rel, info.ModTime().Unix(), info.Size(), languageForExt(ext),
		lineCount, summary, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("index: insert file %s: %w", rel, err)
	}
	var fileID int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM files WHERE path = ?", rel).Scan(&fileID); err != nil {
		return fmt.Errorf("index: lookup file %s: %w", rel, err)
	}
	// Clear stale symbols before re-inserting; the FTS delete trigger
	// removes the matching search rows.
	if _, err := tx.ExecContext(ctx, "DELETE FROM symbols WHERE file_id = ?", fileID); err != nil {
		return fmt.Errorf("index: clear symbols for %s: %w", rel, err)
	}

	for _, sym := range symbols {
		exported := 0
		if sym.Exported {
			exported = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO symbols (name, kind, file_id, line, signature, exported)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sym.Name, sym.Kind, fileID, sym.Line, sym.Signature, exported); err != nil {
			return fmt.Errorf("index: insert symbol %s: %w", sym.Name, err)
		}
	}

	return nil
}

// fileSummary builds a short human-readable summary from extracted symbols.
func fileSummary(symbols []Symbol) string {
	counts := map[string]int{}
	for _, s := range symbols {
		counts[s.Kind]++
	}
	if len(counts) == 0 {
		return ""
	}
	var parts []string
	for _, kind := range []string{"struct", "class", "interface", "type", "func", "method", "const", "var"} {
		if n, ok := counts[kind]; ok {
			label := kind
			if n != 1 {
				label += "s"
			}
			parts = append(parts, util.IntToString(n)+" "+label)
		}
	}
	return strings.Join(parts, ", ")
}

// ignored reports whether a directory name is excluded from the walk.
func (idx *Index) ignored(name string) bool {
	for _, d := range idx.opts.IgnoreDirs {
		if name == d {
			return true
		}
	}
	return false
}

// refreshStats recomputes the cached statistics from the database.
func (idx *Index) refreshStats() {
	var s Stats
	idx.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&s.Files)
	idx.db.QueryRow("SELECT COUNT(*) FROM symbols").Scan(&s.Symbols)

	var last string
	if err := idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_full_index'").Scan(&last); err == nil && last != "" {
		if t, err := time.Parse(time.RFC3339, last); err == nil {
			s.LastBuildAt = t
		}
	}

	idx.mu.Lock()
	idx.stats = s
	idx.mu.Unlock()
}
