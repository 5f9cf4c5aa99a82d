// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations and notepad contents in a
// local SQLite database under the user's data directory.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/notepad"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound indicates the requested conversation does not exist.
var ErrNotFound = errors.New("storage: conversation not found")

// maxConversations is how many conversations are retained; older ones
// are pruned on save.
const maxConversations = 50

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    model TEXT,
    message_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    data TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at DESC);

CREATE TABLE IF NOT EXISTS notepads (
    name TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    updated_at INTEGER NOT NULL
) WITHOUT ROWID;
`

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed persistence layer.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the standard database location,
// ~/.lingcode/lingcode.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: resolve home: %w", err)
	}
	return filepath.Join(home, ".lingcode", "lingcode.db"), nil
}

// Open opens (or creates) the database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// SaveConversation upserts one conversation, storing the full message
// history as JSON, then prunes beyond the retention limit.
func (s *Store) SaveConversation(c *model.Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("storage: encode conversation: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO conversations (id, title, model, message_count, created_at, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			model = excluded.model,
			message_count = excluded.message_count,
			updated_at = excluded.updated_at,
			data = excluded.data`,
		c.ID, c.Title, c.Model, c.MessageCount(),
		c.CreatedAt.Unix(), c.UpdatedAt.Unix(), string(data))
	if err != nil {
		return fmt.Errorf("storage: save conversation: %w", err)
	}

	return s.enforceLimit()
}

// LoadConversation returns one conversation by ID.
func (s *Store) LoadConversation(id string) (*model.Conversation, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM conversations WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load conversation: %w", err)
	}

	var c model.Conversation
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("storage: decode conversation %s: %w", id, err)
	}
	return &c, nil
}

// ListConversations returns summaries, most recently updated first.
func (s *Store) ListConversations() ([]model.Meta, error) {
	rows, err := s.db.Query(`
		SELECT id, title, model, message_count, updated_at
		FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage: list conversations: %w", err)
	}
	defer rows.Close()

	var metas []model.Meta
	for rows.Next() {
		var m model.Meta
		var updated int64
		if err := rows.Scan(&m.ID, &m.Title, &m.Model, &m.MessageCount, &updated); err != nil {
			return nil, err
		}
		m.UpdatedAt = time.Unix(updated, 0)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// SearchConversations matches a substring against titles and content.
func (s *Store) SearchConversations(query string) ([]model.Meta, error) {
	like := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, title, model, message_count, updated_at
		FROM conversations
		WHERE title LIKE ? OR data LIKE ?
		ORDER BY updated_at DESC`, like, like)
	if err != nil {
		return nil, fmt.Errorf("storage: search conversations: %w", err)
	}
	defer rows.Close()

	var metas []model.Meta
	for rows.Next() {
		var m model.Meta
		var updated int64
		if err := rows.Scan(&m.ID, &m.Title, &m.Model, &m.MessageCount, &updated); err != nil {
			return nil, err
		}
		m.UpdatedAt = time.Unix(updated, 0)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// DeleteConversation removes one conversation.
func (s *Store) DeleteConversation(id string) error {
	res, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// enforceLimit drops the oldest conversations beyond the retention cap.
func (s *Store) enforceLimit() error {
	_, err := s.db.Exec(`
		DELETE FROM conversations WHERE id NOT IN (
			SELECT id FROM conversations ORDER BY updated_at DESC LIMIT ?
		)`, maxConversations)
	if err != nil {
		return fmt.Errorf("storage: prune conversations: %w", err)
	}
	return nil
}

// =============================================================================
// NOTEPADS
// =============================================================================

// SaveNotes replaces all persisted notes with the given set.
func (s *Store) SaveNotes(notes []notepad.Note) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin notes save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM notepads"); err != nil {
		return fmt.Errorf("storage: clear notepads: %w", err)
	}
	for _, n := range notes {
		if n.Content == "" {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO notepads (name, content, updated_at) VALUES (?, ?, ?)",
			n.Name, n.Content, n.UpdatedAt.Unix()); err != nil {
			return fmt.Errorf("storage: save note %s: %w", n.Name, err)
		}
	}
	return tx.Commit()
}

// LoadNotes returns all persisted notes.
func (s *Store) LoadNotes() ([]notepad.Note, error) {
	rows, err := s.db.Query("SELECT name, content, updated_at FROM notepads ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("storage: load notes: %w", err)
	}
	defer rows.Close()

	var notes []notepad.Note
	for rows.Next() {
		var n notepad.Note
		var updated int64
		if err := rows.Scan(&n.Name, &n.Content, &updated); err != nil {
			return nil, err
		}
		n.UpdatedAt = time.Unix(updated, 0)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
