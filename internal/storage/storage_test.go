// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/notepad"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadConversation(t *testing.T) {
	s := newTestStore(t)

	c := model.NewConversation("qwen2.5-coder:7b")
	c.AddUserMessage("How do I read a file in Go?")
	asst := c.AddAssistantMessage()
	asst.AppendToken("Use os.ReadFile.")
	c.FinalizeLast(4)

	if err := s.SaveConversation(c); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	loaded, err := s.LoadConversation(c.ID)
	if err != nil {
		t.Fatalf("LoadConversation() error = %v", err)
	}
	if loaded.Title != c.Title || loaded.Model != c.Model {
		t.Errorf("loaded = %q/%q, want %q/%q", loaded.Title, loaded.Model, c.Title, c.Model)
	}
	if loaded.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", loaded.MessageCount())
	}
	if got := loaded.Messages[1].Content; got != "Use os.ReadFile." {
		t.Errorf("assistant content = %q", got)
	}
}

func TestLoadMissingConversation(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LoadConversation("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSaveConversationUpserts(t *testing.T) {
	s := newTestStore(t)

	c := model.NewConversation("m")
	c.AddUserMessage("first")
	if err := s.SaveConversation(c); err != nil {
		t.Fatal(err)
	}

	c.AddUserMessage("second")
	if err := s.SaveConversation(c); err != nil {
		t.Fatal(err)
	}

	metas, err := s.ListConversations()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 {
		t.Fatalf("ListConversations() = %d rows, want 1", len(metas))
	}
	if metas[0].MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", metas[0].MessageCount)
	}
}

func TestListConversationsOrderedByRecency(t *testing.T) {
	s := newTestStore(t)

	older := model.NewConversation("m")
	older.AddUserMessage("older topic")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	if err := s.SaveConversation(older); err != nil {
		t.Fatal(err)
	}

	newer := model.NewConversation("m")
	newer.AddUserMessage("newer topic")
	if err := s.SaveConversation(newer); err != nil {
		t.Fatal(err)
	}

	metas, err := s.ListConversations()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 2 || metas[0].ID != newer.ID {
		t.Errorf("order = %v, want newest first", metas)
	}
}

func TestSearchConversations(t *testing.T) {
	s := newTestStore(t)

	c := model.NewConversation("m")
	c.AddUserMessage("explain the fsnotify watcher")
	if err := s.SaveConversation(c); err != nil {
		t.Fatal(err)
	}
	other := model.NewConversation("m")
	other.AddUserMessage("unrelated")
	if err := s.SaveConversation(other); err != nil {
		t.Fatal(err)
	}

	metas, err := s.SearchConversations("fsnotify")
	if err != nil {
		t.Fatalf("SearchConversations() error = %v", err)
	}
	if len(metas) != 1 || metas[0].ID != c.ID {
		t.Errorf("search results = %v", metas)
	}
}

func TestDeleteConversation(t *testing.T) {
	s := newTestStore(t)

	c := model.NewConversation("m")
	c.AddUserMessage("bye")
	if err := s.SaveConversation(c); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteConversation(c.ID); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}
	if _, err := s.LoadConversation(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("load after delete error = %v", err)
	}
	if err := s.DeleteConversation(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete error = %v", err)
	}
}

func TestNotepadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	pad := notepad.New()
	pad.Set("ideas", "ship it")
	pad.Set("", "default note")

	if err := s.SaveNotes(pad.All()); err != nil {
		t.Fatalf("SaveNotes() error = %v", err)
	}

	notes, err := s.LoadNotes()
	if err != nil {
		t.Fatalf("LoadNotes() error = %v", err)
	}
	restored := notepad.New()
	restored.Load(notes)

	if got, ok := restored.Note("ideas"); !ok || got != "ship it" {
		t.Errorf("Note(ideas) = %q, %v", got, ok)
	}
	if got, ok := restored.Note(""); !ok || got != "default note" {
		t.Errorf("default note = %q, %v", got, ok)
	}
}

func TestSaveNotesReplaces(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveNotes([]notepad.Note{{Name: "a", Content: "1", UpdatedAt: time.Now()}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveNotes([]notepad.Note{{Name: "b", Content: "2", UpdatedAt: time.Now()}}); err != nil {
		t.Fatal(err)
	}

	notes, err := s.LoadNotes()
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Name != "b" {
		t.Errorf("notes = %v, want only b", notes)
	}
}
