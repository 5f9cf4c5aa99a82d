// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Mention environment assembly for CLI commands.
//
// Wires the context builder's collaborators from whatever is available
// on the command line: the working directory, a previously built
// project index, the web searcher, and saved notes.

package cli

import (
	"os"
	"path/filepath"

	"github.com/lingcode/lingcode-tui/internal/config"
	"github.com/lingcode/lingcode-tui/internal/docs"
	"github.com/lingcode/lingcode-tui/internal/index"
	"github.com/lingcode/lingcode-tui/internal/mention"
	"github.com/lingcode/lingcode-tui/internal/notepad"
	"github.com/lingcode/lingcode-tui/internal/storage"
	"github.com/lingcode/lingcode-tui/internal/websearch"
)

// indexDBPath returns the on-disk location of the project index.
// The index lives inside the project so it follows the checkout.
func indexDBPath(root string) string {
	return filepath.Join(root, ".lingcode", "index.db")
}

// openProjectIndex opens the current project's index if one has been
// built. Returns nil when there is no index; mentions that need it
// then contribute nothing instead of failing the command.
func openProjectIndex(cfg *config.Config, root string) *index.Index {
	dbPath := indexDBPath(root)
	if _, err := os.Stat(dbPath); err != nil {
		return nil
	}

	opts := index.DefaultOptions()
	if cfg.Index.MaxFileSizeKB > 0 {
		opts.MaxFileSize = int64(cfg.Index.MaxFileSizeKB) * 1024
	}
	if len(cfg.Index.IgnoreDirs) > 0 {
		opts.IgnoreDirs = cfg.Index.IgnoreDirs
	}

	idx, err := index.New(root, dbPath, opts)
	if err != nil {
		return nil
	}
	return idx
}

// loadNotes loads saved notepad contents from the conversation store.
// Returns an empty pad when the store is unavailable.
func loadNotes() *notepad.Pad {
	pad := notepad.New()

	path, err := storage.DefaultPath()
	if err != nil {
		return pad
	}
	store, err := storage.Open(path)
	if err != nil {
		return pad
	}
	defer store.Close()

	if notes, err := store.LoadNotes(); err == nil {
		pad.Load(notes)
	}
	return pad
}

// BuildMentionEnv assembles the mention environment for the current
// working directory. Terminal sessions have no editor selection or
// terminal pane capture, so those fields stay empty.
func BuildMentionEnv(cfg *config.Config) *mention.Env {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}

	searcher := websearch.New()

	env := &mention.Env{
		Files: mention.NewOSFileProvider(root),
		Web:   searcher,
		Docs:  docs.New(searcher),
		Notes: loadNotes(),
	}

	if idx := openProjectIndex(cfg, root); idx != nil {
		env.Index = idx
	}
	return env
}
