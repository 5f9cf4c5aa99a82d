// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// FILE WATCHER
// =============================================================================

// watchDebounce batches rapid save bursts into one reindex pass.
const watchDebounce = 500 * time.Millisecond

// Watch observes the project root and incrementally reindexes files as
// they change. It blocks until ctx is cancelled.
func (idx *Index) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("index: start watcher: %w", err)
	}
	defer watcher.Close()

	if err := idx.addWatchDirs(watcher); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					base := filepath.Base(event.Name)
					if !strings.HasPrefix(base, ".") && !idx.ignored(base) {
						watcher.Add(event.Name)
					}
					continue
				}
			}
			ext := strings.ToLower(filepath.Ext(event.Name))
			if _, ok := idx.parsers[ext]; !ok {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(watchDebounce)

		case <-timer.C:
			for path := range pending {
				idx.reindexPath(ctx, path)
			}
			pending = make(map[string]struct{})
			idx.refreshStats()

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watch errors are transient; keep watching.
		}
	}
}

// addWatchDirs registers the root and every non-ignored subdirectory.
func (idx *Index) addWatchDirs(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(idx.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != idx.root && (strings.HasPrefix(name, ".") || idx.ignored(name)) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("index: watch %s: %w", path, err)
		}
		return nil
	})
}

// reindexPath updates the index for one changed or removed file.
func (idx *Index) reindexPath(ctx context.Context, path string) {
	rel, err := filepath.Rel(idx.root, path)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	info, statErr := os.Stat(path)
	if statErr != nil {
		// Removed or renamed away: drop its rows. Explicit symbol delete
		// first so the FTS trigger fires.
		idx.db.Exec("DELETE FROM symbols WHERE file_id IN (SELECT id FROM files WHERE path = ?)", rel)
		idx.db.Exec("DELETE FROM files WHERE path = ?", rel)
		return
	}
	if !info.Mode().IsRegular() || info.Size() > idx.opts.MaxFileSize {
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	parser, ok := idx.parsers[ext]
	if !ok {
		return
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	if err := idx.indexFile(ctx, tx, path, ext, parser, info); err != nil {
		tx.Rollback()
		return
	}
	tx.Commit()
}
