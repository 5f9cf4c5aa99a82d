// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// index_cmd.go - Codebase index command handler for the lingcode CLI.
//
// Handles "lingcode index", which builds and inspects the project's
// symbol index.
//
// Subcommands:
//   lingcode index build       Build (or rebuild) the index
//   lingcode index watch       Build, then reindex on file changes
//   lingcode index stats       Show index statistics
//   lingcode index find NAME   Look up a symbol by name

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lingcode/lingcode-tui/internal/config"
	"github.com/lingcode/lingcode-tui/internal/index"
)

// HandleIndexCommand handles the "index" command.
func HandleIndexCommand(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine working directory: %w", err)
	}

	switch args.Subcommand {
	case "", "build":
		return indexBuild(cfg, root, args.Quiet)

	case "watch":
		return indexWatch(cfg, root, args.Quiet)

	case "stats":
		return indexStats(cfg, root)

	case "find":
		p := NewArgParser(args.Raw, nil)
		name := p.Positional(1)
		if name == "" {
			return fmt.Errorf("usage: lingcode index find NAME")
		}
		return indexFind(cfg, root, name, p.FlagIntOrDefault("limit", 10))

	default:
		return fmt.Errorf("unknown index subcommand %q (build, watch, stats, find)", args.Subcommand)
	}
}

func openOrCreateIndex(cfg *config.Config, root string) (*index.Index, error) {
	dbPath := indexDBPath(root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("cannot create index directory: %w", err)
	}

	opts := index.DefaultOptions()
	if cfg.Index.MaxFileSizeKB > 0 {
		opts.MaxFileSize = int64(cfg.Index.MaxFileSizeKB) * 1024
	}
	if len(cfg.Index.IgnoreDirs) > 0 {
		opts.IgnoreDirs = cfg.Index.IgnoreDirs
	}
	return index.New(root, dbPath, opts)
}

func indexBuild(cfg *config.Config, root string, quiet bool) error {
	idx, err := openOrCreateIndex(cfg, root)
	if err != nil {
		return err
	}
	defer idx.Close()

	if !quiet {
		fmt.Printf("Indexing %s ...\n", root)
	}

	start := time.Now()
	if err := idx.Build(context.Background()); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	stats := idx.Stats()
	if !quiet {
		fmt.Printf("Indexed %d file(s), %d symbol(s) in %s\n",
			stats.Files, stats.Symbols, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func indexWatch(cfg *config.Config, root string, quiet bool) error {
	if err := indexBuild(cfg, root, quiet); err != nil {
		return err
	}

	idx, err := openOrCreateIndex(cfg, root)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if !quiet {
		fmt.Println("Watching for changes. Press Ctrl+C to stop.")
	}
	if err := idx.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func indexStats(cfg *config.Config, root string) error {
	idx := openProjectIndex(cfg, root)
	if idx == nil {
		return fmt.Errorf("no index found, run: lingcode index build")
	}
	defer idx.Close()

	stats := idx.Stats()
	fmt.Printf("Root:       %s\n", idx.Root())
	fmt.Printf("Files:      %d\n", stats.Files)
	fmt.Printf("Symbols:    %d\n", stats.Symbols)
	if !stats.LastBuildAt.IsZero() {
		fmt.Printf("Last build: %s\n", stats.LastBuildAt.Format(time.RFC3339))
	}
	return nil
}

func indexFind(cfg *config.Config, root, name string, limit int) error {
	idx := openProjectIndex(cfg, root)
	if idx == nil {
		return fmt.Errorf("no index found, run: lingcode index build")
	}
	defer idx.Close()

	symbols, err := idx.FindSymbol(name, limit)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		fmt.Printf("No symbols matching %q\n", name)
		return nil
	}

	for _, s := range symbols {
		fmt.Printf("%s:%d  %s %s", s.FilePath, s.Line, s.Kind, s.Name)
		if s.Signature != "" {
			fmt.Printf("  %s", s.Signature)
		}
		fmt.Println()
	}
	return nil
}
