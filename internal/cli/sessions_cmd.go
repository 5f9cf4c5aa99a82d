// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions_cmd.go - Saved conversation management for the lingcode CLI.
//
// Handles "lingcode sessions".
//
// Subcommands:
//   lingcode sessions list        List saved conversations
//   lingcode sessions show ID     Print a conversation transcript
//   lingcode sessions search Q    Search by title and content
//   lingcode sessions export ID   Write a conversation to a file
//   lingcode sessions delete ID   Delete a conversation

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/lingcode/lingcode-tui/internal/export"
	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/storage"
)

// HandleSessionsCommand handles the "sessions" command.
func HandleSessionsCommand(args Args) error {
	path, err := storage.DefaultPath()
	if err != nil {
		return err
	}
	store, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open conversation store: %w", err)
	}
	defer store.Close()

	p := NewArgParser(args.Raw, nil)

	switch args.Subcommand {
	case "", "list":
		metas, err := store.ListConversations()
		if err != nil {
			return err
		}
		printMetas(metas)
		return nil

	case "show":
		id := p.Positional(1)
		if id == "" {
			return fmt.Errorf("usage: lingcode sessions show ID")
		}
		return sessionsShow(store, id)

	case "search":
		query := strings.Join(p.PositionalFrom(1), " ")
		if query == "" {
			return fmt.Errorf("usage: lingcode sessions search QUERY")
		}
		metas, err := store.SearchConversations(query)
		if err != nil {
			return err
		}
		printMetas(metas)
		return nil

	case "export":
		id := p.Positional(1)
		if id == "" {
			return fmt.Errorf("usage: lingcode sessions export ID [--format md|json|html] [--out DIR]")
		}
		return sessionsExport(store, id, p.FlagOrDefault("format", "md"), p.FlagOrDefault("out", "."))

	case "delete":
		id := p.Positional(1)
		if id == "" {
			return fmt.Errorf("usage: lingcode sessions delete ID")
		}
		if err := store.DeleteConversation(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no conversation with id %s", id)
			}
			return err
		}
		fmt.Printf("Deleted %s\n", id)
		return nil

	default:
		return fmt.Errorf("unknown sessions subcommand %q (list, show, search, export, delete)", args.Subcommand)
	}
}

func sessionsShow(store *storage.Store, id string) error {
	conv, err := store.LoadConversation(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no conversation with id %s", id)
		}
		return err
	}

	fmt.Printf("%s  (%s, %d messages)\n\n", conv.Title, conv.Model, conv.MessageCount())
	for _, m := range conv.Messages {
		fmt.Printf("[%s] %s\n%s\n\n",
			m.Timestamp.Format("15:04"),
			m.Role.DisplayName(),
			m.Content)
	}
	return nil
}

func sessionsExport(store *storage.Store, id, format, outDir string) error {
	conv, err := store.LoadConversation(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no conversation with id %s", id)
		}
		return err
	}

	opts := export.DefaultOptions()
	opts.OutputDir = outDir

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}

	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func printMetas(metas []model.Meta) {
	if len(metas) == 0 {
		fmt.Println("No saved conversations.")
		return
	}
	for _, meta := range metas {
		fmt.Printf("%s  %-40s  %3d msg  %s\n",
			meta.ID,
			truncateTitle(meta.Title, 40),
			meta.MessageCount,
			meta.UpdatedAt.Format(time.DateOnly))
	}
}

// truncateTitle shortens a title to a display width. Width-aware so
// CJK titles do not break the column layout.
func truncateTitle(title string, max int) string {
	return runewidth.Truncate(title, max, "...")
}
