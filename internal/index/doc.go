// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index maintains a SQLite-backed symbol index over a project
// root. Symbols are extracted per language (Go via the standard AST,
// Python and JavaScript/TypeScript via line patterns) and mirrored into
// an FTS5 table for relevance-ranked search. An fsnotify watcher keeps
// the index fresh as files change.
package index
