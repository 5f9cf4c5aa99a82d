// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for lingcode.
//
// It implements the non-TUI commands: one-shot questions (ask), an
// interactive terminal REPL (chat), codebase index management (index),
// and saved conversation management (sessions). Parsing is hand-rolled
// so the binary stays dependency-light; the full-screen TUI lives in
// internal/ui.
package cli
