// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable rendering components for the
// lingcode TUI: syntax-highlighted code blocks, the diff review panel,
// and message formatting for the chat viewport. Components are plain
// renderers; the bubbletea event loop lives in internal/ui/chat.
package components
