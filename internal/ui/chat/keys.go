// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// keys.go - Keyboard bindings for the chat view.

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keyboard bindings for the chat interface.
type KeyMap struct {
	PageUp   key.Binding
	PageDown key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Retry    key.Binding
	Complete key.Binding
	Help     key.Binding
	Quit     key.Binding
	Clear    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel streaming"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "retry after failure"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete @ mention"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("C-q", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "new conversation"),
		),
	}
}

// ShortHelp lists the bindings for the status bar hint line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Complete, k.Cancel, k.Quit}
}

// FullHelp lists all bindings grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PageUp, k.PageDown},
		{k.Submit, k.Cancel, k.Retry, k.Complete},
		{k.Clear, k.Help, k.Quit},
	}
}
