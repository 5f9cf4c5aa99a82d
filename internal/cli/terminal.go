// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the lingcode CLI.
//
// USABILITY: TTY detection keeps colored and rendered output off pipes
// and CI logs, and respects NO_COLOR.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal. Markdown rendering
// and colors are only used when this holds.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL WIDTH
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback when detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the narrowest width used for wrapping.
	MinTerminalWidth = 40
)

// TerminalWidth returns the current terminal width, clamped to a sane
// minimum, or DefaultTerminalWidth when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR SUPPORT
// =============================================================================

var (
	colorOnce    sync.Once
	colorEnabled bool
)

// ColorEnabled reports whether colored output should be produced.
// Colors are disabled when stdout is not a TTY, when NO_COLOR is set,
// or when the terminal profile reports no color support.
func ColorEnabled() bool {
	colorOnce.Do(func() {
		if !IsStdoutTTY() {
			return
		}
		if _, set := os.LookupEnv("NO_COLOR"); set {
			return
		}
		colorEnabled = termenv.ColorProfile() != termenv.Ascii
	})
	return colorEnabled
}
