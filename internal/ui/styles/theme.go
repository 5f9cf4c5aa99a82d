// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability once so render code never re-probes.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions, updated on resize.
	Width  int
	Height int

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderModel lipgloss.Style

	// Speaker labels
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	Timestamp      lipgloss.Style

	// Input area
	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusOK     lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Completion popup
	CompletionPopup    lipgloss.Style
	CompletionItem     lipgloss.Style
	CompletionSelected lipgloss.Style

	// Code blocks
	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	CodeLineNum   lipgloss.Style
	TerminalBadge lipgloss.Style

	// Thinking indicator
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// Errors
	ErrorBox   lipgloss.Style
	ErrorTitle lipgloss.Style
	ErrorHint  lipgloss.Style
}

// NewTheme creates a theme with all styles configured.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.HeaderModel = lipgloss.NewStyle().Foreground(TextSecondary)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(UserLabel)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(AssistantLabel)
	t.SystemLabel = lipgloss.NewStyle().Bold(true).Foreground(SystemLabel)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.InputPlaceholder = lipgloss.NewStyle().Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.StatusOK = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Amber)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.CompletionPopup = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
	t.CompletionItem = lipgloss.NewStyle().Foreground(TextSecondary)
	t.CompletionSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text).
		Background(OverlayDim)

	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.CodeLangBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextMuted).
		Background(OverlayDim).
		Padding(0, 1)
	t.CodeLineNum = lipgloss.NewStyle().
		Foreground(TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)
	t.TerminalBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald).
		Background(OverlayDim).
		Padding(0, 1)

	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.ThinkingText = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)
	t.ErrorTitle = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.ErrorHint = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// =============================================================================
// LAYOUT MODES
// =============================================================================

// LayoutMode describes how much horizontal room the UI has.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 80 cols
	LayoutNormal                   // 80-119 cols
	LayoutWide                     // >= 120 cols
)

// GetLayoutMode returns the layout mode for the current width.
func (t *Theme) GetLayoutMode() LayoutMode {
	switch {
	case t.Width < 80:
		return LayoutNarrow
	case t.Width < 120:
		return LayoutNormal
	default:
		return LayoutWide
	}
}
