// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the lingcode TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple is the primary brand accent.
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan marks interactive elements and prompts.
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald marks success and added lines.
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose marks errors and removed lines.
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber marks warnings and pending state.
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface is the default panel background.
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim is a recessed background for code and input areas.
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay is the border and separator color.
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// OverlayDim is a slightly stronger overlay for badges.
var OverlayDim = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#45475A"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// Text is the primary foreground.
var Text = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary is for supporting copy.
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted is for hints, line numbers, and timestamps.
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// DIFF COLORS
// =============================================================================

// DiffAddedBg backs added lines in the diff viewer.
var DiffAddedBg = lipgloss.AdaptiveColor{Light: "#DCFCE7", Dark: "#003300"}

// DiffRemovedBg backs removed lines in the diff viewer.
var DiffRemovedBg = lipgloss.AdaptiveColor{Light: "#FEE2E2", Dark: "#330000"}

// =============================================================================
// ROLE COLORS
// =============================================================================

// UserLabel colors the "You" speaker label.
var UserLabel = Cyan

// AssistantLabel colors the "LingCode" speaker label.
var AssistantLabel = Purple

// SystemLabel colors system notices.
var SystemLabel = Amber
