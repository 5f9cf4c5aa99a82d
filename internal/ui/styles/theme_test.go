// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()

	// A zero style renders input unchanged; the bold label styles must
	// not be zero values.
	if !theme.UserLabel.GetBold() {
		t.Error("UserLabel should be bold")
	}
	if !theme.AssistantLabel.GetBold() {
		t.Error("AssistantLabel should be bold")
	}
	if !theme.HeaderTitle.GetBold() {
		t.Error("HeaderTitle should be bold")
	}
}

func TestLayoutModeThresholds(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{79, LayoutNarrow},
		{80, LayoutNormal},
		{119, LayoutNormal},
		{120, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: layout = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(100, 40)
	if theme.Width != 100 || theme.Height != 40 {
		t.Errorf("size = %dx%d", theme.Width, theme.Height)
	}
}
