// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lingcode/lingcode-tui/internal/diff"
	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

// =============================================================================
// DIFF VIEWER
// =============================================================================

// DiffViewer renders file diffs with dual line numbers and an
// approve/reject prompt.
type DiffViewer struct {
	diff     *diff.FileDiff
	width    int
	height   int
	approved bool
	rejected bool
	showHelp bool
}

// NewDiffViewer creates a viewer for a computed diff.
func NewDiffViewer(d *diff.FileDiff) *DiffViewer {
	return &DiffViewer{
		diff:     d,
		width:    80,
		height:   24,
		showHelp: true,
	}
}

// SetSize sets the viewer dimensions.
func (dv *DiffViewer) SetSize(width, height int) {
	dv.width = width
	dv.height = height
}

// Approve marks the diff as approved.
func (dv *DiffViewer) Approve() {
	dv.approved = true
	dv.rejected = false
}

// Reject marks the diff as rejected.
func (dv *DiffViewer) Reject() {
	dv.approved = false
	dv.rejected = true
}

// IsApproved returns whether the diff was approved.
func (dv *DiffViewer) IsApproved() bool {
	return dv.approved
}

// IsRejected returns whether the diff was rejected.
func (dv *DiffViewer) IsRejected() bool {
	return dv.rejected
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the full diff review panel.
func (dv *DiffViewer) View() string {
	if dv.diff == nil {
		return "No diff available"
	}

	var content strings.Builder

	title := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true).Underline(true)
	content.WriteString(title.Render("File Diff Preview"))
	content.WriteString("\n\n")

	content.WriteString(dv.renderStats())
	content.WriteString("\n\n")

	pathStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	content.WriteString(pathStyle.Render(dv.diff.FilePath))
	content.WriteString("\n")

	sep := lipgloss.NewStyle().Foreground(styles.Overlay)
	content.WriteString(sep.Render(strings.Repeat("-", minInt(dv.width-4, 80))))
	content.WriteString("\n\n")

	content.WriteString(dv.renderHunks())

	if dv.showHelp {
		content.WriteString("\n\n")
		content.WriteString(dv.renderHelp())
	}

	container := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 2).
		Width(minInt(dv.width-4, 100))

	return container.Render(content.String())
}

func (dv *DiffViewer) renderStats() string {
	stats := dv.diff.Stats
	modeStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	var parts []string
	switch stats.FileMode {
	case "new":
		parts = append(parts, modeStyle.Render("New file"))
	case "deleted":
		parts = append(parts, modeStyle.Render("Deleted file"))
	case "modified":
		parts = append(parts, modeStyle.Render("Modified"))
	}

	if stats.Additions > 0 {
		add := lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
		parts = append(parts, add.Render(fmt.Sprintf("+%d", stats.Additions)))
	}
	if stats.Deletions > 0 {
		del := lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
		parts = append(parts, del.Render(fmt.Sprintf("-%d", stats.Deletions)))
	}
	if stats.Additions > 0 || stats.Deletions > 0 {
		word := "line"
		if stats.Additions+stats.Deletions != 1 {
			word = "lines"
		}
		parts = append(parts, modeStyle.Render(word))
	}

	return strings.Join(parts, " ")
}

func (dv *DiffViewer) renderHunks() string {
	if len(dv.diff.Hunks) == 0 {
		empty := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
		return empty.Render("No changes")
	}

	var content strings.Builder
	for i, hunk := range dv.diff.Hunks {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(dv.renderHunk(hunk))
	}
	return content.String()
}

func (dv *DiffViewer) renderHunk(hunk diff.Hunk) string {
	var content strings.Builder

	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Background(styles.SurfaceDim).
		Bold(true).
		Padding(0, 1)

	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@",
		hunk.OldStart, hunk.OldCount, hunk.NewStart, hunk.NewCount)
	content.WriteString(headerStyle.Render(header))
	content.WriteString("\n")

	for _, line := range hunk.Lines {
		content.WriteString(RenderDiffLine(line))
		content.WriteString("\n")
	}
	return content.String()
}

// RenderDiffLine renders one unified diff line with dual line numbers:
// old on the left column, new on the right, blank where absent.
func RenderDiffLine(line diff.UnifiedLine) string {
	var numStr, prefix string
	var lineStyle lipgloss.Style

	switch line.Type {
	case diff.LineAdded:
		lineStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Background(styles.DiffAddedBg)
		prefix = "+"
		numStr = fmt.Sprintf("    %4d", line.NewLine)

	case diff.LineRemoved:
		lineStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Background(styles.DiffRemovedBg)
		prefix = "-"
		numStr = fmt.Sprintf("%4d    ", line.OldLine)

	default:
		lineStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
		prefix = " "
		numStr = fmt.Sprintf("%4d %4d", line.OldLine, line.NewLine)
	}

	nums := lipgloss.NewStyle().Foreground(styles.TextMuted).Width(9).Render(numStr)
	return nums + " " + lineStyle.Render(prefix+line.Content)
}

// RenderStreamDiff renders a live diff without hunk grouping, used
// while the file is still streaming.
func RenderStreamDiff(lines []diff.UnifiedLine) string {
	var content strings.Builder
	for _, line := range lines {
		content.WriteString(RenderDiffLine(line))
		content.WriteString("\n")
	}
	return content.String()
}

func (dv *DiffViewer) renderHelp() string {
	if dv.approved {
		s := lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
		return s.Render("[OK] Changes approved - will be applied")
	}
	if dv.rejected {
		s := lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
		return s.Render("[X] Changes rejected - will not be applied")
	}

	help := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	approve := lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	reject := lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)

	lines := []string{
		help.Render("Review the changes above:"),
		"",
		approve.Render("  y / Enter") + "  - Approve and apply changes",
		reject.Render("  n / Esc") + "   - Reject changes",
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// HELPERS
// =============================================================================

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
