// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes line diffs between file versions: a streaming
// variant tuned for incremental re-computation while a model generates
// content, and a full LCS-based variant with hunks for final review.
package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// LINE TYPES
// =============================================================================

// LineType classifies one line of a merged diff view.
type LineType int

const (
	// LineUnchanged is a line common to both versions.
	LineUnchanged LineType = iota
	// LineAdded only exists in the new version.
	LineAdded
	// LineRemoved only exists in the original version.
	LineRemoved
)

// String returns the string representation of a line type.
func (t LineType) String() string {
	switch t {
	case LineUnchanged:
		return "unchanged"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Prefix returns the unified-diff prefix character for this line type.
func (t LineType) Prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// UnifiedLine is one line of a merged view of two text versions. Both line
// numbers are carried independently as computed; 0 means the line has no
// number on that side. Callers must not assume OldLine == NewLine for
// unchanged lines once prior edits have shifted offsets.
type UnifiedLine struct {
	Content string
	Type    LineType
	OldLine int // Line number in the original (0 if added)
	NewLine int // Line number in the updated version (0 if removed)
}

// =============================================================================
// FILE DIFF
// =============================================================================

// Stats holds diff statistics.
type Stats struct {
	Additions int
	Deletions int
	FileMode  string // "new", "modified", "deleted"
}

// Hunk is a contiguous run of changes with surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []UnifiedLine
}

// FileDiff is a complete diff of one file.
type FileDiff struct {
	FilePath   string
	OldContent string
	NewContent string
	Hunks      []Hunk
	Stats      Stats
}

// Compute creates a full diff between old and new content using an
// LCS-based line comparison, grouped into hunks with context. This is the
// review-quality path; use StreamDiff while content is still generating.
func Compute(filePath, oldContent, newContent string) *FileDiff {
	d := &FileDiff{
		FilePath:   filePath,
		OldContent: oldContent,
		NewContent: newContent,
	}

	oldLines := SplitLines(oldContent)
	newLines := SplitLines(newContent)

	switch {
	case oldContent == "" && newContent != "":
		d.Stats.FileMode = "new"
	case oldContent != "" && newContent == "":
		d.Stats.FileMode = "deleted"
	default:
		d.Stats.FileMode = "modified"
	}

	lines := lcsDiff(oldLines, newLines)
	d.Hunks = groupIntoHunks(lines)

	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			d.Stats.Additions++
		case LineRemoved:
			d.Stats.Deletions++
		}
	}

	return d
}

// SplitLines splits content into lines, dropping the empty tail produced
// by a trailing newline.
func SplitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// lcsDiff computes line-by-line differences via longest common subsequence.
func lcsDiff(oldLines, newLines []string) []UnifiedLine {
	var result []UnifiedLine

	if len(oldLines) == 0 && len(newLines) == 0 {
		return result
	}
	if len(oldLines) == 0 {
		for i, line := range newLines {
			result = append(result, UnifiedLine{Content: line, Type: LineAdded, NewLine: i + 1})
		}
		return result
	}
	if len(newLines) == 0 {
		for i, line := range oldLines {
			result = append(result, UnifiedLine{Content: line, Type: LineRemoved, OldLine: i + 1})
		}
		return result
	}

	lcs := computeLCS(oldLines, newLines)

	o, n, l := 0, 0, 0
	for o < len(oldLines) || n < len(newLines) {
		switch {
		case l < len(lcs) && o < len(oldLines) && n < len(newLines) &&
			oldLines[o] == newLines[n] && oldLines[o] == lcs[l]:
			result = append(result, UnifiedLine{
				Content: oldLines[o],
				Type:    LineUnchanged,
				OldLine: o + 1,
				NewLine: n + 1,
			})
			o++
			n++
			l++
		case o < len(oldLines) && (l >= len(lcs) || oldLines[o] != lcs[l]):
			result = append(result, UnifiedLine{Content: oldLines[o], Type: LineRemoved, OldLine: o + 1})
			o++
		case n < len(newLines):
			result = append(result, UnifiedLine{Content: newLines[n], Type: LineAdded, NewLine: n + 1})
			n++
		}
	}

	return result
}

// computeLCS returns the longest common subsequence of two line slices.
func computeLCS(a, b []string) []string {
	m, n := len(a), len(b)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = maxInt(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	var lcs []string
	i, j := m, n
	for i > 0 && j > 0 {
		if a[i-1] == b[j-1] {
			lcs = append([]string{a[i-1]}, lcs...)
			i--
			j--
		} else if dp[i-1][j] > dp[i][j-1] {
			i--
		} else {
			j--
		}
	}

	return lcs
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// groupIntoHunks groups diff lines into hunks with context lines.
func groupIntoHunks(lines []UnifiedLine) []Hunk {
	if len(lines) == 0 {
		return nil
	}

	const contextLines = 3

	var hunks []Hunk
	var current *Hunk

	appendLine := func(h *Hunk, line UnifiedLine) {
		h.Lines = append(h.Lines, line)
		if line.OldLine > 0 {
			h.OldCount++
		}
		if line.NewLine > 0 {
			h.NewCount++
		}
	}

	for i, line := range lines {
		isChange := line.Type != LineUnchanged

		if current == nil && isChange {
			current = &Hunk{}

			contextStart := maxInt(0, i-contextLines)
			for j := contextStart; j < i; j++ {
				appendLine(current, lines[j])
			}

			if len(current.Lines) > 0 {
				first := current.Lines[0]
				current.OldStart = first.OldLine
				current.NewStart = first.NewLine
			}
			if current.OldStart == 0 {
				current.OldStart = line.OldLine
			}
			if current.NewStart == 0 {
				current.NewStart = line.NewLine
			}
		}

		if current == nil {
			continue
		}

		appendLine(current, line)

		// Close the hunk once enough pure context follows the last change.
		contextAfter := 0
		for j := i + 1; j < len(lines) && j < i+1+contextLines; j++ {
			if lines[j].Type != LineUnchanged {
				contextAfter = -1
				break
			}
			contextAfter++
		}

		if contextAfter >= 0 && (i == len(lines)-1 || contextAfter < contextLines) {
			for j := i + 1; j <= i+contextAfter && j < len(lines); j++ {
				appendLine(current, lines[j])
			}
			hunks = append(hunks, *current)
			current = nil
		}
	}

	if current != nil {
		hunks = append(hunks, *current)
	}

	return hunks
}

// =============================================================================
// UNIFIED FORMAT
// =============================================================================

// FormatUnified returns the diff in standard unified diff format.
func FormatUnified(d *FileDiff) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("--- a/%s\n", d.FilePath))
	sb.WriteString(fmt.Sprintf("+++ b/%s\n", d.FilePath))

	for _, hunk := range d.Hunks {
		sb.WriteString(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldCount,
			hunk.NewStart, hunk.NewCount))
		for _, line := range hunk.Lines {
			sb.WriteString(line.Type.Prefix())
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Summary returns a human-readable summary of the diff.
func (d *FileDiff) Summary() string {
	var parts []string

	switch d.Stats.FileMode {
	case "new":
		parts = append(parts, "New file")
	case "deleted":
		parts = append(parts, "File deleted")
	default:
		parts = append(parts, "Modified")
	}

	if d.Stats.Additions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", d.Stats.Additions))
	}
	if d.Stats.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", d.Stats.Deletions))
	}

	return strings.Join(parts, " ")
}
