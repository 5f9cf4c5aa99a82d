// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes line diffs between file versions.
package diff

// =============================================================================
// STREAMING DIFF
// =============================================================================

// StreamDiff computes a line-level diff with a greedy one-line lookahead.
//
// It is cheap enough to re-run on every streamed chunk, at the cost of
// non-minimal output on multi-line reorderings. That trade-off is
// deliberate; do not swap in the LCS path here without measuring the
// per-chunk cost on large files.
//
// A nil original means the target file does not exist yet: every updated
// line is emitted as added, numbered 1..N.
func StreamDiff(original, updated []string) []UnifiedLine {
	if original == nil {
		result := make([]UnifiedLine, 0, len(updated))
		for i, line := range updated {
			result = append(result, UnifiedLine{
				Content: line,
				Type:    LineAdded,
				NewLine: i + 1,
			})
		}
		return result
	}

	var result []UnifiedLine
	o, n := 0, 0

	for o < len(original) || n < len(updated) {
		switch {
		case o < len(original) && n < len(updated) && original[o] == updated[n]:
			result = append(result, UnifiedLine{
				Content: original[o],
				Type:    LineUnchanged,
				OldLine: o + 1,
				NewLine: n + 1,
			})
			o++
			n++

		case o < len(original) && n < len(updated):
			// Lines differ: peek one line ahead on each side.
			if o+1 < len(original) && original[o+1] == updated[n] {
				// Deletion: the original line was dropped.
				result = append(result, UnifiedLine{
					Content: original[o],
					Type:    LineRemoved,
					OldLine: o + 1,
				})
				o++
			} else if n+1 < len(updated) && updated[n+1] == original[o] {
				// Insertion: a new line was added.
				result = append(result, UnifiedLine{
					Content: updated[n],
					Type:    LineAdded,
					NewLine: n + 1,
				})
				n++
			} else {
				// Substitution: removed plus added.
				result = append(result, UnifiedLine{
					Content: original[o],
					Type:    LineRemoved,
					OldLine: o + 1,
				})
				result = append(result, UnifiedLine{
					Content: updated[n],
					Type:    LineAdded,
					NewLine: n + 1,
				})
				o++
				n++
			}

		case o < len(original):
			result = append(result, UnifiedLine{
				Content: original[o],
				Type:    LineRemoved,
				OldLine: o + 1,
			})
			o++

		default:
			result = append(result, UnifiedLine{
				Content: updated[n],
				Type:    LineAdded,
				NewLine: n + 1,
			})
			n++
		}
	}

	return result
}

// StreamDiffStrings is a convenience wrapper over StreamDiff for raw file
// content. An originalExists of false maps to a nil original.
func StreamDiffStrings(originalContent string, originalExists bool, updatedContent string) []UnifiedLine {
	var original []string
	if originalExists {
		original = SplitLines(originalContent)
		if original == nil {
			original = []string{}
		}
	}
	return StreamDiff(original, SplitLines(updatedContent))
}

// CountChanges tallies added and removed lines in a streamed diff.
func CountChanges(lines []UnifiedLine) (added, removed int) {
	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			added++
		case LineRemoved:
			removed++
		}
	}
	return added, removed
}
