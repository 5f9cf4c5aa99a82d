// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sanitize strips narrative noise from streamed code buffers.
package sanitize

import "strings"

// =============================================================================
// MALFORMED STREAM DETECTION
// =============================================================================

// narrativeProbeLines is how many leading non-blank lines the detector
// inspects before deciding a code-only stream has gone narrative.
const narrativeProbeLines = 4

// LooksNarrative reports whether a buffer destined for a code-only channel
// appears to contain nothing but planning or explanation text.
//
// Callers use this to short-circuit further appends for a malformed stream
// (spec of the generation session): the prefix already appended stays
// intact, the stream just stops growing.
func (s *Sanitizer) LooksNarrative(buffer string) bool {
	if strings.Contains(buffer, "```") {
		// A fence means real code is arriving.
		return false
	}

	probed := 0
	for _, line := range strings.Split(buffer, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !s.isNarrative(line) && !looksProse(trimmed) {
			return false
		}
		probed++
		if probed >= narrativeProbeLines {
			break
		}
	}

	return probed > 0
}

// looksProse is a weak heuristic for explanatory sentences: long lines of
// space-separated words with no code punctuation.
func looksProse(line string) bool {
	if strings.ContainsAny(line, "{}();=<>[]") {
		return false
	}
	words := strings.Fields(line)
	return len(words) >= 6
}
