// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sanitize strips narrative noise from streamed code buffers.
//
// Models asked to emit code sometimes interleave planning prose, markdown
// headers, and explanations. The sanitizer removes those lines so a
// code-focused pane shows only source, under three invariants: lines inside
// fenced code blocks are never dropped, surviving lines are never
// reordered, and sanitizing is idempotent.
package sanitize

import (
	"strings"
)

// =============================================================================
// POLICY
// =============================================================================

// Policy controls which lines are treated as narrative. The exact rules
// are deployment policy, not a hard-coded constant: they are loaded from
// configuration and tuned against real model output.
type Policy struct {
	// StripHeadings removes markdown heading lines ("#", "##", ...)
	// outside fences.
	StripHeadings bool

	// NarrativePrefixes are case-insensitive line prefixes removed outside
	// fences (e.g. "Plan:", "Here's", "Let me").
	NarrativePrefixes []string

	// StripNumberedSteps removes "1. ...", "2) ..." planning lists
	// outside fences.
	StripNumberedSteps bool
}

// DefaultPolicy returns the narrative-stripping rules used when the
// configuration provides none.
func DefaultPolicy() Policy {
	return Policy{
		StripHeadings: true,
		NarrativePrefixes: []string{
			"plan:",
			"here's",
			"here is",
			"let me",
			"i'll",
			"i will",
			"first,",
			"next,",
			"finally,",
			"note:",
			"explanation:",
		},
		StripNumberedSteps: true,
	}
}

// =============================================================================
// SANITIZER
// =============================================================================

// Sanitizer removes narrative lines from a raw streaming buffer.
// It is a pure function of its input and safe to call on every chunk.
type Sanitizer struct {
	policy Policy
}

// New creates a sanitizer with the given policy.
func New(policy Policy) *Sanitizer {
	return &Sanitizer{policy: policy}
}

// NewDefault creates a sanitizer with the default policy.
func NewDefault() *Sanitizer {
	return New(DefaultPolicy())
}

// Policy returns the active policy.
func (s *Sanitizer) Policy() Policy {
	return s.policy
}

// Sanitize returns rawBuffer with narrative lines removed.
//
// Fence lines and everything between them pass through untouched, so the
// fence parity of the output matches the input and a second pass removes
// nothing further: Sanitize(Sanitize(x)) == Sanitize(x).
func (s *Sanitizer) Sanitize(rawBuffer string) string {
	if rawBuffer == "" {
		return ""
	}

	lines := strings.Split(rawBuffer, "\n")
	kept := make([]string, 0, len(lines))
	inFence := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			kept = append(kept, line)
			continue
		}
		if inFence {
			kept = append(kept, line)
			continue
		}
		if s.isNarrative(line) {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.Join(kept, "\n")
	if strings.TrimSpace(out) == "" {
		// Entire input was narrative.
		return ""
	}
	return out
}

// isNarrative reports whether a line outside any fence matches the policy.
func (s *Sanitizer) isNarrative(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}

	if s.policy.StripHeadings && strings.HasPrefix(trimmed, "#") {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range s.policy.NarrativePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	if s.policy.StripNumberedSteps && isNumberedStep(trimmed) {
		return true
	}

	return false
}

// isNumberedStep matches "1. text" and "2) text" planning-list lines.
func isNumberedStep(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return false
	}
	if line[i] != '.' && line[i] != ')' {
		return false
	}
	rest := line[i+1:]
	return strings.HasPrefix(rest, " ")
}
