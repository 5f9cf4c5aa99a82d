// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package sanitize

import (
	"strings"
	"testing"
)

func TestSanitize_StripsHeadings(t *testing.T) {
	s := NewDefault()

	input := "## Plan\nfunc main() {}"
	result := s.Sanitize(input)

	if strings.Contains(result, "## Plan") {
		t.Errorf("Heading should be stripped, got %q", result)
	}
	if !strings.Contains(result, "func main() {}") {
		t.Errorf("Code line should survive, got %q", result)
	}
}

func TestSanitize_NeverTouchesFencedLines(t *testing.T) {
	s := NewDefault()

	// The heading and the "Plan:" line live inside a fence and must survive.
	input := "```markdown\n## Plan\nPlan: keep me\n```"
	result := s.Sanitize(input)

	if result != input {
		t.Errorf("Fenced content must pass through untouched:\n got %q\nwant %q", result, input)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewDefault()

	inputs := []string{
		"",
		"plain code line",
		"## Plan\ncode\nHere's what I did\nmore code",
		"```go\n# not a heading, inside fence\n```",
		"1. step one\n2. step two\nx := 1",
		"Let me think about this for a moment before writing",
	}

	for _, input := range inputs {
		once := s.Sanitize(input)
		twice := s.Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q:\n once=%q\n twice=%q", input, once, twice)
		}
	}
}

func TestSanitize_PreservesOrder(t *testing.T) {
	s := NewDefault()

	input := "alpha()\n## noise\nbeta()\nNote: noise\ngamma()"
	result := s.Sanitize(input)

	want := "alpha()\nbeta()\ngamma()"
	if result != want {
		t.Errorf("Expected %q, got %q", want, result)
	}
}

func TestSanitize_AllNarrativeCollapsesToEmpty(t *testing.T) {
	s := NewDefault()

	input := "## Plan\nHere's my approach\n1. do the thing\n2. verify"
	if result := s.Sanitize(input); result != "" {
		t.Errorf("All-narrative input should collapse to empty, got %q", result)
	}
}

func TestSanitize_NumberedSteps(t *testing.T) {
	s := NewDefault()

	input := "1. first step\n42) later step\n3.no-space stays\ncode"
	result := s.Sanitize(input)

	if strings.Contains(result, "first step") || strings.Contains(result, "later step") {
		t.Errorf("Numbered steps should be stripped, got %q", result)
	}
	if !strings.Contains(result, "3.no-space stays") {
		t.Errorf("Line without step spacing must survive, got %q", result)
	}
}

func TestSanitize_CustomPolicy(t *testing.T) {
	s := New(Policy{
		StripHeadings:     false,
		NarrativePrefixes: []string{"thinking:"},
	})

	input := "# keep heading\nThinking: drop me\ncode"
	result := s.Sanitize(input)

	if !strings.Contains(result, "# keep heading") {
		t.Errorf("Headings should survive with StripHeadings=false, got %q", result)
	}
	if strings.Contains(result, "drop me") {
		t.Errorf("Custom prefix should be stripped, got %q", result)
	}
}

func TestLooksNarrative(t *testing.T) {
	s := NewDefault()

	tests := []struct {
		name     string
		buffer   string
		expected bool
	}{
		{"planning prose", "Here's what I'm going to do to solve this problem for you", true},
		{"heading only", "## Implementation Plan", true},
		{"code", "func main() {\n\tfmt.Println(1)\n}", false},
		{"fenced content", "Here's the code:\n```go\nx := 1\n```", false},
		{"empty", "", false},
		{"short neutral line", "ok", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.LooksNarrative(tt.buffer); got != tt.expected {
				t.Errorf("LooksNarrative(%q) = %v, want %v", tt.buffer, got, tt.expected)
			}
		})
	}
}
