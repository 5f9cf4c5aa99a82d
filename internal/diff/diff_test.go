// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"strings"
	"testing"
)

func TestCompute_NewFile(t *testing.T) {
	d := Compute("test.txt", "", "line1\nline2\nline3")

	if d.Stats.FileMode != "new" {
		t.Errorf("Expected FileMode 'new', got '%s'", d.Stats.FileMode)
	}
	if d.Stats.Additions != 3 {
		t.Errorf("Expected 3 additions, got %d", d.Stats.Additions)
	}
	if d.Stats.Deletions != 0 {
		t.Errorf("Expected 0 deletions, got %d", d.Stats.Deletions)
	}
}

func TestCompute_DeletedFile(t *testing.T) {
	d := Compute("test.txt", "line1\nline2\nline3", "")

	if d.Stats.FileMode != "deleted" {
		t.Errorf("Expected FileMode 'deleted', got '%s'", d.Stats.FileMode)
	}
	if d.Stats.Deletions != 3 {
		t.Errorf("Expected 3 deletions, got %d", d.Stats.Deletions)
	}
}

func TestCompute_Modified(t *testing.T) {
	d := Compute("test.txt", "line1\nline2\nline3", "line1\nmodified\nline3\nline4")

	if d.Stats.FileMode != "modified" {
		t.Errorf("Expected FileMode 'modified', got '%s'", d.Stats.FileMode)
	}
	if d.Stats.Additions != 2 {
		t.Errorf("Expected 2 additions, got %d", d.Stats.Additions)
	}
	if d.Stats.Deletions != 1 {
		t.Errorf("Expected 1 deletion, got %d", d.Stats.Deletions)
	}
}

func TestCompute_NoChanges(t *testing.T) {
	content := "line1\nline2\nline3"
	d := Compute("test.txt", content, content)

	if d.Stats.Additions != 0 || d.Stats.Deletions != 0 {
		t.Errorf("Expected no changes, got +%d -%d", d.Stats.Additions, d.Stats.Deletions)
	}
	if len(d.Hunks) != 0 {
		t.Errorf("Expected no hunks for identical content, got %d", len(d.Hunks))
	}
}

func TestLineType_String(t *testing.T) {
	tests := []struct {
		lineType LineType
		expected string
	}{
		{LineUnchanged, "unchanged"},
		{LineAdded, "added"},
		{LineRemoved, "removed"},
	}

	for _, tt := range tests {
		if got := tt.lineType.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestLineType_Prefix(t *testing.T) {
	tests := []struct {
		lineType LineType
		expected string
	}{
		{LineUnchanged, " "},
		{LineAdded, "+"},
		{LineRemoved, "-"},
	}

	for _, tt := range tests {
		if got := tt.lineType.Prefix(); got != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, got)
		}
	}
}

func TestFormatUnified(t *testing.T) {
	d := Compute("file.go", "line1\nline2\nline3", "line1\nchanged\nline3")

	out := FormatUnified(d)

	if !strings.Contains(out, "--- a/file.go") {
		t.Error("Missing old-file header")
	}
	if !strings.Contains(out, "+++ b/file.go") {
		t.Error("Missing new-file header")
	}
	if !strings.Contains(out, "-line2") {
		t.Error("Missing removed line")
	}
	if !strings.Contains(out, "+changed") {
		t.Error("Missing added line")
	}
	if !strings.Contains(out, "@@ -") {
		t.Error("Missing hunk header")
	}
}

func TestSummary(t *testing.T) {
	d := Compute("f", "", "a\nb")
	if got := d.Summary(); got != "New file +2" {
		t.Errorf("Expected 'New file +2', got %q", got)
	}

	d = Compute("f", "a\nb", "a\nc")
	if !strings.HasPrefix(d.Summary(), "Modified") {
		t.Errorf("Expected modified summary, got %q", d.Summary())
	}
}

func TestSplitLines(t *testing.T) {
	if got := SplitLines(""); len(got) != 0 {
		t.Errorf("Expected empty slice, got %v", got)
	}
	if got := SplitLines("a\nb\n"); len(got) != 2 {
		t.Errorf("Trailing newline should not produce an empty line, got %v", got)
	}
	if got := SplitLines("a\n\nb"); len(got) != 3 {
		t.Errorf("Interior blank lines must be preserved, got %v", got)
	}
}
