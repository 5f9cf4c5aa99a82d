// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import "testing"

func TestStreamDiff_Identical(t *testing.T) {
	original := []string{"a", "b", "c"}
	updated := []string{"a", "b", "c"}

	result := StreamDiff(original, updated)

	if len(result) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(result))
	}
	for i, line := range result {
		if line.Type != LineUnchanged {
			t.Errorf("Line %d: expected unchanged, got %s", i, line.Type)
		}
		if line.OldLine != i+1 || line.NewLine != i+1 {
			t.Errorf("Line %d: expected numbers %d/%d, got %d/%d", i, i+1, i+1, line.OldLine, line.NewLine)
		}
	}
}

func TestStreamDiff_Insertion(t *testing.T) {
	original := []string{"a", "c"}
	updated := []string{"a", "b", "c"}

	result := StreamDiff(original, updated)

	if len(result) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(result))
	}
	if result[0].Type != LineUnchanged || result[0].Content != "a" {
		t.Errorf("Unexpected first line: %+v", result[0])
	}
	if result[1].Type != LineAdded || result[1].Content != "b" || result[1].NewLine != 2 {
		t.Errorf("Expected 'b' added at new line 2, got %+v", result[1])
	}
	if result[2].Type != LineUnchanged || result[2].Content != "c" {
		t.Errorf("Unexpected third line: %+v", result[2])
	}
}

func TestStreamDiff_Deletion(t *testing.T) {
	original := []string{"a", "b", "c"}
	updated := []string{"a", "c"}

	result := StreamDiff(original, updated)

	if len(result) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(result))
	}
	if result[1].Type != LineRemoved || result[1].Content != "b" || result[1].OldLine != 2 {
		t.Errorf("Expected 'b' removed at old line 2, got %+v", result[1])
	}
	if result[2].Type != LineUnchanged || result[2].OldLine != 3 || result[2].NewLine != 2 {
		t.Errorf("Expected 'c' unchanged with shifted numbers 3/2, got %+v", result[2])
	}
}

func TestStreamDiff_Substitution(t *testing.T) {
	original := []string{"a", "x", "c"}
	updated := []string{"a", "y", "c"}

	result := StreamDiff(original, updated)

	if len(result) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(result))
	}
	if result[1].Type != LineRemoved || result[1].Content != "x" {
		t.Errorf("Expected 'x' removed, got %+v", result[1])
	}
	if result[2].Type != LineAdded || result[2].Content != "y" {
		t.Errorf("Expected 'y' added, got %+v", result[2])
	}
}

func TestStreamDiff_NewFile(t *testing.T) {
	result := StreamDiff(nil, []string{"x", "y"})

	if len(result) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(result))
	}
	for i, line := range result {
		if line.Type != LineAdded {
			t.Errorf("Line %d: expected added, got %s", i, line.Type)
		}
		if line.NewLine != i+1 {
			t.Errorf("Line %d: expected new line %d, got %d", i, i+1, line.NewLine)
		}
		if line.OldLine != 0 {
			t.Errorf("Line %d: new-file lines must carry no original number, got %d", i, line.OldLine)
		}
	}
}

func TestStreamDiff_TrailingAdditions(t *testing.T) {
	original := []string{"a"}
	updated := []string{"a", "b", "c"}

	result := StreamDiff(original, updated)

	if len(result) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(result))
	}
	if result[1].Type != LineAdded || result[2].Type != LineAdded {
		t.Errorf("Expected trailing lines added, got %+v", result[1:])
	}
	if result[2].NewLine != 3 {
		t.Errorf("Expected new line 3, got %d", result[2].NewLine)
	}
}

func TestStreamDiff_TrailingRemovals(t *testing.T) {
	original := []string{"a", "b", "c"}
	updated := []string{"a"}

	result := StreamDiff(original, updated)

	if len(result) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(result))
	}
	if result[1].Type != LineRemoved || result[2].Type != LineRemoved {
		t.Errorf("Expected trailing lines removed, got %+v", result[1:])
	}
	if result[2].OldLine != 3 {
		t.Errorf("Expected old line 3, got %d", result[2].OldLine)
	}
}

func TestStreamDiff_BothEmpty(t *testing.T) {
	if result := StreamDiff([]string{}, []string{}); len(result) != 0 {
		t.Errorf("Expected empty diff, got %d lines", len(result))
	}
}

func TestStreamDiffStrings_MissingFile(t *testing.T) {
	result := StreamDiffStrings("", false, "x\ny\n")

	if len(result) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(result))
	}
	if result[0].Type != LineAdded || result[1].Type != LineAdded {
		t.Error("Missing original file must yield all-added lines")
	}
}

func TestCountChanges(t *testing.T) {
	lines := StreamDiff([]string{"a", "b"}, []string{"a", "c", "d"})

	added, removed := CountChanges(lines)
	if added != 2 || removed != 1 {
		t.Errorf("Expected 2 added / 1 removed, got %d/%d", added, removed)
	}
}
