// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package notepad

import (
	"testing"
)

func TestSetAndNote(t *testing.T) {
	p := New()

	if _, ok := p.Note("missing"); ok {
		t.Error("Note() found a note that was never set")
	}

	p.Set("ideas", "try the greedy diff first")
	got, ok := p.Note("ideas")
	if !ok || got != "try the greedy diff first" {
		t.Errorf("Note(ideas) = %q, %v", got, ok)
	}
}

func TestEmptyNameIsDefault(t *testing.T) {
	p := New()
	p.Set("", "scratch")

	if got, ok := p.Note(""); !ok || got != "scratch" {
		t.Errorf("Note(\"\") = %q, %v", got, ok)
	}
	if got, ok := p.Note(DefaultName); !ok || got != "scratch" {
		t.Errorf("Note(default) = %q, %v", got, ok)
	}
}

func TestSetEmptyDeletes(t *testing.T) {
	p := New()
	p.Set("tmp", "content")
	p.Set("tmp", "")
	if _, ok := p.Note("tmp"); ok {
		t.Error("note survived Set with empty content")
	}
}

func TestAppend(t *testing.T) {
	p := New()
	p.Append("log", "first")
	p.Append("log", "second")

	got, _ := p.Note("log")
	if got != "first\nsecond" {
		t.Errorf("Note(log) = %q", got)
	}
}

func TestNamesSorted(t *testing.T) {
	p := New()
	p.Set("zebra", "z")
	p.Set("alpha", "a")
	p.Set("mid", "m")

	names := p.Names()
	want := []string{"alpha", "mid", "zebra"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLoadReplacesContents(t *testing.T) {
	p := New()
	p.Set("old", "gone after load")

	p.Load([]Note{
		{Name: "restored", Content: "from storage"},
		{Name: "empty", Content: ""},
	})

	if _, ok := p.Note("old"); ok {
		t.Error("old note survived Load")
	}
	if got, ok := p.Note("restored"); !ok || got != "from storage" {
		t.Errorf("Note(restored) = %q, %v", got, ok)
	}
	if _, ok := p.Note("empty"); ok {
		t.Error("empty note loaded")
	}
}

func TestDelete(t *testing.T) {
	p := New()
	p.Set("a", "x")
	p.Delete("a")
	if _, ok := p.Note("a"); ok {
		t.Error("note survived Delete")
	}
}
