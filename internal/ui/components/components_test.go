// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/lingcode/lingcode-tui/internal/diff"
	"github.com/lingcode/lingcode-tui/internal/model"
	"github.com/lingcode/lingcode-tui/internal/ui/styles"
)

func TestCodeBlockRenderContainsCode(t *testing.T) {
	theme := styles.NewTheme()
	cb := NewCodeBlock("go", "package main\n\nfunc main() {}\n")
	out := cb.Render(theme)

	// ANSI sequences may split identifiers; the language badge and at
	// least part of the code must survive.
	if !strings.Contains(out, "go") {
		t.Error("rendered block missing language badge")
	}
	if !strings.Contains(out, "main") {
		t.Error("rendered block missing code content")
	}
}

func TestCodeBlockLineNumbers(t *testing.T) {
	theme := styles.NewTheme()
	cb := NewCodeBlock("", "one\ntwo\nthree")
	out := cb.Render(theme)

	for _, n := range []string{"1", "2", "3"} {
		if !strings.Contains(out, n) {
			t.Errorf("missing line number %s", n)
		}
	}
}

func TestParseInlineCodeUnclosed(t *testing.T) {
	out := ParseInlineCode("before `unclosed")
	if !strings.Contains(out, "`unclosed") {
		t.Errorf("unclosed backtick should pass through, got %q", out)
	}
}

func TestDiffViewerApproveReject(t *testing.T) {
	d := diff.Compute("a.go", "old\n", "new\n")
	dv := NewDiffViewer(d)

	if dv.IsApproved() || dv.IsRejected() {
		t.Fatal("viewer should start undecided")
	}
	dv.Approve()
	if !dv.IsApproved() || dv.IsRejected() {
		t.Error("approve state wrong")
	}
	dv.Reject()
	if dv.IsApproved() || !dv.IsRejected() {
		t.Error("reject state wrong")
	}
}

func TestDiffViewerViewShowsStats(t *testing.T) {
	d := diff.Compute("handler.go", "a\nb\n", "a\nc\nd\n")
	dv := NewDiffViewer(d)
	out := dv.View()

	if !strings.Contains(out, "handler.go") {
		t.Error("view missing file path")
	}
	if !strings.Contains(out, "+2") || !strings.Contains(out, "-1") {
		t.Errorf("view missing stats, got:\n%s", out)
	}
}

func TestRenderDiffLineNumbers(t *testing.T) {
	added := RenderDiffLine(diff.UnifiedLine{Content: "x", Type: diff.LineAdded, NewLine: 7})
	if !strings.Contains(added, "7") || !strings.Contains(added, "+x") {
		t.Errorf("added line render = %q", added)
	}

	removed := RenderDiffLine(diff.UnifiedLine{Content: "y", Type: diff.LineRemoved, OldLine: 3})
	if !strings.Contains(removed, "3") || !strings.Contains(removed, "-y") {
		t.Errorf("removed line render = %q", removed)
	}

	ctx := RenderDiffLine(diff.UnifiedLine{Content: "z", Type: diff.LineUnchanged, OldLine: 1, NewLine: 2})
	if !strings.Contains(ctx, "1") || !strings.Contains(ctx, "2") {
		t.Errorf("context line render = %q", ctx)
	}
}

func TestMessageRendererUserMessage(t *testing.T) {
	theme := styles.NewTheme()
	r := NewMessageRenderer(theme, 80)

	msg := model.NewUserMessage("hello there")
	out := r.Render(msg)

	if !strings.Contains(out, "You") {
		t.Error("missing user label")
	}
	if !strings.Contains(out, "hello there") {
		t.Error("missing content")
	}
}

func TestMessageRendererStreamingPlaceholder(t *testing.T) {
	theme := styles.NewTheme()
	r := NewMessageRenderer(theme, 80)

	msg := model.NewAssistantMessage()
	out := r.Render(msg)

	if !strings.Contains(out, "...") {
		t.Error("empty streaming message should render a placeholder")
	}
}

func TestMessageRendererAssistantCodeBlock(t *testing.T) {
	theme := styles.NewTheme()
	r := NewMessageRenderer(theme, 80)

	msg := model.NewAssistantMessage()
	msg.AppendToken("Here:\n```go\nfunc add(a, b int) int { return a + b }\n```\n")
	out := r.Render(msg)

	if !strings.Contains(out, "LingCode") {
		t.Error("missing assistant label")
	}
	if !strings.Contains(out, "add") {
		t.Error("missing code content")
	}
}
