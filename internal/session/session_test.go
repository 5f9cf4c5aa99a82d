// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lingcode/lingcode-tui/internal/ai"
)

// =============================================================================
// STREAMING FILE
// =============================================================================

func TestStreamingFileFreezeIsOneWay(t *testing.T) {
	f := NewStreamingFile("main.go", nil, nil)
	if !f.IsStreaming() {
		t.Fatal("new file should be streaming")
	}

	if err := f.Append("package main\n"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	f.Freeze()
	if f.IsStreaming() {
		t.Error("still streaming after Freeze")
	}
	if err := f.Append("more"); !errors.Is(err, ErrFrozen) {
		t.Errorf("Append after freeze error = %v, want ErrFrozen", err)
	}

	// Second freeze is a no-op.
	before := f.Content()
	f.Freeze()
	if f.Content() != before {
		t.Error("second Freeze changed the snapshot")
	}
}

func TestStreamingFileSanitizesLiveContent(t *testing.T) {
	f := NewStreamingFile("main.go", nil, nil)
	f.Append("## Plan\n")
	f.Append("package main\n")

	got := f.Content()
	if strings.Contains(got, "## Plan") {
		t.Errorf("narrative survived live sanitize: %q", got)
	}
	if !strings.Contains(got, "package main") {
		t.Errorf("code missing: %q", got)
	}
}

func TestStreamingFileFrozenSnapshotStable(t *testing.T) {
	f := NewStreamingFile("util.py", nil, nil)
	f.Append("def f():\n    return 1\n")
	f.Freeze()

	first := f.Content()
	for i := 0; i < 3; i++ {
		if got := f.Content(); got != first {
			t.Fatalf("frozen content changed on read %d: %q != %q", i, got, first)
		}
	}
}

func TestStreamingFileDiffNewFile(t *testing.T) {
	f := NewStreamingFile("new.go", nil, nil)
	f.Append("a\nb\n")

	lines := f.Diff()
	if len(lines) != 2 {
		t.Fatalf("diff lines = %d, want 2", len(lines))
	}
	for i, l := range lines {
		if l.OldLine != 0 || l.NewLine != i+1 {
			t.Errorf("line %d numbers = (%d,%d), want (0,%d)", i, l.OldLine, l.NewLine, i+1)
		}
	}

	info := f.Info()
	if info.AddedLines != 2 || info.RemovedLines != 0 {
		t.Errorf("Info counts = +%d -%d", info.AddedLines, info.RemovedLines)
	}
	if info.ChangeSummary != "+2 -0" {
		t.Errorf("ChangeSummary = %q", info.ChangeSummary)
	}
}

func TestStreamingFileLanguageFromPath(t *testing.T) {
	if got := NewStreamingFile("pkg/server.go", nil, nil).Language; got != "go" {
		t.Errorf("language = %q, want go", got)
	}
	if got := NewStreamingFile("README", nil, nil).Language; got != "" {
		t.Errorf("language = %q, want empty", got)
	}
}

// =============================================================================
// ACTION REDUCER
// =============================================================================

func TestActionHappyPath(t *testing.T) {
	a := NewAction("create file", "main.go", "package main")
	if a.Status != ActionPending {
		t.Fatalf("new action status = %s", a.Status)
	}

	a, err := Apply(a, Started{})
	if err != nil || a.Status != ActionExecuting {
		t.Fatalf("after Started: status=%s err=%v", a.Status, err)
	}

	a, err = Apply(a, Completed{Result: "wrote 12 bytes"})
	if err != nil || a.Status != ActionCompleted || a.Result != "wrote 12 bytes" {
		t.Fatalf("after Completed: %+v err=%v", a, err)
	}
	if !a.Status.Terminal() {
		t.Error("completed should be terminal")
	}
}

func TestActionFailurePath(t *testing.T) {
	a := NewAction("run tests", "", "")
	a, _ = Apply(a, Started{})
	a, err := Apply(a, Failed{Reason: "exit status 1"})
	if err != nil || a.Status != ActionFailed || a.Error != "exit status 1" {
		t.Fatalf("after Failed: %+v err=%v", a, err)
	}
}

func TestActionIllegalTransitions(t *testing.T) {
	a := NewAction("x", "", "")

	// Cannot complete or fail before starting.
	if _, err := Apply(a, Completed{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("complete from pending error = %v", err)
	}
	if _, err := Apply(a, Failed{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("fail from pending error = %v", err)
	}

	// Terminal states accept nothing.
	a, _ = Apply(a, Started{})
	a, _ = Apply(a, Completed{Result: "ok"})
	for _, ev := range []Event{Started{}, Completed{}, Failed{}} {
		next, err := Apply(a, ev)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("event %T from completed error = %v", ev, err)
		}
		if next.Status != ActionCompleted {
			t.Errorf("illegal event mutated status to %s", next.Status)
		}
	}
}

// =============================================================================
// STREAMING BUFFER
// =============================================================================

func TestStreamingBufferBatchThreshold(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 1)

	sb.Write("a")
	sb.Write("b")
	if _, ok := sb.Flush(); ok {
		t.Error("flushed below batch size and inside frame window")
	}

	sb.Write("c")
	content, ok := sb.Flush()
	if !ok || content != "abc" {
		t.Errorf("Flush() = %q, %v", content, ok)
	}
}

func TestStreamingBufferTimeThreshold(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 60)
	sb.Write("x")

	time.Sleep(20 * time.Millisecond)
	content, ok := sb.Flush()
	if !ok || content != "x" {
		t.Errorf("Flush() after frame window = %q, %v", content, ok)
	}
}

func TestStreamingBufferFlushAll(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 1)
	sb.Write("tail")

	content, ok := sb.FlushAll()
	if !ok || content != "tail" {
		t.Errorf("FlushAll() = %q, %v", content, ok)
	}
	if sb.Pending() {
		t.Error("Pending() = true after FlushAll")
	}
}

// =============================================================================
// FAILURE CLASSIFICATION
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureCategory
	}{
		{"nil", nil, FailureNone},
		{"cancelled", context.Canceled, FailureCancelled},
		{"rate limited", ai.ErrRateLimited, FailureRateLimited},
		{"unavailable", ai.ErrUnavailable, FailureUnavailable},
		{"malformed", ai.ErrMalformed, FailureMalformed},
		{"model missing", ai.ErrModelNotFound, FailureModelNotFound},
		{"other", errors.New("boom"), FailureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyRetryable(t *testing.T) {
	if FailureCancelled.Retryable() {
		t.Error("cancelled should not advertise retry")
	}
	if !FailureRateLimited.Retryable() || !FailureUnavailable.Retryable() {
		t.Error("transient failures should be retryable")
	}
}

// =============================================================================
// SESSION
// =============================================================================

func TestSessionStopCancelsStream(t *testing.T) {
	s := New("test-model", nil)
	ctx := s.StartStream(context.Background())

	s.Stop()
	select {
	case <-ctx.Done():
	default:
		t.Error("context not cancelled after Stop")
	}
}

func TestSessionFileForDedupes(t *testing.T) {
	s := New("m", nil)
	a := s.FileFor("main.go", nil)
	b := s.FileFor("main.go", []string{"ignored"})
	if a != b {
		t.Error("FileFor returned a second instance for the same path")
	}
	if len(s.Files()) != 1 {
		t.Errorf("Files() length = %d", len(s.Files()))
	}
}

func TestSessionFreezeAll(t *testing.T) {
	s := New("m", nil)
	s.FileFor("a.go", nil).Append("x\n")
	s.FileFor("b.go", nil).Append("y\n")

	s.FreezeAll()
	for _, f := range s.Files() {
		if f.IsStreaming() {
			t.Errorf("%s still streaming after FreezeAll", f.Path)
		}
	}
}

func TestSessionActionLifecycle(t *testing.T) {
	s := New("m", nil)
	a := s.AddAction("write file", "main.go", "package main")

	if _, err := s.ApplyEvent(a.ID, Started{}); err != nil {
		t.Fatalf("ApplyEvent(Started) error = %v", err)
	}
	got, err := s.ApplyEvent(a.ID, Completed{Result: "done"})
	if err != nil || got.Status != ActionCompleted {
		t.Fatalf("ApplyEvent(Completed) = %+v, %v", got, err)
	}

	if _, err := s.ApplyEvent("missing-id", Started{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown id error = %v", err)
	}

	actions := s.Actions()
	if len(actions) != 1 || actions[0].Status != ActionCompleted {
		t.Errorf("Actions() = %+v", actions)
	}
}
