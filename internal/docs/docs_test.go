// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lingcode/lingcode-tui/internal/mention"
)

type fakeSearcher struct {
	results []mention.SearchResult
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]mention.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func TestFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><style>body{}</style><script>x()</script></head>
<body><h1>Getting Started</h1><p>Install the &amp; tool.</p><!-- nope --></body></html>`))
	}))
	defer srv.Close()

	got, err := New(nil).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if strings.Contains(got, "<") || strings.Contains(got, "x()") || strings.Contains(got, "body{}") {
		t.Errorf("HTML not fully stripped: %q", got)
	}
	if !strings.Contains(got, "Getting Started") || !strings.Contains(got, "Install the & tool.") {
		t.Errorf("content missing from %q", got)
	}
}

func TestFetchReadmeMainBranch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/owner/repo/main/README.md" {
			w.Write([]byte("# Repo\nUsage notes."))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(nil)
	f.RawBaseURL = srv.URL

	got, err := f.Fetch(context.Background(), "owner/repo")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(got, "Usage notes.") {
		t.Errorf("README content missing from %q", got)
	}
}

func TestFetchReadmeMasterFallback(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/owner/legacy/master/README.md" {
			w.Write([]byte("legacy docs"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(nil)
	f.RawBaseURL = srv.URL

	got, err := f.Fetch(context.Background(), "owner/legacy")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != "legacy docs" {
		t.Errorf("Fetch() = %q", got)
	}
	if len(paths) != 2 || !strings.Contains(paths[0], "/main/") {
		t.Errorf("expected main then master, got %v", paths)
	}
}

func TestFetchReadmeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := New(nil)
	f.RawBaseURL = srv.URL

	if _, err := f.Fetch(context.Background(), "owner/missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestFetchFreeFormUsesSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []mention.SearchResult{
		{Title: "Bubble Tea", URL: "https://github.com/charmbracelet/bubbletea", Snippet: "TUI framework"},
	}}

	got, err := New(searcher).Fetch(context.Background(), "bubbletea")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "bubbletea documentation" {
		t.Errorf("search queries = %v", searcher.queries)
	}
	if !strings.Contains(got, "Bubble Tea") || !strings.Contains(got, "TUI framework") {
		t.Errorf("Fetch() = %q", got)
	}
}

func TestFetchFreeFormWithoutSearcher(t *testing.T) {
	if _, err := New(nil).Fetch(context.Background(), "some library"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestFetchEmptyReference(t *testing.T) {
	if _, err := New(nil).Fetch(context.Background(), "  "); err == nil {
		t.Error("Fetch with empty ref succeeded, want error")
	}
}

func TestFetchTruncatesLongPages(t *testing.T) {
	long := strings.Repeat("documentation text ", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(long))
	}))
	defer srv.Close()

	got, err := New(nil).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len([]rune(got)) > maxDocChars {
		t.Errorf("result length %d exceeds cap %d", len([]rune(got)), maxDocChars)
	}
}

func TestHTMLToTextCollapsesBlankLines(t *testing.T) {
	in := "<div>a</div><div></div><div></div><div>b</div>"
	got := htmlToText(in)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank lines not collapsed: %q", got)
	}
	if !strings.Contains(got, "a") || !strings.Contains(got, "b") {
		t.Errorf("content missing: %q", got)
	}
}
