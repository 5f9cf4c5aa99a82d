// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const goSource = `package demo

import "fmt"

const MaxRetries = 3

type Server struct {
	Addr string
}

type Handler interface {
	Handle() error
}

func NewServer(addr string) *Server {
	return &Server{Addr: addr}
}

func (s *Server) Start() error {
	fmt.Println(s.Addr)
	return nil
}

func helper() {}
`

const pySource = `class Config:
    pass

def load_config(path):
    return Config()

def _internal():
    pass
`

func newTestIndex(t *testing.T, root string) *Index {
	t.Helper()
	idx, err := New(root, filepath.Join(t.TempDir(), "index.db"), DefaultOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildIndexesGoSymbols(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "server.go"), goSource)

	idx := newTestIndex(t, root)
	if idx.IsBuilt() {
		t.Error("IsBuilt() = true before any build")
	}

	if err := idx.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !idx.IsBuilt() {
		t.Error("IsBuilt() = false after build")
	}

	stats := idx.Stats()
	if stats.Files != 1 {
		t.Errorf("Stats().Files = %d, want 1", stats.Files)
	}
	// Server, Handler, MaxRetries, NewServer, Start, helper
	if stats.Symbols != 6 {
		t.Errorf("Stats().Symbols = %d, want 6", stats.Symbols)
	}
}

func TestFindSymbolExactMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "server.go"), goSource)

	idx := newTestIndex(t, root)
	if err := idx.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	symbols, err := idx.FindSymbol("NewServer", 5)
	if err != nil {
		t.Fatalf("FindSymbol() error = %v", err)
	}
	if len(symbols) == 0 {
		t.Fatal("FindSymbol(NewServer) returned no symbols")
	}
	got := symbols[0]
	if got.Name != "NewServer" || got.Kind != "func" {
		t.Errorf("got %s %s, want func NewServer", got.Kind, got.Name)
	}
	if got.FilePath != "server.go" {
		t.Errorf("FilePath = %q, want server.go", got.FilePath)
	}
	if got.Line == 0 {
		t.Error("Line = 0, want a real line number")
	}
}

func TestFindSymbolBeforeBuild(t *testing.T) {
	idx := newTestIndex(t, t.TempDir())
	if _, err := idx.FindSymbol("anything", 5); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("FindSymbol() error = %v, want ErrNotBuilt", err)
	}
	if _, err := idx.RelevantFiles("anything", 5); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("RelevantFiles() error = %v, want ErrNotBuilt", err)
	}
}

func TestFindSymbolMethodKind(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "server.go"), goSource)

	idx := newTestIndex(t, root)
	if err := idx.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	symbols, err := idx.FindSymbol("Start", 5)
	if err != nil {
		t.Fatalf("FindSymbol() error = %v", err)
	}
	if len(symbols) == 0 || symbols[0].Kind != "method" {
		t.Errorf("FindSymbol(Start) = %+v, want a method", symbols)
	}
}

func TestRelevantFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "server.go"), goSource)
	writeFile(t, filepath.Join(root, "config.py"), pySource)

	idx := newTestIndex(t, root)
	if err := idx.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	files, err := idx.RelevantFiles("server", 5)
	if err != nil {
		t.Fatalf("RelevantFiles() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("RelevantFiles(server) returned %d files, want 1", len(files))
	}
	f := files[0]
	if f.RelativePath != "server.go" {
		t.Errorf("RelativePath = %q, want server.go", f.RelativePath)
	}
	if f.SymbolCount != 6 {
		t.Errorf("SymbolCount = %d, want 6", f.SymbolCount)
	}
	if f.LineCount == 0 {
		t.Error("LineCount = 0, want nonzero")
	}
	if len(f.KeySymbols) == 0 {
		t.Error("KeySymbols is empty")
	}
}

func TestBuildSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), goSource)
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "dep.go"), goSource)
	writeFile(t, filepath.Join(root, ".hidden", "secret.go"), goSource)

	idx := newTestIndex(t, root)
	if err := idx.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := idx.Stats().Files; got != 1 {
		t.Errorf("Stats().Files = %d, want 1 (ignored dirs indexed)", got)
	}
}

func TestRebuildDoesNotDuplicate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "server.go"), goSource)

	idx := newTestIndex(t, root)
	for i := 0; i < 2; i++ {
		if err := idx.Build(context.Background()); err != nil {
			t.Fatalf("Build() #%d error = %v", i+1, err)
		}
	}
	stats := idx.Stats()
	if stats.Files != 1 || stats.Symbols != 6 {
		t.Errorf("after rebuild: files=%d symbols=%d, want 1/6", stats.Files, stats.Symbols)
	}
}

func TestBuildCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "server.go"), goSource)

	idx := newTestIndex(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.Build(ctx); err == nil {
		t.Error("Build() with cancelled context succeeded, want error")
	}
	if idx.IsBuilt() {
		t.Error("IsBuilt() = true after cancelled build")
	}
}

func TestPythonParserSymbols(t *testing.T) {
	symbols, err := (&PythonParser{}).Parse(pySource, "config.py")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := map[string]string{
		"Config":      "class",
		"load_config": "func",
		"_internal":   "func",
	}
	if len(symbols) != len(want) {
		t.Fatalf("got %d symbols, want %d", len(symbols), len(want))
	}
	for _, s := range symbols {
		if want[s.Name] != s.Kind {
			t.Errorf("symbol %s kind = %s, want %s", s.Name, s.Kind, want[s.Name])
		}
		if s.Name == "_internal" && s.Exported {
			t.Error("_internal marked exported")
		}
	}
}

func TestJSParserSymbols(t *testing.T) {
	src := `export class Router {}
function route(path) {}
const handler = async (req) => {}
export const parse = function(s) {}
let ignored = 42
`
	symbols, err := (&JSParser{}).Parse(src, "router.js")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	names := map[string]bool{}
	for _, s := range symbols {
		names[s.Name] = true
	}
	for _, want := range []string{"Router", "route", "handler", "parse"} {
		if !names[want] {
			t.Errorf("missing symbol %q", want)
		}
	}
	if names["ignored"] {
		t.Error("plain assignment indexed as symbol")
	}
}

func TestFtsQueryQuoting(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"server", `"server"`},
		{"http server", `"http" "server"`},
		{`drop "table"`, `"drop" """table"""`},
		{"NOT OR", `"NOT" "OR"`},
	}
	for _, tt := range tests {
		if got := ftsQuery(tt.input); got != tt.want {
			t.Errorf("ftsQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
