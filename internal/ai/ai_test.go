// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func streamServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			w.Write([]byte(line + "\n"))
		}
	}))
}

func TestChatStreamDeliversChunksInOrder(t *testing.T) {
	srv := streamServer(t, []string{
		`{"model":"test","message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"model":"test","message":{"role":"assistant","content":" world"},"done":false}`,
		`{"model":"test","message":{"role":"assistant","content":""},"done":true,"eval_count":2}`,
	})
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, DefaultModel: "test"})

	var got []string
	var final StreamChunk
	err := client.ChatStream(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, func(c StreamChunk) {
		if c.Done {
			final = c
			return
		}
		got = append(got, c.Content)
	})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}
	if strings.Join(got, "") != "Hello world" {
		t.Errorf("accumulated content = %q", strings.Join(got, ""))
	}
	if !final.Done || final.EvalCount != 2 {
		t.Errorf("final chunk = %+v", final)
	}
}

func TestChatStreamModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	err := client.ChatStream(context.Background(), "nope", nil, func(StreamChunk) {})
	if !IsModelNotFound(err) {
		t.Errorf("error = %v, want model-not-found", err)
	}
}

func TestChatStreamRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	err := client.ChatStream(context.Background(), "m", nil, func(StreamChunk) {})
	if !IsRateLimited(err) {
		t.Errorf("error = %v, want rate-limited", err)
	}
}

func TestChatStreamUnavailable(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	err := client.ChatStream(context.Background(), "m", nil, func(StreamChunk) {})
	if !IsUnavailable(err) {
		t.Errorf("error = %v, want unavailable", err)
	}
}

func TestChatStreamCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := streamServer(t, []string{
		`{"message":{"content":"never"},"done":false}`,
	})
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	err := client.ChatStream(ctx, "m", nil, func(StreamChunk) {})
	if err == nil {
		t.Fatal("ChatStream with cancelled context succeeded")
	}
	if !IsTimeout(err) {
		t.Errorf("error = %v, want timeout category", err)
	}
}

func TestStreamReaderSkipsIsolatedGarbage(t *testing.T) {
	input := `{"message":{"content":"a"},"done":false}
this is not json
{"message":{"content":"b"},"done":true}
`
	reader := NewStreamReader(strings.NewReader(input))
	var content string
	err := reader.Process(context.Background(), func(c StreamChunk) {
		content += c.Content
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if content != "ab" {
		t.Errorf("content = %q, want ab", content)
	}
}

func TestStreamReaderFailsOnMalformedRun(t *testing.T) {
	input := `{"message":{"content":"prefix"},"done":false}
garbage one
garbage two
garbage three
{"message":{"content":"never"},"done":true}
`
	reader := NewStreamReader(strings.NewReader(input))
	var content string
	err := reader.Process(context.Background(), func(c StreamChunk) {
		content += c.Content
	})
	if !IsMalformed(err) {
		t.Fatalf("Process() error = %v, want malformed", err)
	}
	if content != "prefix" {
		t.Errorf("content before failure = %q, want prefix", content)
	}
	if reader.Accumulated() != "prefix" {
		t.Errorf("Accumulated() = %q, want prefix", reader.Accumulated())
	}
}

func TestStreamReaderServerErrorLine(t *testing.T) {
	input := `{"error":"context window exceeded"}` + "\n"
	reader := NewStreamReader(strings.NewReader(input))
	err := reader.Process(context.Background(), func(StreamChunk) {})
	if err == nil || !strings.Contains(err.Error(), "context window exceeded") {
		t.Errorf("Process() error = %v, want server message", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"models":[{"name":"qwen2.5-coder:7b","size":4096}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 1 || models[0].Name != "qwen2.5-coder:7b" {
		t.Errorf("models = %+v", models)
	}
}
