// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package websearch implements keyless web search over the DuckDuckGo
// HTML endpoint.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lingcode/lingcode-tui/internal/mention"
)

// =============================================================================
// PERFORMANCE: Pre-compiled regex (compiled once at startup)
// =============================================================================

var (
	// DuckDuckGo HTML parsing patterns
	ddgTitleRegex   = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.+?)</a>`)
	ddgSnippetRegex = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.+?)</a>`)

	// HTML cleaning patterns
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// htmlEntities decodes the entities DuckDuckGo emits in titles and snippets.
var htmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#x27;", "'",
	"&#39;", "'",
	"&nbsp;", " ",
)

// ErrRateLimited indicates the local rate limiter rejected the request.
var ErrRateLimited = errors.New("websearch: rate limited")

// =============================================================================
// SEARCHER
// =============================================================================

// Searcher performs DuckDuckGo HTML searches. The zero value is not
// usable; construct with New.
type Searcher struct {
	// BaseURL is the DuckDuckGo HTML search endpoint.
	BaseURL string

	// MaxResults caps the number of results returned (default 5, max 10).
	MaxResults int

	// UserAgent is sent with every request.
	UserAgent string

	client  *http.Client
	limiter *rate.Limiter
}

// New returns a Searcher with sensible defaults: 15s timeout, at most
// one request per second with a burst of three.
func New() *Searcher {
	return &Searcher{
		BaseURL:    "https://html.duckduckgo.com/html/",
		MaxResults: 5,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		client: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// Search implements the web mention provider: it queries DuckDuckGo and
// returns up to MaxResults parsed results.
func (s *Searcher) Search(ctx context.Context, query string) ([]mention.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("websearch: empty query")
	}
	if !s.limiter.Allow() {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}

	searchURL := s.BaseURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	// Don't set Accept-Encoding manually: Go's default client negotiates
	// gzip and decompresses transparently.
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("DNT", "1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("websearch: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	// Cap the body read at 5MB
	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, err
	}

	results := parseHTML(string(body))

	max := s.MaxResults
	if max <= 0 {
		max = 5
	}
	if max > 10 {
		max = 10
	}
	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

// =============================================================================
// HTML PARSING
// =============================================================================

// parseHTML extracts search results from DuckDuckGo result HTML.
//
// DuckDuckGo HTML structure (2024+):
//
//	<h2 class="result__title">
//	  <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=URL">Title</a>
//	</h2>
//	<a class="result__snippet" href="...">Snippet text</a>
func parseHTML(html string) []mention.SearchResult {
	titleMatches := ddgTitleRegex.FindAllStringSubmatch(html, 30)
	snippetMatches := ddgSnippetRegex.FindAllStringSubmatch(html, 30)

	var results []mention.SearchResult
	for i, match := range titleMatches {
		if len(match) < 3 {
			continue
		}

		rawURL := strings.ReplaceAll(match[1], "&amp;", "&")
		actualURL := extractActualURL(rawURL)
		title := strings.TrimSpace(cleanHTML(match[2]))
		if actualURL == "" || title == "" {
			continue
		}

		snippet := ""
		if i < len(snippetMatches) && len(snippetMatches[i]) >= 2 {
			snippet = strings.TrimSpace(cleanHTML(snippetMatches[i][1]))
		}

		results = append(results, mention.SearchResult{
			Title:   title,
			URL:     actualURL,
			Snippet: snippet,
		})
		if len(results) >= 20 {
			break
		}
	}
	return results
}

// extractActualURL unwraps DuckDuckGo's redirect URL.
// Format: //duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com
func extractActualURL(ddgURL string) string {
	if strings.Contains(ddgURL, "uddg=") {
		if strings.HasPrefix(ddgURL, "//") {
			ddgURL = "https:" + ddgURL
		}
		parsed, err := url.Parse(ddgURL)
		if err != nil {
			return ""
		}
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if strings.HasPrefix(ddgURL, "http://") || strings.HasPrefix(ddgURL, "https://") {
		return ddgURL
	}
	return ""
}

// cleanHTML strips tags, decodes entities, and collapses whitespace.
func cleanHTML(html string) string {
	text := tagRegex.ReplaceAllString(html, "")
	text = htmlEntities.Replace(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
