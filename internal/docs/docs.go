// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs fetches reference documentation for @docs mentions. A
// reference may be a full URL, a GitHub owner/repo slug, or a free-form
// name that is resolved through web search.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/lingcode/lingcode-tui/internal/mention"
	"github.com/lingcode/lingcode-tui/internal/util"
)

// =============================================================================
// PERFORMANCE: Pre-compiled regex (compiled once at startup)
// =============================================================================

var (
	scriptRegex  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRegex   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	commentRegex = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockRegex   = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|ul|ol|tr|table|section|article|header|footer|pre|blockquote)[^>]*>`)
	brRegex      = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRegex     = regexp.MustCompile(`<[^>]*>`)
	spaceRegex   = regexp.MustCompile(`[ \t]+`)
	newlineRegex = regexp.MustCompile(`\n{3,}`)

	// owner/repo, e.g. charmbracelet/bubbletea
	repoSlugRegex = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)
)

var htmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#x27;", "'",
	"&#39;", "'",
	"&nbsp;", " ",
)

// ErrNotFound indicates no documentation could be located for the reference.
var ErrNotFound = errors.New("docs: documentation not found")

// =============================================================================
// FETCHER
// =============================================================================

// maxDocChars caps the rendered documentation length.
const maxDocChars = 5000

// Fetcher resolves documentation references.
type Fetcher struct {
	// RawBaseURL is the base for GitHub raw content (overridable in tests).
	RawBaseURL string

	// Searcher resolves free-form references; nil disables the fallback.
	Searcher mention.WebSearcher

	client *http.Client
}

// New returns a Fetcher with a 15s request timeout.
func New(searcher mention.WebSearcher) *Fetcher {
	return &Fetcher{
		RawBaseURL: "https://raw.githubusercontent.com",
		Searcher:   searcher,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch resolves one documentation reference to readable text.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", errors.New("docs: empty reference")
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.fetchURL(ctx, ref)
	case repoSlugRegex.MatchString(ref):
		return f.fetchReadme(ctx, ref)
	default:
		return f.searchDocs(ctx, ref)
	}
}

// fetchURL downloads a page and reduces it to plain text.
func (f *Fetcher) fetchURL(ctx context.Context, pageURL string) (string, error) {
	body, err := f.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	text := htmlToText(body)
	if text == "" {
		return "", fmt.Errorf("%w: %s had no readable content", ErrNotFound, pageURL)
	}
	return util.TruncateRunes(text, maxDocChars), nil
}

// fetchReadme pulls a GitHub repository README, trying the main branch
// first and falling back to master.
func (f *Fetcher) fetchReadme(ctx context.Context, slug string) (string, error) {
	var lastErr error
	for _, branch := range []string{"main", "master"} {
		readmeURL := f.RawBaseURL + "/" + slug + "/" + branch + "/README.md"
		body, err := f.get(ctx, readmeURL)
		if err != nil {
			lastErr = err
			continue
		}
		return util.TruncateRunes(body, maxDocChars), nil
	}
	return "", fmt.Errorf("%w: no README for %s: %v", ErrNotFound, slug, lastErr)
}

// searchDocs resolves a free-form reference through web search.
func (f *Fetcher) searchDocs(ctx context.Context, name string) (string, error) {
	if f.Searcher == nil {
		return "", fmt.Errorf("%w: %s is not a URL or owner/repo", ErrNotFound, name)
	}
	results, err := f.Searcher.Search(ctx, name+" documentation")
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%w: no search results for %s", ErrNotFound, name)
	}

	var sb strings.Builder
	sb.WriteString("Documentation results for " + name + ":\n")
	for _, r := range results {
		sb.WriteString("\n- " + r.Title + "\n  " + r.URL + "\n")
		if r.Snippet != "" {
			sb.WriteString("  " + r.Snippet + "\n")
		}
	}
	return util.TruncateRunes(sb.String(), maxDocChars), nil
}

// get performs one GET with a body cap of 5MB.
func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,text/plain,text/markdown,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("docs: HTTP %d fetching %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// =============================================================================
// HTML STRIPPING
// =============================================================================

// htmlToText reduces an HTML page to whitespace-normalized plain text.
// Non-HTML input (markdown, plain text) passes through mostly unchanged.
func htmlToText(html string) string {
	text := scriptRegex.ReplaceAllString(html, "")
	text = styleRegex.ReplaceAllString(text, "")
	text = commentRegex.ReplaceAllString(text, "")
	text = brRegex.ReplaceAllString(text, "\n")
	text = blockRegex.ReplaceAllString(text, "\n")
	text = tagRegex.ReplaceAllString(text, "")
	text = htmlEntities.Replace(text)
	text = spaceRegex.ReplaceAllString(text, " ")

	// Trim per-line leftovers, then collapse runs of blank lines.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = newlineRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
