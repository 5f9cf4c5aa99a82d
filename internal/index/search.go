// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"strconv"
	"strings"

	"github.com/lingcode/lingcode-tui/internal/mention"
)

// =============================================================================
// SYMBOL SEARCH
// =============================================================================

// FindSymbol returns symbols whose name matches the query, exact matches
// first, then full-text matches over names and signatures.
func (idx *Index) FindSymbol(name string, limit int) ([]mention.Symbol, error) {
	if !idx.IsBuilt() {
		return nil, ErrNotBuilt
	}
	if limit <= 0 {
		limit = 10
	}

	out := make([]mention.Symbol, 0, limit)
	seen := make(map[string]bool)

	// Exact (case-insensitive) name matches rank above everything else.
	exact, err := idx.querySymbols(`
		SELECT s.name, s.kind, f.path, s.line, s.signature
		FROM symbols s JOIN files f ON f.id = s.file_id
		WHERE s.name = ? COLLATE NOCASE
		ORDER BY s.exported DESC, f.path, s.line
		LIMIT ?`, name, limit)
	if err != nil {
		return nil, err
	}
	for _, sym := range exact {
		k := symbolKey(sym)
		if !seen[k] {
			seen[k] = true
			out = append(out, sym)
		}
	}

	if len(out) < limit {
		fts, err := idx.querySymbols(`
			SELECT s.name, s.kind, f.path, s.line, s.signature
			FROM symbols_fts fts
			JOIN symbols s ON s.id = fts.rowid
			JOIN files f ON f.id = s.file_id
			WHERE symbols_fts MATCH ?
			ORDER BY rank
			LIMIT ?`, ftsQuery(name), limit)
		if err == nil {
			for _, sym := range fts {
				if len(out) >= limit {
					break
				}
				k := symbolKey(sym)
				if !seen[k] {
					seen[k] = true
					out = append(out, sym)
				}
			}
		}
		// FTS syntax errors on odd queries are not fatal: exact matches
		// (possibly none) are still returned.
	}

	return out, nil
}

// RelevantFiles returns file summaries ranked by how many symbols match
// the query, most relevant first.
func (idx *Index) RelevantFiles(query string, limit int) ([]mention.FileSummary, error) {
	if !idx.IsBuilt() {
		return nil, ErrNotBuilt
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := idx.db.Query(`
		SELECT f.path, f.summary, f.line_count,
		       (SELECT COUNT(*) FROM symbols s2 WHERE s2.file_id = f.id) AS total,
		       COUNT(*) AS hits
		FROM symbols_fts fts
		JOIN symbols s ON s.id = fts.rowid
		JOIN files f ON f.id = s.file_id
		WHERE symbols_fts MATCH ?
		GROUP BY f.id
		ORDER BY hits DESC, f.path
		LIMIT ?`, ftsQuery(query), limit)
	if err != nil {
		return nil, nil // unmatchable query yields no files, not an error
	}
	defer rows.Close()

	var files []mention.FileSummary
	for rows.Next() {
		var fsum mention.FileSummary
		var hits int
		if err := rows.Scan(&fsum.RelativePath, &fsum.Summary, &fsum.LineCount, &fsum.SymbolCount, &hits); err != nil {
			return nil, err
		}
		fsum.KeySymbols = idx.keySymbols(fsum.RelativePath, ftsQuery(query))
		files = append(files, fsum)
	}
	return files, rows.Err()
}

// keySymbols returns up to a few matching symbol names for one file.
func (idx *Index) keySymbols(path, match string) []string {
	rows, err := idx.db.Query(`
		SELECT s.name
		FROM symbols_fts fts
		JOIN symbols s ON s.id = fts.rowid
		JOIN files f ON f.id = s.file_id
		WHERE f.path = ? AND symbols_fts MATCH ?
		ORDER BY rank
		LIMIT 3`, path, match)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if rows.Scan(&name) == nil {
			names = append(names, name)
		}
	}
	return names
}

// querySymbols runs one symbol query and scans the rows.
func (idx *Index) querySymbols(q string, args ...any) ([]mention.Symbol, error) {
	rows, err := idx.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []mention.Symbol
	for rows.Next() {
		var sym mention.Symbol
		if err := rows.Scan(&sym.Name, &sym.Kind, &sym.FilePath, &sym.Line, &sym.Signature); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// ftsQuery quotes each term so user input cannot inject FTS5 operators.
func ftsQuery(input string) string {
	terms := strings.Fields(input)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// symbolKey builds a dedup key for one symbol row.
func symbolKey(s mention.Symbol) string {
	return s.FilePath + "\x00" + s.Name + "\x00" + s.Kind + "\x00" + strconv.Itoa(s.Line)
}
