// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mention provides the @ mention system for attaching context to
// AI prompts.
package mention

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// MENTION TYPES
// =============================================================================

// Type indicates the kind of @ mention.
type Type string

const (
	TypeFile      Type = "file"      // @file:path
	TypeFolder    Type = "folder"    // @folder[:path]
	TypeCodebase  Type = "codebase"  // @codebase[:query]
	TypeSelection Type = "selection" // @selection
	TypeTerminal  Type = "terminal"  // @terminal
	TypeWeb       Type = "web"       // @web:query
	TypeDocs      Type = "docs"      // @docs:ref
	TypeNotepad   Type = "notepad"   // @notepad[:name]
)

// String returns the string representation of the mention type.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether t is a recognized mention type.
func (t Type) Valid() bool {
	switch t {
	case TypeFile, TypeFolder, TypeCodebase, TypeSelection,
		TypeTerminal, TypeWeb, TypeDocs, TypeNotepad:
		return true
	}
	return false
}

// Types lists all recognized mention type prefixes, for completion UIs.
func Types() []string {
	return []string{
		"@file:",
		"@folder",
		"@codebase",
		"@selection",
		"@terminal",
		"@web:",
		"@docs:",
		"@notepad",
	}
}

// =============================================================================
// MENTION
// =============================================================================

// Mention is one parsed @type[:value] token from user input.
type Mention struct {
	// ID uniquely identifies this mention instance.
	ID string

	// Type of mention.
	Type Type

	// Value is the optional payload after the colon ("" when absent).
	Value string

	// DisplayName is a short label for chips/badges in the UI.
	DisplayName string

	// Raw is the original token text (e.g. "@file:src/main.go").
	Raw string

	// Start and End positions in the original input.
	Start int
	End   int
}

// displayName derives the UI label for a mention.
func displayName(t Type, value string) string {
	switch t {
	case TypeFile:
		if value != "" {
			return filepath.Base(value)
		}
	case TypeFolder:
		if value != "" {
			return filepath.Base(value) + "/"
		}
		return "project/"
	}
	if value != "" {
		return value
	}
	return t.String()
}

// =============================================================================
// PARSER
// =============================================================================

// mentionPattern matches @type or @type:value. The \b keeps "@filesystem"
// from matching as "@file"; unknown @word tokens are not mentions.
var mentionPattern = regexp.MustCompile(
	`@(file|folder|codebase|selection|terminal|web|docs|notepad)\b(?::(\S+))?`)

// Parse extracts all @ mentions from input in document order.
func Parse(input string) []Mention {
	var mentions []Mention

	for _, match := range mentionPattern.FindAllStringSubmatchIndex(input, -1) {
		raw := input[match[0]:match[1]]
		t := Type(input[match[2]:match[3]])

		value := ""
		if match[4] != -1 {
			value = input[match[4]:match[5]]
		}

		mentions = append(mentions, Mention{
			ID:          uuid.NewString(),
			Type:        t,
			Value:       value,
			DisplayName: displayName(t, value),
			Raw:         raw,
			Start:       match[0],
			End:         match[1],
		})
	}

	return mentions
}

// Strip returns input with all mention tokens removed and whitespace
// collapsed, for display and for the prompt body.
func Strip(input string) string {
	matches := mentionPattern.FindAllStringIndex(input, -1)
	if len(matches) == 0 {
		return input
	}

	// Remove from the end so earlier offsets stay valid.
	sort.Slice(matches, func(i, j int) bool {
		return matches[i][0] > matches[j][0]
	})

	result := input
	for _, m := range matches {
		end := m[1]
		for end < len(result) && result[end] == ' ' {
			end++
		}
		result = result[:m[0]] + result[end:]
	}

	result = strings.Join(strings.Fields(result), " ")
	return strings.TrimSpace(result)
}

// Has reports whether input contains any @ mention token.
func Has(input string) bool {
	return mentionPattern.MatchString(input)
}

// AtPosition returns the mention covering the given cursor position, if any.
func AtPosition(input string, pos int) *Mention {
	mentions := Parse(input)
	for i := range mentions {
		if pos >= mentions[i].Start && pos <= mentions[i].End {
			return &mentions[i]
		}
	}
	return nil
}

// =============================================================================
// ACTIVE SET
// =============================================================================

// Set holds the mentions attached to the message being composed. No two
// mentions with the same (type, value) coexist; duplicates are silently
// dropped. The set is cleared after the message is sent.
type Set struct {
	mentions []Mention
	seen     map[string]bool
}

// NewSet creates an empty mention set.
func NewSet() *Set {
	return &Set{seen: make(map[string]bool)}
}

// key is the dedup identity of a mention.
func key(t Type, value string) string {
	return string(t) + "\x00" + value
}

// Add appends m unless an equivalent (type, value) mention is present.
// Returns true if the mention was added.
func (s *Set) Add(m Mention) bool {
	k := key(m.Type, m.Value)
	if s.seen[k] {
		return false
	}
	s.seen[k] = true
	s.mentions = append(s.mentions, m)
	return true
}

// AddParsed scans text and adds every mention found, deduplicating.
func (s *Set) AddParsed(text string) int {
	added := 0
	for _, m := range Parse(text) {
		if s.Add(m) {
			added++
		}
	}
	return added
}

// Mentions returns the active mentions in insertion order.
func (s *Set) Mentions() []Mention {
	out := make([]Mention, len(s.mentions))
	copy(out, s.mentions)
	return out
}

// Len returns the number of active mentions.
func (s *Set) Len() int {
	return len(s.mentions)
}

// Remove drops the mention with the given ID.
func (s *Set) Remove(id string) {
	for i, m := range s.mentions {
		if m.ID == id {
			delete(s.seen, key(m.Type, m.Value))
			s.mentions = append(s.mentions[:i], s.mentions[i+1:]...)
			return
		}
	}
}

// Clear empties the set after the message is sent.
func (s *Set) Clear() {
	s.mentions = nil
	s.seen = make(map[string]bool)
}
