// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notepad holds named scratch notes the user can attach to
// prompts with @notepad mentions.
package notepad

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultName is the note used when a mention has no explicit name.
const DefaultName = "default"

// Note is one named scratch note.
type Note struct {
	Name      string
	Content   string
	UpdatedAt time.Time
}

// Pad is a set of named notes. Safe for concurrent use.
type Pad struct {
	mu    sync.RWMutex
	notes map[string]Note
}

// New creates an empty pad.
func New() *Pad {
	return &Pad{notes: make(map[string]Note)}
}

// canonical maps an empty or whitespace name to the default note.
func canonical(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	return name
}

// Set stores a note, replacing any previous content under that name.
// Empty content deletes the note.
func (p *Pad) Set(name, content string) {
	name = canonical(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	if content == "" {
		delete(p.notes, name)
		return
	}
	p.notes[name] = Note{Name: name, Content: content, UpdatedAt: time.Now()}
}

// Append adds content to the end of a note, creating it if missing.
func (p *Pad) Append(name, content string) {
	if content == "" {
		return
	}
	name = canonical(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	existing := p.notes[name].Content
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		existing += "\n"
	}
	p.notes[name] = Note{Name: name, Content: existing + content, UpdatedAt: time.Now()}
}

// Note returns a note's content by name. The empty name reads the
// default note. The bool is false when the note does not exist.
func (p *Pad) Note(name string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.notes[canonical(name)]
	return n.Content, ok
}

// Delete removes a note.
func (p *Pad) Delete(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.notes, canonical(name))
}

// Names returns all note names, sorted.
func (p *Pad) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.notes))
	for name := range p.notes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every note, sorted by name. Used for persistence.
func (p *Pad) All() []Note {
	p.mu.RLock()
	defer p.mu.RUnlock()
	notes := make([]Note, 0, len(p.notes))
	for _, n := range p.notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Name < notes[j].Name })
	return notes
}

// Load replaces the pad contents. Used when restoring from storage.
func (p *Pad) Load(notes []Note) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = make(map[string]Note, len(notes))
	for _, n := range notes {
		if n.Content == "" {
			continue
		}
		p.notes[canonical(n.Name)] = n
	}
}
