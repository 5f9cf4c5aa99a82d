// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mention provides the @ mention system for attaching context to
// AI prompts.
package mention

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// OS FILE PROVIDER
// =============================================================================

// ErrOutsideRoot is returned when a path escapes the project root.
var ErrOutsideRoot = errors.New("path escapes project root")

// packageDirs are dependency/build directories skipped during folder walks.
var packageDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// OSFileProvider is the production FileProvider backed by the real file
// system, rooted at the project directory.
type OSFileProvider struct {
	// Root is the project root all relative paths resolve against.
	Root string

	// MaxFileSize limits how much of one file is read (bytes, 0 = 100KB).
	MaxFileSize int64
}

// NewOSFileProvider creates a file provider rooted at root.
func NewOSFileProvider(root string) *OSFileProvider {
	return &OSFileProvider{Root: root, MaxFileSize: 100 * 1024}
}

// resolve joins path against the root and rejects escapes.
func (p *OSFileProvider) resolve(path string) (string, error) {
	full := filepath.Join(p.Root, path)
	rel, err := filepath.Rel(p.Root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// ReadFile reads one file relative to the project root.
func (p *OSFileProvider) ReadFile(path string) (string, error) {
	full, err := p.resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", errors.New("path is a directory")
	}

	maxSize := p.MaxFileSize
	if maxSize <= 0 {
		maxSize = 100 * 1024
	}
	if info.Size() > maxSize {
		return "", errors.New("file too large")
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// WalkFiles enumerates regular files under dir depth-first, relative to
// the root, skipping hidden entries and package-internal directories.
// At most max entries are returned.
func (p *OSFileProvider) WalkFiles(dir string, max int) ([]string, error) {
	start, err := p.resolve(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Unreadable entries are skipped, not fatal.
		}
		name := d.Name()

		if d.IsDir() {
			if path == start {
				return nil
			}
			if strings.HasPrefix(name, ".") || packageDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(p.Root, path)
		if relErr != nil {
			return nil
		}
		paths = append(paths, rel)

		if max > 0 && len(paths) >= max {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}
