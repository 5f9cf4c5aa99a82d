// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Generic argument parsing for lingcode subcommands.
//
// Supports --flag value, --flag=value, bool flags, and positional
// arguments, without pulling in a CLI framework for a handful of
// commands.

package cli

import (
	"strconv"
	"strings"
)

// =============================================================================
// ARGUMENT PARSER
// =============================================================================

// ArgParser separates flags from positional arguments.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses the given arguments. knownBoolFlags lists flags
// that take no value, so "--watch build" parses "build" as positional.
func NewArgParser(args []string, knownBoolFlags []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	isBool := make(map[string]bool, len(knownBoolFlags))
	for _, f := range knownBoolFlags {
		isBool[f] = true
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case strings.HasPrefix(arg, "--") && strings.Contains(arg, "="):
			parts := strings.SplitN(strings.TrimPrefix(arg, "--"), "=", 2)
			p.flags[parts[0]] = parts[1]

		case strings.HasPrefix(arg, "--"):
			name := strings.TrimPrefix(arg, "--")
			if isBool[name] {
				p.boolFlags[name] = true
			} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				p.flags[name] = args[i]
			} else {
				p.boolFlags[name] = true
			}

		default:
			p.positional = append(p.positional, arg)
		}
		i++
	}

	return p
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	if len(p.positional) == 0 {
		return ""
	}
	return p.positional[0]
}

// Flag returns a named flag value and whether it was set.
func (p *ArgParser) Flag(name string) (string, bool) {
	v, ok := p.flags[name]
	return v, ok
}

// FlagOrDefault returns a named flag value, or def when unset.
func (p *ArgParser) FlagOrDefault(name, def string) string {
	if v, ok := p.flags[name]; ok {
		return v
	}
	return def
}

// FlagInt returns a named flag parsed as an int.
func (p *ArgParser) FlagInt(name string) (int, bool) {
	v, ok := p.flags[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FlagIntOrDefault returns a named flag parsed as an int, or def.
func (p *ArgParser) FlagIntOrDefault(name string, def int) int {
	if n, ok := p.FlagInt(name); ok {
		return n
	}
	return def
}

// BoolFlag reports whether a bool flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[name]
}

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns positional arguments from index onward.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return nil
	}
	return p.positional[index:]
}
