// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for lingcode.

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdIndex
	CmdSessions
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string

	// Command-specific
	Query      string
	File       string
	Subcommand string

	// Raw args remaining after the command name
	Raw []string
}

const usageText = `lingcode - AI coding assistant for the terminal

LingCode pairs a local LLM with your codebase: it indexes your project,
expands @ mentions into context, and streams clean code back.

Usage:
  lingcode                    Start the TUI (default)
  lingcode ask "question"     Ask a single question
  lingcode chat               Interactive chat in the terminal
  lingcode index [build]      Build or inspect the codebase index
  lingcode sessions           Manage saved conversations
  lingcode version            Show version information
  lingcode help               Show this help

Ask:
  lingcode ask "How does @file:main.go handle errors?"
  cat error.log | lingcode ask "Explain this failure"
    -f, --file FILE           Include a file with the question
    -m, --model NAME          Use a specific model

Index:
  lingcode index build        Build the symbol index for the current project
  lingcode index watch        Build, then reindex as files change
  lingcode index stats        Show index statistics
  lingcode index find NAME    Look up a symbol by name

Sessions:
  lingcode sessions list      List saved conversations
  lingcode sessions show ID   Print a conversation transcript
  lingcode sessions search Q  Search conversations by title and content
  lingcode sessions export ID Write a conversation to md, json, or html
  lingcode sessions delete ID Delete a conversation

Mentions (in prompts):
  @file:PATH      Include a file          @codebase:QUERY  Relevant indexed files
  @folder:PATH    Include a directory     @web:QUERY       Web search results
  @docs:REF       Library documentation   @terminal        Last terminal output
  @selection      Current selection       @notepad:NAME    A saved note

Global flags:
  -m, --model NAME   Override the configured model
  -q, --quiet        Minimal output
  -v, --verbose      Verbose output

Configuration lives in ~/.lingcode/config.toml. Environment overrides:
LINGCODE_MODEL, LINGCODE_SERVER_URL, LINGCODE_TIMEOUT_SECS, LINGCODE_THEME.
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(args []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "chat":
		parseChatArgs(&parsed, remaining)
		return CmdChat, parsed

	case "index":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdIndex, parsed

	case "session", "sessions":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdSessions, parsed

	case "version", "-V", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unknown commands fall through to help rather than the TUI so
		// typos do not silently open a full-screen program.
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts flags valid for every command.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsed := Args{}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "-m", "--model":
			if i+1 < len(args) {
				i++
				parsed.Model = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsed.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// parseAskArgs parses ask command specific arguments. Everything that
// is not a flag joins the query.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			} else if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			}
		}
	}
}

// =============================================================================
// TRIVIAL HANDLERS
// =============================================================================

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("lingcode %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// HandleHelp prints usage information.
func HandleHelp() {
	fmt.Print(usageText)
}
