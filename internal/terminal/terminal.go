// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package terminal runs shell commands for the assistant and retains
// the last output for @terminal context mentions.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/lingcode/lingcode-tui/internal/util"
)

// =============================================================================
// EXECUTOR
// =============================================================================

// maxRetainedOutput caps the output kept for later @terminal mentions.
const maxRetainedOutput = 10000

// ErrEmptyCommand indicates Execute was called without a command.
var ErrEmptyCommand = errors.New("terminal: empty command")

// Callbacks receive command output as it is produced. Any field may be
// nil. OnComplete always fires exactly once with the exit code, -1 when
// the process never ran or was killed by the context.
type Callbacks struct {
	OnOutput   func(line string)
	OnError    func(line string)
	OnComplete func(exitCode int)
}

// Options configure one execution.
type Options struct {
	// Cwd is the working directory; empty means the process default.
	Cwd string

	// Env entries are appended to the current environment.
	Env []string

	// Timeout bounds the run; zero means 30 seconds.
	Timeout time.Duration
}

// Result is the outcome of one command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor runs commands through the platform shell, one at a time.
type Executor struct {
	mu         sync.Mutex
	lastOutput string
}

// New creates an Executor.
func New() *Executor {
	return &Executor{}
}

// LastOutput returns the retained output of the most recent command,
// stdout and stderr combined. Used to satisfy @terminal mentions.
func (e *Executor) LastOutput() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastOutput
}

// Execute runs one command and streams its output through cb. It
// blocks until the command exits, the timeout fires, or ctx is
// cancelled. Cancellation kills the process.
func (e *Executor) Execute(ctx context.Context, command string, opts Options, cb Callbacks) (Result, error) {
	start := time.Now()
	if strings.TrimSpace(command) == "" {
		return Result{ExitCode: -1}, ErrEmptyCommand
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(runCtx, command)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: -1}, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: -1}, err
	}

	if err := cmd.Start(); err != nil {
		complete(cb, -1)
		return Result{ExitCode: -1, Duration: time.Since(start)}, err
	}

	var stdout, stderr strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scan := bufio.NewScanner(stdoutPipe)
		for scan.Scan() {
			line := scan.Text()
			stdout.WriteString(line + "\n")
			if cb.OnOutput != nil {
				cb.OnOutput(line)
			}
		}
	}()
	go func() {
		defer wg.Done()
		scan := bufio.NewScanner(stderrPipe)
		for scan.Scan() {
			line := scan.Text()
			stderr.WriteString(line + "\n")
			if cb.OnError != nil {
				cb.OnError(line)
			}
		}
	}()

	wg.Wait()
	waitErr := cmd.Wait()

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}
	if runCtx.Err() != nil {
		exitCode = -1
	}

	result := Result{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	e.retain(result)
	complete(cb, exitCode)

	if runCtx.Err() != nil {
		return result, runCtx.Err()
	}
	return result, nil
}

// retain stores combined output for later @terminal mentions.
func (e *Executor) retain(r Result) {
	combined := r.Stdout
	if r.Stderr != "" {
		combined += r.Stderr
	}
	e.mu.Lock()
	e.lastOutput = util.TruncateRunes(combined, maxRetainedOutput)
	e.mu.Unlock()
}

func complete(cb Callbacks, code int) {
	if cb.OnComplete != nil {
		cb.OnComplete(code)
	}
}

// shellCommand wraps a command line in the platform shell.
func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "bash", "-c", command)
}
