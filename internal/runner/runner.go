// SPDX-License-Identifier: MPL-2.0

// Package runner executes lifecycle hooks and project scripts.
//
// Command lines run through the host shell picked once per platform. When
// no host shell is on PATH the runner falls back to the embedded POSIX
// interpreter, so simple hook lines keep working on minimal systems.
// Execution is synchronous and sequential: the child inherits the caller's
// standard streams and runs to completion before control returns.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"rmm-cli/pkg/platform"
)

// ErrExternalProcess is the sentinel error wrapped by ExternalProcessError.
var ErrExternalProcess = errors.New("external process failed")

// ExternalProcessError is returned when a hook, script, or checker exits
// non-zero. Fatal: the triggering exit code is propagated as the command's
// own exit code.
type ExternalProcessError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *ExternalProcessError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
}

func (e *ExternalProcessError) Unwrap() error { return ErrExternalProcess }

// Runner dispatches command lines from a fixed working directory.
type Runner struct {
	// Dir is the working directory for every command.
	Dir string

	// Stdin, Stdout, Stderr are inherited by children. They default to the
	// process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	shell  platform.Shell
	logger *log.Logger

	// lookPath is swapped in tests to force the embedded fallback.
	lookPath func(string) (string, error)
}

// New returns a Runner rooted at dir with inherited process streams.
func New(dir string) *Runner {
	return &Runner{
		Dir:      dir,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		shell:    platform.HookShell(),
		logger:   log.WithPrefix("runner"),
		lookPath: exec.LookPath,
	}
}

// Run executes one command line and blocks until it finishes. A non-zero
// exit surfaces as an ExternalProcessError carrying the child's exit code.
func (r *Runner) Run(ctx context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return nil
	}

	shellPath, err := r.lookPath(r.shell.Name)
	if err != nil {
		r.logger.Debug("host shell not found, using embedded interpreter", "shell", r.shell.Name)
		return r.runEmbedded(ctx, command)
	}
	return r.runHost(ctx, shellPath, command)
}

// RunAll executes commands sequentially, stopping at the first failure.
func (r *Runner) RunAll(ctx context.Context, commands []string) error {
	for _, command := range commands {
		if err := r.Run(ctx, command); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runHost(ctx context.Context, shellPath, command string) error {
	args := append(append([]string{}, r.shell.Args...), command)
	cmd := exec.CommandContext(ctx, shellPath, args...)
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExternalProcessError{Command: command, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return &ExternalProcessError{Command: command, ExitCode: 1, Err: err}
	}
	return nil
}

func (r *Runner) runEmbedded(ctx context.Context, command string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "hook")
	if err != nil {
		return &ExternalProcessError{Command: command, ExitCode: 1,
			Err: fmt.Errorf("failed to parse command: %w", err)}
	}

	sh, err := interp.New(
		interp.Dir(r.Dir),
		interp.StdIO(r.Stdin, r.Stdout, r.Stderr),
	)
	if err != nil {
		return &ExternalProcessError{Command: command, ExitCode: 1, Err: err}
	}

	if err := sh.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ExternalProcessError{Command: command, ExitCode: int(exitStatus), Err: err}
		}
		return &ExternalProcessError{Command: command, ExitCode: 1, Err: err}
	}
	return nil
}

// ExitCode extracts the child exit code from err, or 1 when err is some
// other failure, or 0 when err is nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var procErr *ExternalProcessError
	if errors.As(err, &procErr) {
		return procErr.ExitCode
	}
	return 1
}
