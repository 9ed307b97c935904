// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"rmm-cli/pkg/platform"
)

func newTestRunner(dir string) (*Runner, *bytes.Buffer) {
	r := New(dir)
	out := &bytes.Buffer{}
	r.Stdin = strings.NewReader("")
	r.Stdout = out
	r.Stderr = out
	return r, out
}

func TestRunSuccess(t *testing.T) {
	if runtime.GOOS == platform.Windows {
		t.Skip("uses sh semantics")
	}

	dir := t.TempDir()
	r, _ := newTestRunner(dir)

	if err := r.Run(context.Background(), "touch made.txt"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "made.txt")); err != nil {
		t.Errorf("command did not run in %s: %v", dir, err)
	}
}

func TestRunPropagatesExitCode(t *testing.T) {
	if runtime.GOOS == platform.Windows {
		t.Skip("uses sh semantics")
	}

	r, _ := newTestRunner(t.TempDir())
	err := r.Run(context.Background(), "exit 3")
	if err == nil {
		t.Fatal("Run should fail for exit 3")
	}
	if !errors.Is(err, ErrExternalProcess) {
		t.Errorf("error does not wrap ErrExternalProcess: %v", err)
	}
	if got := ExitCode(err); got != 3 {
		t.Errorf("ExitCode = %d, want 3", got)
	}
}

func TestRunEmptyCommandIsNoop(t *testing.T) {
	r, _ := newTestRunner(t.TempDir())
	if err := r.Run(context.Background(), "  "); err != nil {
		t.Errorf("blank command should be a no-op, got %v", err)
	}
}

func TestRunAllStopsAtFirstFailure(t *testing.T) {
	if runtime.GOOS == platform.Windows {
		t.Skip("uses sh semantics")
	}

	dir := t.TempDir()
	r, _ := newTestRunner(dir)

	err := r.RunAll(context.Background(), []string{
		"touch first.txt",
		"exit 2",
		"touch third.txt",
	})
	if ExitCode(err) != 2 {
		t.Fatalf("ExitCode = %d, want 2", ExitCode(err))
	}
	if _, err := os.Stat(filepath.Join(dir, "first.txt")); err != nil {
		t.Error("first command should have run")
	}
	if _, err := os.Stat(filepath.Join(dir, "third.txt")); err == nil {
		t.Error("third command should not have run after a failure")
	}
}

func TestRunFallsBackToEmbeddedInterpreter(t *testing.T) {
	dir := t.TempDir()
	r, out := newTestRunner(dir)
	r.lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}

	if err := r.Run(context.Background(), "echo embedded"); err != nil {
		t.Fatalf("embedded Run: %v", err)
	}
	if !strings.Contains(out.String(), "embedded") {
		t.Errorf("stdout = %q, want echo output", out.String())
	}
}

func TestEmbeddedInterpreterExitCode(t *testing.T) {
	r, _ := newTestRunner(t.TempDir())
	r.lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}

	err := r.Run(context.Background(), "exit 5")
	if got := ExitCode(err); got != 5 {
		t.Errorf("ExitCode = %d, want 5", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil is success", err: nil, want: 0},
		{name: "process error carries code", err: &ExternalProcessError{ExitCode: 7}, want: 7},
		{name: "other errors map to 1", err: errors.New("boom"), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
