// SPDX-License-Identifier: MPL-2.0

// Package shellcheck wraps the external shell-syntax checker as the build's
// validation gate.
//
// If the checker binary is not on PATH the gate degrades to success with a
// skip: install guidance is printed, nothing blocks. When the checker runs,
// strictness depends on the caller. The test pipeline treats findings as
// advisory and still reports success; the build pipeline treats them as
// fatal unless validation was explicitly skipped, which bypasses the gate
// outright.
package shellcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"rmm-cli/pkg/platform"
	"rmm-cli/pkg/rmmfile"
)

// BinaryName is the external checker looked up on PATH.
const BinaryName = "shellcheck"

// ReportFile is written under the project's .rmmp directory.
const ReportFile = "shellcheck.json"

// Policy selects how a non-clean result is treated.
type Policy int

const (
	// PolicyAdvisory downgrades findings to a warning; the caller still
	// reports success. Used by `rmm test`.
	PolicyAdvisory Policy = iota
	// PolicyBlocking fails the caller on any finding. Used by `rmm build`.
	PolicyBlocking
	// PolicySkip bypasses the gate outright.
	PolicySkip
)

var (
	// ErrValidation is the sentinel error wrapped by ValidationFailureError.
	ErrValidation = errors.New("validation failed")
	// ErrOutputDecode is returned when the checker printed something on
	// stdout that is not its JSON report.
	ErrOutputDecode = errors.New("undecodable checker output")
)

type (
	// ValidationFailureError is returned by a blocking gate when the
	// checker reported findings.
	ValidationFailureError struct {
		Findings int
	}

	// Finding is one checker diagnostic, decoded from its JSON output.
	Finding struct {
		File    string `json:"file"`
		Line    int    `json:"line"`
		Column  int    `json:"column"`
		Level   string `json:"level"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	// Report is the gate's result for one project.
	Report struct {
		// CheckedFiles are the shell scripts handed to the checker,
		// relative to the project root.
		CheckedFiles []string `json:"checked_files"`
		// Findings are the checker diagnostics, empty when clean.
		Findings []Finding `json:"findings"`
		// Counts aggregates findings by level.
		Counts map[string]int `json:"counts"`
		// Skipped is true when the checker binary was absent.
		Skipped bool `json:"skipped"`
		// AllPassed is true when no findings were reported. Skip counts
		// as a pass: an absent checker never blocks a build.
		AllPassed bool `json:"all_passed"`
	}

	// Gate invokes the checker over every shell script of a project.
	Gate struct {
		logger *log.Logger

		// lookPath and runChecker are swapped in tests.
		lookPath   func(string) (string, error)
		runChecker func(ctx context.Context, binary, dir string, files []string) ([]byte, error)
	}
)

func (e *ValidationFailureError) Error() string {
	return fmt.Sprintf("validation failed: checker reported %d finding(s)", e.Findings)
}

func (e *ValidationFailureError) Unwrap() error { return ErrValidation }

// NewGate returns a Gate using the real checker binary.
func NewGate() *Gate {
	return &Gate{
		logger:     log.WithPrefix("shellcheck"),
		lookPath:   exec.LookPath,
		runChecker: runCheckerProcess,
	}
}

// Check runs the checker across every shell script under root and returns
// the report. An absent binary yields a skipped, passing report along with
// per-OS install guidance; it is never an error.
func (g *Gate) Check(ctx context.Context, root string) (*Report, error) {
	files, err := collectScripts(root)
	if err != nil {
		return nil, fmt.Errorf("collecting shell scripts: %w", err)
	}

	report := &Report{
		CheckedFiles: files,
		Findings:     []Finding{},
		Counts:       map[string]int{},
		AllPassed:    true,
	}
	if len(files) == 0 {
		return report, nil
	}

	binary, err := g.lookPath(BinaryName)
	if err != nil {
		report.Skipped = true
		g.logger.Warn("checker not found, validation skipped", "binary", BinaryName)
		g.logger.Warn(installHint(runtime.GOOS))
		return report, nil
	}

	out, err := g.runChecker(ctx, binary, root, files)
	// The checker exits non-zero whenever it has findings; the JSON on
	// stdout is still complete, so only a missing payload is fatal.
	if len(bytes.TrimSpace(out)) == 0 {
		if err != nil {
			return nil, fmt.Errorf("running %s: %w", BinaryName, err)
		}
		return report, nil
	}

	var findings []Finding
	if jsonErr := json.Unmarshal(out, &findings); jsonErr != nil {
		return nil, fmt.Errorf("decoding %s output: %w: %v", BinaryName, ErrOutputDecode, jsonErr)
	}

	report.Findings = findings
	for _, f := range findings {
		report.Counts[f.Level]++
	}
	report.AllPassed = len(findings) == 0
	return report, nil
}

// Evaluate runs Check and applies the caller's policy to the result. Under
// PolicyAdvisory a checker that produced undecodable output is treated like
// an absent checker: the caller gets a skipped, passing report and a
// warning. A non-nil report is returned alongside the policy error so the
// caller can still persist it.
func (g *Gate) Evaluate(ctx context.Context, root string, policy Policy) (*Report, error) {
	report, err := g.Check(ctx, root)
	if err != nil {
		if policy == PolicyAdvisory && errors.Is(err, ErrOutputDecode) {
			g.logger.Warn("checker output was not JSON, validation skipped", "err", err)
			return &Report{
				CheckedFiles: []string{},
				Findings:     []Finding{},
				Counts:       map[string]int{},
				Skipped:      true,
				AllPassed:    true,
			}, nil
		}
		return nil, err
	}
	return report, g.Enforce(report, policy)
}

// Enforce applies the caller's policy to a report.
func (g *Gate) Enforce(report *Report, policy Policy) error {
	if policy == PolicySkip || report.AllPassed {
		return nil
	}
	if policy == PolicyAdvisory {
		g.logger.Warn("checker reported findings", "count", len(report.Findings))
		return nil
	}
	return &ValidationFailureError{Findings: len(report.Findings)}
}

// WriteReport persists the report to .rmmp/shellcheck.json.
func WriteReport(root string, report *Report) error {
	dir := rmmfile.WorkDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ReportFile), data, 0o644)
}

func runCheckerProcess(ctx context.Context, binary, dir string, files []string) ([]byte, error) {
	args := append([]string{"--format=json"}, files...)
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	return stdout.Bytes(), err
}

// collectScripts returns every shell script under root, relative to root,
// skipping the working directory and VCS metadata. A script is a *.sh file
// or an extensionless file whose first line is a shell shebang.
func collectScripts(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && (name == rmmfile.WorkDirName || name == ".git") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".sh") || hasShellShebang(p, name) {
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				return relErr
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// hasShellShebang reports whether an extensionless file starts with a
// shebang line naming a shell. Unreadable files are not scripts.
func hasShellShebang(path, name string) bool {
	if strings.Contains(name, ".") {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	line, _, _ := strings.Cut(string(buf[:n]), "\n")
	if !strings.HasPrefix(line, "#!") {
		return false
	}
	return strings.HasSuffix(strings.TrimSpace(line), "sh")
}

func installHint(goos string) string {
	switch goos {
	case platform.Darwin:
		return "install it with: brew install shellcheck"
	case platform.Windows:
		return "install it with: scoop install shellcheck"
	default:
		return "install it with: apt install shellcheck (or your distro's equivalent)"
	}
}
