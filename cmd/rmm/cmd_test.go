// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rmm-cli/internal/archive"
	"rmm-cli/internal/config"
	"rmm-cli/internal/issue"
	"rmm-cli/internal/mirror"
	"rmm-cli/internal/runner"
	"rmm-cli/internal/shellcheck"
	"rmm-cli/pkg/rmmfile"
)

func TestInitScaffoldsProject(t *testing.T) {
	t.Setenv(config.RootEnvVar, t.TempDir())
	dir := filepath.Join(t.TempDir(), "my-module")

	if err := runInitCmd(initCmd, []string{dir}); err != nil {
		t.Fatalf("runInitCmd() error = %v", err)
	}

	for _, name := range []string{
		rmmfile.MarkerFile,
		filepath.Join(rmmfile.WorkDirName, rmmfile.BuildSpecFile),
		rmmfile.ModulePropFile,
		"customize.sh",
		"service.sh",
		"system",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("scaffold missing %s: %v", name, err)
		}
	}

	desc, err := rmmfile.LoadProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if desc.ID != "my-module" {
		t.Errorf("ID = %q, want my-module", desc.ID)
	}
	if desc.VersionCode != rmmfile.InitialVersionCode {
		t.Errorf("VersionCode = %q, want %q", desc.VersionCode, rmmfile.InitialVersionCode)
	}

	regRoot, err := config.Root()
	if err != nil {
		t.Fatal(err)
	}
	reg, err := config.Load(regRoot, Version)
	if err != nil {
		t.Fatal(err)
	}
	if got := reg.Projects["my-module"]; got != dir {
		t.Errorf("registry path = %q, want %q", got, dir)
	}
}

func TestInitRefusesExistingProject(t *testing.T) {
	t.Setenv(config.RootEnvVar, t.TempDir())
	dir := filepath.Join(t.TempDir(), "dup")

	if err := runInitCmd(initCmd, []string{dir}); err != nil {
		t.Fatalf("first init error = %v", err)
	}
	err := runInitCmd(initCmd, []string{dir})
	if err == nil {
		t.Fatal("second init succeeded, want refusal")
	}
	if !strings.Contains(err.Error(), "already holds a project") {
		t.Errorf("error = %v, want refusal message", err)
	}
}

func TestCleanRemovesOutputs(t *testing.T) {
	t.Setenv(config.RootEnvVar, t.TempDir())
	dir := filepath.Join(t.TempDir(), "tidy")
	if err := runInitCmd(initCmd, []string{dir}); err != nil {
		t.Fatal(err)
	}

	workDir := rmmfile.WorkDir(dir)
	for _, sub := range []string{"build", "source-build", "tags", "dist"} {
		if err := os.MkdirAll(filepath.Join(workDir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(workDir, shellcheck.ReportFile), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCleanCmd(cleanCmd, []string{dir}); err != nil {
		t.Fatalf("runCleanCmd() error = %v", err)
	}

	for _, sub := range []string{"build", "source-build", "tags", "dist", shellcheck.ReportFile} {
		if _, err := os.Stat(filepath.Join(workDir, sub)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s survived clean", sub)
		}
	}
	if _, err := os.Stat(filepath.Join(workDir, rmmfile.BuildSpecFile)); err != nil {
		t.Errorf("%s did not survive clean: %v", rmmfile.BuildSpecFile, err)
	}
}

func TestBuildPolicy(t *testing.T) {
	tests := []struct {
		name     string
		skip     bool
		advisory bool
		want     shellcheck.Policy
	}{
		{"default blocks", false, false, shellcheck.PolicyBlocking},
		{"advisory", false, true, shellcheck.PolicyAdvisory},
		{"skip wins", true, true, shellcheck.PolicySkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildSkipCheck, buildAdvisory = tt.skip, tt.advisory
			defer func() { buildSkipCheck, buildAdvisory = false, false }()
			if got := buildPolicy(); got != tt.want {
				t.Errorf("buildPolicy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIssueFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"nil", nil, 0},
		{"unrelated", errors.New("boom"), 0},
		{"token missing", fmt.Errorf("publish: %w", config.ErrTokenMissing), issue.TokenMissingId},
		{"registry load", &config.RegistryLoadError{Path: "meta.toml", Err: errors.New("bad")}, issue.RegistryLoadFailedId},
		{"unresolved placeholder", &archive.UnresolvedPlaceholderError{Template: "{x}.zip", Placeholder: "{x}"}, issue.UnresolvedPlaceholderId},
		{"no mirror", &mirror.NetworkError{Err: errors.New("down")}, issue.MirrorUnavailableId},
		{"hook failed", &runner.ExternalProcessError{Command: "exit 3", ExitCode: 3}, issue.HookFailedId},
		{"permission denied", fmt.Errorf("scan: %w", fs.ErrPermission), issue.PermissionDeniedId},
		{"missing manifest", &rmmfile.ConfigError{Path: "rmmproject.toml", Err: fs.ErrNotExist}, issue.ProjectNotFoundId},
		{"malformed manifest", &rmmfile.ConfigError{Path: "rmmproject.toml", Err: errors.New("bad toml")}, issue.ManifestParseErrorId},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := issueFor(tt.err); got != tt.want {
				t.Errorf("issueFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestPrintErrorGuidance(t *testing.T) {
	var buf bytes.Buffer
	printErrorGuidance(&buf, fmt.Errorf("publish: %w", config.ErrTokenMissing))
	if !strings.Contains(buf.String(), "token") {
		t.Errorf("guidance %q should carry the token issue text", buf.String())
	}

	buf.Reset()
	ae := issue.NewErrorContext().
		WithOperation("locate build artifact").
		WithSuggestion("Run 'rmm build' first").
		BuildError()
	printErrorGuidance(&buf, ae)
	if !strings.Contains(buf.String(), "Run 'rmm build' first") {
		t.Errorf("guidance %q should carry the suggestion", buf.String())
	}

	buf.Reset()
	printErrorGuidance(&buf, errors.New("boom"))
	if buf.Len() != 0 {
		t.Errorf("unmapped error produced guidance: %q", buf.String())
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	plain := errors.New("boom")
	if got := formatErrorForDisplay(plain, false); got != "boom" {
		t.Errorf("plain error = %q, want boom", got)
	}

	ae := issue.NewErrorContext().
		WithOperation("load project manifest").
		WithSuggestion("Run 'rmm init' to create one").
		BuildError()
	got := formatErrorForDisplay(ae, false)
	if !strings.Contains(got, "load project manifest") || !strings.Contains(got, "rmm init") {
		t.Errorf("actionable error = %q, want operation and suggestion", got)
	}
}
