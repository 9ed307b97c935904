// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"rmm-cli/internal/archive"
	"rmm-cli/internal/runner"
	"rmm-cli/internal/shellcheck"
	"rmm-cli/internal/testutil"
	"rmm-cli/pkg/rmmfile"
)

func newProject(t *testing.T, spec *rmmfile.BuildSpec) string {
	t.Helper()
	root := testutil.NewProject(t, t.TempDir(), "alpha")
	if spec != nil {
		testutil.WriteSpec(t, root, spec)
	}
	testutil.WriteFile(t, root, "payload.txt", "data\n")
	return root
}

func TestBuildEndToEnd(t *testing.T) {
	root := newProject(t, nil)

	result, err := New(root).Build(context.Background(), Options{Policy: shellcheck.PolicyBlocking})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.VersionCode != "1000001" {
		t.Errorf("VersionCode = %q, want 1000001", result.VersionCode)
	}
	if result.Artifacts == nil {
		t.Fatal("Build() returned no artifacts")
	}

	wantZip := filepath.Join(rmmfile.WorkDir(root), "dist", "alpha-1000001.zip")
	if result.Artifacts.Zip != wantZip {
		t.Errorf("Zip = %q, want %q", result.Artifacts.Zip, wantZip)
	}
	for _, path := range []string{result.Artifacts.Zip, result.Artifacts.Source} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("artifact missing: %v", err)
		}
	}

	desc, err := rmmfile.LoadProject(root)
	if err != nil {
		t.Fatal(err)
	}
	if desc.VersionCode != "1000001" {
		t.Errorf("persisted VersionCode = %q, want 1000001", desc.VersionCode)
	}
	prop, err := rmmfile.LoadModuleProp(root)
	if err != nil {
		t.Fatalf("module.prop not written: %v", err)
	}
	if prop.VersionCode != "1000001" {
		t.Errorf("module.prop versionCode = %q, want 1000001", prop.VersionCode)
	}
}

func TestBuildRunsHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook commands are POSIX shell")
	}
	spec := rmmfile.DefaultBuildSpec()
	spec.Build.PreBuild = []string{"echo pre > pre.txt"}
	spec.Build.PostBuild = []string{"echo post > post.txt"}
	root := newProject(t, spec)

	if _, err := New(root).Build(context.Background(), Options{Policy: shellcheck.PolicySkip}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, name := range []string{"pre.txt", "post.txt"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("hook output %s missing: %v", name, err)
		}
	}
}

func TestBuildFailedHookStillPersistsBump(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook commands are POSIX shell")
	}
	spec := rmmfile.DefaultBuildSpec()
	spec.Build.PreBuild = []string{"exit 3"}
	root := newProject(t, spec)

	result, err := New(root).Build(context.Background(), Options{Policy: shellcheck.PolicySkip})
	if err == nil {
		t.Fatal("Build() succeeded, want hook failure")
	}
	if !errors.Is(err, runner.ErrExternalProcess) {
		t.Errorf("error = %v, want ErrExternalProcess", err)
	}
	if result.Artifacts != nil {
		t.Error("artifacts produced despite failed pre_build hook")
	}

	desc, err := rmmfile.LoadProject(root)
	if err != nil {
		t.Fatal(err)
	}
	if desc.VersionCode != "1000001" {
		t.Errorf("persisted VersionCode = %q, want 1000001 despite failure", desc.VersionCode)
	}
}

func TestBuildUnresolvedPlaceholderFails(t *testing.T) {
	spec := rmmfile.DefaultBuildSpec()
	spec.Package.ZipName = "{id}-{unknown}.zip"
	root := newProject(t, spec)

	_, err := New(root).Build(context.Background(), Options{Policy: shellcheck.PolicySkip})
	if err == nil {
		t.Fatal("Build() succeeded, want unresolved placeholder failure")
	}
	if !errors.Is(err, archive.ErrUnresolvedPlaceholder) {
		t.Errorf("error = %v, want ErrUnresolvedPlaceholder", err)
	}
}

func TestBuildWritesValidationReport(t *testing.T) {
	root := newProject(t, nil)

	result, err := New(root).Build(context.Background(), Options{Policy: shellcheck.PolicyBlocking})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.Report == nil {
		t.Fatal("Build() produced no validation report")
	}
	if !result.Report.AllPassed {
		t.Errorf("AllPassed = false for a project with no scripts")
	}
	reportPath := filepath.Join(rmmfile.WorkDir(root), shellcheck.ReportFile)
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("report file missing: %v", err)
	}
}
