// SPDX-License-Identifier: EPL-2.0

// Package testutil provides project fixtures for tests, reducing
// boilerplate and ensuring consistent error handling.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"rmm-cli/pkg/rmmfile"
)

// NewProject creates a minimal project directory named id under dir and
// returns its root. The manifest starts at the initial version_code.
func NewProject(t testing.TB, dir, id string) string {
	t.Helper()
	root := filepath.Join(dir, id)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("failed to create project dir %s: %v", root, err)
	}
	desc := &rmmfile.ProjectDescriptor{
		ID:          id,
		Name:        id,
		Version:     "0.1.0",
		VersionCode: rmmfile.InitialVersionCode,
	}
	if err := rmmfile.SaveProject(root, desc); err != nil {
		t.Fatalf("failed to write manifest for %s: %v", id, err)
	}
	return root
}

// WriteSpec persists spec as the project's Rmake.toml.
// The test fails immediately if the write fails.
func WriteSpec(t testing.TB, root string, spec *rmmfile.BuildSpec) {
	t.Helper()
	if err := rmmfile.SaveBuildSpec(root, spec); err != nil {
		t.Fatalf("failed to write build spec: %v", err)
	}
}

// WriteFile writes content to rel under root, creating parent directories.
// The test fails immediately if the write fails.
func WriteFile(t testing.TB, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}
