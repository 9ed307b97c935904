// SPDX-License-Identifier: MPL-2.0

package rmmfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// IsProjectDir reports whether dir contains the project marker manifest.
func IsProjectDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil && info.Mode().IsRegular()
}

// ProjectManifestPath returns the path of the project manifest inside root.
func ProjectManifestPath(root string) string {
	return filepath.Join(root, MarkerFile)
}

// WorkDir returns the hidden per-project working directory inside root.
func WorkDir(root string) string {
	return filepath.Join(root, WorkDirName)
}

// BuildSpecPath returns the path of the build-tooling manifest inside root.
func BuildSpecPath(root string) string {
	return filepath.Join(WorkDir(root), BuildSpecFile)
}

// BuildSpecCUEPath returns the path of the CUE build-tooling manifest.
func BuildSpecCUEPath(root string) string {
	return filepath.Join(WorkDir(root), BuildSpecCUEFile)
}

// LoadProject reads and validates the project manifest from root.
func LoadProject(root string) (*ProjectDescriptor, error) {
	path := ProjectManifestPath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var desc ProjectDescriptor
	if err := toml.Unmarshal(data, &desc); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if err := desc.Validate(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return &desc, nil
}

// SaveProject writes the project manifest back to root. The write goes to a
// temporary sibling first and is renamed into place, so a crash mid-write
// never corrupts the existing manifest.
func SaveProject(root string, desc *ProjectDescriptor) error {
	if err := desc.Validate(); err != nil {
		return &ConfigError{Path: ProjectManifestPath(root), Err: err}
	}
	data, err := toml.Marshal(desc)
	if err != nil {
		return &ConfigError{Path: ProjectManifestPath(root), Err: err}
	}
	return writeFileAtomic(ProjectManifestPath(root), data, 0o644)
}

// writeFileAtomic writes data to path via a ".tmp" sibling and rename.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s into place: %w", tmp, err)
	}
	return nil
}
