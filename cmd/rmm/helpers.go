// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"

	"rmm-cli/internal/config"
	"rmm-cli/internal/issue"
)

func absPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", issue.WrapWithContext(err, "resolve path", dir)
	}
	return abs, nil
}

// openRegistry loads the central registry, wrapping failures with guidance.
func openRegistry() (root string, reg *config.Registry, err error) {
	root, err = config.Root()
	if err != nil {
		return "", nil, issue.WrapWithOperation(err, "locate rmm root")
	}
	reg, err = config.Load(root, Version)
	if err != nil {
		return "", nil, issue.NewErrorContext().
			WithOperation("load registry").
			WithResource(config.RegistryPath(root)).
			WithSuggestion("Fix or remove the file; 'rmm sync' will rebuild it").
			Wrap(err).
			BuildError()
	}
	return root, reg, nil
}

func saveRegistry(root string, reg *config.Registry) error {
	if err := config.Save(root, reg, Version); err != nil {
		return issue.WrapWithContext(err, "save registry", config.RegistryPath(root))
	}
	return nil
}
