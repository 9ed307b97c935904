// SPDX-License-Identifier: MPL-2.0

package rmmfile

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"rmm-cli/pkg/cueutil"
)

//go:embed rmake_schema.cue
var rmakeSchema []byte

// LoadBuildSpec reads the build-tooling manifest from the project's .rmmp
// directory. A CUE spec (Rmake.cue) takes precedence over the TOML one;
// an absent manifest is not an error: the documented default BuildSpec is
// synthesized instead. Either way the result is validated against the
// embedded CUE schema before being returned.
//
// The files are reloaded on every call. Build tuning may change between
// command invocations and nothing here is worth caching.
func LoadBuildSpec(root string) (*BuildSpec, error) {
	cuePath := BuildSpecCUEPath(root)
	cueData, err := os.ReadFile(cuePath)
	switch {
	case err == nil:
		return parseBuildSpecCUE(cuePath, cueData)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &ConfigError{Path: cuePath, Err: err}
	}

	path := BuildSpecPath(root)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultBuildSpec(), nil
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	// Decode over the defaults so absent keys keep their documented values.
	spec := DefaultBuildSpec()
	if err := toml.Unmarshal(data, spec); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if err := cueutil.ValidateValue(rmakeSchema, "#Rmake", path, spec); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return spec, nil
}

// parseBuildSpecCUE unifies a CUE build spec against the schema; the
// schema's defaults fill any omitted field, so a sparse file still decodes
// to a complete spec.
func parseBuildSpecCUE(path string, data []byte) (*BuildSpec, error) {
	result, err := cueutil.ParseAndDecode[BuildSpec](rmakeSchema, data, "#Rmake",
		cueutil.WithFilename(path), cueutil.WithConcrete())
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return result.Value, nil
}

// SaveBuildSpec writes the build-tooling manifest, creating the .rmmp
// directory if needed.
func SaveBuildSpec(root string, spec *BuildSpec) error {
	path := BuildSpecPath(root)
	if err := cueutil.ValidateValue(rmakeSchema, "#Rmake", path, spec); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	data, err := toml.Marshal(spec)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return writeFileAtomic(path, data, 0o644)
}
