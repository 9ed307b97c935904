// SPDX-License-Identifier: MPL-2.0

package rmmfile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MarkerFile identifies a directory as an rmm module project.
	MarkerFile = "rmmproject.toml"
	// WorkDirName is the hidden per-project working directory.
	WorkDirName = ".rmmp"
	// BuildSpecFile is the build-tooling manifest inside the working directory.
	BuildSpecFile = "Rmake.toml"
	// BuildSpecCUEFile is the CUE variant of the build-tooling manifest.
	// When both exist the CUE spec wins.
	BuildSpecCUEFile = "Rmake.cue"
	// ModulePropFile is the device-runtime metadata file in the project root.
	ModulePropFile = "module.prop"

	// InitialVersionCode is assigned to freshly initialized projects.
	InitialVersionCode = "1000000"

	// CompressionDeflate stores archive entries deflate-compressed.
	CompressionDeflate Compression = "deflate"
	// CompressionStore stores archive entries uncompressed.
	CompressionStore Compression = "store"
)

var (
	// ErrConfig is the sentinel error wrapped by ConfigError.
	ErrConfig = errors.New("config error")
	// ErrInvalidVersionCode is the sentinel error wrapped by InvalidVersionCodeError.
	ErrInvalidVersionCode = errors.New("invalid version code")
	// ErrInvalidProjectID is the sentinel error wrapped by InvalidProjectIDError.
	ErrInvalidProjectID = errors.New("invalid project id")
)

type (
	// Compression selects the archive entry compression method.
	Compression string

	// ConfigError reports a malformed or missing manifest. Fatal: the
	// command that hit it aborts.
	ConfigError struct {
		Path string
		Err  error
	}

	// InvalidVersionCodeError is returned when a version_code value is not
	// a base-10 integer string. It wraps ErrInvalidVersionCode for errors.Is().
	InvalidVersionCodeError struct {
		Value string
	}

	// InvalidProjectIDError is returned when a project id is empty or
	// whitespace-only. It wraps ErrInvalidProjectID for errors.Is().
	InvalidProjectIDError struct {
		Value string
	}

	// Author credits a project contributor in the project manifest.
	Author struct {
		Name  string `toml:"name" json:"name"`
		Email string `toml:"email,omitempty" json:"email,omitempty"`
	}

	// Dependency is a flat declared dependency. Never resolved, only listed.
	Dependency struct {
		Name    string `toml:"name" json:"name"`
		Version string `toml:"version,omitempty" json:"version,omitempty"`
	}

	// ProjectDescriptor is the content of rmmproject.toml. It owns the
	// project's identity and version bookkeeping and is loaded fresh by
	// every command that touches the project.
	ProjectDescriptor struct {
		// ID uniquely names the module within the registry.
		ID string `toml:"id" json:"id"`
		// Name is the human-readable module name shown by the device runtime.
		Name string `toml:"name,omitempty" json:"name,omitempty"`
		// Description is carried into module.prop verbatim.
		Description string `toml:"description,omitempty" json:"description,omitempty"`
		// Version is free-form ("v1.2", "2024-01").
		Version string `toml:"version" json:"version"`
		// VersionCode is a base-10 integer string, bumped by sync and build.
		VersionCode string `toml:"version_code" json:"version_code"`
		// RequiresToolVersion records the minimum rmm version for this project.
		RequiresToolVersion string `toml:"requires_tool_version,omitempty" json:"requires_tool_version,omitempty"`
		// UpdateJSON is the update metadata URL written to module.prop.
		UpdateJSON string `toml:"update_json,omitempty" json:"update_json,omitempty"`

		Authors      []Author          `toml:"authors,omitempty" json:"authors,omitempty"`
		URLs         map[string]string `toml:"urls,omitempty" json:"urls,omitempty"`
		Dependencies []Dependency      `toml:"dependencies,omitempty" json:"dependencies,omitempty"`
		// Scripts maps script names to command lines runnable via `rmm run`.
		Scripts map[string]string `toml:"scripts,omitempty" json:"scripts,omitempty"`
	}

	// BuildSection configures file selection and lifecycle hooks.
	BuildSection struct {
		// Target optionally restricts the build to a named target.
		Target string `toml:"target,omitempty" json:"target,omitempty"`
		// OutputDir receives finished artifacts. Relative paths resolve
		// under the project's .rmmp directory.
		OutputDir string `toml:"output_dir" json:"output_dir"`
		// Exclude patterns remove paths first.
		Exclude []string `toml:"exclude" json:"exclude"`
		// Include, when non-empty, keeps only paths that also match.
		// Applied after Exclude; it never re-adds an excluded path.
		Include []string `toml:"include" json:"include"`
		// PreBuild commands run before validation and assembly.
		PreBuild []string `toml:"pre_build" json:"pre_build"`
		// PostBuild commands run after both archives exist.
		PostBuild []string `toml:"post_build" json:"post_build"`
	}

	// PackageSection configures the binary archive.
	PackageSection struct {
		Compression Compression `toml:"compression" json:"compression"`
		// ZipName is a template over {id}, {version}, {version_code}.
		ZipName string `toml:"zip_name" json:"zip_name"`
	}

	// ProxySection configures mirror acceleration for publish/download.
	ProxySection struct {
		Enabled    bool `toml:"enabled" json:"enabled"`
		AutoSelect bool `toml:"auto_select" json:"auto_select"`
		// CustomProxy, when set and AutoSelect is off, is used verbatim.
		CustomProxy string `toml:"custom_proxy,omitempty" json:"custom_proxy,omitempty"`
	}

	// SourcePackageSection configures the source archive.
	SourcePackageSection struct {
		Include []string `toml:"include" json:"include"`
		Exclude []string `toml:"exclude" json:"exclude"`
		// NameTemplate is a template over {id}, {version}, {version_code}.
		NameTemplate string `toml:"name_template" json:"name_template"`
	}

	// BuildSpec is the content of .rmmp/Rmake.toml. It is deliberately
	// separate from ProjectDescriptor so local build tuning need not be
	// versioned with the project identity.
	BuildSpec struct {
		Build         BuildSection         `toml:"build" json:"build"`
		Package       PackageSection       `toml:"package" json:"package"`
		Proxy         ProxySection         `toml:"proxy" json:"proxy"`
		SourcePackage SourcePackageSection `toml:"source_package" json:"source_package"`
	}
)

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports ErrConfig identity so callers can classify without the concrete type.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func (e *InvalidVersionCodeError) Error() string {
	return fmt.Sprintf("invalid version code %q: not a base-10 integer", e.Value)
}

func (e *InvalidVersionCodeError) Unwrap() error { return ErrInvalidVersionCode }

func (e *InvalidProjectIDError) Error() string {
	return fmt.Sprintf("invalid project id %q", e.Value)
}

func (e *InvalidProjectIDError) Unwrap() error { return ErrInvalidProjectID }

// Validate checks the descriptor fields that every command depends on.
func (d *ProjectDescriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return &InvalidProjectIDError{Value: d.ID}
	}
	if _, err := ParseVersionCode(d.VersionCode); err != nil {
		return err
	}
	return nil
}
