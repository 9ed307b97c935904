// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// AppName is the application name.
	AppName = "rmm"
	// RegistryFileName is the registry file inside the RMM root.
	RegistryFileName = "meta.toml"
	// RootEnvVar overrides the RMM root directory when set.
	RootEnvVar = "RMM_ROOT"
	// EnvPrefix is the prefix for environment overrides of registry values
	// (RMM_USERNAME, RMM_EMAIL, RMM_TOKEN).
	EnvPrefix = "RMM"
)

var (
	// ErrRegistryLoad is the sentinel error wrapped by RegistryLoadError.
	ErrRegistryLoad = errors.New("registry load failed")
	// ErrRegistrySave is the sentinel error wrapped by RegistrySaveError.
	ErrRegistrySave = errors.New("registry save failed")
	// ErrTokenMissing is returned when publishing is attempted without a
	// configured access token.
	ErrTokenMissing = errors.New("access token missing")
	// ErrUnknownField is the sentinel error wrapped by UnknownFieldError.
	ErrUnknownField = errors.New("unknown registry field")
)

type (
	// Registry is the content of meta.toml: developer identity, the tool
	// version that last wrote the file, an optional access token, and the
	// project id->path map.
	Registry struct {
		// Username identifies the developer in generated metadata.
		Username string `toml:"username" json:"username" mapstructure:"username"`
		// Email accompanies Username.
		Email string `toml:"email" json:"email" mapstructure:"email"`
		// Version is the rmm version that last wrote this file.
		Version string `toml:"version" json:"version" mapstructure:"version"`
		// Token is the optional GitHub access token used by publish.
		Token string `toml:"token,omitempty" json:"token,omitempty" mapstructure:"token"`
		// Projects maps project id to its absolute path on disk.
		Projects map[string]string `toml:"projects" json:"projects" mapstructure:"projects"`
	}

	// RegistryLoadError is returned when meta.toml cannot be read or
	// decoded. It wraps ErrRegistryLoad for errors.Is() compatibility.
	RegistryLoadError struct {
		Path string
		Err  error
	}

	// RegistrySaveError is returned when meta.toml cannot be written.
	// It wraps ErrRegistrySave for errors.Is() compatibility.
	RegistrySaveError struct {
		Path string
		Err  error
	}

	// UnknownFieldError is returned by Get/Set for a field name the
	// registry does not carry. It wraps ErrUnknownField for errors.Is().
	UnknownFieldError struct {
		Field string
	}
)

func (e *RegistryLoadError) Error() string {
	return fmt.Sprintf("registry load failed: %s: %v", e.Path, e.Err)
}

func (e *RegistryLoadError) Unwrap() []error { return []error{ErrRegistryLoad, e.Err} }

func (e *RegistrySaveError) Error() string {
	return fmt.Sprintf("registry save failed: %s: %v", e.Path, e.Err)
}

func (e *RegistrySaveError) Unwrap() []error { return []error{ErrRegistrySave, e.Err} }

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown registry field %q", e.Field)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// DefaultRegistry returns the registry synthesized when meta.toml does not
// exist yet. toolVersion is recorded as the writing version.
func DefaultRegistry(toolVersion string) *Registry {
	return &Registry{
		Username: "unknown",
		Email:    "unknown@example.com",
		Version:  toolVersion,
		Projects: map[string]string{},
	}
}

// Get returns a user-editable field by name.
func (r *Registry) Get(field string) (string, error) {
	switch strings.ToLower(field) {
	case "username":
		return r.Username, nil
	case "email":
		return r.Email, nil
	case "token":
		return r.Token, nil
	case "version":
		return r.Version, nil
	default:
		return "", &UnknownFieldError{Field: field}
	}
}

// Set assigns a user-editable field by name. The version field is owned by
// the tool and rejected here.
func (r *Registry) Set(field, value string) error {
	switch strings.ToLower(field) {
	case "username":
		r.Username = value
	case "email":
		r.Email = value
	case "token":
		r.Token = value
	default:
		return &UnknownFieldError{Field: field}
	}
	return nil
}
