// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Root returns the RMM root directory: $RMM_ROOT if set, otherwise
// ~/data/adb/.rmm. The directory is not created here; Save does that.
func Root() (string, error) {
	if root := os.Getenv(RootEnvVar); root != "" {
		return root, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "data", "adb", ".rmm"), nil
}

// RegistryPath returns the path of meta.toml under root.
func RegistryPath(root string) string {
	return filepath.Join(root, RegistryFileName)
}

// Load reads the registry from root. A missing file is not an error: the
// default registry is returned so first runs work without setup. Identity
// values can be overridden per invocation through RMM_-prefixed environment
// variables.
func Load(root, toolVersion string) (*Registry, error) {
	path := RegistryPath(root)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	defaults := DefaultRegistry(toolVersion)
	v.SetDefault("username", defaults.Username)
	v.SetDefault("email", defaults.Email)
	v.SetDefault("version", defaults.Version)
	v.SetDefault("token", defaults.Token)
	v.SetDefault("projects", defaults.Projects)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, &RegistryLoadError{Path: path, Err: err}
		}
	}

	var reg Registry
	if err := v.Unmarshal(&reg); err != nil {
		return nil, &RegistryLoadError{Path: path, Err: err}
	}
	if reg.Projects == nil {
		reg.Projects = map[string]string{}
	}
	return &reg, nil
}

// Save writes the registry to root, stamping toolVersion as the writing
// version. The write goes to meta.toml.tmp and is renamed into place; the
// rename prevents corruption, not lost updates from concurrent writers.
func Save(root string, reg *Registry, toolVersion string) error {
	path := RegistryPath(root)
	reg.Version = toolVersion

	if err := os.MkdirAll(root, 0o755); err != nil {
		return &RegistrySaveError{Path: path, Err: err}
	}
	data, err := toml.Marshal(reg)
	if err != nil {
		return &RegistrySaveError{Path: path, Err: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return &RegistrySaveError{Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &RegistrySaveError{Path: path, Err: err}
	}
	return nil
}
