// SPDX-License-Identifier: MPL-2.0

package rmmfile

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModuleProp mirrors the flat key=value file the device runtime reads.
// rmm keeps it in lockstep with the project manifest on sync and build.
type ModuleProp struct {
	ID          string
	Name        string
	Version     string
	VersionCode string
	Author      string
	Description string
	UpdateJSON  string
}

// modulePropKeys fixes the emission order. The device runtime does not care,
// but stable output keeps diffs readable.
var modulePropKeys = []string{"id", "name", "version", "versionCode", "author", "description", "updateJson"}

// ModulePropPath returns the path of module.prop inside root.
func ModulePropPath(root string) string {
	return filepath.Join(root, ModulePropFile)
}

// ParseModuleProp decodes key=value lines. Blank lines and lines starting
// with '#' are skipped. Unknown keys are ignored rather than rejected since
// the runtime tolerates extra keys too.
func ParseModuleProp(data []byte) (*ModuleProp, error) {
	prop := &ModuleProp{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("module.prop line %d: missing '=': %q", lineNo, line)
		}
		switch strings.TrimSpace(key) {
		case "id":
			prop.ID = value
		case "name":
			prop.Name = value
		case "version":
			prop.Version = value
		case "versionCode":
			prop.VersionCode = value
		case "author":
			prop.Author = value
		case "description":
			prop.Description = value
		case "updateJson":
			prop.UpdateJSON = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return prop, nil
}

// Encode renders the file in the fixed key order.
func (p *ModuleProp) Encode() []byte {
	values := map[string]string{
		"id":          p.ID,
		"name":        p.Name,
		"version":     p.Version,
		"versionCode": p.VersionCode,
		"author":      p.Author,
		"description": p.Description,
		"updateJson":  p.UpdateJSON,
	}
	var buf bytes.Buffer
	for _, key := range modulePropKeys {
		fmt.Fprintf(&buf, "%s=%s\n", key, values[key])
	}
	return buf.Bytes()
}

// LoadModuleProp reads module.prop from root.
func LoadModuleProp(root string) (*ModuleProp, error) {
	path := ModulePropPath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	prop, err := ParseModuleProp(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return prop, nil
}

// SaveModuleProp writes module.prop atomically.
func SaveModuleProp(root string, prop *ModuleProp) error {
	return writeFileAtomic(ModulePropPath(root), prop.Encode(), 0o644)
}

// ModulePropFromDescriptor derives the runtime metadata from the manifest.
// Author is the first declared author, if any.
func ModulePropFromDescriptor(desc *ProjectDescriptor) *ModuleProp {
	author := ""
	if len(desc.Authors) > 0 {
		author = desc.Authors[0].Name
	}
	name := desc.Name
	if name == "" {
		name = desc.ID
	}
	return &ModuleProp{
		ID:          desc.ID,
		Name:        name,
		Version:     desc.Version,
		VersionCode: desc.VersionCode,
		Author:      author,
		Description: desc.Description,
		UpdateJSON:  desc.UpdateJSON,
	}
}

// RefreshModuleProp rewrites module.prop from the descriptor. The manifest
// is the source of truth; hand edits to module.prop do not survive a sync.
func RefreshModuleProp(root string, desc *ProjectDescriptor) error {
	return SaveModuleProp(root, ModulePropFromDescriptor(desc))
}
