// SPDX-License-Identifier: MPL-2.0

// Package archive assembles the two distributable artifacts of a build: a
// compressed binary archive of the module's runtime files and a source
// archive for reproducibility.
//
// File selection is exclude-first: any path matching an exclude pattern is
// removed, and only then, if the include list is non-empty, the survivors
// are restricted to paths that also match an include pattern. Include is an
// intersection filter; it never re-adds an excluded path.
package archive

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"rmm-cli/pkg/rmmfile"
)

var (
	// ErrArchive is the sentinel error wrapped by ArchiveError.
	ErrArchive = errors.New("archive error")
	// ErrUnresolvedPlaceholder is the sentinel error wrapped by
	// UnresolvedPlaceholderError.
	ErrUnresolvedPlaceholder = errors.New("unresolved name placeholder")
)

type (
	// ArchiveError reports a fatal assembly failure: missing source tree,
	// unresolved template, or write failure.
	ArchiveError struct {
		Op  string
		Err error
	}

	// UnresolvedPlaceholderError is raised when a rendered artifact name
	// still contains a {placeholder}. Raised before any file is written.
	UnresolvedPlaceholderError struct {
		Template    string
		Placeholder string
	}

	// Artifacts holds the final paths of an assembled build.
	Artifacts struct {
		// Zip is the binary archive.
		Zip string
		// Source is the source tarball.
		Source string
	}
)

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error: %s: %v", e.Op, e.Err)
}

func (e *ArchiveError) Unwrap() []error { return []error{ErrArchive, e.Err} }

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("name template %q leaves %s unresolved", e.Template, e.Placeholder)
}

func (e *UnresolvedPlaceholderError) Unwrap() error { return ErrUnresolvedPlaceholder }

var placeholderRe = regexp.MustCompile(`\{[^{}]*\}`)

// RenderName substitutes {id}, {version}, and {version_code} into template.
// Any placeholder left after substitution is fatal.
func RenderName(template string, desc *rmmfile.ProjectDescriptor) (string, error) {
	replacer := strings.NewReplacer(
		"{id}", desc.ID,
		"{version}", desc.Version,
		"{version_code}", desc.VersionCode,
	)
	name := replacer.Replace(template)
	if loc := placeholderRe.FindString(name); loc != "" {
		return "", &UnresolvedPlaceholderError{Template: template, Placeholder: loc}
	}
	return name, nil
}
