// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// matches reports whether the slash-separated relative path matches pattern.
// A pattern matches the full relative path, the basename, or any single
// path segment, so ".git" excludes everything under .git/ and "*.log"
// catches sub/a.log.
func matches(pattern, relPath string) bool {
	if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
		return true
	}
	if ok, err := doublestar.Match(pattern, path.Base(relPath)); err == nil && ok {
		return true
	}
	for _, segment := range strings.Split(relPath, "/") {
		if ok, err := doublestar.Match(pattern, segment); err == nil && ok {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if matches(pattern, relPath) {
			return true
		}
	}
	return false
}

// selectFiles walks root and returns the slash-separated relative paths of
// every regular file that survives the exclude-then-include filter, in walk
// order. Directories matching an exclude pattern are not descended into.
func selectFiles(root string, excludes, includes []string) ([]string, error) {
	var selected []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matchesAny(excludes, rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matchesAny(excludes, rel) {
			return nil
		}
		if len(includes) > 0 && !matchesAny(includes, rel) {
			return nil
		}
		selected = append(selected, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return selected, nil
}

// mergePatterns appends extra patterns to base, dropping duplicates while
// preserving order.
func mergePatterns(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, pattern := range append(append([]string{}, base...), extra...) {
		if seen[pattern] {
			continue
		}
		seen[pattern] = true
		merged = append(merged, pattern)
	}
	return merged
}
