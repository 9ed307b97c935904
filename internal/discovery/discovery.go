// SPDX-License-Identifier: EPL-2.0

// Package discovery scans filesystem roots for rmm module projects and
// keeps the registry's id->path map truthful.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"rmm-cli/pkg/rmmfile"
)

// DefaultMaxDepth bounds the scan when the caller does not choose one.
const DefaultMaxDepth = 3

// DiscoveryError records a root that could not be read. Recoverable: the
// scan warns, skips the subtree, and continues over remaining roots.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Found is one discovered project.
type Found struct {
	ID   string
	Path string
}

// Scanner walks filesystem roots looking for project marker files.
type Scanner struct {
	// MaxDepth is how many directory levels below each root are visited.
	// The root itself is depth 0.
	MaxDepth int

	logger *log.Logger
}

// NewScanner returns a Scanner with the given depth bound; depth < 0 means
// DefaultMaxDepth.
func NewScanner(maxDepth int) *Scanner {
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Scanner{
		MaxDepth: maxDepth,
		logger:   log.WithPrefix("discovery"),
	}
}

// Scan walks each root up to MaxDepth deep and returns every directory
// containing the project marker file, in walk order. Unreadable roots are
// skipped with a warning rather than aborting the scan. Hidden working
// directories (.rmmp) and VCS metadata are never candidates and are not
// descended into.
func (s *Scanner) Scan(roots []string) []Found {
	var found []Found
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			s.logger.Warn("skipping unresolvable root", "root", root, "err", err)
			continue
		}
		found = append(found, s.scanRoot(abs)...)
	}
	return found
}

func (s *Scanner) scanRoot(root string) []Found {
	var found []Found
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable path",
				"err", &DiscoveryError{Root: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		name := d.Name()
		if path != root && (name == rmmfile.WorkDirName || name == ".git") {
			return fs.SkipDir
		}

		depth := pathDepth(root, path)
		if depth > s.MaxDepth {
			return fs.SkipDir
		}

		if rmmfile.IsProjectDir(path) {
			desc, err := rmmfile.LoadProject(path)
			if err != nil {
				s.logger.Warn("skipping project with unreadable manifest", "path", path, "err", err)
				return nil
			}
			found = append(found, Found{ID: desc.ID, Path: path})
			// A project does not nest further projects.
			return fs.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		s.logger.Warn("scan aborted for root", "root", root, "err", walkErr)
	}
	return found
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// Apply merges discoveries into the registry's project map. When an id is
// already mapped to a different path, the newly discovered path wins; that
// is an informational event, never an error.
func Apply(projects map[string]string, found []Found) {
	logger := log.WithPrefix("discovery")
	for _, f := range found {
		if prev, ok := projects[f.ID]; ok && prev != f.Path {
			logger.Info("project id re-mapped", "id", f.ID, "old", prev, "new", f.Path)
		}
		projects[f.ID] = f.Path
	}
}

// Prune removes every registry entry whose path no longer exists or no
// longer contains the marker file. It runs over the entire map regardless
// of which roots were scanned, and returns the removed ids.
func Prune(projects map[string]string) []string {
	var removed []string
	for id, path := range projects {
		if !stale(path) {
			continue
		}
		delete(projects, id)
		removed = append(removed, id)
	}
	return removed
}

func stale(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return true
	}
	return !rmmfile.IsProjectDir(path)
}
