// SPDX-License-Identifier: MPL-2.0

// Package syncer keeps the registry and every known project current.
//
// A sync always runs discovery and the full prune pass first. Unless scoped
// to projects-only it then walks every registered project for bookkeeping:
// logging the declared dependency list, refreshing requires_tool_version
// against the running tool, bumping version_code, and rewriting
// module.prop. The bump happens once per invocation and is deliberately not
// idempotent; repeated syncs keep incrementing.
package syncer

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"

	"rmm-cli/internal/config"
	"rmm-cli/internal/discovery"
	"rmm-cli/pkg/rmmfile"
)

type (
	// Options scope one sync invocation.
	Options struct {
		// Roots are the directories to scan. Empty means no new discovery;
		// prune and bookkeeping still run.
		Roots []string
		// MaxDepth bounds the scan; negative picks the default.
		MaxDepth int
		// ProjectsOnly stops after discovery and prune.
		ProjectsOnly bool
		// ToolVersion is the running rmm version, used for the
		// requires_tool_version refresh.
		ToolVersion string
	}

	// Summary reports what one sync did.
	Summary struct {
		Discovered int
		Pruned     []string
		Updated    []string
	}

	// Syncer runs the sync pipeline against a loaded registry.
	Syncer struct {
		logger *log.Logger
	}
)

// New returns a ready Syncer.
func New() *Syncer {
	return &Syncer{logger: log.WithPrefix("sync")}
}

// Sync mutates reg in place. The caller owns loading the registry before
// and saving it after; a bookkeeping failure aborts remaining projects but
// the discovery and prune results in reg are still worth persisting.
func (s *Syncer) Sync(ctx context.Context, reg *config.Registry, opts Options) (*Summary, error) {
	summary := &Summary{}

	if len(opts.Roots) > 0 {
		found := discovery.NewScanner(opts.MaxDepth).Scan(opts.Roots)
		discovery.Apply(reg.Projects, found)
		summary.Discovered = len(found)
	}

	summary.Pruned = discovery.Prune(reg.Projects)
	for _, id := range summary.Pruned {
		s.logger.Info("pruned stale registry entry", "id", id)
	}

	if opts.ProjectsOnly {
		return summary, nil
	}

	// Deterministic order keeps logs and failures reproducible.
	ids := make([]string, 0, len(reg.Projects))
	for id := range reg.Projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("sync canceled: %w", err)
		}
		if err := s.refreshProject(id, reg.Projects[id], opts.ToolVersion); err != nil {
			return summary, err
		}
		summary.Updated = append(summary.Updated, id)
	}
	return summary, nil
}

// refreshProject performs per-project bookkeeping: dependency listing,
// requires_tool_version refresh, version_code bump, module.prop rewrite.
func (s *Syncer) refreshProject(id, path, toolVersion string) error {
	desc, err := rmmfile.LoadProject(path)
	if err != nil {
		return err
	}

	for _, dep := range desc.Dependencies {
		s.logger.Debug("declared dependency", "project", id, "name", dep.Name, "version", dep.Version)
	}

	if refreshed := refreshToolVersion(desc.RequiresToolVersion, toolVersion); refreshed != desc.RequiresToolVersion {
		s.logger.Debug("requires_tool_version refreshed",
			"project", id, "old", desc.RequiresToolVersion, "new", refreshed)
		desc.RequiresToolVersion = refreshed
	}

	bumped, err := rmmfile.BumpVersionCode(desc.VersionCode)
	if err != nil {
		return &rmmfile.ConfigError{Path: rmmfile.ProjectManifestPath(path), Err: err}
	}
	desc.VersionCode = bumped

	if err := rmmfile.SaveProject(path, desc); err != nil {
		return err
	}
	return rmmfile.RefreshModuleProp(path, desc)
}

// refreshToolVersion returns the higher of the recorded and running tool
// versions, compared as semver. An unparseable running version leaves the
// recorded one alone.
func refreshToolVersion(recorded, tool string) string {
	if tool == "" {
		return recorded
	}
	recordedV, toolV := canonical(recorded), canonical(tool)
	if toolV == "" {
		return recorded
	}
	if recordedV == "" {
		return tool
	}
	if semver.Compare(recordedV, toolV) >= 0 {
		return recorded
	}
	return tool
}

func canonical(v string) string {
	if v == "" {
		return ""
	}
	if v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
