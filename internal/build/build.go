// SPDX-License-Identifier: MPL-2.0

// Package build runs the packaging pipeline for a single project.
//
// The pipeline is linear and stops at the first failing stage: load the
// manifest and build spec, bump and persist version_code, run pre_build
// hooks, validate shell scripts, assemble the zip and source tarball, run
// post_build hooks, then rewrite module.prop. The bump is persisted before
// any hook or archive work so a failed build still advances version_code.
package build

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"rmm-cli/internal/archive"
	"rmm-cli/internal/runner"
	"rmm-cli/internal/shellcheck"
	"rmm-cli/pkg/rmmfile"
)

type (
	// Options scope one build invocation.
	Options struct {
		// Policy controls how validation findings are handled. The zero
		// value is advisory; callers pass PolicyBlocking for the default
		// command behavior and PolicySkip to bypass the checker entirely.
		Policy shellcheck.Policy
	}

	// Result reports what one build produced.
	Result struct {
		VersionCode string
		Artifacts   *archive.Artifacts
		Report      *shellcheck.Report
	}

	// Orchestrator drives the pipeline for the project rooted at Root.
	Orchestrator struct {
		Root string

		gate   *shellcheck.Gate
		logger *log.Logger
	}
)

// New returns an Orchestrator for the project rooted at root.
func New(root string) *Orchestrator {
	return &Orchestrator{
		Root:   root,
		gate:   shellcheck.NewGate(),
		logger: log.WithPrefix("build"),
	}
}

// Build runs the full pipeline and returns what it produced. On failure the
// returned Result still carries whatever stages completed.
func (o *Orchestrator) Build(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	desc, err := rmmfile.LoadProject(o.Root)
	if err != nil {
		return result, err
	}
	spec, err := rmmfile.LoadBuildSpec(o.Root)
	if err != nil {
		return result, err
	}

	bumped, err := rmmfile.BumpVersionCode(desc.VersionCode)
	if err != nil {
		return result, &rmmfile.ConfigError{Path: rmmfile.ProjectManifestPath(o.Root), Err: err}
	}
	desc.VersionCode = bumped
	if err := rmmfile.SaveProject(o.Root, desc); err != nil {
		return result, err
	}
	result.VersionCode = bumped
	o.logger.Info("building", "id", desc.ID, "version", desc.Version, "version_code", bumped)

	run := runner.New(o.Root)
	if err := run.RunAll(ctx, spec.Build.PreBuild); err != nil {
		return result, fmt.Errorf("pre_build hook: %w", err)
	}

	if opts.Policy != shellcheck.PolicySkip {
		report, gateErr := o.gate.Evaluate(ctx, o.Root, opts.Policy)
		if report != nil {
			result.Report = report
			if err := shellcheck.WriteReport(o.Root, report); err != nil {
				return result, err
			}
		}
		if gateErr != nil {
			return result, gateErr
		}
	}

	artifacts, err := archive.NewAssembler(o.Root, spec, desc).Assemble()
	if err != nil {
		return result, err
	}
	result.Artifacts = artifacts

	if err := run.RunAll(ctx, spec.Build.PostBuild); err != nil {
		return result, fmt.Errorf("post_build hook: %w", err)
	}

	if err := rmmfile.RefreshModuleProp(o.Root, desc); err != nil {
		return result, err
	}
	o.logger.Info("build complete", "zip", artifacts.Zip, "source", artifacts.Source)
	return result, nil
}
