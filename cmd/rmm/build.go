// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"rmm-cli/internal/build"
	"rmm-cli/internal/issue"
	"rmm-cli/internal/shellcheck"
	"rmm-cli/pkg/rmmfile"
)

var (
	buildSkipCheck bool
	buildAdvisory  bool

	// buildCmd packages one project
	buildCmd = &cobra.Command{
		Use:   "build [dir]",
		Short: "Package a project into a flashable zip and a source tarball",
		Long: `Package a project into a flashable zip and a source tarball.

Runs the full pipeline: version_code bump, pre_build hooks, shellcheck
validation, archive assembly, post_build hooks, module.prop refresh.
Findings from shellcheck block the build unless --advisory or
--skip-check is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuildCmd,
	}
)

func init() {
	buildCmd.Flags().BoolVar(&buildSkipCheck, "skip-check", false, "do not run shellcheck at all")
	buildCmd.Flags().BoolVar(&buildAdvisory, "advisory", false, "report shellcheck findings without failing the build")
}

func buildPolicy() shellcheck.Policy {
	switch {
	case buildSkipCheck:
		return shellcheck.PolicySkip
	case buildAdvisory:
		return shellcheck.PolicyAdvisory
	default:
		return shellcheck.PolicyBlocking
	}
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	if !rmmfile.IsProjectDir(root) {
		return issue.NewErrorContext().
			WithOperation("load project manifest").
			WithResource(rmmfile.ProjectManifestPath(root)).
			WithSuggestion("Run 'rmm init' to create a project here").
			BuildError()
	}

	result, err := build.New(root).Build(cmd.Context(), build.Options{Policy: buildPolicy()})
	if err != nil {
		var vErr *shellcheck.ValidationFailureError
		if errors.As(err, &vErr) {
			fmt.Println(ErrorStyle.Render("✗") + " " + err.Error())
			fmt.Println(SubtitleStyle.Render("See .rmmp/" + shellcheck.ReportFile + " for details, or rerun with --advisory"))
			return &ExitError{Code: 1, Err: err}
		}
		return err
	}

	fmt.Printf("%s Built %s (version_code %s)\n", SuccessStyle.Render("✓"), CmdStyle.Render(filepath.Base(root)), result.VersionCode)
	fmt.Printf("  zip:    %s\n", result.Artifacts.Zip)
	fmt.Printf("  source: %s\n", result.Artifacts.Source)
	return nil
}
