// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for rmm.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"rmm-cli/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "rmm",
		Short: "A build orchestrator for device module projects",
		Long: TitleStyle.Render("rmm") + SubtitleStyle.Render(" - A build orchestrator for device module projects") + `

rmm manages root module projects on your workstation: it discovers
projects, keeps a central registry of them, and packages each one into
a flashable zip plus a source tarball.

Projects are described by an 'rmmproject.toml' manifest; build behavior
lives in '.rmmp/Rmake.toml'.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'rmm init my-module' to scaffold a project
  2. Edit rmmproject.toml and add your module files
  3. Run 'rmm build' to produce the artifacts

` + SubtitleStyle.Render("Examples:") + `
  rmm init my-module        Scaffold a new project
  rmm sync ~/projects       Discover projects and refresh the registry
  rmm build                 Package the project in the current directory
  rmm check                 Validate shell scripts with shellcheck
  rmm publish               Create a GitHub release with the artifacts`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// fang overrides rootCmd.Version, so the version string goes through
	// fang.WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		printErrorGuidance(os.Stderr, err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func initLogging() {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// formatErrorForDisplay formats an error for user display.
// ActionableError values render through Format; in verbose mode that
// includes the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// projectRoot resolves the optional positional path argument of the
// project-scoped commands. No argument means the current directory.
func projectRoot(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := absPath(dir)
	if err != nil {
		return "", err
	}
	return abs, nil
}
