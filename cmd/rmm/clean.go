// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rmm-cli/internal/shellcheck"
	"rmm-cli/pkg/rmmfile"
)

// cleanCmd removes build outputs from the work directory
var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove build outputs from the project work directory",
	Long: `Remove build outputs from the project work directory.

Deletes intermediate build trees, the artifact output directory, tags,
and the validation report from .rmmp/. The Rmake.toml build spec is
kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCleanCmd,
}

func runCleanCmd(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	if !rmmfile.IsProjectDir(root) {
		return fmt.Errorf("'%s' is not a project directory", root)
	}

	spec, err := rmmfile.LoadBuildSpec(root)
	if err != nil {
		return err
	}

	workDir := rmmfile.WorkDir(root)
	targets := []string{
		filepath.Join(workDir, "build"),
		filepath.Join(workDir, "source-build"),
		filepath.Join(workDir, "tags"),
		filepath.Join(workDir, shellcheck.ReportFile),
	}
	outDir := spec.Build.OutputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(workDir, outDir)
	}
	targets = append(targets, outDir)

	removed := 0
	for _, target := range targets {
		if _, err := os.Stat(target); err != nil {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("removing %s: %w", target, err)
		}
		removed++
	}

	fmt.Printf("%s Cleaned %d item(s) under %s\n", SuccessStyle.Render("✓"), removed, workDir)
	return nil
}
