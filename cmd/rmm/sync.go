// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rmm-cli/internal/syncer"
)

var (
	syncProjectsOnly bool
	syncMaxDepth     int

	// syncCmd refreshes the registry and every known project
	syncCmd = &cobra.Command{
		Use:   "sync [roots...]",
		Short: "Discover projects and refresh the registry",
		Long: `Discover projects and refresh the registry.

Scans the given roots for project directories, prunes registry entries
whose directories no longer exist, and then refreshes every registered
project: dependency bookkeeping, requires_tool_version, version_code
bump, module.prop. With no roots only the registered projects are
refreshed.`,
		RunE: runSyncCmd,
	}
)

func init() {
	syncCmd.Flags().BoolVar(&syncProjectsOnly, "projects-only", false, "stop after discovery and prune")
	syncCmd.Flags().IntVar(&syncMaxDepth, "max-depth", -1, "directory depth limit for discovery")
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
	roots := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := absPath(arg)
		if err != nil {
			return err
		}
		roots = append(roots, abs)
	}

	regRoot, reg, err := openRegistry()
	if err != nil {
		return err
	}

	summary, syncErr := syncer.New().Sync(cmd.Context(), reg, syncer.Options{
		Roots:        roots,
		MaxDepth:     syncMaxDepth,
		ProjectsOnly: syncProjectsOnly,
		ToolVersion:  Version,
	})
	// Discovery and prune results are worth keeping even when per-project
	// bookkeeping failed partway.
	if summary != nil {
		if err := saveRegistry(regRoot, reg); err != nil {
			return err
		}
	}
	if syncErr != nil {
		return syncErr
	}

	fmt.Printf("%s Synced %d project(s)", SuccessStyle.Render("✓"), len(reg.Projects))
	if summary.Discovered > 0 {
		fmt.Printf(", %d discovered", summary.Discovered)
	}
	if len(summary.Pruned) > 0 {
		fmt.Printf(", %d pruned", len(summary.Pruned))
	}
	fmt.Println()
	return nil
}
