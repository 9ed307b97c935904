// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rmm-cli/pkg/rmmfile"
)

var (
	initID      string
	initName    string
	initVersion string

	// initCmd scaffolds a new project directory
	initCmd = &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a new module project",
		Long: `Scaffold a new module project.

Creates rmmproject.toml, a default .rmmp/Rmake.toml, module.prop, and a
starter customize.sh in the target directory, then registers the project
in the central registry. The directory defaults to the current one; a
relative or absent directory is created as needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInitCmd,
	}
)

func init() {
	initCmd.Flags().StringVar(&initID, "id", "", "project id (default: directory name)")
	initCmd.Flags().StringVar(&initName, "name", "", "display name (default: project id)")
	initCmd.Flags().StringVar(&initVersion, "version", "0.1.0", "initial semantic version")
}

const starterCustomize = `#!/system/bin/sh
# Installed by the module manager during flash.

ui_print "- Installing ${MODPATH##*/}"
`

const starterService = `#!/system/bin/sh
# Runs in late_start service mode once the device has booted.

MODDIR=${0%/*}
`

func runInitCmd(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	if rmmfile.IsProjectDir(root) {
		return fmt.Errorf("'%s' already holds a project. Edit %s instead", root, rmmfile.MarkerFile)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	id := initID
	if id == "" {
		id = filepath.Base(root)
	}
	name := initName
	if name == "" {
		name = id
	}

	regRoot, reg, err := openRegistry()
	if err != nil {
		return err
	}

	desc := &rmmfile.ProjectDescriptor{
		ID:                  id,
		Name:                name,
		Version:             initVersion,
		VersionCode:         rmmfile.InitialVersionCode,
		RequiresToolVersion: Version,
		Authors:             []rmmfile.Author{{Name: reg.Username, Email: reg.Email}},
	}
	if err := desc.Validate(); err != nil {
		return err
	}
	if err := rmmfile.SaveProject(root, desc); err != nil {
		return err
	}
	if err := rmmfile.SaveBuildSpec(root, rmmfile.DefaultBuildSpec()); err != nil {
		return err
	}
	if err := rmmfile.RefreshModuleProp(root, desc); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(root, "system"), 0o755); err != nil {
		return fmt.Errorf("creating system directory: %w", err)
	}
	stubs := map[string]string{
		"customize.sh": starterCustomize,
		"service.sh":   starterService,
	}
	for name, content := range stubs {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o755); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	reg.Projects[id] = root
	if err := saveRegistry(regRoot, reg); err != nil {
		return err
	}

	fmt.Printf("%s Created project %s at %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(id), root)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Edit rmmproject.toml to describe your module")
	fmt.Println("  2. Put module files under system/ and scripts next to customize.sh")
	fmt.Println("  3. Run 'rmm build' to produce the flashable zip")

	return nil
}
