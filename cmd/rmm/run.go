// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"rmm-cli/internal/runner"
	"rmm-cli/pkg/rmmfile"
)

var (
	// runCmd executes a named script from the manifest
	runCmd = &cobra.Command{
		Use:   "run [script]",
		Short: "Run a script declared in rmmproject.toml",
		Long: `Run a script declared in rmmproject.toml.

Scripts live in the manifest's [scripts] table and execute through the
platform shell in the project directory. Without an argument the
available scripts are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunCmd,
	}
)

func runRunCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listScripts()
	}
	return runScript(cmd, args[0])
}

func listScripts() error {
	root, err := projectRoot(nil)
	if err != nil {
		return err
	}
	desc, err := rmmfile.LoadProject(root)
	if err != nil {
		return err
	}
	if len(desc.Scripts) == 0 {
		fmt.Println(SubtitleStyle.Render("No scripts declared. Add a [scripts] table to rmmproject.toml."))
		return nil
	}

	names := make([]string, 0, len(desc.Scripts))
	for name := range desc.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println(SubtitleStyle.Render("Available scripts:"))
	for _, name := range names {
		fmt.Printf("  %s  %s\n", CmdStyle.Render(name), desc.Scripts[name])
	}
	return nil
}

func runScript(cmd *cobra.Command, name string) error {
	root, err := projectRoot(nil)
	if err != nil {
		return err
	}
	desc, err := rmmfile.LoadProject(root)
	if err != nil {
		return err
	}
	command, ok := desc.Scripts[name]
	if !ok {
		return fmt.Errorf("no script '%s' in %s. Run 'rmm run' to list scripts", name, rmmfile.MarkerFile)
	}

	if err := runner.New(root).Run(cmd.Context(), command); err != nil {
		return &ExitError{Code: runner.ExitCode(err), Err: err}
	}
	return nil
}
