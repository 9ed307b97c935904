// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"rmm-cli/internal/config"
)

// configCmd manages the central registry settings
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage rmm configuration",
	Long: `Manage rmm configuration.

The registry lives at $RMM_ROOT/meta.toml (default ~/data/adb/.rmm).
Fields can also be overridden per invocation through RMM_* environment
variables, e.g. RMM_TOKEN.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "get <field>",
		Short: "Print one registry field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := openRegistry()
			if err != nil {
				return err
			}
			value, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <field> <value>",
		Short: "Set one registry field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			regRoot, reg, err := openRegistry()
			if err != nil {
				return err
			}
			if err := reg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := saveRegistry(regRoot, reg); err != nil {
				return err
			}
			fmt.Printf("%s %s updated\n", SuccessStyle.Render("✓"), args[0])
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the registry and all known projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			regRoot, reg, err := openRegistry()
			if err != nil {
				return err
			}
			fmt.Printf("registry: %s\n", config.RegistryPath(regRoot))
			fmt.Printf("username: %s\n", reg.Username)
			fmt.Printf("email:    %s\n", reg.Email)
			fmt.Printf("version:  %s\n", reg.Version)
			token := "(unset)"
			if reg.Token != "" {
				token = "(set)"
			}
			fmt.Printf("token:    %s\n", token)

			if len(reg.Projects) == 0 {
				fmt.Println(SubtitleStyle.Render("No projects registered. Run 'rmm sync <dir>' to discover some."))
				return nil
			}
			ids := make([]string, 0, len(reg.Projects))
			for id := range reg.Projects {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			fmt.Println("projects:")
			for _, id := range ids {
				fmt.Printf("  %s  %s\n", CmdStyle.Render(id), reg.Projects[id])
			}
			return nil
		},
	})
}
