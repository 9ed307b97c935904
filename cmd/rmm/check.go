// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rmm-cli/internal/issue"
	"rmm-cli/internal/shellcheck"
	"rmm-cli/pkg/rmmfile"
)

var (
	checkAdvisory bool

	// checkCmd validates the project's shell scripts
	checkCmd = &cobra.Command{
		Use:   "check [dir]",
		Short: "Validate shell scripts with shellcheck",
		Long: `Validate shell scripts with shellcheck.

Runs shellcheck over every .sh file in the project and writes the
report to .rmmp/shellcheck.json. A missing shellcheck binary skips
validation and counts as a pass. Findings fail the command unless
--advisory is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheckCmd,
	}

	// testCmd is the advisory validation entry point: findings are reported
	// as warnings and never fail the command.
	testCmd = &cobra.Command{
		Use:   "test [dir]",
		Short: "Validate shell scripts without failing on findings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkProject(cmd, args, shellcheck.PolicyAdvisory)
		},
	}
)

func init() {
	checkCmd.Flags().BoolVar(&checkAdvisory, "advisory", false, "report findings without failing")
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	policy := shellcheck.PolicyBlocking
	if checkAdvisory {
		policy = shellcheck.PolicyAdvisory
	}
	return checkProject(cmd, args, policy)
}

func checkProject(cmd *cobra.Command, args []string, policy shellcheck.Policy) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}

	gate := shellcheck.NewGate()
	report, gateErr := gate.Evaluate(cmd.Context(), root, policy)
	if report == nil {
		return gateErr
	}
	if rmmfile.IsProjectDir(root) {
		if err := shellcheck.WriteReport(root, report); err != nil {
			return err
		}
	}

	switch {
	case report.Skipped:
		fmt.Println(WarningStyle.Render("!") + " shellcheck not found, validation skipped")
		printIssueGuidance(os.Stdout, issue.ShellcheckNotFoundId)
	case report.AllPassed:
		fmt.Printf("%s %d script(s) checked, no findings\n", SuccessStyle.Render("✓"), len(report.CheckedFiles))
	default:
		fmt.Printf("%s %d finding(s) in %d script(s)\n", ErrorStyle.Render("✗"), len(report.Findings), len(report.CheckedFiles))
		for _, f := range report.Findings {
			fmt.Printf("  %s:%d:%d [%s] SC%d %s\n", f.File, f.Line, f.Column, f.Level, f.Code, f.Message)
		}
	}

	if gateErr != nil {
		return &ExitError{Code: 1, Err: gateErr}
	}
	return nil
}
