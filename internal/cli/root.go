// Package cli implements the weave command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "Domain-aware project planner and execution orchestrator",
	Long: `weave turns a raw feature request into an audited, decomposed task
graph and drives it through specialist/reviewer/gate execution to a
closing integration check.

A request is identified by its raw text, the same string passed to every
subcommand below.

Quick start:
  weave run "add OAuth login"        Intake, audit, decompose, and execute
  weave status "add OAuth login"     Show current phase and task states
  weave watch "add OAuth login"      Live-refreshing status view
  weave approve "add OAuth login"    Resolve a pending human_check
  weave brainstorm "add OAuth login" Resolve pending risk-flagged tasks
  weave why "add OAuth login" T1     Explain why task T1 is in its current state`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .weave/config.yaml)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newApproveCmd())
	rootCmd.AddCommand(newBrainstormCmd())
	rootCmd.AddCommand(newWhyCmd())
}

func stderrf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
