package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Policy, task-state and snapshot engine for AI coding assistant hooks",
	Long: `warden is invoked by the assistant's hook system once per lifecycle
event. It validates proposed actions against configurable dangerous/warning
patterns, keeps a durable task list in sync with the assistant's tracker,
and snapshots session state before destructive transitions.

State lives under .warden/ in the project working directory.`,
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
