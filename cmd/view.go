package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/awendt/warden/internal/hook"
	"github.com/awendt/warden/internal/snapshot"
	"github.com/awendt/warden/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse the task list and snapshot log in a TUI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cwdTaskStore()
		if err != nil {
			return err
		}
		incomplete, completed, err := store.Read()
		if err != nil {
			return err
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		snaps, err := snapshot.NewManager(hook.StateDir(cwd)).Snapshots()
		if err != nil {
			return err
		}

		p := tea.NewProgram(tui.New(incomplete, completed, snaps), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running viewer: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
