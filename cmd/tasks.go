package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/awendt/warden/internal/hook"
	"github.com/awendt/warden/internal/task"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show the tracked task list for this project",
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
		if len(incomplete)+len(completed) == 0 {
			cmd.Println("no tasks tracked")
			return nil
		}
		for _, t := range append(incomplete, completed...) {
			cmd.Printf("[%s] %s\n", t.Status, t.Content)
		}
		return nil
	},
}

var tasksSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show task counts by status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cwdTaskStore()
		if err != nil {
			return err
		}
		counts, err := store.Summary()
		if err != nil {
			return err
		}
		cmd.Printf("pending: %d\n", counts.Pending)
		cmd.Printf("in progress: %d\n", counts.InProgress)
		cmd.Printf("completed: %d\n", counts.Completed)
		return nil
	},
}

// cwdTaskStore opens the task store for the current working directory.
func cwdTaskStore() (*task.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return task.NewStore(hook.StateDir(cwd)), nil
}

func init() {
	tasksCmd.AddCommand(tasksSummaryCmd)
	rootCmd.AddCommand(tasksCmd)
}
