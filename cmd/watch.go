package cmd

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/awendt/warden/internal/task"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the task list and reprint the summary on every change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cwdTaskStore()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		printSummary(cmd, store)
		return watchTasks(ctx, cmd, store)
	},
}

// watchTasks blocks on fsnotify events for the task artifact until ctx is
// cancelled. The store writes via rename, so Create events matter as much as
// Write events.
func watchTasks(ctx context.Context, cmd *cobra.Command, store *task.Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: the artifact itself is replaced on every write,
	// which would invalidate a watch on the file.
	if err := watcher.Add(filepath.Dir(store.Path())); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != store.Path() {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				printSummary(cmd, store)
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; keep watching.
		}
	}
}

func printSummary(cmd *cobra.Command, store *task.Store) {
	counts, err := store.Summary()
	if err != nil {
		cmd.PrintErrf("warden: %v\n", err)
		return
	}
	cmd.Printf("pending %d | in progress %d | completed %d\n",
		counts.Pending, counts.InProgress, counts.Completed)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
