package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/awendt/warden/internal/hook"
	"github.com/awendt/warden/internal/task"
)

// executeCommand runs the CLI with the given args and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTasksListsTrackedWork(t *testing.T) {
	workDir := t.TempDir()
	t.Chdir(workDir)

	store := task.NewStore(hook.StateDir(workDir))
	if err := store.Write(
		[]task.Record{{Content: "write the parser", Status: task.StatusInProgress}},
		[]task.Record{{Content: "set up repo", Status: task.StatusCompleted}},
	); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := executeCommand(t, "tasks")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"[in_progress] write the parser", "[completed] set up repo"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestTasksEmptyProject(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := executeCommand(t, "tasks")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "no tasks tracked") {
		t.Errorf("output %q", out)
	}
}

func TestTasksSummaryCounts(t *testing.T) {
	workDir := t.TempDir()
	t.Chdir(workDir)

	store := task.NewStore(hook.StateDir(workDir))
	if err := store.Write(
		[]task.Record{
			{Content: "a", Status: task.StatusPending},
			{Content: "b", Status: task.StatusPending},
			{Content: "c", Status: task.StatusInProgress},
		},
		[]task.Record{{Content: "d", Status: task.StatusCompleted}},
	); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := executeCommand(t, "tasks", "summary")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"pending: 2", "in progress: 1", "completed: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
