package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var installYes bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register warden's hook handlers in .claude/settings.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		path := filepath.Join(cwd, ".claude", "settings.json")

		// Confirm before touching the settings file, but only when a human
		// is actually on the other end.
		if !installYes && term.IsTerminal(os.Stdin.Fd()) {
			fmt.Printf("Register warden hooks in %s? [y/N] ", path)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("aborted")
				return nil
			}
		}

		if err := installHooks(path); err != nil {
			return err
		}
		cmd.Printf("Hooks registered in %s\n", path)
		return nil
	},
}

// hookEntry mirrors one command registration in the host's settings file.
type hookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

type hookMatcher struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []hookEntry `json:"hooks"`
}

// installHooks merges one registration per event kind into the settings
// file, preserving everything else in it. Existing registrations round-trip
// as raw JSON so fields this tool does not know about (matchers, timeouts)
// survive untouched.
func installHooks(path string) error {
	settings := map[string]json.RawMessage{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	hooks := map[string][]json.RawMessage{}
	if raw, ok := settings["hooks"]; ok {
		if err := json.Unmarshal(raw, &hooks); err != nil {
			return fmt.Errorf("parsing hooks section of %s: %w", path, err)
		}
	}

	for _, h := range hookEvents {
		command := "warden hook " + h.use
		if hasCommand(hooks[string(h.kind)], command) {
			continue
		}
		entry, err := json.Marshal(hookMatcher{
			Hooks: []hookEntry{{Type: "command", Command: command}},
		})
		if err != nil {
			return err
		}
		hooks[string(h.kind)] = append(hooks[string(h.kind)], entry)
	}

	raw, err := json.Marshal(hooks)
	if err != nil {
		return err
	}
	settings["hooks"] = raw

	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

// hasCommand inspects raw registrations without re-encoding them.
func hasCommand(matchers []json.RawMessage, command string) bool {
	for _, raw := range matchers {
		var m hookMatcher
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		for _, h := range m.Hooks {
			if h.Command == command {
				return true
			}
		}
	}
	return false
}

func init() {
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(installCmd)
}
