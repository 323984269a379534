package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/awendt/warden/internal/audit"
	"github.com/awendt/warden/internal/decision"
	"github.com/awendt/warden/internal/event"
	"github.com/awendt/warden/internal/hook"
)

// hookEvents maps handler subcommand names to the event kind each one
// parses. The host's settings file registers one subcommand per event.
var hookEvents = []struct {
	use  string
	kind event.Kind
}{
	{"pre-tool-use", event.KindPreToolUse},
	{"post-tool-use", event.KindPostToolUse},
	{"user-prompt-submit", event.KindUserPromptSubmit},
	{"stop", event.KindStop},
	{"subagent-stop", event.KindSubagentStop},
	{"pre-compact", event.KindPreCompact},
	{"session-start", event.KindSessionStart},
	{"session-end", event.KindSessionEnd},
	{"notification", event.KindNotification},
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Hook handlers invoked by the assistant's hook system",
	Args:  cobra.NoArgs,
}

func init() {
	// Handler subcommands are called by the hook system, not by people.
	// Hidden to keep the help output focused.
	for _, h := range hookEvents {
		kind := h.kind
		sub := &cobra.Command{
			Use:    h.use,
			Short:  fmt.Sprintf("Handle a %s event", kind),
			Hidden: true,
			Args:   cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				os.Exit(runHook(kind, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()))
			},
		}
		hookCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(hookCmd)
}

// runHook is one full engine invocation: parse the payload, run the engine,
// signal exactly one decision. Every failure collapses to the permissive
// default so a broken engine never disrupts the host.
func runHook(kind event.Kind, stdin io.Reader, stdout, stderr io.Writer) int {
	sig := &decision.Signaler{Stdout: stdout, Stderr: stderr, HookEventName: string(kind)}

	var runner *hook.Runner
	d := decision.Guard(func() (decision.Decision, error) {
		p, err := event.Parse(kind, stdin)
		if err != nil {
			return decision.Decision{}, err
		}
		runner = hook.NewRunner(p.CWD)
		return runner.Run(p)
	}, func(err error) {
		// Short human diagnostic; the assistant channel stays reserved for
		// policy messages.
		fmt.Fprintf(stderr, "warden: %v\n", err)
		if runner != nil {
			runner.Audit().Error("engine", "invocation failed open", "event", string(kind), "error", err.Error())
			return
		}
		// Payload never parsed, so no working directory: fall back to the
		// process cwd for the fault record.
		log := audit.Open(hook.StateDir(""), true)
		defer log.Close()
		log.Error("engine", "invocation failed open", "event", string(kind), "error", err.Error())
	})
	if runner != nil {
		defer runner.Close()
	}
	return sig.Emit(d)
}
