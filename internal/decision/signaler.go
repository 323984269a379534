package decision

import (
	"encoding/json"
	"fmt"
	"io"
)

// hookOutput is the JSON the host expects on stdout when a hook wants to
// inject additional context into the session.
type hookOutput struct {
	HookSpecificOutput *hookSpecific `json:"hookSpecificOutput,omitempty"`
}

type hookSpecific struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

// Signaler translates a Decision into the external control contract: one
// exit code plus at most one channel-routed message. Stdout is read by the
// host (machine channel on success), stderr by the human supervisor on
// warnings and by the assistant on blocking failures.
type Signaler struct {
	Stdout io.Writer
	Stderr io.Writer
	// HookEventName is echoed in context-injection output so the host can
	// attribute the injected text.
	HookEventName string

	emitted bool
	code    int
}

// Emit writes the decision's message to the appropriate channel and returns
// the exit code. Exactly one signal is produced per invocation; repeated
// calls return the first code without emitting again.
func (s *Signaler) Emit(d Decision) int {
	if s.emitted {
		return s.code
	}
	s.emitted = true
	s.code = d.ExitCode()

	switch d.Verdict {
	case Warn:
		if d.Reason != "" {
			fmt.Fprintf(s.Stderr, "warden: warning: %s\n", d.Reason)
		}
	case Block:
		fmt.Fprintf(s.Stderr, "warden: blocked: %s\n", d.Reason)
	case ForceContinue:
		fmt.Fprintln(s.Stderr, d.Reason)
	default:
		if d.Context != "" {
			out, err := json.Marshal(hookOutput{HookSpecificOutput: &hookSpecific{
				HookEventName:     s.HookEventName,
				AdditionalContext: d.Context,
			}})
			if err == nil {
				fmt.Fprintln(s.Stdout, string(out))
			}
		}
	}
	return s.code
}
