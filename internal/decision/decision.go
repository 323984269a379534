// Package decision defines the engine's single-invocation output and the
// mapping onto the host's exit-code contract.
package decision

// Verdict is the outcome of one engine invocation.
type Verdict int

const (
	// Allow lets the triggering action proceed with no message.
	Allow Verdict = iota
	// Warn lets the action proceed but attaches a cautionary message for
	// the human supervisor.
	Warn
	// Block prevents the action and routes the reason to the assistant.
	Block
	// ForceContinue is the stop-enforcement variant of Block: the failure
	// signal instructs the assistant to keep working instead of reporting
	// an error.
	ForceContinue
)

func (v Verdict) String() string {
	switch v {
	case Warn:
		return "warn"
	case Block:
		return "block"
	case ForceContinue:
		return "force_continue"
	default:
		return "allow"
	}
}

// Host exit codes. The host treats 0 as success, 1 as a non-gating warning
// whose stderr is shown to the human, and 2 as a blocking failure whose
// stderr is fed back to the assistant.
const (
	CodeAllow = 0
	CodeWarn  = 1
	CodeBlock = 2
)

// Decision is produced exactly once per invocation.
type Decision struct {
	Verdict Verdict
	// Reason is the human-readable explanation attached to Warn, Block and
	// ForceContinue outcomes.
	Reason string
	// Context is machine-readable text injected back into the assistant's
	// context on Allow (session-start context injection).
	Context string
}

// Allowed is the zero-message permissive decision.
func Allowed() Decision {
	return Decision{Verdict: Allow}
}

// ExitCode maps the verdict onto the host contract.
func (d Decision) ExitCode() int {
	switch d.Verdict {
	case Warn:
		return CodeWarn
	case Block, ForceContinue:
		return CodeBlock
	default:
		return CodeAllow
	}
}

// Guard runs fn and collapses any propagated error into the permissive
// default. It is the one place where the fail-open policy lives: a broken
// engine must never be more disruptive than no engine at all. onErr, if
// non-nil, receives the error for diagnostics.
func Guard(fn func() (Decision, error), onErr func(error)) Decision {
	d, err := fn()
	if err != nil {
		if onErr != nil {
			onErr(err)
		}
		return Allowed()
	}
	return d
}
