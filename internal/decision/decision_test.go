package decision_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/awendt/warden/internal/decision"
)

// TestExitCodeMapping verifies the verdict → status code contract.
func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		verdict decision.Verdict
		code    int
	}{
		{decision.Allow, decision.CodeAllow},
		{decision.Warn, decision.CodeWarn},
		{decision.Block, decision.CodeBlock},
		{decision.ForceContinue, decision.CodeBlock},
	}
	for _, tt := range tests {
		d := decision.Decision{Verdict: tt.verdict}
		if got := d.ExitCode(); got != tt.code {
			t.Errorf("%s: exit code %d, want %d", tt.verdict, got, tt.code)
		}
	}
}

// TestEmitChannels verifies message routing per verdict.
func TestEmitChannels(t *testing.T) {
	t.Run("allow is silent", func(t *testing.T) {
		var out, errW bytes.Buffer
		sig := &decision.Signaler{Stdout: &out, Stderr: &errW}
		code := sig.Emit(decision.Allowed())
		if code != 0 || out.Len() != 0 || errW.Len() != 0 {
			t.Errorf("code=%d stdout=%q stderr=%q", code, out.String(), errW.String())
		}
	})

	t.Run("warn goes to stderr", func(t *testing.T) {
		var out, errW bytes.Buffer
		sig := &decision.Signaler{Stdout: &out, Stderr: &errW}
		code := sig.Emit(decision.Decision{Verdict: decision.Warn, Reason: "careful"})
		if code != decision.CodeWarn {
			t.Errorf("code=%d, want %d", code, decision.CodeWarn)
		}
		if !strings.Contains(errW.String(), "careful") || out.Len() != 0 {
			t.Errorf("stdout=%q stderr=%q", out.String(), errW.String())
		}
	})

	t.Run("block carries the reason", func(t *testing.T) {
		var out, errW bytes.Buffer
		sig := &decision.Signaler{Stdout: &out, Stderr: &errW}
		code := sig.Emit(decision.Decision{Verdict: decision.Block, Reason: "destructive delete"})
		if code != decision.CodeBlock {
			t.Errorf("code=%d, want %d", code, decision.CodeBlock)
		}
		if !strings.Contains(errW.String(), "destructive delete") {
			t.Errorf("stderr=%q", errW.String())
		}
	})

	t.Run("context injection on allow", func(t *testing.T) {
		var out, errW bytes.Buffer
		sig := &decision.Signaler{Stdout: &out, Stderr: &errW, HookEventName: "SessionStart"}
		code := sig.Emit(decision.Decision{Verdict: decision.Allow, Context: "open tasks: 2"})
		if code != 0 {
			t.Errorf("code=%d, want 0", code)
		}
		var parsed struct {
			HookSpecificOutput struct {
				HookEventName     string `json:"hookEventName"`
				AdditionalContext string `json:"additionalContext"`
			} `json:"hookSpecificOutput"`
		}
		if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
			t.Fatalf("stdout is not the expected JSON: %v (%q)", err, out.String())
		}
		if parsed.HookSpecificOutput.HookEventName != "SessionStart" ||
			parsed.HookSpecificOutput.AdditionalContext != "open tasks: 2" {
			t.Errorf("parsed %+v", parsed)
		}
	})
}

// TestEmitExactlyOnce verifies that repeated Emit calls do not produce a
// second signal.
func TestEmitExactlyOnce(t *testing.T) {
	var out, errW bytes.Buffer
	sig := &decision.Signaler{Stdout: &out, Stderr: &errW}

	first := sig.Emit(decision.Decision{Verdict: decision.Block, Reason: "no"})
	size := errW.Len()
	second := sig.Emit(decision.Decision{Verdict: decision.Warn, Reason: "again"})

	if first != second {
		t.Errorf("second Emit changed the code: %d vs %d", first, second)
	}
	if errW.Len() != size {
		t.Errorf("second Emit wrote again: %q", errW.String())
	}
}

// TestGuardFailsOpen verifies the single fail-open adapter: any propagated
// error collapses to Allow and reaches the diagnostic callback.
func TestGuardFailsOpen(t *testing.T) {
	boom := errors.New("storage unavailable")
	var seen error
	d := decision.Guard(func() (decision.Decision, error) {
		return decision.Decision{Verdict: decision.Block, Reason: "should be discarded"}, boom
	}, func(err error) { seen = err })

	if d.Verdict != decision.Allow {
		t.Errorf("verdict %s, want allow", d.Verdict)
	}
	if !errors.Is(seen, boom) {
		t.Errorf("onErr saw %v, want %v", seen, boom)
	}
}

// TestGuardPassesThroughDecisions verifies that Guard never weakens an
// error-free decision.
func TestGuardPassesThroughDecisions(t *testing.T) {
	d := decision.Guard(func() (decision.Decision, error) {
		return decision.Decision{Verdict: decision.Block, Reason: "matched"}, nil
	}, nil)
	if d.Verdict != decision.Block || d.Reason != "matched" {
		t.Errorf("got %+v", d)
	}
}
