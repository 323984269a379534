// Package event decodes one lifecycle event payload per invocation. The host
// assistant writes a single JSON object to the hook's stdin; the parser
// validates the kind-specific required fields and exposes typed accessors
// for the tool-specific input.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/awendt/warden/internal/task"
)

// Kind enumerates the lifecycle event categories delivered by the host.
// The values match the host's hook event names.
type Kind string

const (
	KindPreToolUse       Kind = "PreToolUse"
	KindPostToolUse      Kind = "PostToolUse"
	KindUserPromptSubmit Kind = "UserPromptSubmit"
	KindStop             Kind = "Stop"
	KindSubagentStop     Kind = "SubagentStop"
	KindPreCompact       Kind = "PreCompact"
	KindSessionStart     Kind = "SessionStart"
	KindSessionEnd       Kind = "SessionEnd"
	KindNotification     Kind = "Notification"
)

// ErrMalformedInput marks payloads that are missing or undecodable. Parsing
// failure is never fatal to the host: callers convert it into the
// permissive default decision.
var ErrMalformedInput = errors.New("malformed hook input")

// MaxPayloadBytes caps the stdin read. Hook payloads are small JSON objects;
// 1 MiB is generous headroom that prevents unbounded allocation.
const MaxPayloadBytes = 1 << 20

// Payload is the typed event for one invocation, immutable once parsed.
type Payload struct {
	Kind Kind `json:"-"`

	SessionID      string          `json:"session_id"`
	CWD            string          `json:"cwd"`
	HookEventName  string          `json:"hook_event_name"`
	TranscriptPath string          `json:"transcript_path"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	Prompt         string          `json:"prompt"`
	Message        string          `json:"message"`
	Source         string          `json:"source"`
	// Reason is why the session ended (clear, logout, exit, ...).
	Reason string `json:"reason"`
	// StopHookActive is set by the host when a stop hook already forced a
	// continuation, so the engine does not loop the session forever.
	StopHookActive bool `json:"stop_hook_active"`
}

// Parse reads one payload from r (bounded by MaxPayloadBytes), decodes it,
// and validates the fields the given kind requires. The payload's own
// hook_event_name is advisory; kind is fixed by the subcommand the host
// invoked.
func Parse(kind Kind, r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading stdin: %v", ErrMalformedInput, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedInput)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	p.Kind = kind

	switch kind {
	case KindPreToolUse, KindPostToolUse:
		if p.ToolName == "" {
			return nil, fmt.Errorf("%w: %s payload missing tool_name", ErrMalformedInput, kind)
		}
	}
	return &p, nil
}

// Command extracts the shell command from a Bash tool invocation. The second
// return is false when the payload is not a Bash tool event. An empty
// command string is valid and trivially allowed downstream.
func (p *Payload) Command() (string, bool) {
	if p.ToolName != "Bash" {
		return "", false
	}
	var in struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(p.ToolInput, &in); err != nil {
		return "", false
	}
	return in.Command, true
}

// FilePath extracts the target path from a file-writing tool invocation.
func (p *Payload) FilePath() (string, bool) {
	switch p.ToolName {
	case "Write", "Edit", "MultiEdit", "NotebookEdit":
	default:
		return "", false
	}
	var in struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(p.ToolInput, &in); err != nil || in.FilePath == "" {
		return "", false
	}
	return in.FilePath, true
}

// Tasks extracts the task array from a TodoWrite tool invocation. A payload
// that is not a TodoWrite event, or whose array is malformed, returns false:
// the sync step is skipped, not failed.
func (p *Payload) Tasks() ([]task.Record, bool) {
	if p.ToolName != "TodoWrite" {
		return nil, false
	}
	var in struct {
		Todos []struct {
			Content string `json:"content"`
			Status  string `json:"status"`
		} `json:"todos"`
	}
	if err := json.Unmarshal(p.ToolInput, &in); err != nil || in.Todos == nil {
		return nil, false
	}

	records := make([]task.Record, 0, len(in.Todos))
	for _, t := range in.Todos {
		if t.Content == "" {
			return nil, false
		}
		status := task.Status(t.Status)
		if !status.Valid() {
			status = task.StatusPending
		}
		records = append(records, task.Record{Content: t.Content, Status: status})
	}
	return records, true
}
