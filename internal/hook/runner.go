// Package hook orchestrates one engine invocation: it dispatches a parsed
// lifecycle event to the policy engine, the task store, or the snapshot
// manager and always comes back with a decision.
package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awendt/warden/internal/audit"
	"github.com/awendt/warden/internal/config"
	"github.com/awendt/warden/internal/decision"
	"github.com/awendt/warden/internal/event"
	"github.com/awendt/warden/internal/policy"
	"github.com/awendt/warden/internal/snapshot"
	"github.com/awendt/warden/internal/task"
)

// StateDirName is the per-project directory holding every warden artifact.
const StateDirName = ".warden"

// StateDir resolves the state directory for a working directory reported by
// the host, falling back to the process's own cwd.
func StateDir(workDir string) string {
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	return filepath.Join(workDir, StateDirName)
}

// Runner wires the per-invocation components together. Shared files are
// explicit handles here, never process-wide singletons: each invocation is
// an independent process and builds its own Runner.
type Runner struct {
	cfg   config.Config
	tasks *task.Store
	snaps *snapshot.Manager
	log   *audit.Logger
}

// NewRunner builds the engine for one invocation rooted at the payload's
// working directory. Configuration problems surface in the activity log,
// never as errors.
func NewRunner(workDir string) *Runner {
	stateDir := StateDir(workDir)
	cfg, warnings := config.Load(stateDir)
	log := audit.Open(stateDir, cfg.LogActivity)
	for _, w := range warnings {
		log.Error("config", w)
	}
	return &Runner{
		cfg:   cfg,
		tasks: task.NewStore(stateDir),
		snaps: snapshot.NewManager(stateDir),
		log:   log,
	}
}

// Close releases the runner's file handles.
func (r *Runner) Close() {
	r.log.Close()
}

// Audit exposes the activity log for callers that need to record
// invocation-boundary faults.
func (r *Runner) Audit() *audit.Logger {
	return r.log
}

// Run produces the decision for one event. Every path returns; storage and
// extraction failures inside the lifecycle handlers degrade to permissive
// outcomes with a logged diagnostic.
func (r *Runner) Run(p *event.Payload) (decision.Decision, error) {
	switch p.Kind {
	case event.KindPreToolUse:
		return r.preToolUse(p), nil
	case event.KindPostToolUse:
		return r.postToolUse(p), nil
	case event.KindUserPromptSubmit:
		return r.userPromptSubmit(p), nil
	case event.KindStop:
		return r.stopRequest(p), nil
	case event.KindSubagentStop:
		return r.subagentStop(p), nil
	case event.KindPreCompact:
		return r.preCompact(p), nil
	case event.KindSessionStart:
		return r.sessionStart(p), nil
	case event.KindSessionEnd:
		return r.sessionEnd(p), nil
	case event.KindNotification:
		r.log.Event("notification", p.Message, "session", p.SessionID)
		return decision.Allowed(), nil
	}
	return decision.Allowed(), fmt.Errorf("unknown event kind %q", p.Kind)
}

// preToolUse validates proposed commands and file writes against the
// configured pattern lists.
func (r *Runner) preToolUse(p *event.Payload) decision.Decision {
	var d decision.Decision
	var subject, domain string

	if cmd, ok := p.Command(); ok {
		subject, domain = cmd, "command"
		d = r.evaluate(r.cfg.Command, subject)
	} else if path, ok := p.FilePath(); ok {
		subject, domain = path, "file_write"
		d = r.evaluate(r.cfg.FileWrite, subject)
	} else {
		return decision.Allowed()
	}

	r.log.Event("policy", "evaluated "+domain,
		"session", p.SessionID, "tool", p.ToolName,
		"verdict", d.Verdict.String(), "reason", d.Reason, "subject", subject)
	return d
}

func (r *Runner) evaluate(rs config.RuleSet, subject string) decision.Decision {
	eng := policy.Compile(rs)
	for _, bad := range eng.BadRules() {
		r.log.Error("policy", "skipping malformed rule",
			"pattern", bad.Rule.Pattern, "label", bad.Rule.Label, "error", bad.Err.Error())
	}
	return eng.Evaluate(subject)
}

// promptTaskKeywords suppress prompt enhancement: when the user is already
// asking about the task list, the original prompt passes through untouched.
var promptTaskKeywords = []string{"todo", "task", "checklist", "incomplete", "completed"}

// userPromptSubmit injects the current task list as context on each prompt so
// the assistant stays aware of tracked work without manual reminders.
func (r *Runner) userPromptSubmit(p *event.Payload) decision.Decision {
	r.log.Event("prompt", "prompt submitted", "session", p.SessionID, "chars", len(p.Prompt))
	if !r.cfg.EnhancePrompts || p.Prompt == "" {
		return decision.Allowed()
	}
	lower := strings.ToLower(p.Prompt)
	for _, kw := range promptTaskKeywords {
		if strings.Contains(lower, kw) {
			return decision.Allowed()
		}
	}

	incomplete, completed, err := r.tasks.Read()
	if err != nil {
		r.log.Error("tasks", "read failed during prompt enhancement", "error", err.Error())
		return decision.Allowed()
	}
	if len(incomplete)+len(completed) == 0 {
		return decision.Allowed()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current task list (%d open, %d completed):\n", len(incomplete), len(completed))
	for _, t := range append(incomplete, completed...) {
		fmt.Fprintf(&sb, "- [%s] %s\n", t.Status, t.Content)
	}
	r.log.Event("prompt", "enhanced with task context", "session", p.SessionID, "open", len(incomplete))
	return decision.Decision{Verdict: decision.Allow, Context: sb.String()}
}

// postToolUse records tool activity and keeps the persisted task list in
// sync with the assistant's live tracker.
func (r *Runner) postToolUse(p *event.Payload) decision.Decision {
	if records, ok := p.Tasks(); ok {
		if err := r.tasks.Reconcile(records); err != nil {
			r.log.Error("tasks", "reconcile failed", "error", err.Error())
		} else {
			r.log.Event("tasks", "reconciled task list", "session", p.SessionID, "incoming", len(records))
		}
		return decision.Allowed()
	}

	if path, ok := p.FilePath(); ok {
		r.log.Event("file", "file modified", "session", p.SessionID, "tool", p.ToolName, "path", path)
	} else {
		r.log.Event("tool", "tool finished", "session", p.SessionID, "tool", p.ToolName)
	}
	return decision.Allowed()
}

// stopRequest enforces task completion: while incomplete tasks remain the
// assistant is told to keep working instead of stopping.
func (r *Runner) stopRequest(p *event.Payload) decision.Decision {
	if !r.cfg.EnforceTaskCompletion || p.StopHookActive {
		return decision.Allowed()
	}

	incomplete, _, err := r.tasks.Read()
	if err != nil {
		r.log.Error("tasks", "read failed during stop check", "error", err.Error())
		return decision.Allowed()
	}
	if len(incomplete) == 0 {
		return decision.Allowed()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d task(s) are still open. Continue working on them:\n", len(incomplete))
	for _, t := range incomplete {
		fmt.Fprintf(&sb, "  - [%s] %s\n", t.Status, t.Content)
	}
	r.log.Event("stop", "forced continuation", "session", p.SessionID, "outstanding", len(incomplete))
	return decision.Decision{Verdict: decision.ForceContinue, Reason: strings.TrimRight(sb.String(), "\n")}
}

// preCompact snapshots tasks and planning notes before history compaction.
// Capture failure is logged, never surfaced: compaction always proceeds.
func (r *Runner) preCompact(p *event.Payload) decision.Decision {
	r.capture(p, snapshot.TriggerPreCompaction)
	return decision.Allowed()
}

func (r *Runner) capture(p *event.Payload, trigger snapshot.Trigger) {
	incomplete, completed, err := r.tasks.Read()
	if err != nil {
		r.log.Error("snapshot", "task read failed, capturing without tasks", "error", err.Error())
	}
	tasks := append(incomplete, completed...)
	notes := snapshot.ExtractPlanningNotes(p.TranscriptPath)

	snap, err := r.snaps.Capture(p.SessionID, trigger, tasks, notes)
	if err != nil {
		r.log.Error("snapshot", "capture failed", "trigger", string(trigger), "error", err.Error())
		return
	}
	r.log.Event("snapshot", "captured", "id", snap.ID, "trigger", string(trigger),
		"tasks", len(tasks), "notes", len(notes))
}

// sessionStart injects pending work back into the fresh session's context.
func (r *Runner) sessionStart(p *event.Payload) decision.Decision {
	r.log.Event("session", "session started", "session", p.SessionID, "source", p.Source)
	if !r.cfg.InjectSessionContext {
		return decision.Allowed()
	}

	incomplete, _, err := r.tasks.Read()
	if err != nil {
		r.log.Error("tasks", "read failed during session start", "error", err.Error())
		return decision.Allowed()
	}

	var sb strings.Builder
	if len(incomplete) > 0 {
		sb.WriteString("Open tasks from the previous session:\n")
		for _, t := range incomplete {
			fmt.Fprintf(&sb, "- [%s] %s\n", t.Status, t.Content)
		}
	}
	if notes := r.latestNotes(); len(notes) > 0 {
		sb.WriteString("Planning notes captured before the last compaction:\n")
		for _, n := range notes {
			fmt.Fprintf(&sb, "- %s\n", n)
		}
	}
	if sb.Len() == 0 {
		return decision.Allowed()
	}
	return decision.Decision{Verdict: decision.Allow, Context: sb.String()}
}

// latestNotes returns the planning notes of the newest snapshot, if any.
func (r *Runner) latestNotes() []string {
	snaps, err := r.snaps.Snapshots()
	if err != nil || len(snaps) == 0 {
		return nil
	}
	return snaps[len(snaps)-1].PlanningNotes
}

// sessionEnd snapshots final state and writes the human-readable archive.
// Neither step blocks termination.
func (r *Runner) sessionEnd(p *event.Payload) decision.Decision {
	r.capture(p, snapshot.TriggerSessionEnd)

	counts, err := r.tasks.Summary()
	if err != nil {
		r.log.Error("archive", "summary failed", "error", err.Error())
	}
	incomplete, completed, err := r.tasks.Read()
	if err != nil {
		r.log.Error("archive", "task read failed", "error", err.Error())
	}
	notes := snapshot.ExtractPlanningNotes(p.TranscriptPath)

	path, err := r.snaps.Archive(p.SessionID, p.Reason, counts, append(incomplete, completed...), notes)
	if err != nil {
		r.log.Error("archive", "write failed", "error", err.Error())
		return decision.Allowed()
	}
	r.log.Event("archive", "session archived", "session", p.SessionID, "reason", p.Reason, "path", path)
	return decision.Allowed()
}
