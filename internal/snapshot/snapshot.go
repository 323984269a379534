// Package snapshot captures point-in-time views of the task list and
// planning notes around destructive lifecycle transitions (history
// compaction, session end) and archives sessions on termination.
package snapshot

import (
	"time"

	"github.com/awendt/warden/internal/task"
)

// Trigger is the reason a snapshot was taken.
type Trigger string

const (
	TriggerPreCompaction Trigger = "pre_compaction"
	TriggerSessionEnd    Trigger = "session_end"
)

// Snapshot is one append-only record in the snapshot log. Never mutated
// after creation; pruning is an external concern.
type Snapshot struct {
	ID            string        `json:"id"`
	SessionID     string        `json:"session_id"`
	Trigger       Trigger       `json:"trigger"`
	TakenAt       time.Time     `json:"taken_at"`
	Tasks         []task.Record `json:"tasks"`
	PlanningNotes []string      `json:"planning_notes"`
}
