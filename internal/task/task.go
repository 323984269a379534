// Package task persists the session task list as a human-readable markdown
// checklist and keeps it consistent across concurrent hook invocations.
package task

// Status is the lifecycle state of a single task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Done reports whether the status counts as completed work.
func (s Status) Done() bool {
	return s == StatusCompleted
}

// Record is one unit of work tracked in the task list.
type Record struct {
	Content string `json:"content"`
	Status  Status `json:"status"`
}

// Counts aggregates the task list by status.
type Counts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// Outstanding is the number of tasks that still need work.
func (c Counts) Outstanding() int {
	return c.Pending + c.InProgress
}

// Total is the number of tasks tracked.
func (c Counts) Total() int {
	return c.Pending + c.InProgress + c.Completed
}

// marker returns the checklist marker for a status: " " pending, "~"
// in-progress, "x" completed.
func (s Status) marker() string {
	switch s {
	case StatusInProgress:
		return "~"
	case StatusCompleted:
		return "x"
	default:
		return " "
	}
}

// statusForMarker is the inverse of marker. Unknown markers map to pending so
// a hand-edited list never fails to load.
func statusForMarker(m byte) Status {
	switch m {
	case '~':
		return StatusInProgress
	case 'x', 'X':
		return StatusCompleted
	default:
		return StatusPending
	}
}
