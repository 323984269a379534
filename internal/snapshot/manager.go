package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/awendt/warden/internal/task"
)

const (
	// LogFileName is the append-only snapshot log inside the state directory.
	LogFileName = "snapshots.jsonl"

	// ArchiveDirName holds one human-readable archive per ended session.
	ArchiveDirName = "archive"

	// archiveStamp has sub-second resolution so concurrent sessions never
	// collide on the archive name.
	archiveStamp = "20060102T150405.000"
)

// Manager owns the snapshot log and the session archives under one state
// directory.
type Manager struct {
	dir string
	now func() time.Time
}

// NewManager returns a Manager rooted at the given state directory.
func NewManager(stateDir string) *Manager {
	return &Manager{dir: stateDir, now: time.Now}
}

// LogPath returns the snapshot log location.
func (m *Manager) LogPath() string {
	return filepath.Join(m.dir, LogFileName)
}

// Capture appends one snapshot record to the log and returns it. The log is
// append-only: prior snapshots are never rewritten.
func (m *Manager) Capture(sessionID string, trigger Trigger, tasks []task.Record, notes []string) (*Snapshot, error) {
	snap := &Snapshot{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		Trigger:       trigger,
		TakenAt:       m.now().UTC(),
		Tasks:         tasks,
		PlanningNotes: notes,
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}
	f, err := os.OpenFile(m.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}
	return snap, nil
}

// Snapshots reads the full snapshot log in append order. A missing log
// yields an empty slice. Undecodable lines are skipped so one corrupt record
// never hides the rest.
func (m *Manager) Snapshots() ([]Snapshot, error) {
	f, err := os.Open(m.LogPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot log: %w", err)
	}
	defer f.Close()

	var snaps []Snapshot
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var s Snapshot
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			continue
		}
		snaps = append(snaps, s)
	}
	if err := scanner.Err(); err != nil {
		return snaps, fmt.Errorf("failed to read snapshot log: %w", err)
	}
	return snaps, nil
}

// archiveMeta is the YAML front matter of a session archive.
type archiveMeta struct {
	SessionID  string    `yaml:"session_id"`
	Reason     string    `yaml:"reason,omitempty"`
	ArchivedAt time.Time `yaml:"archived_at"`
	Pending    int       `yaml:"pending"`
	InProgress int       `yaml:"in_progress"`
	Completed  int       `yaml:"completed"`
}

// Archive writes the human-readable end-of-session artifact and returns its
// path. The name combines the session identifier with a millisecond stamp so
// concurrent sessions archive side by side. reason is the host-reported cause
// of termination and may be empty.
func (m *Manager) Archive(sessionID, reason string, counts task.Counts, tasks []task.Record, notes []string) (string, error) {
	dir := filepath.Join(m.dir, ArchiveDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to archive session: %w", err)
	}

	now := m.now()
	name := fmt.Sprintf("session-%s-%s.md", shortID(sessionID), now.Format(archiveStamp))
	path := filepath.Join(dir, name)

	meta, err := yaml.Marshal(archiveMeta{
		SessionID:  sessionID,
		Reason:     reason,
		ArchivedAt: now.UTC(),
		Pending:    counts.Pending,
		InProgress: counts.InProgress,
		Completed:  counts.Completed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive session: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(meta)
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "# Session %s\n\n", shortID(sessionID))

	sb.WriteString("## Tasks\n\n")
	if len(tasks) == 0 {
		sb.WriteString("_No tasks tracked._\n")
	} else {
		for _, t := range tasks {
			fmt.Fprintf(&sb, "- [%s] %s\n", t.Status, t.Content)
		}
	}
	sb.WriteString("\n## Planning notes\n\n")
	if len(notes) == 0 {
		sb.WriteString("_No planning notes captured._\n")
	} else {
		for _, n := range notes {
			fmt.Fprintf(&sb, "- %s\n", n)
		}
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to archive session: %w", err)
	}
	return path, nil
}

// shortID keeps archive names readable: the first uuid segment is enough to
// tell sessions apart alongside the timestamp.
func shortID(sessionID string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, sessionID)
	if id == "" {
		return "session"
	}
	if i := strings.IndexByte(id, '-'); i > 0 {
		id = id[:i]
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
