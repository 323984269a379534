package task

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// FileName is the task list artifact inside the state directory.
	FileName = "tasks.md"

	// lockRetryInterval is how long Reconcile waits between lock attempts.
	lockRetryInterval = 10 * time.Millisecond

	// lockTimeout bounds the total time spent waiting for the lock.
	lockTimeout = 2 * time.Second

	// staleLockAge is the age past which an abandoned lock file is removed.
	// Hook invocations are short-lived, so anything this old is a leftover
	// from a crashed process.
	staleLockAge = 10 * time.Second
)

// ErrLockTimeout is returned when the task file lock cannot be acquired.
var ErrLockTimeout = errors.New("task list is locked by another invocation")

// Store reads and writes the task list artifact.
type Store struct {
	path string // full path to tasks.md
}

// NewStore returns a Store rooted at the given state directory
// (e.g. <workdir>/.warden).
func NewStore(stateDir string) *Store {
	return &Store{path: filepath.Join(stateDir, FileName)}
}

// Path returns the location of the backing artifact.
func (st *Store) Path() string {
	return st.path
}

// Read loads the task list, partitioned into incomplete (pending and
// in-progress) and completed sequences, each in file order. A missing or
// empty file yields two empty sequences, not an error.
func (st *Store) Read() (incomplete, completed []Record, err error) {
	all, err := st.readAll()
	if err != nil {
		return nil, nil, err
	}
	for _, r := range all {
		if r.Status.Done() {
			completed = append(completed, r)
		} else {
			incomplete = append(incomplete, r)
		}
	}
	return incomplete, completed, nil
}

// Write replaces the task list with the given sequences, incomplete first.
// The replacement is atomic: a concurrent reader sees either the old or the
// new artifact, never a partial write, and the original is left untouched on
// any error path.
func (st *Store) Write(incomplete, completed []Record) error {
	all := make([]Record, 0, len(incomplete)+len(completed))
	all = append(all, incomplete...)
	all = append(all, completed...)
	return st.writeAll(all)
}

// Reconcile merges an externally supplied task list into the artifact under
// an exclusive lock. The incoming list is authoritative for the status and
// content of every task it names; persisted tasks absent from incoming keep
// their position and status. Calling Reconcile twice with the same input is
// a no-op the second time.
func (st *Store) Reconcile(incoming []Record) error {
	release, err := st.lock()
	if err != nil {
		return err
	}
	defer release()

	current, err := st.readAll()
	if err != nil {
		return err
	}

	index := make(map[string]int, len(current))
	for i, r := range current {
		index[r.Content] = i
	}

	merged := current
	for _, in := range incoming {
		in.Content = normalizeContent(in.Content)
		if !in.Status.Valid() {
			in.Status = StatusPending
		}
		if i, ok := index[in.Content]; ok {
			merged[i].Status = in.Status
		} else {
			index[in.Content] = len(merged)
			merged = append(merged, in)
		}
	}

	return st.writeAll(merged)
}

// Summary counts tasks by status. Read-only; a missing artifact yields zero
// counts.
func (st *Store) Summary() (Counts, error) {
	all, err := st.readAll()
	if err != nil {
		return Counts{}, err
	}
	var c Counts
	for _, r := range all {
		switch r.Status {
		case StatusInProgress:
			c.InProgress++
		case StatusCompleted:
			c.Completed++
		default:
			c.Pending++
		}
	}
	return c, nil
}

// readAll parses the artifact into records in file order. Lines that are not
// checklist items (headers, blanks) are skipped.
func (st *Store) readAll() ([]Record, error) {
	f, err := os.Open(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read task list: %w", err)
	}
	defer f.Close()

	var all []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if r, ok := parseLine(scanner.Text()); ok {
			all = append(all, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read task list: %w", err)
	}
	return all, nil
}

// writeAll writes records to a temp file in the destination directory and
// renames it over the artifact so the replacement is atomic.
func (st *Store) writeAll(all []Record) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return fmt.Errorf("failed to persist task list: %w", err)
	}

	var sb strings.Builder
	for _, r := range all {
		fmt.Fprintf(&sb, "- [%s] %s\n", r.Status.marker(), normalizeContent(r.Content))
	}

	tmp, err := os.CreateTemp(filepath.Dir(st.path), "tasks-*.md.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist task list: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist task list: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist task list: %w", err)
	}
	if err = os.Rename(tmpName, st.path); err != nil {
		return fmt.Errorf("failed to persist task list: %w", err)
	}
	return nil
}

// contentReplacer flattens line breaks out of task content. Content arrives
// as free text (tracker updates carry whatever the assistant wrote), but the
// artifact is line-oriented: an embedded newline would truncate the task on
// the next read.
var contentReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// normalizeContent maps arbitrary content onto a single checklist line.
func normalizeContent(content string) string {
	return strings.TrimSpace(contentReplacer.Replace(content))
}

// parseLine decodes one checklist line of the form "- [x] content".
func parseLine(line string) (Record, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 6 || !strings.HasPrefix(trimmed, "- [") || trimmed[4] != ']' {
		return Record{}, false
	}
	content := strings.TrimSpace(trimmed[5:])
	if content == "" {
		return Record{}, false
	}
	return Record{Content: content, Status: statusForMarker(trimmed[3])}, true
}

// lock acquires the exclusive task file lock, waiting up to lockTimeout.
// Invocations are separate processes, so the lock is a filesystem artifact
// (O_CREATE|O_EXCL), not an in-memory mutex.
func (st *Store) lock() (release func(), err error) {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to lock task list: %w", err)
	}
	lockPath := st.path + ".lock"
	deadline := time.Now().Add(lockTimeout)

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to lock task list: %w", err)
		}

		// Take over locks left behind by a crashed invocation.
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > staleLockAge {
			os.Remove(lockPath)
			continue
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		time.Sleep(lockRetryInterval)
	}
}
