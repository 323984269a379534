// Package audit appends one line per recorded event to the activity log.
// The log is write-only from the engine's perspective: humans read it, the
// engine never does. A logger that fails to open degrades to a no-op so the
// audit channel can never disturb an invocation.
package audit

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the activity log artifact inside the state directory.
const FileName = "activity.log"

// Logger writes timestamped, categorised lines to the activity log.
type Logger struct {
	sl *slog.Logger
	f  *os.File
}

// Open returns a Logger appending to the activity log under stateDir. It
// never fails: when the file cannot be opened (or enabled is false) the
// returned Logger discards everything.
func Open(stateDir string, enabled bool) *Logger {
	if !enabled {
		return &Logger{sl: slog.New(slog.DiscardHandler)}
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return &Logger{sl: slog.New(slog.DiscardHandler)}
	}
	f, err := os.OpenFile(filepath.Join(stateDir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &Logger{sl: slog.New(slog.DiscardHandler)}
	}
	return &Logger{
		sl: slog.New(slog.NewTextHandler(f, nil)),
		f:  f,
	}
}

// Event records a normal activity line under the given category.
func (l *Logger) Event(category, msg string, args ...any) {
	if l == nil || l.sl == nil {
		return
	}
	l.sl.Info(msg, append([]any{"category", category}, args...)...)
}

// Error records an engine fault. Faults land here with enough detail to
// diagnose; the assistant-visible channel stays reserved for intentional
// policy messages.
func (l *Logger) Error(category, msg string, args ...any) {
	if l == nil || l.sl == nil {
		return
	}
	l.sl.Error(msg, append([]any{"category", category}, args...)...)
}

// Close releases the underlying file, if any.
func (l *Logger) Close() {
	if l != nil && l.f != nil {
		l.f.Close()
	}
}
