package testing

import (
	"sync"
	"testing"

	"github.com/arloliu/replwork/types"
)

// LogEntry is one message captured by a RecordingLogger.
type LogEntry struct {
	Level         string
	Msg           string
	KeysAndValues []any
}

// RecordingLogger writes to the test log and keeps every entry for assertions.
type RecordingLogger struct {
	t       *testing.T
	mu      sync.Mutex
	entries []LogEntry
}

var _ types.Logger = (*RecordingLogger)(nil)

// NewTestLogger creates a logger that writes to the testing.T logger.
func NewTestLogger(t *testing.T) types.Logger {
	return NewRecordingLogger(t)
}

// NewRecordingLogger creates a logger that writes to t and records entries.
//
// Example:
//
//	logger := rwtest.NewRecordingLogger(t)
//	a := assigner.NewUnordered(q, coord, cfg, assigner.WithLogger(logger))
//	_, _ = a.QueueWork(ctx, invalidItem)
//	require.Len(t, logger.Entries("ERROR"), 1)
func NewRecordingLogger(t *testing.T) *RecordingLogger {
	return &RecordingLogger{t: t}
}

// Entries returns the recorded entries at level ("DEBUG", "INFO", "WARN",
// "ERROR", "FATAL"), or all entries when level is empty.
func (l *RecordingLogger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}

	return out
}

func (l *RecordingLogger) record(level, msg string, keysAndValues []any) {
	l.mu.Lock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, KeysAndValues: keysAndValues})
	l.mu.Unlock()

	l.t.Logf("%s: %s %v", level, msg, keysAndValues)
}

func (l *RecordingLogger) Debug(msg string, keysAndValues ...any) {
	l.record("DEBUG", msg, keysAndValues)
}

func (l *RecordingLogger) Info(msg string, keysAndValues ...any) {
	l.record("INFO", msg, keysAndValues)
}

func (l *RecordingLogger) Warn(msg string, keysAndValues ...any) {
	l.record("WARN", msg, keysAndValues)
}

func (l *RecordingLogger) Error(msg string, keysAndValues ...any) {
	l.record("ERROR", msg, keysAndValues)
}

func (l *RecordingLogger) Fatal(msg string, keysAndValues ...any) {
	l.record("FATAL", msg, keysAndValues)
	l.t.FailNow()
}
