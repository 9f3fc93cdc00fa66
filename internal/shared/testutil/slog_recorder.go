package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Entry is one captured log record.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Recorder is a slog.Handler that keeps every record in memory so tests
// can assert on what was logged. All levels are captured. Safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	t       *testing.T
}

// NewTestLogger returns a logger whose output is captured by the returned
// Recorder. Records are also echoed to t.Logf for debugging.
func NewTestLogger(t *testing.T) (*slog.Logger, *Recorder) {
	rec := &Recorder{t: t}
	return slog.New(rec), rec
}

func (rec *Recorder) Enabled(context.Context, slog.Level) bool { return true }

func (rec *Recorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	rec.mu.Lock()
	rec.entries = append(rec.entries, Entry{Level: r.Level, Message: r.Message, Attrs: attrs})
	rec.mu.Unlock()

	if rec.t != nil {
		rec.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs returns a handler that carries the bound attributes but keeps
// storing records on this Recorder, so assertions see records from
// derived loggers too.
func (rec *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &derivedRecorder{root: rec, bound: append([]slog.Attr{}, attrs...)}
}

func (rec *Recorder) WithGroup(string) slog.Handler { return rec }

// Entries returns a copy of everything captured so far.
func (rec *Recorder) Entries() []Entry {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]Entry, len(rec.entries))
	copy(out, rec.entries)
	return out
}

// EntriesAt returns the captured records at one level.
func (rec *Recorder) EntriesAt(level slog.Level) []Entry {
	var out []Entry
	for _, e := range rec.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards everything captured so far.
func (rec *Recorder) Reset() {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.entries = rec.entries[:0]
}

// derivedRecorder carries Logger.With attributes while storing records on
// the root Recorder.
type derivedRecorder struct {
	root  *Recorder
	bound []slog.Attr
}

func (d *derivedRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (d *derivedRecorder) Handle(ctx context.Context, r slog.Record) error {
	clone := r.Clone()
	clone.AddAttrs(d.bound...)
	return d.root.Handle(ctx, clone)
}

func (d *derivedRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &derivedRecorder{root: d.root, bound: append(append([]slog.Attr{}, d.bound...), attrs...)}
}

func (d *derivedRecorder) WithGroup(string) slog.Handler { return d }

// AssertLogContains fails the test unless some record at level has message
// as a substring.
func AssertLogContains(t *testing.T, rec *Recorder, level slog.Level, message string) {
	t.Helper()

	entries := rec.EntriesAt(level)
	for _, e := range entries {
		if strings.Contains(e.Message, message) {
			return
		}
	}

	t.Errorf("no %s log containing %q", level, message)
	for _, e := range entries {
		t.Logf("  captured: %s", e.Message)
	}
}

// AssertLogAttr fails the test unless some record carries key=value.
func AssertLogAttr(t *testing.T, rec *Recorder, key string, value any) {
	t.Helper()

	for _, e := range rec.Entries() {
		if got, ok := e.Attrs[key]; ok && got == value {
			return
		}
	}

	t.Errorf("no log with attribute %s=%v", key, value)
	for _, e := range rec.Entries() {
		t.Logf("  captured: %s %v", e.Message, e.Attrs)
	}
}

// AssertNoErrors fails the test if any error-level record was captured.
func AssertNoErrors(t *testing.T, rec *Recorder) {
	t.Helper()

	for _, e := range rec.EntriesAt(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", e.Message, e.Attrs)
	}
}
