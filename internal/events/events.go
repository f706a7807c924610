// Package events provides focus.EventSink implementations that compose:
// a structured-log sink, a fan-out, and an in-memory recorder.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/abhisek/focusflow/internal/focus"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink creates a sink logging at info level.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger, level: slog.LevelInfo}
}

func (s *LogSink) Emit(ctx context.Context, ev focus.Event) {
	attrs := []slog.Attr{
		slog.String("kind", string(ev.Kind)),
		slog.String("user_id", ev.UserID),
		slog.Time("at", ev.At),
	}
	if ev.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", ev.SessionID))
	}
	if len(ev.Data) > 0 {
		attrs = append(attrs, slog.Any("data", ev.Data))
	}
	s.logger.LogAttrs(ctx, s.level, "focus event", attrs...)
}

// Multi fans an event out to every sink in order.
type Multi []focus.EventSink

func (m Multi) Emit(ctx context.Context, ev focus.Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Emit(ctx, ev)
		}
	}
}

// Fanout returns a sink that delivers to each non-nil sink.
func Fanout(sinks ...focus.EventSink) focus.EventSink {
	var m Multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 0 {
		return focus.NopSink{}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

// Recorder keeps every emitted event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []focus.Event
}

func (r *Recorder) Emit(_ context.Context, ev focus.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []focus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]focus.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded event kinds in emission order.
func (r *Recorder) Kinds() []focus.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]focus.EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
