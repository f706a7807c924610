package focus

import (
	"context"
	"time"
)

// Repository is the durable store of session records.
type Repository interface {
	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// GetActive returns the user's active or paused session, or nil if none.
	GetActive(ctx context.Context, userID string) (*Session, error)

	// ListByUser returns sessions started in [since, until], oldest first.
	ListByUser(ctx context.Context, userID string, since, until time.Time) ([]*Session, error)

	// Recent returns up to limit sessions, newest start time first.
	Recent(ctx context.Context, userID string, limit int) ([]*Session, error)

	// Save inserts or replaces the session.
	Save(ctx context.Context, s *Session) error
}

// QualityWriter is implemented by repositories that can update the quality
// column alone, without rewriting the rest of the record.
type QualityWriter interface {
	SetQuality(ctx context.Context, id string, q Quality) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// EventKind names a domain event.
type EventKind string

const (
	EventSessionStarted     EventKind = "session_started"
	EventSessionPaused      EventKind = "session_paused"
	EventSessionResumed     EventKind = "session_resumed"
	EventSessionCompleted   EventKind = "session_completed"
	EventStreakMilestone    EventKind = "streak_milestone"
	EventFocusTimeMilestone EventKind = "focus_time_milestone"
	EventInterruptionAlert  EventKind = "interruption_alert"
)

// Event describes something that happened to a session or a user.
type Event struct {
	Kind      EventKind
	UserID    string
	SessionID string
	At        time.Time
	Data      map[string]any
}

// EventSink receives domain events. Emit is fire-and-forget: delivery
// failures are the sink's concern and never reach the emitter.
type EventSink interface {
	Emit(ctx context.Context, ev Event)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}

// TypeRate is a per-type completion summary.
type TypeRate struct {
	Sessions       int
	Successful     int
	CompletionRate float64
}

// UserContext is the per-user history snapshot used to personalize scoring.
// It is rebuilt for every scoring batch and never persisted.
type UserContext struct {
	TypePerformance map[SessionType]TypeRate
	CurrentStreak   int
	TotalSessions   int
}

// TypeCompletionRate returns the completion rate for a type and whether any
// history exists for it.
func (uc UserContext) TypeCompletionRate(t SessionType) (float64, bool) {
	tr, ok := uc.TypePerformance[t]
	if !ok || tr.Sessions == 0 {
		return 0, false
	}
	return tr.CompletionRate, true
}
