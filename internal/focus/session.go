// Package focus holds the focus-session domain model shared by the lifecycle,
// scoring and analytics packages: the session record, its closed enums, the
// typed errors, and the narrow contracts for storage, time and events.
package focus

import (
	"fmt"
	"time"
)

// Planned duration limits, in minutes.
const (
	MinDuration = 5
	MaxDuration = 300
)

// Session is one timed work interval.
type Session struct {
	ID     string
	UserID string
	Type   SessionType
	State  State

	// PlannedDuration is the requested length in minutes.
	PlannedDuration int

	StartTime time.Time

	// PlannedEndTime is StartTime+PlannedDuration, shifted forward by every
	// completed pause.
	PlannedEndTime time.Time

	// PausedAt is set only while the session is paused.
	PausedAt *time.Time

	// EndTime and ActualDuration are set only once completed.
	EndTime        *time.Time
	ActualDuration *int

	CompletionReason CompletionReason

	InterruptionCount int
	ProductivityScore *float64 // self-reported, 0-10
	CompletionRate    *float64 // self-reported, 0-1

	// Quality is written by the scorer, never by the lifecycle service.
	Quality Quality

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the session is active or paused.
func (s *Session) IsOpen() bool {
	return s.State.Open()
}

// IsSuccessful reports whether the session completed with reason "completed".
// Completion rates count these; streaks count any completed session.
func (s *Session) IsSuccessful() bool {
	return s.State == StateCompleted && s.CompletionReason == ReasonCompleted
}

// FocusMinutes returns the actual duration when known, else the planned one.
func (s *Session) FocusMinutes() int {
	if s.ActualDuration != nil {
		return *s.ActualDuration
	}
	return s.PlannedDuration
}

// Clone returns a deep copy so callers can mutate without sharing pointers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.PausedAt != nil {
		t := *s.PausedAt
		c.PausedAt = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if s.ActualDuration != nil {
		d := *s.ActualDuration
		c.ActualDuration = &d
	}
	if s.ProductivityScore != nil {
		v := *s.ProductivityScore
		c.ProductivityScore = &v
	}
	if s.CompletionRate != nil {
		v := *s.CompletionRate
		c.CompletionRate = &v
	}
	return &c
}

// Validate checks the record-level invariants of a session.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.UserID == "" {
		return ErrInvalidUserID
	}
	if _, err := ParseSessionType(string(s.Type)); err != nil {
		return err
	}
	if s.PlannedDuration < MinDuration || s.PlannedDuration > MaxDuration {
		return &DurationError{Minutes: s.PlannedDuration}
	}

	completed := s.State == StateCompleted
	switch s.State {
	case StateActive, StatePaused, StateCompleted:
	default:
		return fmt.Errorf("unknown session state %q", s.State)
	}
	if (s.EndTime != nil) != completed {
		return fmt.Errorf("session %s: end time set iff completed", s.ID)
	}
	if (s.ActualDuration != nil) != completed {
		return fmt.Errorf("session %s: actual duration set iff completed", s.ID)
	}
	if (s.PausedAt != nil) != (s.State == StatePaused) {
		return fmt.Errorf("session %s: paused_at set iff paused", s.ID)
	}
	if completed {
		if _, err := ParseCompletionReason(string(s.CompletionReason)); err != nil {
			return err
		}
	} else if s.CompletionReason != "" {
		return fmt.Errorf("session %s: completion reason on open session", s.ID)
	}
	return nil
}

// Outcome carries the self-reported quality inputs for a session.
type Outcome struct {
	Interruptions     *int
	ProductivityScore *float64
	CompletionRate    *float64
}

// Validate checks the outcome ranges.
func (o Outcome) Validate() error {
	if o.Interruptions != nil && *o.Interruptions < 0 {
		return fmt.Errorf("%w: interruptions must be >= 0", ErrInvalidOutcome)
	}
	if o.ProductivityScore != nil && (*o.ProductivityScore < 0 || *o.ProductivityScore > 10) {
		return fmt.Errorf("%w: productivity score must be within 0-10", ErrInvalidOutcome)
	}
	if o.CompletionRate != nil && (*o.CompletionRate < 0 || *o.CompletionRate > 1) {
		return fmt.Errorf("%w: completion rate must be within 0-1", ErrInvalidOutcome)
	}
	return nil
}
