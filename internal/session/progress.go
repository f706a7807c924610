package session

import (
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// Progress is a point-in-time view of a session's countdown.
type Progress struct {
	// Elapsed is focus time so far. Paused time is not counted.
	Elapsed time.Duration

	// Remaining is time left until the planned end, never negative.
	Remaining time.Duration

	// Fraction is Elapsed over the planned duration, clamped to [0,1].
	Fraction float64

	// Expired reports that the planned end has passed.
	Expired bool

	Paused bool
}

// ProgressAt computes progress for s as of now. A paused session is frozen at
// the moment it was paused.
func ProgressAt(s *focus.Session, now time.Time) Progress {
	planned := time.Duration(s.PlannedDuration) * time.Minute

	if s.State == focus.StateCompleted {
		elapsed := time.Duration(s.FocusMinutes()) * time.Minute
		return Progress{
			Elapsed:  elapsed,
			Fraction: fraction(elapsed, planned),
		}
	}

	ref := now
	if s.State == focus.StatePaused && s.PausedAt != nil {
		ref = *s.PausedAt
	}

	remaining := s.PlannedEndTime.Sub(ref)
	elapsed := planned - remaining
	if elapsed < 0 {
		elapsed = 0
	}
	p := Progress{
		Elapsed:  elapsed,
		Fraction: fraction(elapsed, planned),
		Expired:  remaining <= 0,
		Paused:   s.State == focus.StatePaused,
	}
	if remaining > 0 {
		p.Remaining = remaining
	}
	return p
}

func fraction(elapsed, planned time.Duration) float64 {
	if planned <= 0 {
		return 0
	}
	f := float64(elapsed) / float64(planned)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}
