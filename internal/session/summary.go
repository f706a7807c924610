package session

import (
	"fmt"

	"github.com/abhisek/focusflow/internal/focus"
)

// Summary describes a completed session for display.
type Summary struct {
	Type         focus.SessionType
	Reason       focus.CompletionReason
	Planned      int
	Actual       int
	Successful   bool
	BreakMinutes int

	// Overrun is Actual minus Planned; negative when the session ended early.
	Overrun int
}

// BuildSummary creates a Summary from a completed session. It returns nil for
// sessions that are still open.
func BuildSummary(s *focus.Session) *Summary {
	if s == nil || s.State != focus.StateCompleted {
		return nil
	}
	actual := s.FocusMinutes()
	return &Summary{
		Type:         s.Type,
		Reason:       s.CompletionReason,
		Planned:      s.PlannedDuration,
		Actual:       actual,
		Successful:   s.IsSuccessful(),
		BreakMinutes: s.Type.BreakMinutes(),
		Overrun:      actual - s.PlannedDuration,
	}
}

// FormatMinutes renders a minute count as "45 minutes", "2 hours" or "1h 30m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return plural(minutes, "minute")
	}
	hours, rem := minutes/60, minutes%60
	if rem == 0 {
		return plural(hours, "hour")
	}
	return fmt.Sprintf("%dh %dm", hours, rem)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
