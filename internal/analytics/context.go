package analytics

import (
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// BuildUserContext derives the scoring context from a session history. It is
// rebuilt for every batch and never cached.
func BuildUserContext(sessions []*focus.Session, today time.Time, loc *time.Location) focus.UserContext {
	if loc == nil {
		loc = time.UTC
	}
	perf := make(map[focus.SessionType]focus.TypeRate)
	for _, s := range sessions {
		tr := perf[s.Type]
		tr.Sessions++
		if s.IsSuccessful() {
			tr.Successful++
		}
		perf[s.Type] = tr
	}
	for t, tr := range perf {
		tr.CompletionRate = ratio(tr.Successful, tr.Sessions)
		perf[t] = tr
	}

	return focus.UserContext{
		TypePerformance: perf,
		CurrentStreak:   CurrentStreak(sessions, today, loc),
		TotalSessions:   len(sessions),
	}
}
