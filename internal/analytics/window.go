package analytics

import (
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// DefaultDays is the trailing window used when callers do not pick one.
const DefaultDays = 30

// Window is a range of whole calendar days ending today. Start is midnight of
// the first day; End is the instant the window was computed.
type Window struct {
	Days  int
	Start time.Time
	End   time.Time
	Loc   *time.Location
}

// NewWindow returns the window covering today and the days-1 days before it,
// in loc.
func NewWindow(now time.Time, days int, loc *time.Location) (Window, error) {
	if err := focus.ValidateWindow(days); err != nil {
		return Window{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	today := dayOf(now, loc)
	return Window{
		Days:  days,
		Start: today.AddDate(0, 0, -(days - 1)),
		End:   now,
		Loc:   loc,
	}, nil
}

// Today returns midnight of the window's last day.
func (w Window) Today() time.Time {
	return dayOf(w.End, w.Loc)
}

// dayOf truncates t to midnight of its calendar day in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// completedDays returns the set of calendar days containing at least one
// completed session, whatever its completion reason.
func completedDays(sessions []*focus.Session, loc *time.Location) map[string]time.Time {
	days := make(map[string]time.Time)
	for _, s := range sessions {
		if s.State != focus.StateCompleted {
			continue
		}
		d := dayOf(s.StartTime, loc)
		days[dayKey(d, loc)] = d
	}
	return days
}
