package analytics

import (
	"golang.org/x/text/message"

	"github.com/abhisek/focusflow/internal/focus"
)

// WeeklyDays is the length of a weekly summary.
const WeeklyDays = 7

// Weekly is a seven-day digest.
type Weekly struct {
	Stats *Stats `json:"stats"`

	// BestDay is the day with the most focus minutes, nil for an empty week.
	BestDay *DailyPoint `json:"best_day,omitempty"`

	// PeakHour is the most productive start hour, -1 when unknown.
	PeakHour int `json:"peak_hour"`

	HighQualityShare float64  `json:"high_quality_share"`
	NextMilestone    int      `json:"next_streak_milestone"`
	Lines            []string `json:"lines"`
}

// BuildWeekly assembles a weekly digest from a week of sessions.
func BuildWeekly(sessions []*focus.Session, w Window, p *message.Printer) *Weekly {
	st := ComputeStats(sessions, w)
	trend := ComputeDailyTrend(sessions, w)
	hp := ComputeHourlyPattern(sessions, w.Loc)

	wk := &Weekly{
		Stats:            st,
		PeakHour:         -1,
		HighQualityShare: round(qualityShare(st, focus.QualityHigh), 3),
		NextMilestone:    NextStreakMilestone(st.CurrentStreak),
	}
	for i := range trend {
		if trend[i].FocusMinutes == 0 {
			continue
		}
		if wk.BestDay == nil || trend[i].FocusMinutes > wk.BestDay.FocusMinutes {
			d := trend[i]
			wk.BestDay = &d
		}
	}
	if len(hp.Peak) > 0 {
		wk.PeakHour = hp.Peak[0].Hour
	}

	wk.Lines = []string{
		p.Sprintf("%d sessions, %d completed", st.TotalSessions, st.CompletedSessions),
		p.Sprintf("%.1f hours of focused work", st.FocusHours()),
		p.Sprintf("%.1f%% completion rate", st.CompletionRate*100),
		p.Sprintf("Current streak: %d days (next milestone at %d)", st.CurrentStreak, wk.NextMilestone),
	}
	if wk.BestDay != nil {
		wk.Lines = append(wk.Lines, p.Sprintf("Best day: %s with %d minutes", wk.BestDay.Date.Format("Monday"), wk.BestDay.FocusMinutes))
	}
	return wk
}
