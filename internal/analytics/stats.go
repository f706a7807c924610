package analytics

import (
	"math"
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// Stats aggregates a user's sessions over a window.
type Stats struct {
	PeriodDays int       `json:"period_days"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`

	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	CompletionRate    float64 `json:"completion_rate"`

	TotalFocusMinutes     int `json:"total_focus_minutes"`
	CompletedFocusMinutes int `json:"completed_focus_minutes"`

	AvgPlannedDuration float64 `json:"avg_planned_duration"`
	AvgActualDuration  float64 `json:"avg_actual_duration"`
	AvgProductivity    float64 `json:"avg_productivity"`

	TotalInterruptions int     `json:"total_interruptions"`
	AvgInterruptions   float64 `json:"avg_interruptions"`

	QualityDistribution map[focus.Quality]int     `json:"quality_distribution"`
	TypeDistribution    map[focus.SessionType]int `json:"type_distribution"`

	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// FocusHours returns total focus time in hours.
func (s *Stats) FocusHours() float64 {
	return float64(s.TotalFocusMinutes) / 60
}

// emptyStats is the zero report for a window with no sessions.
func emptyStats(w Window) *Stats {
	return &Stats{
		PeriodDays:          w.Days,
		Start:               w.Start,
		End:                 w.End,
		QualityDistribution: map[focus.Quality]int{},
		TypeDistribution:    map[focus.SessionType]int{},
	}
}

// ComputeStats aggregates sessions, which must all fall inside w.
func ComputeStats(sessions []*focus.Session, w Window) *Stats {
	st := emptyStats(w)
	if len(sessions) == 0 {
		return st
	}

	var planned, actual mean
	var productivity mean
	for _, s := range sessions {
		st.TotalSessions++
		minutes := s.FocusMinutes()
		st.TotalFocusMinutes += minutes
		if s.IsSuccessful() {
			st.CompletedSessions++
			st.CompletedFocusMinutes += minutes
		}

		planned.add(float64(s.PlannedDuration))
		if s.ActualDuration != nil {
			actual.add(float64(*s.ActualDuration))
		}
		if s.ProductivityScore != nil {
			productivity.add(*s.ProductivityScore)
		}

		st.TotalInterruptions += s.InterruptionCount
		if s.Quality != "" {
			st.QualityDistribution[s.Quality]++
		}
		st.TypeDistribution[s.Type]++
	}

	st.CompletionRate = round(float64(st.CompletedSessions)/float64(st.TotalSessions), 3)
	st.AvgPlannedDuration = round(planned.value(), 1)
	st.AvgActualDuration = round(actual.value(), 1)
	st.AvgProductivity = round(productivity.value(), 2)
	st.AvgInterruptions = round(float64(st.TotalInterruptions)/float64(st.TotalSessions), 2)
	st.CurrentStreak = CurrentStreak(sessions, w.Today(), w.Loc)
	st.LongestStreak = LongestStreak(sessions, w.Loc)
	return st
}

// mean is a running arithmetic mean; the mean of nothing is 0.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
