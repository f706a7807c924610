package analytics

import (
	"sort"
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// DailyPoint summarizes one calendar day.
type DailyPoint struct {
	Date              time.Time `json:"date"`
	TotalSessions     int       `json:"total_sessions"`
	CompletedSessions int       `json:"completed_sessions"`
	CompletionRate    float64   `json:"completion_rate"`
	FocusMinutes      int       `json:"focus_minutes"`
	AvgProductivity   float64   `json:"avg_productivity"`
	Interruptions     int       `json:"interruptions"`
}

// ComputeDailyTrend returns one point per day of w in calendar order. Days
// without sessions are present with zero values.
func ComputeDailyTrend(sessions []*focus.Session, w Window) []DailyPoint {
	points := make([]DailyPoint, w.Days)
	index := make(map[string]int, w.Days)
	for i := range points {
		d := w.Start.AddDate(0, 0, i)
		points[i].Date = d
		index[dayKey(d, w.Loc)] = i
	}

	prod := make([]mean, w.Days)
	for _, s := range sessions {
		i, ok := index[dayKey(s.StartTime, w.Loc)]
		if !ok {
			continue
		}
		p := &points[i]
		p.TotalSessions++
		if s.IsSuccessful() {
			p.CompletedSessions++
		}
		p.FocusMinutes += s.FocusMinutes()
		p.Interruptions += s.InterruptionCount
		if s.ProductivityScore != nil {
			prod[i].add(*s.ProductivityScore)
		}
	}

	for i := range points {
		points[i].CompletionRate = round(ratio(points[i].CompletedSessions, points[i].TotalSessions), 3)
		points[i].AvgProductivity = round(prod[i].value(), 2)
	}
	return points
}

// HourStats summarizes sessions that started within one hour of the day.
type HourStats struct {
	Hour              int     `json:"hour"`
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	CompletionRate    float64 `json:"completion_rate"`
	FocusMinutes      int     `json:"focus_minutes"`
	AvgProductivity   float64 `json:"avg_productivity"`
}

// HourlyPattern buckets sessions by start hour.
type HourlyPattern struct {
	// Hours always has 24 entries, index == hour.
	Hours []HourStats `json:"hours"`

	// Peak holds up to five hours with sessions, best mean productivity first.
	Peak []HourStats `json:"peak"`

	// MostActive holds the five hours with the most sessions.
	MostActive []HourStats `json:"most_active"`
}

const topHours = 5

// ComputeHourlyPattern buckets sessions by their start hour in loc.
func ComputeHourlyPattern(sessions []*focus.Session, loc *time.Location) *HourlyPattern {
	if loc == nil {
		loc = time.UTC
	}
	hours := make([]HourStats, 24)
	prod := make([]mean, 24)
	for h := range hours {
		hours[h].Hour = h
	}

	for _, s := range sessions {
		h := s.StartTime.In(loc).Hour()
		b := &hours[h]
		b.TotalSessions++
		if s.IsSuccessful() {
			b.CompletedSessions++
		}
		b.FocusMinutes += s.FocusMinutes()
		if s.ProductivityScore != nil {
			prod[h].add(*s.ProductivityScore)
		}
	}
	for h := range hours {
		hours[h].CompletionRate = round(ratio(hours[h].CompletedSessions, hours[h].TotalSessions), 3)
		hours[h].AvgProductivity = round(prod[h].value(), 2)
	}

	var peak []HourStats
	for _, h := range hours {
		if h.TotalSessions > 0 {
			peak = append(peak, h)
		}
	}
	sort.SliceStable(peak, func(i, j int) bool { return peak[i].AvgProductivity > peak[j].AvgProductivity })

	active := make([]HourStats, len(hours))
	copy(active, hours)
	sort.SliceStable(active, func(i, j int) bool { return active[i].TotalSessions > active[j].TotalSessions })

	return &HourlyPattern{
		Hours:      hours,
		Peak:       head(peak, topHours),
		MostActive: head(active, topHours),
	}
}

func head(hs []HourStats, n int) []HourStats {
	if len(hs) > n {
		hs = hs[:n]
	}
	out := make([]HourStats, len(hs))
	copy(out, hs)
	return out
}

// TypeStats summarizes sessions of one type.
type TypeStats struct {
	Type               focus.SessionType `json:"type"`
	TotalSessions      int               `json:"total_sessions"`
	CompletedSessions  int               `json:"completed_sessions"`
	CompletionRate     float64           `json:"completion_rate"`
	AvgProductivity    float64           `json:"avg_productivity"`
	AvgPlannedDuration float64           `json:"avg_planned_duration"`
	AvgActualDuration  float64           `json:"avg_actual_duration"`
	TotalInterruptions int               `json:"total_interruptions"`
	AvgInterruptions   float64           `json:"avg_interruptions"`
}

// ComputeTypePerformance returns stats for each type present in sessions, in
// the order of focus.AllSessionTypes.
func ComputeTypePerformance(sessions []*focus.Session) []TypeStats {
	type acc struct {
		st                    TypeStats
		prod, planned, actual mean
	}
	byType := make(map[focus.SessionType]*acc)
	for _, s := range sessions {
		a, ok := byType[s.Type]
		if !ok {
			a = &acc{st: TypeStats{Type: s.Type}}
			byType[s.Type] = a
		}
		a.st.TotalSessions++
		if s.IsSuccessful() {
			a.st.CompletedSessions++
		}
		a.st.TotalInterruptions += s.InterruptionCount
		a.planned.add(float64(s.PlannedDuration))
		if s.ActualDuration != nil {
			a.actual.add(float64(*s.ActualDuration))
		}
		if s.ProductivityScore != nil {
			a.prod.add(*s.ProductivityScore)
		}
	}

	var out []TypeStats
	for _, t := range focus.AllSessionTypes() {
		a, ok := byType[t]
		if !ok {
			continue
		}
		st := a.st
		st.CompletionRate = round(ratio(st.CompletedSessions, st.TotalSessions), 3)
		st.AvgProductivity = round(a.prod.value(), 2)
		st.AvgPlannedDuration = round(a.planned.value(), 1)
		st.AvgActualDuration = round(a.actual.value(), 1)
		st.AvgInterruptions = round(ratio(st.TotalInterruptions, st.TotalSessions), 2)
		out = append(out, st)
	}
	return out
}
