package analytics

import (
	"sort"
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// DefaultProfileDays is the history used for a personal profile.
const DefaultProfileDays = 90

const (
	profileMinHourSessions = 3
	profileMinHourScore    = 7.0
	profileMinTypeSessions = 5

	reliabilityHighSessions   = 50
	reliabilityMediumSessions = 20
)

// Reliability grades how much history backs a profile.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// TypePreference is a user's record with one session type.
type TypePreference struct {
	Type            focus.SessionType `json:"type"`
	Sessions        int               `json:"sessions"`
	CompletionRate  float64           `json:"completion_rate"`
	AvgProductivity float64           `json:"avg_productivity"`
}

// Profile captures when and how a user focuses best.
type Profile struct {
	PeriodDays    int              `json:"period_days"`
	TotalSessions int              `json:"total_sessions"`
	OptimalHours  []int            `json:"optimal_hours"`
	Types         []TypePreference `json:"types"`
	Reliability   Reliability      `json:"reliability"`
}

// BuildProfile derives a personal profile. Hours qualify with at least three
// rated sessions averaging 7 or more; types qualify with at least five
// sessions.
func BuildProfile(sessions []*focus.Session, days int, loc *time.Location) *Profile {
	if loc == nil {
		loc = time.UTC
	}
	p := &Profile{
		PeriodDays:    days,
		TotalSessions: len(sessions),
		Reliability:   reliability(len(sessions)),
	}

	var hourly [24]mean
	for _, s := range sessions {
		if s.ProductivityScore != nil {
			hourly[s.StartTime.In(loc).Hour()].add(*s.ProductivityScore)
		}
	}
	for h, m := range hourly {
		if m.n >= profileMinHourSessions && m.value() >= profileMinHourScore {
			p.OptimalHours = append(p.OptimalHours, h)
		}
	}
	sort.Ints(p.OptimalHours)

	for _, ts := range ComputeTypePerformance(sessions) {
		if ts.TotalSessions < profileMinTypeSessions {
			continue
		}
		p.Types = append(p.Types, TypePreference{
			Type:            ts.Type,
			Sessions:        ts.TotalSessions,
			CompletionRate:  ts.CompletionRate,
			AvgProductivity: ts.AvgProductivity,
		})
	}
	return p
}

func reliability(n int) Reliability {
	switch {
	case n >= reliabilityHighSessions:
		return ReliabilityHigh
	case n >= reliabilityMediumSessions:
		return ReliabilityMedium
	default:
		return ReliabilityLow
	}
}
