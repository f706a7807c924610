package analytics

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abhisek/focusflow/internal/focus"
)

// Insight thresholds.
const (
	completionGood      = 0.6
	completionExcellent = 0.8
	completionPerfect   = 0.95

	productivitySolid = 6.0
	productivityHigh  = 8.0

	focusHoursGood        = 20.0
	focusHoursImpressive  = 40.0
	focusHoursHalfCentury = 50.0
	focusHoursCentury     = 100.0

	streakKeepUp  = 3
	streakAmazing = 7
	streakWeek    = 7
	streakMonth   = 30

	bestTypeCompletion       = 0.8
	interruptionsHigh        = 2.0
	interruptionsExcessive   = 3.0
	typeCompletionWeak       = 0.5
	actualToPlannedShortfall = 0.8

	scheduleHours = 3
)

// Achievement is an unlocked badge.
type Achievement struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Schedule suggests when to focus.
type Schedule struct {
	RecommendedHours []int    `json:"recommended_hours"`
	MostActiveHours  []int    `json:"most_active_hours"`
	Suggestions      []string `json:"suggestions"`
}

// Insights is a rule-based reading of a user's analytics.
type Insights struct {
	Summary          []string      `json:"summary"`
	Recommendations  []string      `json:"recommendations"`
	Achievements     []Achievement `json:"achievements"`
	ImprovementAreas []string      `json:"improvement_areas"`
	Schedule         Schedule      `json:"schedule"`
}

// NewPrinter returns the printer used to render insight text.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// BuildInsights applies the insight rules to precomputed analytics. A nil
// printer renders in English.
func BuildInsights(st *Stats, hp *HourlyPattern, types []TypeStats, p *message.Printer) *Insights {
	if p == nil {
		p = NewPrinter(language.English)
	}
	if st.TotalSessions == 0 {
		return &Insights{
			Summary: []string{p.Sprintf("No focus sessions in the last %d days yet. Start one to build your history.", st.PeriodDays)},
			Schedule: Schedule{
				Suggestions: []string{"Need more data"},
			},
		}
	}
	return &Insights{
		Summary:          summaryInsights(st, p),
		Recommendations:  recommendations(st, hp, types, p),
		Achievements:     achievements(st),
		ImprovementAreas: improvementAreas(st, types, p),
		Schedule:         optimalSchedule(hp, p),
	}
}

func summaryInsights(st *Stats, p *message.Printer) []string {
	var out []string
	pct := st.CompletionRate * 100
	switch {
	case st.CompletionRate >= completionExcellent:
		out = append(out, p.Sprintf("Excellent consistency! You complete %.1f%% of your sessions.", pct))
	case st.CompletionRate >= completionGood:
		out = append(out, p.Sprintf("Good focus habits with a %.1f%% completion rate.", pct))
	default:
		out = append(out, p.Sprintf("Room for improvement: %.1f%% completion rate.", pct))
	}

	switch {
	case st.AvgProductivity >= productivityHigh:
		out = append(out, "Your self-assessed productivity is consistently high!")
	case st.AvgProductivity >= productivitySolid:
		out = append(out, "Your productivity levels are solid with room for optimization.")
	}

	hours := st.FocusHours()
	switch {
	case hours >= focusHoursImpressive:
		out = append(out, p.Sprintf("Impressive! You've focused for %.1f hours this period.", hours))
	case hours >= focusHoursGood:
		out = append(out, p.Sprintf("Good progress with %.1f hours of focused work.", hours))
	}

	switch {
	case st.CurrentStreak >= streakAmazing:
		out = append(out, p.Sprintf("Amazing! You're on a %d-day streak!", st.CurrentStreak))
	case st.CurrentStreak >= streakKeepUp:
		out = append(out, p.Sprintf("Keep it up! %d days in a row.", st.CurrentStreak))
	}
	return out
}

func recommendations(st *Stats, hp *HourlyPattern, types []TypeStats, p *message.Printer) []string {
	var out []string
	if hp != nil && len(hp.Peak) > 0 {
		out = append(out, p.Sprintf("Schedule important work around %d:00 for peak performance.", hp.Peak[0].Hour))
	}

	if best, ok := bestType(types); ok && best.CompletionRate > bestTypeCompletion {
		out = append(out, p.Sprintf("You excel at %s sessions. Consider doing more of these.", best.Type.DisplayName()))
	}

	if st.AvgInterruptions > interruptionsHigh {
		out = append(out, "Consider using Do Not Disturb mode to reduce interruptions.")
	}

	if st.AvgActualDuration > 0 && st.AvgActualDuration < st.AvgPlannedDuration*actualToPlannedShortfall {
		out = append(out, "Try shorter planned sessions to improve completion rates.")
	}
	return out
}

// bestType returns the type with the highest completion rate; the first in
// canonical order wins ties.
func bestType(types []TypeStats) (TypeStats, bool) {
	if len(types) == 0 {
		return TypeStats{}, false
	}
	best := types[0]
	for _, t := range types[1:] {
		if t.CompletionRate > best.CompletionRate {
			best = t
		}
	}
	return best, true
}

func achievements(st *Stats) []Achievement {
	var out []Achievement
	hours := st.FocusHours()
	switch {
	case hours >= focusHoursCentury:
		out = append(out, Achievement{Kind: "focus_time", Title: "Century Club", Description: "100+ hours of focused work!"})
	case hours >= focusHoursHalfCentury:
		out = append(out, Achievement{Kind: "focus_time", Title: "Half Century", Description: "50+ hours of focused work!"})
	}

	switch {
	case st.LongestStreak >= streakMonth:
		out = append(out, Achievement{Kind: "streak", Title: "Monthly Master", Description: "30+ day focus streak!"})
	case st.LongestStreak >= streakWeek:
		out = append(out, Achievement{Kind: "streak", Title: "Week Warrior", Description: "7+ day focus streak!"})
	}

	switch {
	case st.CompletionRate >= completionPerfect:
		out = append(out, Achievement{Kind: "completion", Title: "Nearly Perfect", Description: "95%+ session completion rate!"})
	case st.CompletionRate >= completionExcellent:
		out = append(out, Achievement{Kind: "completion", Title: "Consistent Performer", Description: "80%+ session completion rate!"})
	}
	return out
}

func improvementAreas(st *Stats, types []TypeStats, p *message.Printer) []string {
	var out []string
	if st.CompletionRate < completionGood {
		out = append(out, "Focus on completing more sessions. Try shorter durations.")
	}
	if st.AvgProductivity < productivitySolid {
		out = append(out, "Work on minimizing distractions during focus sessions.")
	}
	if st.AvgInterruptions > interruptionsExcessive {
		out = append(out, "Reduce interruptions by setting boundaries and using focus tools.")
	}
	for _, t := range types {
		if t.CompletionRate < typeCompletionWeak {
			out = append(out, p.Sprintf("Consider shorter %s sessions for better completion rates.", t.Type.DisplayName()))
		}
	}
	return out
}

func optimalSchedule(hp *HourlyPattern, p *message.Printer) Schedule {
	var sch Schedule
	if hp == nil {
		sch.Suggestions = []string{"Need more data", "Need more data"}
		return sch
	}
	for _, h := range head(hp.Peak, scheduleHours) {
		sch.RecommendedHours = append(sch.RecommendedHours, h.Hour)
	}
	for _, h := range head(hp.MostActive, scheduleHours) {
		if h.TotalSessions > 0 {
			sch.MostActiveHours = append(sch.MostActiveHours, h.Hour)
		}
	}

	if len(sch.RecommendedHours) > 0 {
		sch.Suggestions = append(sch.Suggestions, p.Sprintf("Peak productivity: %d:00", sch.RecommendedHours[0]))
	} else {
		sch.Suggestions = append(sch.Suggestions, "Need more data")
	}
	if len(sch.MostActiveHours) > 0 {
		sch.Suggestions = append(sch.Suggestions, p.Sprintf("Most active period: %d:00", sch.MostActiveHours[0]))
	} else {
		sch.Suggestions = append(sch.Suggestions, "Need more data")
	}
	return sch
}

// qualityShare returns the fraction of scored sessions in the given category.
func qualityShare(st *Stats, q focus.Quality) float64 {
	total := 0
	for _, n := range st.QualityDistribution {
		total += n
	}
	return ratio(st.QualityDistribution[q], total)
}
