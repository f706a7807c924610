// Package scoring rates focus sessions on a 0-10 scale from six weighted
// factors and assigns the coarse quality category.
package scoring

import (
	"math"
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// Factor weights. They sum to 1.
const (
	WeightCompletion   = 0.30
	WeightConsistency  = 0.25
	WeightInterruption = 0.20
	WeightTiming       = 0.10
	WeightTypeHistory  = 0.10
	WeightStreak       = 0.05
)

const (
	maxInterruptions = 5

	optimalHourBonus = 0.2
	anyOptimalBonus  = 0.1

	minTypeMultiplier = 0.8
	maxTypeMultiplier = 1.2
)

// QualityFactors are the six inputs to one session's score.
type QualityFactors struct {
	Completion          float64 `json:"completion"`
	DurationConsistency float64 `json:"duration_consistency"`
	InterruptionPenalty float64 `json:"interruption_penalty"`
	TimeOfDayBonus      float64 `json:"time_of_day_bonus"`
	TypeMultiplier      float64 `json:"type_multiplier"`
	StreakBonus         float64 `json:"streak_bonus"`
}

// defaultOptimalHours applies to types without their own set.
var defaultOptimalHours = []int{9, 10, 11, 14, 15}

// OptimalHours returns the start hours in which a session type performs best.
func OptimalHours(t focus.SessionType) []int {
	switch t {
	case focus.TypeDeepWork:
		return []int{9, 10, 11, 14, 15}
	case focus.TypePomodoro:
		return []int{9, 10, 11, 14, 15, 16}
	case focus.TypeStudy:
		return []int{9, 10, 11, 14, 15, 16, 19, 20}
	case focus.TypeLongFocus:
		return []int{9, 10, 11, 14, 15}
	case focus.TypeCustom:
		return defaultOptimalHours
	default:
		return defaultOptimalHours
	}
}

func inOptimalHours(t focus.SessionType, hour int) bool {
	for _, h := range OptimalHours(t) {
		if h == hour {
			return true
		}
	}
	return false
}

func inAnyOptimalHours(hour int) bool {
	for _, t := range focus.AllSessionTypes() {
		if inOptimalHours(t, hour) {
			return true
		}
	}
	return false
}

// TimeOfDayBonus returns 0.2 when hour is optimal for the type, 0.1 when it
// is optimal for some other type, and 0 otherwise.
func TimeOfDayBonus(t focus.SessionType, hour int) float64 {
	switch {
	case inOptimalHours(t, hour):
		return optimalHourBonus
	case inAnyOptimalHours(hour):
		return anyOptimalBonus
	default:
		return 0
	}
}

// StreakBonus maps the current streak to its bonus.
func StreakBonus(streak int) float64 {
	switch {
	case streak >= 7:
		return 0.15
	case streak >= 3:
		return 0.10
	case streak >= 1:
		return 0.05
	default:
		return 0
	}
}

// Factors derives the quality factors of s. The start hour is read in loc.
func Factors(s *focus.Session, uc focus.UserContext, loc *time.Location) QualityFactors {
	if loc == nil {
		loc = time.UTC
	}
	var f QualityFactors

	if s.IsSuccessful() {
		f.Completion = 1
	}

	f.DurationConsistency = 0.5
	if s.ActualDuration != nil && s.PlannedDuration > 0 {
		ratio := float64(*s.ActualDuration) / float64(s.PlannedDuration)
		f.DurationConsistency = math.Max(0, 1-math.Abs(1-ratio))
	}

	f.InterruptionPenalty = math.Min(1, float64(s.InterruptionCount)/maxInterruptions)
	f.TimeOfDayBonus = TimeOfDayBonus(s.Type, s.StartTime.In(loc).Hour())

	f.TypeMultiplier = 1
	if rate, ok := uc.TypeCompletionRate(s.Type); ok {
		f.TypeMultiplier = clamp(minTypeMultiplier+0.4*rate, minTypeMultiplier, maxTypeMultiplier)
	}

	f.StreakBonus = StreakBonus(uc.CurrentStreak)
	return f
}

// Weighted returns the weighted factor sum before scaling.
func (f QualityFactors) Weighted() float64 {
	return f.Completion*WeightCompletion +
		f.DurationConsistency*WeightConsistency +
		(1-f.InterruptionPenalty)*WeightInterruption +
		f.TimeOfDayBonus*WeightTiming +
		f.TypeMultiplier*WeightTypeHistory +
		f.StreakBonus*WeightStreak
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
