package analytics

import (
	"sort"
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// StreakMilestones are the streak lengths, in days, that raise an event.
var StreakMilestones = []int{3, 7, 14, 30, 50, 100}

// CurrentStreak counts consecutive days with a completed session, walking
// back from today. A day without one, today included, ends the streak.
// A nil loc means UTC.
func CurrentStreak(sessions []*focus.Session, today time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	days := completedDays(sessions, loc)
	streak := 0
	for d := dayOf(today, loc); ; d = d.AddDate(0, 0, -1) {
		if _, ok := days[dayKey(d, loc)]; !ok {
			return streak
		}
		streak++
	}
}

// LongestStreak returns the longest run of consecutive calendar days that
// each contain a completed session. A nil loc means UTC.
func LongestStreak(sessions []*focus.Session, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	days := completedDays(sessions, loc)
	if len(days) == 0 {
		return 0
	}

	sorted := make([]time.Time, 0, len(days))
	for _, d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if dayKey(sorted[i-1].AddDate(0, 0, 1), loc) == dayKey(sorted[i], loc) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// IsStreakMilestone reports whether days is one of StreakMilestones.
func IsStreakMilestone(days int) bool {
	for _, m := range StreakMilestones {
		if m == days {
			return true
		}
	}
	return false
}

// NextStreakMilestone returns the next milestone above the current streak.
// Beyond the last fixed milestone, every further 50 days counts.
func NextStreakMilestone(current int) int {
	for _, m := range StreakMilestones {
		if m > current {
			return m
		}
	}
	return ((current / 50) + 1) * 50
}

func streakMessage(days int) string {
	switch days {
	case 3:
		return "3-day streak! You're building great habits!"
	case 7:
		return "One week streak! You're on fire!"
	case 14:
		return "Two week streak! Incredible consistency!"
	case 30:
		return "One month streak! You're a focus master!"
	case 50:
		return "50-day streak! Absolutely phenomenal!"
	case 100:
		return "100-day streak! You're a legend!"
	default:
		return ""
	}
}
