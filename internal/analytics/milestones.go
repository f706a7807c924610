package analytics

import (
	"time"

	"golang.org/x/text/message"

	"github.com/abhisek/focusflow/internal/focus"
)

// DefaultMilestoneWindowDays bounds the history scanned for milestones.
const DefaultMilestoneWindowDays = 365

// FocusHourMilestones are the cumulative focus-hour totals that raise an event.
var FocusHourMilestones = []int{10, 25, 50, 100, 250, 500}

// ReachedFocusMilestone returns the highest focus-hour milestone at or below
// hours, or 0 when none has been reached.
func ReachedFocusMilestone(hours float64) int {
	reached := 0
	for _, m := range FocusHourMilestones {
		if hours >= float64(m) {
			reached = m
		}
	}
	return reached
}

// MilestoneEvents derives milestone events for a user from the current streak
// and cumulative focus minutes.
func MilestoneEvents(userID string, streak, focusMinutes int, at time.Time, p *message.Printer) []focus.Event {
	var out []focus.Event
	if IsStreakMilestone(streak) {
		out = append(out, focus.Event{
			Kind:   focus.EventStreakMilestone,
			UserID: userID,
			At:     at,
			Data: map[string]any{
				"streak_days": streak,
				"title":       p.Sprintf("%d-Day Streak!", streak),
				"message":     streakMessage(streak),
			},
		})
	}

	hours := float64(focusMinutes) / 60
	if m := ReachedFocusMilestone(hours); m > 0 {
		out = append(out, focus.Event{
			Kind:   focus.EventFocusTimeMilestone,
			UserID: userID,
			At:     at,
			Data: map[string]any{
				"milestone_hours": m,
				"total_hours":     round(hours, 1),
				"message":         p.Sprintf("Amazing! You've completed %.1f hours of focused work!", hours),
			},
		})
	}
	return out
}
