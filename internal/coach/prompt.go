package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/focusflow/internal/analytics"
)

const noteSystemPrompt = `You are a calm, practical focus coach. You read a person's recent focus-session analytics and write a brief note that helps them plan their next sessions.`

func buildNoteUserMessage(in Input) string {
	var b strings.Builder
	st := in.Stats

	fmt.Fprintf(&b, "Period: last %d days\n", st.PeriodDays)
	fmt.Fprintf(&b, "Sessions: %d started, %d completed (%.0f%%)\n",
		st.TotalSessions, st.CompletedSessions, st.CompletionRate*100)
	fmt.Fprintf(&b, "Focus time: %.1f hours\n", st.FocusHours())
	if st.AvgProductivity > 0 {
		fmt.Fprintf(&b, "Average productivity: %.1f/10\n", st.AvgProductivity)
	}
	fmt.Fprintf(&b, "Interruptions per session: %.1f\n", st.AvgInterruptions)
	fmt.Fprintf(&b, "Streak: %d days current, %d days longest\n", st.CurrentStreak, st.LongestStreak)

	if len(in.Types) > 0 {
		b.WriteString("\nBy session type:\n")
		for _, t := range in.Types {
			fmt.Fprintf(&b, "- %s: %d sessions, %.0f%% completed\n", t.Type, t.TotalSessions, t.CompletionRate*100)
		}
	}

	if in.Insights != nil {
		writeList(&b, "Rule-based findings", in.Insights.Summary)
		writeList(&b, "Rule-based recommendations", in.Insights.Recommendations)
		if hours := in.Insights.Schedule.RecommendedHours; len(hours) > 0 {
			fmt.Fprintf(&b, "\nBest start hours: %s\n", formatHours(hours))
		}
	}

	if p := in.Profile; p != nil && p.Reliability != analytics.ReliabilityLow && len(p.OptimalHours) > 0 {
		fmt.Fprintf(&b, "Personal optimal hours (%s confidence): %s\n", p.Reliability, formatHours(p.OptimalHours))
	}

	b.WriteString(`
Instructions:
1. Write a one-sentence headline about the period.
2. List 2-4 observations. Each must cite a number from above.
3. Suggest 1-3 concrete next steps, such as a session type, a length or a time of day.
4. Close with one warm sentence. No exclamation marks, no emoji.
Do not invent data that is not shown above.`)

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func formatHours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}
