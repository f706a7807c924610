package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/focusflow/internal/analytics"
	"github.com/abhisek/focusflow/internal/coach"
	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/llm"
	"github.com/abhisek/focusflow/internal/logging"
	"github.com/abhisek/focusflow/internal/session"
	"github.com/abhisek/focusflow/internal/store"
	"github.com/abhisek/focusflow/internal/ui/theme"
)

// weeklySnapshotKind labels stored weekly digests.
const (
	weeklySnapshotKind = "weekly"
	weeklySnapshotKeep = 12
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focus statistics",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		st, err := a.engine.UserStats(cmd.Context(), a.cfg.UserID, days(cmd, a.cfg.Analytics.Days))
		if err != nil {
			return err
		}
		return render(cmd, st, func(w io.Writer) { printStats(w, st) })
	}),
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show focus minutes per day",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		points, err := a.engine.DailyTrend(cmd.Context(), a.cfg.UserID, days(cmd, 7))
		if err != nil {
			return err
		}
		return render(cmd, points, func(w io.Writer) {
			t := newTable("Day", "Sessions", "Completed", "Rate", "Focus", "Productivity", "Interruptions")
			for _, p := range points {
				t.Row(
					p.Date.Format("Mon 01-02"),
					fmt.Sprint(p.TotalSessions),
					fmt.Sprint(p.CompletedSessions),
					pct(p.CompletionRate),
					fmt.Sprintf("%dm", p.FocusMinutes),
					fmt.Sprintf("%.1f", p.AvgProductivity),
					fmt.Sprint(p.Interruptions),
				)
			}
			printTable(w, t)
		})
	}),
}

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Show productivity by hour of day",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		hp, err := a.engine.HourlyPattern(cmd.Context(), a.cfg.UserID, days(cmd, a.cfg.Analytics.Days))
		if err != nil {
			return err
		}
		return render(cmd, hp, func(w io.Writer) {
			t := newTable("Hour", "Sessions", "Completed", "Rate", "Focus", "Productivity")
			for _, h := range hp.Hours {
				if h.TotalSessions == 0 {
					continue
				}
				t.Row(
					hourLabel(h.Hour),
					fmt.Sprint(h.TotalSessions),
					fmt.Sprint(h.CompletedSessions),
					pct(h.CompletionRate),
					fmt.Sprintf("%dm", h.FocusMinutes),
					fmt.Sprintf("%.1f", h.AvgProductivity),
				)
			}
			printTable(w, t)
			peak := make([]int, len(hp.Peak))
			for i, h := range hp.Peak {
				peak[i] = h.Hour
			}
			field(w, "Peak hours", hourList(peak))
		})
	}),
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Compare performance across session types",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		types, err := a.engine.TypePerformance(cmd.Context(), a.cfg.UserID, days(cmd, a.cfg.Analytics.Days))
		if err != nil {
			return err
		}
		return render(cmd, types, func(w io.Writer) {
			if len(types) == 0 {
				lipgloss.Fprintln(w, "No sessions in this period.")
				return
			}
			t := newTable("Type", "Sessions", "Rate", "Planned", "Actual", "Productivity", "Interruptions")
			for _, ts := range types {
				t.Row(
					ts.Type.DisplayName(),
					fmt.Sprint(ts.TotalSessions),
					pct(ts.CompletionRate),
					fmt.Sprintf("%.0fm", ts.AvgPlannedDuration),
					fmt.Sprintf("%.0fm", ts.AvgActualDuration),
					fmt.Sprintf("%.1f", ts.AvgProductivity),
					fmt.Sprintf("%.1f", ts.AvgInterruptions),
				)
			}
			printTable(w, t)
		})
	}),
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show insights and recommendations",
	Long: "Show rule-based insights and recommendations. With --ai a coaching note\n" +
		"is written by the configured LLM provider, falling back to the rules when\n" +
		"no provider is configured or the request fails.",
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		ctx := cmd.Context()
		n := days(cmd, a.cfg.Analytics.Days)
		ins, err := a.engine.Insights(ctx, a.cfg.UserID, n)
		if err != nil {
			return err
		}
		if ai, _ := cmd.Flags().GetBool("ai"); !ai {
			return render(cmd, ins, func(w io.Writer) { printInsights(w, ins) })
		}

		in, err := coachInput(ctx, a, n, ins)
		if err != nil {
			return err
		}
		note, err := newCoach(ctx, a).NarrateOrFallback(ctx, in)
		if err != nil {
			return err
		}
		return render(cmd, note, func(w io.Writer) { printNote(w, note) })
	}),
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your personal focus profile",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		p, err := a.engine.PersonalProfile(cmd.Context(), a.cfg.UserID, days(cmd, a.cfg.Analytics.ProfileDays))
		if err != nil {
			return err
		}
		return render(cmd, p, func(w io.Writer) {
			heading(w, fmt.Sprintf("Focus profile, last %d days", p.PeriodDays))
			field(w, "Sessions", p.TotalSessions)
			field(w, "Optimal hours", hourList(p.OptimalHours))
			field(w, "Reliability", p.Reliability)
			if len(p.Types) > 0 {
				t := newTable("Type", "Sessions", "Rate", "Productivity")
				for _, tp := range p.Types {
					t.Row(tp.Type.DisplayName(), fmt.Sprint(tp.Sessions), pct(tp.CompletionRate), fmt.Sprintf("%.1f", tp.AvgProductivity))
				}
				printTable(w, t)
			}
		})
	}),
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Show the weekly summary",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		ctx := cmd.Context()
		wk, err := a.engine.WeeklySummary(ctx, a.cfg.UserID)
		if err != nil {
			return err
		}
		saveWeekly(ctx, a, wk)
		return render(cmd, wk, func(w io.Writer) {
			heading(w, "This week")
			for _, line := range wk.Lines {
				lipgloss.Fprintln(w, "  "+line)
			}
			if wk.PeakHour >= 0 {
				field(w, "Peak hour", hourLabel(wk.PeakHour))
			}
			field(w, "High quality", pct(wk.HighQualityShare))
		})
	}),
}

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "Check streak and focus-time milestones",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		evs, err := a.engine.CheckMilestones(cmd.Context(), a.cfg.UserID)
		if err != nil {
			return err
		}
		return render(cmd, evs, func(w io.Writer) {
			if len(evs) == 0 {
				lipgloss.Fprintln(w, "No milestone reached today.")
				return
			}
			for _, ev := range evs {
				if title, ok := ev.Data["title"].(string); ok {
					heading(w, title)
				}
				if msg, ok := ev.Data["message"].(string); ok {
					lipgloss.Fprintln(w, "  "+msg)
				}
			}
		})
	}),
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, hourlyCmd, typesCmd, insightsCmd} {
		c.Flags().IntP("days", "d", 0, "Days of history to analyze (default from config)")
	}
	trendCmd.Flags().IntP("days", "d", 7, "Days to show")
	profileCmd.Flags().IntP("days", "d", 0, "Days of history to analyze (default from config)")
	insightsCmd.Flags().Bool("ai", false, "Ask the LLM provider for a coaching note")
}

func printStats(w io.Writer, st *analytics.Stats) {
	heading(w, fmt.Sprintf("Last %d days", st.PeriodDays))
	field(w, "Sessions", fmt.Sprintf("%d started, %d completed (%s)", st.TotalSessions, st.CompletedSessions, pct(st.CompletionRate)))
	field(w, "Focus time", session.FormatMinutes(st.TotalFocusMinutes))
	field(w, "Avg planned", fmt.Sprintf("%.0f min", st.AvgPlannedDuration))
	field(w, "Avg actual", fmt.Sprintf("%.0f min", st.AvgActualDuration))
	field(w, "Avg productivity", fmt.Sprintf("%.1f/10", st.AvgProductivity))
	field(w, "Interruptions", fmt.Sprintf("%d (%.1f per session)", st.TotalInterruptions, st.AvgInterruptions))
	field(w, "Current streak", fmt.Sprintf("%d days", st.CurrentStreak))
	field(w, "Longest streak", fmt.Sprintf("%d days", st.LongestStreak))
	if st.TotalSessions > 0 {
		for _, q := range focus.AllQualities() {
			field(w, "Quality "+string(q), fmt.Sprintf("%d  %s", st.QualityDistribution[q], theme.Quality(q)))
		}
	}
}

func printInsights(w io.Writer, ins *analytics.Insights) {
	bullets(w, "Summary", ins.Summary)
	if len(ins.Achievements) > 0 {
		items := make([]string, len(ins.Achievements))
		for i, ach := range ins.Achievements {
			items[i] = ach.Title + ": " + ach.Description
		}
		bullets(w, "Achievements", items)
	}
	bullets(w, "Recommendations", ins.Recommendations)
	bullets(w, "Improve", ins.ImprovementAreas)
	bullets(w, "Schedule", ins.Schedule.Suggestions)
}

func printNote(w io.Writer, note *coach.Note) {
	heading(w, note.Headline)
	bullets(w, "Observations", note.Observations)
	bullets(w, "Suggestions", note.Suggestions)
	if note.Encouragement != "" {
		lipgloss.Fprintln(w)
		lipgloss.Fprintln(w, theme.Subtitle.Render(note.Encouragement))
	}
	hint(w, "model: %s", note.Model)
}

func coachInput(ctx context.Context, a *app, n int, ins *analytics.Insights) (coach.Input, error) {
	st, err := a.engine.UserStats(ctx, a.cfg.UserID, n)
	if err != nil {
		return coach.Input{}, err
	}
	types, err := a.engine.TypePerformance(ctx, a.cfg.UserID, n)
	if err != nil {
		return coach.Input{}, err
	}
	profile, err := a.engine.PersonalProfile(ctx, a.cfg.UserID, a.cfg.Analytics.ProfileDays)
	if err != nil {
		return coach.Input{}, err
	}
	return coach.Input{Stats: st, Types: types, Insights: ins, Profile: profile}, nil
}

// newCoach builds a coach on the configured LLM provider, or a rule-based
// one when none is usable.
func newCoach(ctx context.Context, a *app) *coach.Coach {
	cfg, err := llm.Resolve()
	if err != nil {
		a.logger.Warn("llm not configured, using rule-based insights", logging.Err(err))
		return coach.New(nil, coach.DefaultConfig(), a.logger)
	}
	provider, err := llm.NewProvider(ctx, cfg, a.store.LLMEvents(), a.logger)
	if err != nil {
		a.logger.Warn("llm provider unavailable, using rule-based insights", logging.Err(err))
		return coach.New(nil, coach.DefaultConfig(), a.logger)
	}
	return coach.New(provider, coach.DefaultConfig(), a.logger)
}

// saveWeekly stores the digest as a snapshot. Failures only warn.
func saveWeekly(ctx context.Context, a *app, wk *analytics.Weekly) {
	data, err := json.Marshal(wk)
	if err == nil {
		err = a.store.Snapshots().Save(ctx, &store.Snapshot{
			UserID: a.cfg.UserID,
			Kind:   weeklySnapshotKind,
			Data:   data,
		})
	}
	if err == nil {
		err = a.store.Snapshots().Prune(ctx, a.cfg.UserID, weeklySnapshotKind, weeklySnapshotKeep)
	}
	if err != nil {
		a.logger.Warn("save weekly snapshot failed", logging.Err(err))
	}
}
