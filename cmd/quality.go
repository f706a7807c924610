package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/ui/theme"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Show the focus quality report",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		rep, err := a.scorer.Report(cmd.Context(), a.cfg.UserID, days(cmd, a.cfg.Scoring.Days))
		if err != nil {
			return err
		}
		return render(cmd, rep, func(w io.Writer) {
			if rep.SessionsAnalyzed == 0 {
				lipgloss.Fprintln(w, "No completed sessions to score.")
				return
			}
			heading(w, "Focus quality")
			field(w, "Sessions", rep.SessionsAnalyzed)
			field(w, "Average score", fmt.Sprintf("%.2f  %s", rep.AverageScore, theme.Quality(focus.CategorizeScore(rep.AverageScore))))
			field(w, "Trend", rep.Trend)
			d := rep.Distribution
			field(w, "High", fmt.Sprintf("%d (%.0f%%)", d.High, d.HighPercent))
			field(w, "Medium", fmt.Sprintf("%d (%.0f%%)", d.Medium, d.MediumPercent))
			field(w, "Low", fmt.Sprintf("%d (%.0f%%)", d.Low, d.LowPercent))
			bullets(w, "Recommendations", rep.Recommendations)
		})
	}),
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score completed sessions and store their quality",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		scores, err := a.scorer.ScoreUserSessions(cmd.Context(), a.cfg.UserID, days(cmd, a.cfg.Scoring.Days))
		if err != nil {
			return err
		}
		return render(cmd, scores, func(w io.Writer) {
			if len(scores) == 0 {
				lipgloss.Fprintln(w, "No completed sessions to score.")
				return
			}
			t := newTable("Session", "Score", "Quality")
			for _, id := range slices.Sorted(maps.Keys(scores)) {
				t.Row(id, fmt.Sprintf("%.2f", scores[id]), theme.Quality(focus.CategorizeScore(scores[id])))
			}
			printTable(w, t)
			hint(w, "Scored %d sessions.", len(scores))
		})
	}),
}

func init() {
	for _, c := range []*cobra.Command{qualityCmd, scoreCmd} {
		c.Flags().IntP("days", "d", 0, "Days of history to score (default from config)")
	}
}
