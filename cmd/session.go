package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/session"
	"github.com/abhisek/focusflow/internal/ui/theme"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		name := a.cfg.Session.DefaultType
		if cmd.Flags().Changed("type") {
			name, _ = cmd.Flags().GetString("type")
		}
		typ, err := focus.ParseSessionType(name)
		if err != nil {
			return err
		}
		minutes := typ.DefaultDuration()
		if cmd.Flags().Changed("minutes") {
			minutes, _ = cmd.Flags().GetInt("minutes")
		}

		sess, err := a.sessions.Start(cmd.Context(), a.cfg.UserID, minutes, typ)
		if err != nil {
			return err
		}
		return render(cmd, sess, func(w io.Writer) {
			lipgloss.Fprintf(w, "Started a %d minute %s session.\n", sess.PlannedDuration, typ.DisplayName())
			field(w, "Session", sess.ID)
			field(w, "Ends at", sess.PlannedEndTime.In(a.loc).Format("15:04"))
			if band := typ.RecommendedBand(); !band.Contains(minutes) {
				hint(w, "%s sessions work best between %d and %d minutes.", typ.DisplayName(), band.Min, band.Max)
			}
		})
	}),
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		return transition(cmd, a, a.sessions.Pause)
	}),
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		return transition(cmd, a, a.sessions.Resume)
	}),
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the active session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		name, _ := cmd.Flags().GetString("reason")
		reason, err := focus.ParseCompletionReason(name)
		if err != nil {
			return err
		}
		return transition(cmd, a, func(ctx context.Context, id string) (*focus.Session, error) {
			return a.sessions.Complete(ctx, id, reason)
		})
	}),
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the active session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		return transition(cmd, a, a.sessions.Cancel)
	}),
}

var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record interruptions and self-rated productivity for a session",
	Long: "Record the self-reported outcome of a session. Without --id the active\n" +
		"session is used, or the most recent one when nothing is running.",
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		var o focus.Outcome
		if cmd.Flags().Changed("interruptions") {
			n, _ := cmd.Flags().GetInt("interruptions")
			o.Interruptions = &n
		}
		if cmd.Flags().Changed("productivity") {
			v, _ := cmd.Flags().GetFloat64("productivity")
			o.ProductivityScore = &v
		}
		if cmd.Flags().Changed("completion-rate") {
			v, _ := cmd.Flags().GetFloat64("completion-rate")
			o.CompletionRate = &v
		}
		if o.Interruptions == nil && o.ProductivityScore == nil && o.CompletionRate == nil {
			return fmt.Errorf("%w: set at least one of --interruptions, --productivity, --completion-rate", focus.ErrInvalidOutcome)
		}

		ctx := cmd.Context()
		id, err := outcomeTarget(ctx, cmd, a)
		if err != nil {
			return err
		}
		sess, err := a.sessions.RecordOutcome(ctx, id, o)
		if err != nil {
			return err
		}
		return render(cmd, sess, func(w io.Writer) {
			lipgloss.Fprintln(w, "Outcome recorded.")
			printSession(w, sess, a.loc, time.Now())
			if sess.InterruptionCount >= session.InterruptionAlertThreshold {
				hint(w, "%d interruptions. Try silencing notifications next time.", sess.InterruptionCount)
			}
		})
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		sess, err := a.sessions.Active(cmd.Context(), a.cfg.UserID)
		if err != nil {
			return err
		}
		if sess == nil {
			if jsonOutput(cmd) {
				return render(cmd, nil, nil)
			}
			lipgloss.Fprintln(cmd.OutOrStdout(), "No active session.")
			return nil
		}
		now := time.Now()
		return render(cmd, sess, func(w io.Writer) {
			printSession(w, sess, a.loc, now)
			p := session.ProgressAt(sess, now)
			field(w, "Focused", fmt.Sprintf("%s (%s)", p.Elapsed.Round(time.Second), pct(p.Fraction)))
			field(w, "Remaining", p.Remaining.Round(time.Second))
			if p.Expired {
				hint(w, "Time is up. Finish with: focusflow complete")
			}
		})
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sessions",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		limit := a.cfg.Session.RecentLimit
		if cmd.Flags().Changed("limit") {
			limit, _ = cmd.Flags().GetInt("limit")
		}
		sessions, err := a.sessions.Recent(cmd.Context(), a.cfg.UserID, limit)
		if err != nil {
			return err
		}
		return render(cmd, sessions, func(w io.Writer) {
			if len(sessions) == 0 {
				lipgloss.Fprintln(w, "No sessions yet.")
				return
			}
			t := newTable("Started", "Type", "State", "Planned", "Actual", "Reason", "Quality")
			for _, s := range sessions {
				actual := "-"
				if s.ActualDuration != nil {
					actual = fmt.Sprintf("%dm", *s.ActualDuration)
				}
				t.Row(
					clockTime(s.StartTime, a.loc),
					string(s.Type),
					stateLabel(s.State),
					fmt.Sprintf("%dm", s.PlannedDuration),
					actual,
					string(s.CompletionReason),
					theme.Quality(s.Quality),
				)
			}
			printTable(w, t)
		})
	}),
}

func init() {
	startCmd.Flags().StringP("type", "t", "", "Session type: "+joinValues(focus.AllSessionTypes()))
	startCmd.Flags().IntP("minutes", "m", 0, "Planned minutes (default depends on the type)")

	for _, c := range []*cobra.Command{pauseCmd, resumeCmd, completeCmd, cancelCmd, outcomeCmd} {
		c.Flags().String("id", "", "Session ID (default: the active session)")
	}
	completeCmd.Flags().String("reason", string(focus.ReasonCompleted), "Completion reason: "+joinValues(focus.AllCompletionReasons()))

	outcomeCmd.Flags().Int("interruptions", 0, "Number of interruptions")
	outcomeCmd.Flags().Float64("productivity", 0, "Self-rated productivity, 0-10")
	outcomeCmd.Flags().Float64("completion-rate", 0, "Share of the planned work finished, 0-1")

	historyCmd.Flags().IntP("limit", "n", 0, "Number of sessions to list (default from config)")
}

// transition applies fn to the --id session, or to the active one.
func transition(cmd *cobra.Command, a *app, fn func(context.Context, string) (*focus.Session, error)) error {
	ctx := cmd.Context()
	id, err := activeTarget(ctx, cmd, a)
	if err != nil {
		return err
	}
	sess, err := fn(ctx, id)
	if err != nil {
		return err
	}
	return render(cmd, sess, func(w io.Writer) {
		if sum := session.BuildSummary(sess); sum != nil {
			printSummary(w, sum)
			return
		}
		printSession(w, sess, a.loc, time.Now())
	})
}

func activeTarget(ctx context.Context, cmd *cobra.Command, a *app) (string, error) {
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		return id, nil
	}
	sess, err := a.sessions.Active(ctx, a.cfg.UserID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", errNoActiveSession
	}
	return sess.ID, nil
}

// outcomeTarget prefers --id, then the active session, then the latest one.
func outcomeTarget(ctx context.Context, cmd *cobra.Command, a *app) (string, error) {
	id, err := activeTarget(ctx, cmd, a)
	if !errors.Is(err, errNoActiveSession) {
		return id, err
	}
	recent, err := a.sessions.Recent(ctx, a.cfg.UserID, 1)
	if err != nil {
		return "", err
	}
	if len(recent) == 0 {
		return "", errNoActiveSession
	}
	return recent[0].ID, nil
}

func printSession(w io.Writer, s *focus.Session, loc *time.Location, now time.Time) {
	field(w, "Session", s.ID)
	field(w, "Type", s.Type.DisplayName())
	field(w, "State", stateLabel(s.State))
	field(w, "Started", clockTime(s.StartTime, loc))
	field(w, "Planned", session.FormatMinutes(s.PlannedDuration))
	if s.State == focus.StateActive {
		field(w, "Ends at", s.PlannedEndTime.In(loc).Format("15:04"))
	}
	if s.ActualDuration != nil {
		field(w, "Actual", session.FormatMinutes(*s.ActualDuration))
	}
	if s.InterruptionCount > 0 {
		field(w, "Interruptions", s.InterruptionCount)
	}
	if s.ProductivityScore != nil {
		field(w, "Productivity", fmt.Sprintf("%.1f/10", *s.ProductivityScore))
	}
	if s.CompletionRate != nil {
		field(w, "Work finished", pct(*s.CompletionRate))
	}
	if s.Quality != "" {
		field(w, "Quality", theme.Quality(s.Quality))
	}
}

func printSummary(w io.Writer, sum *session.Summary) {
	if sum.Successful {
		heading(w, "Session complete")
	} else {
		heading(w, "Session ended: "+string(sum.Reason))
	}
	field(w, "Focused", session.FormatMinutes(sum.Actual))
	field(w, "Planned", session.FormatMinutes(sum.Planned))
	if sum.Overrun > 0 {
		field(w, "Overran by", session.FormatMinutes(sum.Overrun))
	}
	if sum.Successful && sum.BreakMinutes > 0 {
		hint(w, "Take a %d minute break.", sum.BreakMinutes)
	}
}

func stateLabel(s focus.State) string {
	return lipgloss.NewStyle().Foreground(theme.StateColor(s)).Render(string(s))
}
