package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/focusflow/internal/screens/timer"
	"github.com/abhisek/focusflow/internal/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live countdown for the active session",
	Long: "Show a full-screen countdown for the active session. Space pauses and\n" +
		"resumes, c completes and s stops early. Quitting leaves the session running.",
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		ctx := cmd.Context()
		sess, err := a.sessions.Active(ctx, a.cfg.UserID)
		if err != nil {
			return err
		}
		if sess == nil {
			return errNoActiveSession
		}

		final, err := timer.Run(ctx, a.sessions, sess)
		if err != nil {
			return err
		}
		if sum := session.BuildSummary(final); sum != nil {
			printSummary(cmd.OutOrStdout(), sum)
		}
		return nil
	}),
}
