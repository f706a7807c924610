package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/focusflow/internal/config"
	"github.com/abhisek/focusflow/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "focusflow",
	Short: "Focus session tracker",
	Long: "focusflow times focus sessions, scores their quality and reports streaks,\n" +
		"trends and insights from your history.",
	SilenceUsage: true,
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as watch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides db_path in config)")
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/focusflow/config.yaml)")
	pf.String("user", "", "User whose sessions are managed (overrides user_id in config)")
	pf.String("log-level", "", "Log level: DEBUG, INFO, WARN or ERROR")
	pf.Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(outcomeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(hourlyCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(milestonesCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(scoreCmd)

	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db_path from the config, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
