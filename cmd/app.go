package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/focusflow/internal/analytics"
	"github.com/abhisek/focusflow/internal/config"
	"github.com/abhisek/focusflow/internal/events"
	"github.com/abhisek/focusflow/internal/logging"
	"github.com/abhisek/focusflow/internal/scoring"
	"github.com/abhisek/focusflow/internal/session"
	"github.com/abhisek/focusflow/internal/store"
	"github.com/abhisek/focusflow/internal/telemetry"
)

// app bundles the services one command invocation needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	loc      *time.Location
	store    *store.Store
	sessions *session.Service
	engine   *analytics.Engine
	scorer   *scoring.Scorer
	shutdown telemetry.ShutdownFunc
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"user":      "user_id",
	"log-level": "log.level",
}

// loadConfig reads the config file and environment, with flags taking
// precedence over both.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}
	file, _ := cmd.Flags().GetString("config")
	return config.Load(v, file)
}

// openApp loads configuration, opens the store and builds the services.
// Callers must Close the result.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := logging.WithUser(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format), cfg.UserID)

	shutdown, err := telemetry.Setup(ctx, "focusflow", version)
	if err != nil {
		logger.Warn("tracing disabled", logging.Err(err))
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sink := events.Fanout(
		events.NewLogSink(logger),
		st.Events().WithLogger(logger),
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		loc:    loc,
		store:  st,
		sessions: session.NewService(st.Sessions(),
			session.WithSink(sink),
			session.WithLogger(logger),
		),
		engine: analytics.NewEngine(st.Sessions(),
			analytics.WithLocation(loc),
			analytics.WithLanguage(cfg.LanguageTag()),
			analytics.WithMilestoneWindow(cfg.Analytics.MilestoneWindowDays),
			analytics.WithSink(sink),
			analytics.WithLogger(logger),
		),
		scorer: scoring.NewScorer(st.Sessions(),
			scoring.WithLocation(loc),
			scoring.WithLogger(logger),
		),
		shutdown: shutdown,
	}, nil
}

// Close flushes traces and closes the store.
func (a *app) Close() error {
	var errs []error
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.shutdown(ctx))
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}

// withApp runs fn with an open app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				a.logger.Warn("close failed", logging.Err(err))
			}
		}()
		return friendly(fn(cmd, a, args))
	}
}

// days returns --days, or def when the flag is unset.
func days(cmd *cobra.Command, def int) int {
	if cmd.Flags().Changed("days") {
		n, _ := cmd.Flags().GetInt("days")
		return n
	}
	return def
}
