package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// isolate points XDG_CONFIG_HOME at an empty dir so no real config leaks in.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("USER", "tester")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "tester", cfg.UserID)
	assert.Equal(t, "Local", cfg.Timezone)
	assert.Equal(t, "pomodoro", cfg.Session.DefaultType)
	assert.Equal(t, 10, cfg.Session.RecentLimit)
	assert.Equal(t, 30, cfg.Analytics.Days)
	assert.Equal(t, 365, cfg.Analytics.MilestoneWindowDays)
	assert.Equal(t, 90, cfg.Analytics.ProfileDays)
	assert.Equal(t, 30, cfg.Scoring.Days)
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
user_id: alice
timezone: Europe/Berlin
log:
  level: debug
  format: json
analytics:
  days: 14
`), 0o644))

	t.Setenv("FOCUSFLOW_ANALYTICS_DAYS", "7")
	t.Setenv("FOCUSFLOW_SESSION_DEFAULT_TYPE", "deep_work")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 7, cfg.Analytics.Days, "env beats file")
	assert.Equal(t, "deep_work", cfg.Session.DefaultType)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadDefaultFile(t *testing.T) {
	isolate(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "focusflow")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("user_id: bob\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.UserID)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("FOCUSFLOW_ANALYTICS_DAYS", "0")
	t.Setenv("FOCUSFLOW_TIMEZONE", "Mars/Olympus")

	_, err := Load(viper.New(), "")
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty user", func(c *Config) { c.UserID = " " }, "user_id"},
		{"bad timezone", func(c *Config) { c.Timezone = "Nowhere/City" }, "timezone"},
		{"bad language", func(c *Config) { c.Language = "!!" }, "language"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad type", func(c *Config) { c.Session.DefaultType = "nap" }, "session.default_type"},
		{"bad recent", func(c *Config) { c.Session.RecentLimit = 0 }, "session.recent_limit"},
		{"bad scoring days", func(c *Config) { c.Scoring.Days = 0 }, "scoring.days"},
		{"bad milestone window", func(c *Config) { c.Analytics.MilestoneWindowDays = -1 }, "analytics.milestone_window_days"},
		{"bad profile days", func(c *Config) { c.Analytics.ProfileDays = 0 }, "analytics.profile_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.UserID = "u1"
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}

	cfg := Default()
	cfg.UserID = "u1"
	assert.Empty(t, cfg.Validate())
}

func TestLocationAndLanguage(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Language = "de-CH"
	assert.Equal(t, "de-CH", cfg.LanguageTag().String())
	cfg.Language = "??"
	assert.Equal(t, language.English, cfg.LanguageTag())
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/focusflow", ConfigDir())
	assert.Equal(t, "/tmp/xdg/focusflow/config.yaml", ConfigFile())
}
