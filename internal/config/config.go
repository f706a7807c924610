// Package config loads focusflow settings from defaults, an optional YAML
// file and FOCUSFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/abhisek/focusflow/internal/analytics"
	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. FOCUSFLOW_LOG_LEVEL.
const EnvPrefix = "FOCUSFLOW"

// Config is the complete focusflow configuration.
type Config struct {
	// DBPath overrides the database location. Empty means the XDG default.
	DBPath string `mapstructure:"db_path"`
	// UserID identifies whose sessions the CLI manages.
	UserID string `mapstructure:"user_id"`
	// Timezone is an IANA name ("Local" for the system zone). Calendar days,
	// streaks and start hours are computed in it.
	Timezone string `mapstructure:"timezone"`
	// Language tags insight text, e.g. "en" or "de".
	Language string `mapstructure:"language"`

	Log       LogConfig       `mapstructure:"log"`
	Session   SessionConfig   `mapstructure:"session"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig controls session defaults.
type SessionConfig struct {
	DefaultType string `mapstructure:"default_type"`
	RecentLimit int    `mapstructure:"recent_limit"`
}

// ScoringConfig controls batch scoring.
type ScoringConfig struct {
	Days int `mapstructure:"days"`
}

// AnalyticsConfig controls the analytics engine.
type AnalyticsConfig struct {
	Days                int `mapstructure:"days"`
	MilestoneWindowDays int `mapstructure:"milestone_window_days"`
	ProfileDays         int `mapstructure:"profile_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UserID:   defaultUser(),
		Timezone: "Local",
		Language: "en",
		Log: LogConfig{
			Level:  logging.LevelWarn,
			Format: logging.FormatText,
		},
		Session: SessionConfig{
			DefaultType: string(focus.TypePomodoro),
			RecentLimit: 10,
		},
		Scoring: ScoringConfig{Days: 30},
		Analytics: AnalyticsConfig{
			Days:                analytics.DefaultDays,
			MilestoneWindowDays: analytics.DefaultMilestoneWindowDays,
			ProfileDays:         analytics.DefaultProfileDays,
		},
	}
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("user_id", d.UserID)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("language", d.Language)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("session.default_type", d.Session.DefaultType)
	v.SetDefault("session.recent_limit", d.Session.RecentLimit)

	v.SetDefault("scoring.days", d.Scoring.Days)

	v.SetDefault("analytics.days", d.Analytics.Days)
	v.SetDefault("analytics.milestone_window_days", d.Analytics.MilestoneWindowDays)
	v.SetDefault("analytics.profile_days", d.Analytics.ProfileDays)
}

// Load reads configuration into v and returns the validated result. When
// file is empty the default config file is read if it exists.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigFile(ConfigFile())
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Timezone)
	}
}

// LanguageTag parses Language, falling back to English.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "focusflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focusflow"
	}
	return filepath.Join(home, ".config", "focusflow")
}

// ConfigFile returns the path to the default config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
