package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/logging"
)

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string // config key, e.g. "analytics.days"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks every field and returns all problems found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if strings.TrimSpace(c.UserID) == "" {
		add("user_id", c.UserID, "must not be empty")
	}
	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			add("timezone", c.Timezone, "unknown time zone")
		}
	}
	if _, err := language.Parse(c.Language); err != nil {
		add("language", c.Language, "invalid language tag")
	}

	if !logging.ValidLevel(c.Log.Level) {
		add("log.level", c.Log.Level, "must be one of DEBUG, INFO, WARN, ERROR")
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatJSON, logging.FormatText:
	default:
		add("log.format", c.Log.Format, "must be json or text")
	}

	if _, err := focus.ParseSessionType(c.Session.DefaultType); err != nil {
		add("session.default_type", c.Session.DefaultType, "unknown session type")
	}
	if c.Session.RecentLimit < 1 {
		add("session.recent_limit", c.Session.RecentLimit, "must be at least 1")
	}

	for _, d := range []struct {
		field string
		days  int
	}{
		{"scoring.days", c.Scoring.Days},
		{"analytics.days", c.Analytics.Days},
		{"analytics.milestone_window_days", c.Analytics.MilestoneWindowDays},
		{"analytics.profile_days", c.Analytics.ProfileDays},
	} {
		if d.days < 1 {
			add(d.field, d.days, "must be at least 1")
		}
	}
	return errs
}
