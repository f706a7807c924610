// Package analytics aggregates a user's focus-session history into
// statistics, streaks, trends, insights and the context used for scoring.
//
// The Compute* and Build* functions are pure. Engine wraps them with a
// repository fetch per call.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/logging"
)

const tracerName = "focusflow/analytics"

// Engine computes analytics from a repository snapshot fetched at call start.
// Nothing is cached between calls.
type Engine struct {
	repo    focus.Repository
	clock   focus.Clock
	loc     *time.Location
	sink    focus.EventSink
	logger  *slog.Logger
	tracer  trace.Tracer
	printer *message.Printer

	milestoneDays int

	fetches singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(c focus.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLocation sets the time zone that defines calendar days and hours.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithSink sets where milestone events go.
func WithSink(s focus.EventSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLanguage sets the language for rendered insight text.
func WithLanguage(tag language.Tag) Option {
	return func(e *Engine) { e.printer = NewPrinter(tag) }
}

// WithMilestoneWindow sets how many days of history milestone checks scan.
func WithMilestoneWindow(days int) Option {
	return func(e *Engine) { e.milestoneDays = days }
}

// NewEngine creates an analytics engine over repo.
func NewEngine(repo focus.Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:          repo,
		clock:         focus.SystemClock{},
		loc:           time.UTC,
		sink:          focus.NopSink{},
		milestoneDays: DefaultMilestoneWindowDays,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	if e.printer == nil {
		e.printer = NewPrinter(language.English)
	}
	if e.sink == nil {
		e.sink = focus.NopSink{}
	}
	if e.milestoneDays < 1 {
		e.milestoneDays = DefaultMilestoneWindowDays
	}
	e.tracer = otel.Tracer(tracerName)
	return e
}

// Location returns the engine's time zone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Snapshot is the session history of one user over one window. Its
// Sessions slice is shared between concurrent callers and must not be
// modified.
type Snapshot struct {
	UserID   string
	Window   Window
	Sessions []*focus.Session
}

// Snapshot fetches the user's sessions for the trailing window. Concurrent
// identical fetches share one repository call, which is not cancelled when
// the caller that started it gives up.
func (e *Engine) Snapshot(ctx context.Context, userID string, days int) (_ *Snapshot, err error) {
	ctx, span := e.tracer.Start(ctx, "analytics.Snapshot", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("analytics.days", days),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if strings.TrimSpace(userID) == "" {
		return nil, focus.ErrInvalidUserID
	}
	w, err := NewWindow(e.clock.Now(), days, e.loc)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s|%d|%s", userID, days, w.Start.Format(time.RFC3339))
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := e.fetches.Do(key, func() (any, error) {
		sessions, err := e.repo.ListByUser(fetchCtx, userID, w.Start, w.End)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		return &Snapshot{UserID: userID, Window: w, Sessions: sessions}, nil
	})
	if err != nil {
		return nil, err
	}
	snap := v.(*Snapshot)
	span.SetAttributes(
		attribute.Int("analytics.sessions", len(snap.Sessions)),
		attribute.Bool("analytics.shared_fetch", shared),
	)
	e.logger.Debug("analytics snapshot",
		slog.String("user_id", userID),
		slog.Int("days", days),
		slog.Int("sessions", len(snap.Sessions)),
		slog.Bool("shared", shared),
	)
	return snap, nil
}

// UserStats returns aggregate statistics for the window.
func (e *Engine) UserStats(ctx context.Context, userID string, days int) (*Stats, error) {
	snap, err := e.Snapshot(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return ComputeStats(snap.Sessions, snap.Window), nil
}

// DailyTrend returns one point per calendar day of the window.
func (e *Engine) DailyTrend(ctx context.Context, userID string, days int) ([]DailyPoint, error) {
	snap, err := e.Snapshot(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return ComputeDailyTrend(snap.Sessions, snap.Window), nil
}

// HourlyPattern returns the hour-of-day breakdown for the window.
func (e *Engine) HourlyPattern(ctx context.Context, userID string, days int) (*HourlyPattern, error) {
	snap, err := e.Snapshot(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return ComputeHourlyPattern(snap.Sessions, e.loc), nil
}

// TypePerformance returns per-type statistics for the window.
func (e *Engine) TypePerformance(ctx context.Context, userID string, days int) ([]TypeStats, error) {
	snap, err := e.Snapshot(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return ComputeTypePerformance(snap.Sessions), nil
}

// Insights applies the insight rules to the window's analytics. All parts
// come from a single snapshot.
func (e *Engine) Insights(ctx context.Context, userID string, days int) (*Insights, error) {
	snap, err := e.Snapshot(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	st := ComputeStats(snap.Sessions, snap.Window)
	hp := ComputeHourlyPattern(snap.Sessions, e.loc)
	types := ComputeTypePerformance(snap.Sessions)
	return BuildInsights(st, hp, types, e.printer), nil
}

// UserContext builds the scoring context from the window.
func (e *Engine) UserContext(ctx context.Context, userID string, days int) (focus.UserContext, error) {
	snap, err := e.Snapshot(ctx, userID, days)
	if err != nil {
		return focus.UserContext{}, err
	}
	return BuildUserContext(snap.Sessions, snap.Window.Today(), e.loc), nil
}

// CheckMilestones evaluates streak and focus-time milestones over the
// milestone window, emits an event for each one reached, and returns them.
func (e *Engine) CheckMilestones(ctx context.Context, userID string) ([]focus.Event, error) {
	snap, err := e.Snapshot(ctx, userID, e.milestoneDays)
	if err != nil {
		return nil, err
	}
	streak := CurrentStreak(snap.Sessions, snap.Window.Today(), e.loc)
	minutes := 0
	for _, s := range snap.Sessions {
		if s.IsSuccessful() {
			minutes += s.FocusMinutes()
		}
	}

	evs := MilestoneEvents(userID, streak, minutes, e.clock.Now(), e.printer)
	for _, ev := range evs {
		e.sink.Emit(ctx, ev)
	}
	return evs, nil
}

// WeeklySummary returns the digest for the last seven days.
func (e *Engine) WeeklySummary(ctx context.Context, userID string) (*Weekly, error) {
	snap, err := e.Snapshot(ctx, userID, WeeklyDays)
	if err != nil {
		return nil, err
	}
	return BuildWeekly(snap.Sessions, snap.Window, e.printer), nil
}

// PersonalProfile returns when and how the user focuses best.
func (e *Engine) PersonalProfile(ctx context.Context, userID string, days int) (*Profile, error) {
	snap, err := e.Snapshot(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return BuildProfile(snap.Sessions, days, e.loc), nil
}
