// Package session implements the focus-session lifecycle: start, pause,
// resume and complete. The Service is the only writer of session state and
// serializes all mutations for a user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/logging"
)

// DefaultRecentLimit is used by Recent when no positive limit is given.
const DefaultRecentLimit = 10

// InterruptionAlertThreshold is the interruption count that raises an alert.
const InterruptionAlertThreshold = 3

const tracerName = "focusflow/session"

// Service manages session state transitions.
type Service struct {
	repo   focus.Repository
	clock  focus.Clock
	sink   focus.EventSink
	logger *slog.Logger
	tracer trace.Tracer
	newID  func() string
	locks  *userLocks
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source.
func WithClock(c focus.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithSink sets the destination for lifecycle events.
func WithSink(sink focus.EventSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService creates a lifecycle service backed by repo.
func NewService(repo focus.Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		clock: focus.SystemClock{},
		sink:  focus.NopSink{},
		newID: uuid.NewString,
		locks: newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.sink == nil {
		s.sink = focus.NopSink{}
	}
	return s
}

// Start opens a new active session for the user.
func (s *Service) Start(ctx context.Context, userID string, minutes int, sessionType focus.SessionType) (_ *focus.Session, err error) {
	ctx, span := s.tracer.Start(ctx, "session.Start", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("session.type", string(sessionType)),
		attribute.Int("session.planned_minutes", minutes),
	))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(userID) == "" {
		return nil, focus.ErrInvalidUserID
	}
	st, err := focus.ParseSessionType(string(sessionType))
	if err != nil {
		return nil, err
	}
	if minutes < focus.MinDuration || minutes > focus.MaxDuration {
		return nil, &focus.DurationError{Minutes: minutes}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	active, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check active session: %w", err)
	}
	if active != nil {
		return nil, fmt.Errorf("%w: %s is %s", focus.ErrAlreadyActiveSession, active.ID, active.State)
	}

	now := s.clock.Now()
	sess := &focus.Session{
		ID:              s.newID(),
		UserID:          userID,
		Type:            st,
		State:           focus.StateActive,
		PlannedDuration: minutes,
		StartTime:       now,
		PlannedEndTime:  now.Add(time.Duration(minutes) * time.Minute),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	span.SetAttributes(attribute.String("session.id", sess.ID))

	s.logger.Debug("session started",
		slog.String("session_id", sess.ID),
		slog.String("user_id", userID),
		slog.String("type", string(st)),
		slog.Int("planned_minutes", minutes),
	)
	s.emit(ctx, focus.EventSessionStarted, sess, now, map[string]any{
		"session_type":     string(st),
		"planned_duration": minutes,
		"planned_end_time": sess.PlannedEndTime,
	})
	return sess.Clone(), nil
}

// Pause moves an active session to paused.
func (s *Service) Pause(ctx context.Context, id string) (*focus.Session, error) {
	sess, err := s.mutate(ctx, "pause", id, func(sess *focus.Session, now time.Time) error {
		if sess.State != focus.StateActive {
			return &focus.TransitionError{SessionID: sess.ID, Op: "pause", From: sess.State}
		}
		sess.State = focus.StatePaused
		sess.PausedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, focus.EventSessionPaused, sess, *sess.PausedAt, map[string]any{
		"paused_at": *sess.PausedAt,
	})
	return sess, nil
}

// Resume moves a paused session back to active. The planned end time slides
// forward by exactly the time spent paused.
func (s *Service) Resume(ctx context.Context, id string) (*focus.Session, error) {
	var pausedFor time.Duration
	var at time.Time
	sess, err := s.mutate(ctx, "resume", id, func(sess *focus.Session, now time.Time) error {
		if sess.State != focus.StatePaused || sess.PausedAt == nil {
			return &focus.TransitionError{SessionID: sess.ID, Op: "resume", From: sess.State}
		}
		pausedFor = now.Sub(*sess.PausedAt)
		sess.PlannedEndTime = sess.PlannedEndTime.Add(pausedFor)
		sess.PausedAt = nil
		sess.State = focus.StateActive
		at = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, focus.EventSessionResumed, sess, at, map[string]any{
		"paused_for_seconds": pausedFor.Seconds(),
		"planned_end_time":   sess.PlannedEndTime,
	})
	return sess, nil
}

// Complete ends an active or paused session with the given reason.
func (s *Service) Complete(ctx context.Context, id string, reason focus.CompletionReason) (*focus.Session, error) {
	r, err := focus.ParseCompletionReason(string(reason))
	if err != nil {
		return nil, err
	}

	sess, err := s.mutate(ctx, "complete", id, func(sess *focus.Session, now time.Time) error {
		if !sess.State.Open() {
			return &focus.TransitionError{SessionID: sess.ID, Op: "complete", From: sess.State}
		}
		actual := roundMinutes(now.Sub(sess.StartTime))
		sess.State = focus.StateCompleted
		sess.EndTime = &now
		sess.ActualDuration = &actual
		sess.CompletionReason = r
		sess.PausedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, focus.EventSessionCompleted, sess, *sess.EndTime, map[string]any{
		"completion_reason": string(r),
		"actual_duration":   *sess.ActualDuration,
		"planned_duration":  sess.PlannedDuration,
		"session_type":      string(sess.Type),
	})
	return sess, nil
}

// Cancel completes the session with reason cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (*focus.Session, error) {
	return s.Complete(ctx, id, focus.ReasonCancelled)
}

// RecordOutcome stores the self-reported quality inputs for a session in any
// state. Nil fields are left unchanged.
func (s *Service) RecordOutcome(ctx context.Context, id string, o focus.Outcome) (*focus.Session, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	var before int
	var at time.Time
	sess, err := s.mutate(ctx, "record_outcome", id, func(sess *focus.Session, now time.Time) error {
		before = sess.InterruptionCount
		if o.Interruptions != nil {
			sess.InterruptionCount = *o.Interruptions
		}
		if o.ProductivityScore != nil {
			v := *o.ProductivityScore
			sess.ProductivityScore = &v
		}
		if o.CompletionRate != nil {
			v := *o.CompletionRate
			sess.CompletionRate = &v
		}
		at = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sess.InterruptionCount >= InterruptionAlertThreshold && sess.InterruptionCount > before {
		s.emit(ctx, focus.EventInterruptionAlert, sess, at, map[string]any{
			"interruption_count": sess.InterruptionCount,
		})
	}
	return sess, nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, id string) (*focus.Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// Active returns the user's active or paused session, or nil if none.
func (s *Service) Active(ctx context.Context, userID string) (*focus.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, focus.ErrInvalidUserID
	}
	sess, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return sess, nil
}

// Recent returns the user's most recent sessions, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]*focus.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, focus.ErrInvalidUserID
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	sessions, err := s.repo.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	return sessions, nil
}

// mutate applies fn to a session under its owner's lock. The session is read
// once to find the owner and again after locking, so that concurrent callers
// observe each other's writes.
func (s *Service) mutate(ctx context.Context, op, id string, fn func(sess *focus.Session, now time.Time) error) (_ *focus.Session, err error) {
	ctx, span := s.tracer.Start(ctx, "session."+op, trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer func() { endSpan(span, err) }()

	owner, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	span.SetAttributes(attribute.String("user.id", owner.UserID))

	unlock := s.locks.lock(owner.UserID)
	defer unlock()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	from := sess.State

	now := s.clock.Now()
	if err := fn(sess, now); err != nil {
		return nil, err
	}
	sess.UpdatedAt = now

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Debug("session updated",
		slog.String("op", op),
		slog.String("session_id", sess.ID),
		slog.String("user_id", sess.UserID),
		slog.String("from", string(from)),
		slog.String("to", string(sess.State)),
	)
	return sess.Clone(), nil
}

func (s *Service) emit(ctx context.Context, kind focus.EventKind, sess *focus.Session, at time.Time, data map[string]any) {
	s.sink.Emit(ctx, focus.Event{
		Kind:      kind,
		UserID:    sess.UserID,
		SessionID: sess.ID,
		At:        at,
		Data:      data,
	})
}

// roundMinutes converts a duration to whole minutes, rounding half away from zero.
func roundMinutes(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(math.Round(d.Minutes()))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		// Guard failures are expected outcomes, not faults.
		if !isDomainError(err) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

func isDomainError(err error) bool {
	for _, target := range []error{
		focus.ErrAlreadyActiveSession,
		focus.ErrSessionNotFound,
		focus.ErrInvalidStateTransition,
		focus.ErrInvalidDuration,
		focus.ErrInvalidSessionType,
		focus.ErrInvalidCompletionReason,
		focus.ErrInvalidUserID,
		focus.ErrInvalidOutcome,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
