package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/abhisek/focusflow/internal/focus"
)

var sessionFields = []string{
	"id", "user_id", "session_type", "state", "planned_duration",
	"start_time", "start_unix", "planned_end_time", "paused_at", "end_time",
	"actual_duration", "completion_reason", "interruption_count",
	"productivity_score", "completion_rate", "quality", "created_at", "updated_at",
}

// SessionRepo implements focus.Repository and focus.QualityWriter.
type SessionRepo struct {
	db *sql.DB
}

var (
	_ focus.Repository    = (*SessionRepo)(nil)
	_ focus.QualityWriter = (*SessionRepo)(nil)
)

func (r *SessionRepo) Get(ctx context.Context, id string) (*focus.Session, error) {
	q, args := builder().Select(sessionFields...).
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("id", id)).
		Query()
	s, err := scanSession(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", focus.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) GetActive(ctx context.Context, userID string) (*focus.Session, error) {
	q, args := builder().Select(sessionFields...).
		From(entsql.Table(tableSessions)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.In("state", string(focus.StateActive), string(focus.StatePaused)),
		)).
		OrderBy(entsql.Desc("start_unix")).
		Limit(1).
		Query()
	s, err := scanSession(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID string, since, until time.Time) ([]*focus.Session, error) {
	q, args := builder().Select(sessionFields...).
		From(entsql.Table(tableSessions)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.GTE("start_unix", since.UnixNano()),
			entsql.LTE("start_unix", until.UnixNano()),
		)).
		OrderBy("start_unix").
		Query()
	return r.query(ctx, q, args)
}

func (r *SessionRepo) Recent(ctx context.Context, userID string, limit int) ([]*focus.Session, error) {
	sel := builder().Select(sessionFields...).
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("start_unix"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()
	return r.query(ctx, q, args)
}

// Save validates and upserts the full record. Saving a second open session
// for a user fails with focus.ErrAlreadyActiveSession, even when another
// process wrote the first one.
func (r *SessionRepo) Save(ctx context.Context, s *focus.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	q, args := builder().Insert(tableSessions).
		Columns(sessionFields...).
		Values(
			s.ID, s.UserID, string(s.Type), string(s.State), s.PlannedDuration,
			s.StartTime.UTC(), s.StartTime.UnixNano(), s.PlannedEndTime.UTC(),
			nullTime(s.PausedAt), nullTime(s.EndTime), nullInt(s.ActualDuration),
			string(s.CompletionReason), s.InterruptionCount,
			nullFloat(s.ProductivityScore), nullFloat(s.CompletionRate),
			string(s.Quality), s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
		).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if s.IsOpen() && sqlgraph.IsUniqueConstraintError(err) {
			return fmt.Errorf("%w: user %s", focus.ErrAlreadyActiveSession, s.UserID)
		}
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// SetQuality updates the quality column alone.
func (r *SessionRepo) SetQuality(ctx context.Context, id string, q focus.Quality) error {
	stmt, args := builder().Update(tableSessions).
		Set("quality", string(q)).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set quality: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", focus.ErrSessionNotFound, id)
	}
	return nil
}

// Count returns the number of sessions stored for the user.
func (r *SessionRepo) Count(ctx context.Context, userID string) (int, error) {
	q, args := builder().Select().
		Count().
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (r *SessionRepo) query(ctx context.Context, q string, args []any) ([]*focus.Session, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*focus.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*focus.Session, error) {
	var (
		s                                   focus.Session
		typ, state, reason, quality         string
		startUnix                           int64
		pausedAt, endTime                   sql.NullTime
		actual                              sql.NullInt64
		productivity, completionRate        sql.NullFloat64
		startTime, plannedEnd, created, upd time.Time
	)
	err := row.Scan(
		&s.ID, &s.UserID, &typ, &state, &s.PlannedDuration,
		&startTime, &startUnix, &plannedEnd, &pausedAt, &endTime,
		&actual, &reason, &s.InterruptionCount,
		&productivity, &completionRate, &quality, &created, &upd,
	)
	if err != nil {
		return nil, err
	}

	s.Type = focus.SessionType(typ)
	s.State = focus.State(state)
	s.CompletionReason = focus.CompletionReason(reason)
	s.Quality = focus.Quality(quality)
	// start_unix keeps full precision regardless of the text encoding.
	s.StartTime = time.Unix(0, startUnix).UTC()
	s.PlannedEndTime = plannedEnd.UTC()
	s.CreatedAt = created.UTC()
	s.UpdatedAt = upd.UTC()
	if pausedAt.Valid {
		t := pausedAt.Time.UTC()
		s.PausedAt = &t
	}
	if endTime.Valid {
		t := endTime.Time.UTC()
		s.EndTime = &t
	}
	if actual.Valid {
		v := int(actual.Int64)
		s.ActualDuration = &v
	}
	if productivity.Valid {
		v := productivity.Float64
		s.ProductivityScore = &v
	}
	if completionRate.Valid {
		v := completionRate.Float64
		s.CompletionRate = &v
	}
	return &s, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
