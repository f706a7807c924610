package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/logging"
)

// EventLog is the append-only table of emitted domain events. It implements
// focus.EventSink.
type EventLog struct {
	db     *sql.DB
	seq    *sequenceCounter
	logger *slog.Logger
}

var _ focus.EventSink = (*EventLog)(nil)

// WithLogger returns a copy that reports append failures to logger.
func (l *EventLog) WithLogger(logger *slog.Logger) *EventLog {
	c := *l
	c.logger = logger
	return &c
}

// Emit appends ev. Failures are logged, never returned.
func (l *EventLog) Emit(ctx context.Context, ev focus.Event) {
	if _, err := l.Append(ctx, ev); err != nil {
		l.log().LogAttrs(ctx, slog.LevelWarn, "append event failed",
			slog.String("kind", string(ev.Kind)),
			slog.String("user_id", ev.UserID),
			slog.Any("error", err),
		)
	}
}

// Append stores ev and returns its sequence number.
func (l *EventLog) Append(ctx context.Context, ev focus.Event) (int64, error) {
	seq, err := l.seq.Next(ctx)
	if err != nil {
		return 0, err
	}

	var data any
	if len(ev.Data) > 0 {
		b, err := json.Marshal(ev.Data)
		if err != nil {
			return 0, fmt.Errorf("marshal event data: %w", err)
		}
		data = string(b)
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	q, args := builder().Insert(tableEvents).
		Columns("sequence", "timestamp", "kind", "user_id", "session_id", "data").
		Values(seq, at.UTC(), string(ev.Kind), ev.UserID, ev.SessionID, data).
		Query()
	if _, err := l.db.ExecContext(ctx, q, args...); err != nil {
		return 0, fmt.Errorf("save session event: %w", err)
	}
	return seq, nil
}

// List returns matching events in sequence order.
func (l *EventLog) List(ctx context.Context, opts QueryOpts) ([]EventRecord, error) {
	var preds []*entsql.Predicate
	if opts.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", opts.UserID))
	}
	if opts.Kind != "" {
		preds = append(preds, entsql.EQ("kind", opts.Kind))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}

	sel := builder().Select("sequence", "timestamp", "kind", "user_id", "session_id", "data").
		From(entsql.Table(tableEvents)).
		OrderBy("sequence")
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	q, args := sel.Query()

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			rec  EventRecord
			data sql.NullString
		)
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.Kind, &rec.UserID, &rec.SessionID, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &rec.Data); err != nil {
				return nil, fmt.Errorf("unmarshal event data: %w", err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// Latest returns the newest limit events for the user, oldest first.
func (l *EventLog) Latest(ctx context.Context, userID string, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		return l.List(ctx, QueryOpts{UserID: userID})
	}
	q, args := builder().Select("sequence").
		From(entsql.Table(tableEvents)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence")).
		Offset(limit).
		Limit(1).
		Query()
	var floor int64
	err := l.db.QueryRowContext(ctx, q, args...).Scan(&floor)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query event floor: %w", err)
	}
	return l.List(ctx, QueryOpts{UserID: userID, After: floor})
}

func (l *EventLog) log() *slog.Logger {
	if l.logger == nil {
		return logging.Discard()
	}
	return l.logger
}
