package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo on the snapshots table.
type snapshotRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Sequence == 0 {
		n, err := r.seq.Next(ctx)
		if err != nil {
			return err
		}
		snap.Sequence = n
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}

	q, args := builder().Insert(tableSnapshots).
		Columns("user_id", "kind", "sequence", "timestamp", "data").
		Values(snap.UserID, snap.Kind, snap.Sequence, snap.Timestamp.UTC(), string(snap.Data)).
		Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = int(id)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, userID, kind string) (*Snapshot, error) {
	q, args := builder().Select("id", "user_id", "kind", "sequence", "timestamp", "data").
		From(entsql.Table(tableSnapshots)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("kind", kind))).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		s    Snapshot
		data string
	)
	err := r.db.QueryRowContext(ctx, q, args...).
		Scan(&s.ID, &s.UserID, &s.Kind, &s.Sequence, &s.Timestamp, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	s.Timestamp = s.Timestamp.UTC()
	s.Data = []byte(data)
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, userID, kind string, keep int) error {
	scope := entsql.And(entsql.EQ("user_id", userID), entsql.EQ("kind", kind))

	// Find the id of the newest snapshot past the keep window.
	q, args := builder().Select("id").
		From(entsql.Table(tableSnapshots)).
		Where(scope).
		OrderBy(entsql.Desc("id")).
		Offset(keep).
		Limit(1).
		Query()
	var threshold int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	del, args := builder().Delete(tableSnapshots).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("kind", kind),
			entsql.LTE("id", threshold),
		)).
		Query()
	if _, err := r.db.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
