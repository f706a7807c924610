package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var _ EventRepo = (*LLMEventLog)(nil)

var llmEventFields = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

// LLMEventLog implements EventRepo on the llm_request_events table.
type LLMEventLog struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *LLMEventLog) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := builder().Insert(tableLLM).
		Columns(
			"sequence", "timestamp", "provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success",
			"error_message", "request_body", "response_body",
		).
		Values(
			seqNum, time.Now().UTC(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *LLMEventLog) LLMUsage(ctx context.Context, purpose string) (LLMUsage, error) {
	sel := builder().Select("success", "input_tokens", "output_tokens").
		From(entsql.Table(tableLLM))
	if purpose != "" {
		sel.Where(entsql.EQ("purpose", purpose))
	}
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return LLMUsage{}, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var u LLMUsage
	for rows.Next() {
		var (
			ok      bool
			in, out int
		)
		if err := rows.Scan(&ok, &in, &out); err != nil {
			return LLMUsage{}, fmt.Errorf("scan LLM usage: %w", err)
		}
		u.Requests++
		if !ok {
			u.Failures++
		}
		u.InputTokens += in
		u.OutputTokens += out
	}
	if err := rows.Err(); err != nil {
		return LLMUsage{}, fmt.Errorf("iterate LLM usage: %w", err)
	}
	return u, nil
}

// List returns recorded requests, newest first. A purpose filters by
// request purpose; limit <= 0 returns all.
func (r *LLMEventLog) List(ctx context.Context, purpose string, limit int) ([]LLMEvent, error) {
	sel := builder().Select(llmEventFields...).
		From(entsql.Table(tableLLM)).
		OrderBy(entsql.Desc("sequence"))
	if purpose != "" {
		sel.Where(entsql.EQ("purpose", purpose))
	}
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate LLM events: %w", err)
	}
	return out, nil
}

// Get returns one recorded request, or nil if id is unknown.
func (r *LLMEventLog) Get(ctx context.Context, id int) (*LLMEvent, error) {
	q, args := builder().Select(llmEventFields...).
		From(entsql.Table(tableLLM)).
		Where(entsql.EQ("id", id)).
		Query()
	e, err := scanLLMEvent(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return e, nil
}

// UsageByModel sums requests per model, in model order.
func (r *LLMEventLog) UsageByModel(ctx context.Context) ([]ModelUsage, error) {
	q, args := builder().Select(
		"model",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input"),
		entsql.As(entsql.Sum("output_tokens"), "output"),
	).
		From(entsql.Table(tableLLM)).
		GroupBy("model").
		OrderBy("model").
		Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query model usage: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var m ModelUsage
		if err := rows.Scan(&m.Model, &m.Calls, &m.InputTokens, &m.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model usage: %w", err)
	}
	return out, nil
}

func scanLLMEvent(row rowScanner) (*LLMEvent, error) {
	var e LLMEvent
	err := row.Scan(
		&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		return nil, err
	}
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}
