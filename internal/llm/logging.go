package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/focusflow/internal/logging"
	"github.com/abhisek/focusflow/internal/store"
)

// RecordingProvider writes every request to the LLM request log.
type RecordingProvider struct {
	inner    Provider
	provider string
	repo     store.EventRepo
	logger   *slog.Logger
}

// WithRecording wraps p so each call is appended to repo. Log failures are
// reported to logger and never fail the request.
func WithRecording(p Provider, provider string, repo store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = logging.Discard()
	}
	return &RecordingProvider{inner: p, provider: provider, repo: repo, logger: logger}
}

func (r *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    r.provider,
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: describeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// The request context may already be done; the record should still land.
	if logErr := r.repo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		r.logger.Warn("record LLM request failed", logging.Err(logErr))
	}
	r.logger.Debug("llm request",
		slog.String("purpose", data.Purpose),
		slog.String("model", data.Model),
		slog.Int64("latency_ms", data.LatencyMs),
		slog.Bool("success", data.Success),
	)
	return resp, err
}

func (r *RecordingProvider) ModelID() string {
	return r.inner.ModelID()
}

// describeRequest renders the request as readable text for the log.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
