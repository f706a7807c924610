// Package coach narrates analytics as a short coaching note, either through
// an LLM or from the rule-based insights alone.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/focusflow/internal/analytics"
	"github.com/abhisek/focusflow/internal/llm"
	"github.com/abhisek/focusflow/internal/logging"
)

// Purpose tags coaching requests in the LLM request log.
const Purpose = "coaching-note"

// ErrNoData is returned when there are no sessions to talk about.
var ErrNoData = errors.New("no sessions in period")

// Input is the analytics a note is written from. Stats is required.
type Input struct {
	Stats    *analytics.Stats
	Types    []analytics.TypeStats
	Insights *analytics.Insights
	Profile  *analytics.Profile
}

// Note is a narrated coaching note.
type Note struct {
	Headline      string    `json:"headline"`
	Observations  []string  `json:"observations"`
	Suggestions   []string  `json:"suggestions"`
	Encouragement string    `json:"encouragement"`
	Model         string    `json:"model"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Coach writes coaching notes.
type Coach struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a Coach. A nil provider limits it to rule-based notes.
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *Coach {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coach{provider: provider, cfg: cfg, logger: logging.WithComponent(logger, "coach"), now: time.Now}
}

type noteOutput struct {
	Headline      string   `json:"headline"`
	Observations  []string `json:"observations"`
	Suggestions   []string `json:"suggestions"`
	Encouragement string   `json:"encouragement"`
}

// Narrate asks the LLM for a note. Without a provider it returns the
// rule-based note.
func (c *Coach) Narrate(ctx context.Context, in Input) (*Note, error) {
	if in.Stats == nil || in.Stats.TotalSessions == 0 {
		return nil, ErrNoData
	}
	if c.provider == nil {
		return c.FromInsights(in), nil
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      noteSystemPrompt,
		Messages:    llm.UserMessage(buildNoteUserMessage(in)),
		Schema:      NoteSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("coaching note: %w", err)
	}

	var out noteOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse coaching note: %w", err)
	}
	c.logger.Debug("coaching note generated",
		slog.String("model", resp.Model),
		slog.Int("tokens", resp.Usage.TotalTokens),
	)

	return &Note{
		Headline:      out.Headline,
		Observations:  c.clip(out.Observations),
		Suggestions:   c.clip(out.Suggestions),
		Encouragement: out.Encouragement,
		Model:         resp.Model,
		GeneratedAt:   c.now(),
	}, nil
}

// NarrateOrFallback is Narrate, falling back to the rule-based note when the
// LLM fails. The LLM error is logged.
func (c *Coach) NarrateOrFallback(ctx context.Context, in Input) (*Note, error) {
	note, err := c.Narrate(ctx, in)
	if err == nil || errors.Is(err, ErrNoData) {
		return note, err
	}
	if ctx.Err() != nil {
		return nil, err
	}
	c.logger.Warn("llm coaching failed, using rule-based note", logging.Err(err))
	return c.FromInsights(in), nil
}

// FromInsights builds a note from the rule-based insights alone.
func (c *Coach) FromInsights(in Input) *Note {
	note := &Note{Model: "rules", GeneratedAt: c.now()}
	ins := in.Insights
	if ins == nil {
		ins = analytics.BuildInsights(in.Stats, nil, in.Types, nil)
	}
	if len(ins.Summary) > 0 {
		note.Headline = ins.Summary[0]
		note.Observations = c.clip(ins.Summary[1:])
	}
	suggestions := ins.Recommendations
	if len(suggestions) == 0 {
		suggestions = ins.ImprovementAreas
	}
	note.Suggestions = c.clip(suggestions)
	if len(ins.Achievements) > 0 {
		a := ins.Achievements[0]
		note.Encouragement = a.Title + ": " + a.Description
	} else {
		note.Encouragement = "Every session adds to the habit."
	}
	return note
}

func (c *Coach) clip(items []string) []string {
	if c.cfg.MaxItems > 0 && len(items) > c.cfg.MaxItems {
		return items[:c.cfg.MaxItems]
	}
	return items
}
