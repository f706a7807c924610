package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/focusflow/internal/analytics"
	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/logging"
)

// Result is one session's score.
type Result struct {
	Score   float64        `json:"score"`
	Quality focus.Quality  `json:"quality"`
	Factors QualityFactors `json:"factors"`
}

// Score rates a session in [0,10], rounded to two decimals.
func Score(s *focus.Session, uc focus.UserContext, loc *time.Location) Result {
	f := Factors(s, uc, loc)
	score := round2(clamp(f.Weighted()*10, 0, 10))
	return Result{
		Score:   score,
		Quality: focus.CategorizeScore(score),
		Factors: f,
	}
}

// Scorer scores stored sessions and writes their quality category back.
type Scorer struct {
	repo   focus.Repository
	clock  focus.Clock
	loc    *time.Location
	logger *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock sets the time source.
func WithClock(c focus.Clock) Option {
	return func(s *Scorer) { s.clock = c }
}

// WithLocation sets the zone used for start hours and calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Scorer) { s.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scorer) { s.logger = l }
}

// NewScorer creates a Scorer over repo.
func NewScorer(repo focus.Repository, opts ...Option) *Scorer {
	s := &Scorer{
		repo:  repo,
		clock: focus.SystemClock{},
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// ScoreSession scores one session against a context.
func (s *Scorer) ScoreSession(sess *focus.Session, uc focus.UserContext) Result {
	return Score(sess, uc, s.loc)
}

// scored pairs a session with its result, oldest session first.
type scored struct {
	session *focus.Session
	result  Result
}

// scoreWindow scores every session of the window and persists changed
// categories.
func (s *Scorer) scoreWindow(ctx context.Context, userID string, days int) ([]scored, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, focus.ErrInvalidUserID
	}
	w, err := analytics.NewWindow(s.clock.Now(), days, s.loc)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListByUser(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	uc := analytics.BuildUserContext(sessions, w.Today(), s.loc)
	out := make([]scored, 0, len(sessions))
	writes := 0
	for _, sess := range sessions {
		res := Score(sess, uc, s.loc)
		out = append(out, scored{session: sess, result: res})
		if sess.Quality == res.Quality {
			continue
		}
		if err := s.writeQuality(ctx, sess, res.Quality); err != nil {
			return nil, fmt.Errorf("write quality for %s: %w", sess.ID, err)
		}
		writes++
	}

	s.logger.Debug("scored sessions",
		slog.String("user_id", userID),
		slog.Int("days", days),
		slog.Int("sessions", len(sessions)),
		slog.Int("writes", writes),
	)
	return out, nil
}

// ScoreUserSessions scores every session in the trailing window, persists
// categories that changed, and returns scores keyed by session id. Running it
// twice over unchanged data performs no writes the second time.
func (s *Scorer) ScoreUserSessions(ctx context.Context, userID string, days int) (map[string]float64, error) {
	results, err := s.scoreWindow(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64, len(results))
	for _, r := range results {
		scores[r.session.ID] = r.result.Score
	}
	return scores, nil
}

func (s *Scorer) writeQuality(ctx context.Context, sess *focus.Session, q focus.Quality) error {
	if qw, ok := s.repo.(focus.QualityWriter); ok {
		return qw.SetQuality(ctx, sess.ID, q)
	}
	c := sess.Clone()
	c.Quality = q
	return s.repo.Save(ctx, c)
}
