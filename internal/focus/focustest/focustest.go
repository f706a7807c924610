// Package focustest provides in-memory fakes of the focus contracts for tests.
package focustest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// Repo is a concurrency-safe in-memory focus.Repository. It stores copies,
// so callers never share pointers with it.
type Repo struct {
	mu       sync.Mutex
	sessions map[string]*focus.Session
	order    []string

	// Saves counts Save calls; QualityWrites counts SetQuality calls.
	Saves         int
	QualityWrites int

	// Err, when set, is returned by every method.
	Err error
}

// NewRepo returns a Repo preloaded with sessions.
func NewRepo(sessions ...*focus.Session) *Repo {
	r := &Repo{sessions: make(map[string]*focus.Session)}
	for _, s := range sessions {
		r.put(s)
	}
	r.Saves = 0
	return r
}

func (r *Repo) put(s *focus.Session) {
	if _, ok := r.sessions[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	r.sessions[s.ID] = s.Clone()
}

func (r *Repo) Get(_ context.Context, id string) (*focus.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", focus.ErrSessionNotFound, id)
	}
	return s.Clone(), nil
}

func (r *Repo) GetActive(_ context.Context, userID string) (*focus.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, id := range r.order {
		s := r.sessions[id]
		if s.UserID == userID && s.IsOpen() {
			return s.Clone(), nil
		}
	}
	return nil, nil
}

func (r *Repo) ListByUser(_ context.Context, userID string, since, until time.Time) ([]*focus.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*focus.Session
	for _, id := range r.order {
		s := r.sessions[id]
		if s.UserID != userID || s.StartTime.Before(since) || s.StartTime.After(until) {
			continue
		}
		out = append(out, s.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *Repo) Recent(_ context.Context, userID string, limit int) ([]*focus.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*focus.Session
	for _, id := range r.order {
		if s := r.sessions[id]; s.UserID == userID {
			out = append(out, s.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repo) Save(_ context.Context, s *focus.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.put(s)
	r.Saves++
	return nil
}

// SetQuality implements focus.QualityWriter.
func (r *Repo) SetQuality(_ context.Context, id string, q focus.Quality) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", focus.ErrSessionNotFound, id)
	}
	s.Quality = q
	r.QualityWrites++
	return nil
}

// Count returns the number of stored sessions.
func (r *Repo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// OpenCount returns how many of the user's sessions are active or paused.
func (r *Repo) OpenCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsOpen() {
			n++
		}
	}
	return n
}

// Clock is a settable focus.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock fixed at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Completed builds a successfully completed session that started at start.
func Completed(id, userID string, t focus.SessionType, start time.Time, planned, actual int) *focus.Session {
	end := start.Add(time.Duration(actual) * time.Minute)
	a := actual
	return &focus.Session{
		ID:               id,
		UserID:           userID,
		Type:             t,
		State:            focus.StateCompleted,
		PlannedDuration:  planned,
		StartTime:        start,
		PlannedEndTime:   start.Add(time.Duration(planned) * time.Minute),
		EndTime:          &end,
		ActualDuration:   &a,
		CompletionReason: focus.ReasonCompleted,
		CreatedAt:        start,
		UpdatedAt:        end,
	}
}
