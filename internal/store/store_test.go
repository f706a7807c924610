package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/focus/focustest"
	"github.com/abhisek/focusflow/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d, hour int) time.Time {
	return time.Date(2026, time.March, d, hour, 0, 0, 0, time.UTC)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{tableSessions, tableEvents, tableLLM, tableSnapshots, tableSequence} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Sessions().Save(ctx, focustest.Completed("a", "u1", focus.TypePomodoro, day(2, 9), 25, 25)))
	_, err = s.Events().Append(ctx, focus.Event{Kind: focus.EventSessionStarted, UserID: "u1", At: day(2, 9)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Sessions().Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	// The sequence continues instead of restarting.
	seq, err := s.Events().Append(ctx, focus.Event{Kind: focus.EventSessionCompleted, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestSequenceCounterConcurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.seq.Next(ctx)
			assert.NoError(t, err)
			mu.Lock()
			seen[seq] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.Sessions()
	ctx := context.Background()

	score, rate := 7.5, 0.9
	in := focustest.Completed("a", "u1", focus.TypeDeepWork, day(2, 9).Add(123*time.Millisecond), 90, 87)
	in.CompletionReason = focus.ReasonInterrupted
	in.InterruptionCount = 2
	in.ProductivityScore = &score
	in.CompletionRate = &rate
	in.Quality = focus.QualityMedium
	require.NoError(t, repo.Save(ctx, in))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, in.Type, got.Type)
	assert.Equal(t, in.State, got.State)
	assert.Equal(t, in.PlannedDuration, got.PlannedDuration)
	assert.True(t, in.StartTime.Equal(got.StartTime))
	assert.True(t, in.PlannedEndTime.Equal(got.PlannedEndTime))
	require.NotNil(t, got.EndTime)
	assert.True(t, in.EndTime.Equal(*got.EndTime))
	assert.Nil(t, got.PausedAt)
	require.NotNil(t, got.ActualDuration)
	assert.Equal(t, 87, *got.ActualDuration)
	assert.Equal(t, focus.ReasonInterrupted, got.CompletionReason)
	assert.Equal(t, 2, got.InterruptionCount)
	require.NotNil(t, got.ProductivityScore)
	assert.Equal(t, 7.5, *got.ProductivityScore)
	require.NotNil(t, got.CompletionRate)
	assert.Equal(t, 0.9, *got.CompletionRate)
	assert.Equal(t, focus.QualityMedium, got.Quality)
}

func TestSessionSaveUpserts(t *testing.T) {
	s := openTestStore(t)
	repo := s.Sessions()
	ctx := context.Background()

	paused := day(2, 9).Add(10 * time.Minute)
	open := &focus.Session{
		ID: "a", UserID: "u1", Type: focus.TypePomodoro, State: focus.StatePaused,
		PlannedDuration: 25, StartTime: day(2, 9), PlannedEndTime: day(2, 9).Add(25 * time.Minute),
		PausedAt: &paused, CreatedAt: day(2, 9), UpdatedAt: paused,
	}
	require.NoError(t, repo.Save(ctx, open))

	active, err := repo.GetActive(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, active)
	require.NotNil(t, active.PausedAt)
	assert.True(t, paused.Equal(*active.PausedAt))

	done := focustest.Completed("a", "u1", focus.TypePomodoro, day(2, 9), 25, 30)
	require.NoError(t, repo.Save(ctx, done))

	n, err := repo.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err = repo.GetActive(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, active)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, focus.StateCompleted, got.State)
	assert.Nil(t, got.PausedAt)
}

func openSession(id, userID string, start time.Time) *focus.Session {
	return &focus.Session{
		ID: id, UserID: userID, Type: focus.TypePomodoro, State: focus.StateActive,
		PlannedDuration: 25, StartTime: start, PlannedEndTime: start.Add(25 * time.Minute),
		CreatedAt: start, UpdatedAt: start,
	}
}

func TestSessionSaveRejectsSecondOpenSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.db")
	s1, err := Open(path)
	require.NoError(t, err)
	defer s1.Close()
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	ctx := context.Background()

	require.NoError(t, s1.Sessions().Save(ctx, openSession("a", "u1", day(2, 9))))

	err = s2.Sessions().Save(ctx, openSession("b", "u1", day(2, 10)))
	assert.ErrorIs(t, err, focus.ErrAlreadyActiveSession)

	// Other users and closed sessions are unaffected.
	require.NoError(t, s2.Sessions().Save(ctx, openSession("c", "u2", day(2, 10))))
	require.NoError(t, s2.Sessions().Save(ctx, focustest.Completed("d", "u1", focus.TypePomodoro, day(1, 9), 25, 25)))

	// Once the first session completes, a new one may start.
	require.NoError(t, s1.Sessions().Save(ctx, focustest.Completed("a", "u1", focus.TypePomodoro, day(2, 9), 25, 25)))
	require.NoError(t, s2.Sessions().Save(ctx, openSession("b", "u1", day(2, 10))))
}

// slowActiveRepo widens the gap between the active check and the insert.
type slowActiveRepo struct {
	*SessionRepo
}

func (r slowActiveRepo) GetActive(ctx context.Context, userID string) (*focus.Session, error) {
	s, err := r.SessionRepo.GetActive(ctx, userID)
	time.Sleep(20 * time.Millisecond)
	return s, err
}

func TestConcurrentStartAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.db")
	var services []*session.Service
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		services = append(services, session.NewService(slowActiveRepo{s.Sessions()}))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(services))
	for i, svc := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Start(context.Background(), "u1", 25, focus.TypePomodoro)
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, focus.ErrAlreadyActiveSession)
			failed++
		}
	}
	assert.Equal(t, 1, failed, "exactly one start should win")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	var open int
	require.NoError(t, s.DB().QueryRow(
		"SELECT COUNT(*) FROM "+tableSessions+" WHERE user_id = ? AND state IN ('active', 'paused')", "u1",
	).Scan(&open))
	assert.Equal(t, 1, open)
}

func TestSessionSaveValidates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*focus.Session)
	}{
		{"end time on open session", func(s *focus.Session) {
			end := s.StartTime.Add(time.Minute)
			s.EndTime = &end
		}},
		{"actual duration on open session", func(s *focus.Session) {
			d := 10
			s.ActualDuration = &d
		}},
		{"unknown type", func(s *focus.Session) { s.Type = "nap" }},
		{"missing user", func(s *focus.Session) { s.UserID = "" }},
	}
	for _, tt := range tests {
		sess := openSession("bad", "u1", day(2, 9))
		tt.mutate(sess)
		if err := s.Sessions().Save(ctx, sess); err == nil {
			t.Errorf("%s: Save succeeded, want error", tt.name)
		}
	}

	n, err := s.Sessions().Count(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Sessions().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, focus.ErrSessionNotFound)
}

func TestSessionQueries(t *testing.T) {
	s := openTestStore(t)
	repo := s.Sessions()
	ctx := context.Background()

	for i, d := range []int{5, 2, 8, 3} {
		sess := focustest.Completed(fmt.Sprintf("s%d", i), "u1", focus.TypePomodoro, day(d, 9), 25, 25)
		require.NoError(t, repo.Save(ctx, sess))
	}
	require.NoError(t, repo.Save(ctx, focustest.Completed("other", "u2", focus.TypePomodoro, day(4, 9), 25, 25)))

	list, err := repo.ListByUser(ctx, "u1", day(3, 0), day(8, 9))
	require.NoError(t, err)
	var ids []string
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"s3", "s0", "s2"}, ids, "inclusive bounds, oldest first")

	recent, err := repo.Recent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "s2", recent[0].ID)
	assert.Equal(t, "s0", recent[1].ID)

	all, err := repo.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSetQuality(t *testing.T) {
	s := openTestStore(t)
	repo := s.Sessions()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, focustest.Completed("a", "u1", focus.TypePomodoro, day(2, 9), 25, 25)))
	require.NoError(t, repo.SetQuality(ctx, "a", focus.QualityHigh))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, focus.QualityHigh, got.Quality)
	assert.Equal(t, 25, *got.ActualDuration)

	err = repo.SetQuality(ctx, "missing", focus.QualityLow)
	assert.ErrorIs(t, err, focus.ErrSessionNotFound)
}

func TestEventLog(t *testing.T) {
	s := openTestStore(t)
	log := s.Events()
	ctx := context.Background()

	log.Emit(ctx, focus.Event{Kind: focus.EventSessionStarted, UserID: "u1", SessionID: "a", At: day(2, 9)})
	log.Emit(ctx, focus.Event{Kind: focus.EventSessionStarted, UserID: "u2", SessionID: "b", At: day(2, 9)})
	log.Emit(ctx, focus.Event{
		Kind: focus.EventSessionCompleted, UserID: "u1", SessionID: "a", At: day(2, 10),
		Data: map[string]any{"actual_duration": 25, "reason": "completed"},
	})

	all, err := log.List(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, rec := range all {
		assert.Equal(t, int64(i+1), rec.Sequence)
	}

	mine, err := log.List(ctx, QueryOpts{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, string(focus.EventSessionCompleted), mine[1].Kind)
	assert.Equal(t, "completed", mine[1].Data["reason"])
	assert.Equal(t, float64(25), mine[1].Data["actual_duration"])
	assert.True(t, day(2, 10).Equal(mine[1].Timestamp))
	assert.Nil(t, mine[0].Data)

	completed, err := log.List(ctx, QueryOpts{Kind: string(focus.EventSessionCompleted)})
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	after, err := log.List(ctx, QueryOpts{After: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, int64(2), after[0].Sequence)

	window, err := log.List(ctx, QueryOpts{From: day(2, 10), To: day(2, 10)})
	require.NoError(t, err)
	assert.Len(t, window, 1)
}

func TestEventLogLatest(t *testing.T) {
	s := openTestStore(t)
	log := s.Events()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := log.Append(ctx, focus.Event{Kind: focus.EventSessionStarted, UserID: "u1", At: day(2, 9+i)})
		require.NoError(t, err)
	}

	latest, err := log.Latest(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(4), latest[0].Sequence)
	assert.Equal(t, int64(5), latest[1].Sequence)

	latest, err = log.Latest(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, latest, 5)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.LLMEvents()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "mock", Purpose: "coach",
		InputTokens: 100, OutputTokens: 40, Success: true,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "mock", Purpose: "coach",
		InputTokens: 80, Success: false, ErrorMessage: "boom",
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "mock", Purpose: "other", InputTokens: 5, Success: true,
	}))

	u, err := repo.LLMUsage(ctx, "coach")
	require.NoError(t, err)
	assert.Equal(t, LLMUsage{Requests: 2, Failures: 1, InputTokens: 180, OutputTokens: 40}, u)

	total, err := repo.LLMUsage(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total.Requests)
}

func TestLLMEventLog_ListGetUsage(t *testing.T) {
	s := openTestStore(t)
	log := s.LLMEvents()
	ctx := context.Background()

	for _, d := range []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "coach", InputTokens: 10, OutputTokens: 4, Success: true, RequestBody: "[user]\nhi"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "coach", InputTokens: 7, OutputTokens: 3, Success: true},
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "other", InputTokens: 5, OutputTokens: 1, Success: false},
	} {
		require.NoError(t, log.AppendLLMRequest(ctx, d))
	}

	all, err := log.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "other", all[0].Purpose, "newest first")
	assert.Greater(t, all[0].Sequence, all[1].Sequence)

	coach, err := log.List(ctx, "coach", 1)
	require.NoError(t, err)
	require.Len(t, coach, 1)
	assert.Equal(t, "gpt-4o-mini", coach[0].Model)

	first, err := log.Get(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "[user]\nhi", first.RequestBody)
	assert.True(t, first.Success)

	missing, err := log.Get(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	usage, err := log.UsageByModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ModelUsage{
		{Model: "claude-haiku-4-5", Calls: 2, InputTokens: 15, OutputTokens: 5},
		{Model: "gpt-4o-mini", Calls: 1, InputTokens: 7, OutputTokens: 3},
	}, usage)
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.Snapshots()
	ctx := context.Background()

	// No snapshot yet.
	snap, err := repo.Latest(ctx, "u1", "weekly")
	require.NoError(t, err)
	assert.Nil(t, snap)

	base := day(2, 9)
	for i := 0; i < 3; i++ {
		data, _ := json.Marshal(map[string]int{"version": i + 1})
		err := repo.Save(ctx, &Snapshot{
			UserID:    "u1",
			Kind:      "weekly",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      data,
		})
		require.NoError(t, err)
	}

	snap, err = repo.Latest(ctx, "u1", "weekly")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(3), snap.Sequence, "sequence filled from the global counter")
	assert.JSONEq(t, `{"version":3}`, string(snap.Data))

	other, err := repo.Latest(ctx, "u2", "weekly")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.Snapshots()
	ctx := context.Background()

	base := day(2, 9)
	for i := 0; i < 7; i++ {
		err := repo.Save(ctx, &Snapshot{
			UserID:    "u1",
			Kind:      "weekly",
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      json.RawMessage(`{}`),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Save(ctx, &Snapshot{UserID: "u2", Kind: "weekly", Sequence: 99, Data: json.RawMessage(`{}`)}))

	require.NoError(t, repo.Prune(ctx, "u1", "weekly", 5))

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM snapshots WHERE user_id = 'u1'").Scan(&count))
	assert.Equal(t, 5, count)
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM snapshots WHERE user_id = 'u2'").Scan(&count))
	assert.Equal(t, 1, count)

	snap, err := repo.Latest(ctx, "u1", "weekly")
	require.NoError(t, err)
	assert.Equal(t, int64(7), snap.Sequence)

	// Fewer than keep is a no-op.
	require.NoError(t, repo.Prune(ctx, "u2", "weekly", 5))
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("FOCUSFLOW_DB", filepath.Join(dir, "nested", "x.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "x.db"), p)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	t.Setenv("FOCUSFLOW_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "focusflow", "focusflow.db"), p)
}

func TestWithTimeFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a.db", "a.db?_time_format=sqlite"},
		{"file:x?mode=memory", "file:x?mode=memory&_time_format=sqlite"},
		{"a.db?_time_format=sqlite", "a.db?_time_format=sqlite"},
	}
	for _, tt := range tests {
		if got := withTimeFormat(tt.in); got != tt.want {
			t.Errorf("withTimeFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
