package session

import (
	"testing"
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

func TestProgressAt(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pausedAt := start.Add(10 * time.Minute)
	actual := 20

	active := &focus.Session{
		Type: focus.TypePomodoro, State: focus.StateActive, PlannedDuration: 20,
		StartTime: start, PlannedEndTime: start.Add(20 * time.Minute),
	}
	paused := &focus.Session{
		Type: focus.TypePomodoro, State: focus.StatePaused, PlannedDuration: 20,
		StartTime: start, PlannedEndTime: start.Add(20 * time.Minute), PausedAt: &pausedAt,
	}
	completed := &focus.Session{
		Type: focus.TypePomodoro, State: focus.StateCompleted, PlannedDuration: 40,
		StartTime: start, ActualDuration: &actual,
	}

	tests := []struct {
		name          string
		s             *focus.Session
		now           time.Time
		wantElapsed   time.Duration
		wantRemaining time.Duration
		wantFraction  float64
		wantExpired   bool
	}{
		{"at start", active, start, 0, 20 * time.Minute, 0, false},
		{"halfway", active, start.Add(10 * time.Minute), 10 * time.Minute, 10 * time.Minute, 0.5, false},
		{"overtime", active, start.Add(30 * time.Minute), 30 * time.Minute, 0, 1, true},
		{"paused freezes", paused, start.Add(50 * time.Minute), 10 * time.Minute, 10 * time.Minute, 0.5, false},
		{"completed", completed, start.Add(time.Hour), 20 * time.Minute, 0, 0.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProgressAt(tt.s, tt.now)
			if p.Elapsed != tt.wantElapsed {
				t.Errorf("Elapsed = %v, want %v", p.Elapsed, tt.wantElapsed)
			}
			if p.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %v, want %v", p.Remaining, tt.wantRemaining)
			}
			if p.Fraction != tt.wantFraction {
				t.Errorf("Fraction = %v, want %v", p.Fraction, tt.wantFraction)
			}
			if p.Expired != tt.wantExpired {
				t.Errorf("Expired = %v, want %v", p.Expired, tt.wantExpired)
			}
		})
	}
}

func TestProgressAt_AfterResume(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	// Paused for five minutes, so the planned end moved from 9:20 to 9:25.
	s := &focus.Session{
		Type: focus.TypePomodoro, State: focus.StateActive, PlannedDuration: 20,
		StartTime: start, PlannedEndTime: start.Add(25 * time.Minute),
	}

	p := ProgressAt(s, start.Add(15*time.Minute))
	if p.Elapsed != 10*time.Minute {
		t.Errorf("Elapsed = %v, want 10m", p.Elapsed)
	}
	if p.Paused {
		t.Error("Paused = true, want false")
	}
}

func TestBuildSummary(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(100 * time.Minute)
	actual := 100
	s := &focus.Session{
		Type: focus.TypeDeepWork, State: focus.StateCompleted, PlannedDuration: 120,
		StartTime: start, EndTime: &end, ActualDuration: &actual,
		CompletionReason: focus.ReasonCompleted,
	}

	sum := BuildSummary(s)
	if sum == nil {
		t.Fatal("BuildSummary returned nil")
	}
	if sum.Overrun != -20 {
		t.Errorf("Overrun = %d, want -20", sum.Overrun)
	}
	if sum.BreakMinutes != 20 {
		t.Errorf("BreakMinutes = %d, want 20", sum.BreakMinutes)
	}
	if !sum.Successful {
		t.Error("Successful = false, want true")
	}

	s.State = focus.StateActive
	if BuildSummary(s) != nil {
		t.Error("BuildSummary on open session should be nil")
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{1, "1 minute"},
		{45, "45 minutes"},
		{60, "1 hour"},
		{120, "2 hours"},
		{90, "1h 30m"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.in); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
