package timer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/focus/focustest"
	"github.com/abhisek/focusflow/internal/session"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc   *session.Service
	clock *focustest.Clock
	model Model
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clock := focustest.NewClock(t0)
	svc := session.NewService(focustest.NewRepo(), session.WithClock(clock))
	s, err := svc.Start(context.Background(), "u1", 25, focus.TypePomodoro)
	require.NoError(t, err)

	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return &harness{svc: svc, clock: clock, model: New(context.Background(), svc, s, opts...)}
}

// send delivers msg and runs the resulting command once, feeding its message
// back in. Tick commands are not run.
func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) sendAndRun(t *testing.T, msg tea.Msg) {
	t.Helper()
	cmd := h.send(t, msg)
	require.NotNil(t, cmd)
	h.send(t, cmd())
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestTimer_PauseResume(t *testing.T) {
	h := newHarness(t)

	h.clock.Advance(5 * time.Minute)
	h.sendAndRun(t, keyPress('p'))
	assert.Equal(t, focus.StatePaused, h.model.Session().State)
	assert.True(t, h.model.Progress().Paused)

	h.clock.Advance(10 * time.Minute)
	assert.Equal(t, 5*time.Minute, h.model.Progress().Elapsed, "paused time is not focus time")

	h.sendAndRun(t, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	assert.Equal(t, focus.StateActive, h.model.Session().State)
	assert.Equal(t, 20*time.Minute, h.model.Progress().Remaining)
}

func TestTimer_CompleteAndStop(t *testing.T) {
	tests := []struct {
		name       string
		key        rune
		wantReason focus.CompletionReason
	}{
		{"complete", 'c', focus.ReasonCompleted},
		{"stop early", 's', focus.ReasonVoluntaryStop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.clock.Advance(10 * time.Minute)
			h.sendAndRun(t, keyPress(tt.key))

			s := h.model.Session()
			assert.Equal(t, focus.StateCompleted, s.State)
			assert.Equal(t, tt.wantReason, s.CompletionReason)
			require.NotNil(t, s.ActualDuration)
			assert.Equal(t, 10, *s.ActualDuration)

			// Session controls are disabled once completed.
			assert.Nil(t, h.send(t, keyPress('c')))
		})
	}
}

func TestTimer_AutoCompleteOnExpiry(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(t, tickMsg(h.clock.Now()))
	require.NotNil(t, cmd, "ticking continues while the session is open")
	assert.Equal(t, focus.StateActive, h.model.Session().State)

	h.clock.Advance(26 * time.Minute)
	cmd = h.send(t, tickMsg(h.clock.Now()))
	require.NotNil(t, cmd)
	assert.True(t, h.model.busy)

	msg := h.model.complete(focus.ReasonCompleted)()
	h.send(t, msg)
	assert.Equal(t, focus.StateCompleted, h.model.Session().State)
	assert.Nil(t, h.send(t, tickMsg(h.clock.Now())), "ticking stops after completion")
}

func TestTimer_NoAutoComplete(t *testing.T) {
	h := newHarness(t, WithoutAutoComplete())
	h.clock.Advance(30 * time.Minute)

	h.send(t, tickMsg(h.clock.Now()))
	assert.False(t, h.model.busy)
	assert.True(t, h.model.Progress().Expired)
	assert.Contains(t, h.model.body(h.model.Progress(), 40), "Time is up")
}

func TestTimer_KeysIgnoredWhileBusy(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(t, keyPress('p'))
	require.NotNil(t, cmd)

	assert.Nil(t, h.send(t, keyPress('c')), "second action waits for the first")
}

func TestTimer_Quit(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(t, keyPress('q'))
	require.NotNil(t, cmd)
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit")
	}
	assert.Equal(t, focus.StateActive, h.model.Session().State, "quitting leaves the session running")
}

func TestTimer_ErrorShown(t *testing.T) {
	h := newHarness(t)
	h.send(t, actionDoneMsg{Err: errors.New("database is locked")})

	assert.Equal(t, "database is locked", h.model.Err().Error())
	assert.Contains(t, h.model.body(h.model.Progress(), 40), "database is locked")
}

func TestTimer_View(t *testing.T) {
	h := newHarness(t)
	h.send(t, tea.WindowSizeMsg{Width: 80, Height: 24})
	h.clock.Advance(750 * time.Second)

	v := h.model.View()
	require.NotNil(t, v.ProgressBar)
	assert.Equal(t, 50, v.ProgressBar.Value)
	assert.True(t, v.AltScreen)

	content := h.model.body(h.model.Progress(), 40)
	assert.Contains(t, content, "12:30 focused of 25 min planned")
}

func TestTimer_SummaryView(t *testing.T) {
	h := newHarness(t)
	h.clock.Advance(25 * time.Minute)
	h.sendAndRun(t, keyPress('c'))

	out := h.model.summaryView()
	assert.Contains(t, out, "Session complete")
	assert.Contains(t, out, "25 minutes")
	assert.Contains(t, out, "Take a 5 minute break.")
	assert.Nil(t, h.model.View().ProgressBar)
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{25 * time.Minute, "25:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{1400 * time.Millisecond, "00:01"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.d); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStateLabel(t *testing.T) {
	s := &focus.Session{State: focus.StatePaused}
	if got := stateLabel(s, session.Progress{Paused: true}); !strings.EqualFold(got, "paused") {
		t.Errorf("stateLabel = %q", got)
	}
}
