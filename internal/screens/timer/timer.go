// Package timer is the live countdown shown by "focusflow watch".
package timer

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/session"
)

// Controller performs lifecycle transitions. *session.Service satisfies it.
type Controller interface {
	Pause(ctx context.Context, id string) (*focus.Session, error)
	Resume(ctx context.Context, id string) (*focus.Session, error)
	Complete(ctx context.Context, id string, reason focus.CompletionReason) (*focus.Session, error)
}

// Model is the bubbletea model for one open session.
type Model struct {
	ctx  context.Context
	ctrl Controller
	sess *focus.Session
	now  func() time.Time

	keys keyMap
	help help.Model

	width, height int

	// busy is set while a transition is in flight.
	busy bool
	err  error

	// AutoComplete completes the session when the countdown reaches zero.
	AutoComplete bool
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithoutAutoComplete leaves an expired session open.
func WithoutAutoComplete() Option {
	return func(m *Model) { m.AutoComplete = false }
}

// New returns a countdown for sess.
func New(ctx context.Context, ctrl Controller, sess *focus.Session, opts ...Option) Model {
	m := Model{
		ctx:          ctx,
		ctrl:         ctrl,
		sess:         sess,
		now:          time.Now,
		keys:         defaultKeys(),
		help:         help.New(),
		AutoComplete: true,
	}
	for _, o := range opts {
		o(&m)
	}
	m.keys.setOpen(sess.State.Open())
	return m
}

// Session returns the latest known state of the session.
func (m Model) Session() *focus.Session {
	return m.sess
}

// Err returns the last transition error, if any.
func (m Model) Err() error {
	return m.err
}

// Progress returns the countdown as of now.
func (m Model) Progress() session.Progress {
	return session.ProgressAt(m.sess, m.now())
}

func (m Model) Init() tea.Cmd {
	if !m.sess.State.Open() {
		return nil
	}
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.SetWidth(msg.Width)
		return m, nil

	case tickMsg:
		return m.handleTick()

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if !m.sess.State.Open() {
		return m, nil
	}
	// A failed auto-complete is not retried; the error stays on screen.
	if m.AutoComplete && !m.busy && m.err == nil && m.sess.State == focus.StateActive && m.Progress().Expired {
		m.busy = true
		return m, tea.Batch(m.complete(focus.ReasonCompleted), tickCmd())
	}
	return m, tickCmd()
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		m.err = msg.Err
		if errors.Is(msg.Err, focus.ErrSessionNotFound) {
			return m, tea.Quit
		}
		return m, nil
	}
	m.err = nil
	m.sess = msg.Session
	m.keys.setOpen(m.sess.State.Open())
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case m.busy:
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		m.busy = true
		if m.sess.State == focus.StatePaused {
			return m, m.run(m.ctrl.Resume)
		}
		return m, m.run(m.ctrl.Pause)
	case key.Matches(msg, m.keys.Complete):
		m.busy = true
		return m, m.complete(focus.ReasonCompleted)
	case key.Matches(msg, m.keys.Stop):
		m.busy = true
		return m, m.complete(focus.ReasonVoluntaryStop)
	}
	return m, nil
}

func (m Model) run(fn func(context.Context, string) (*focus.Session, error)) tea.Cmd {
	ctx, id := m.ctx, m.sess.ID
	return func() tea.Msg {
		s, err := fn(ctx, id)
		return actionDoneMsg{Session: s, Err: err}
	}
}

func (m Model) complete(reason focus.CompletionReason) tea.Cmd {
	return m.run(func(ctx context.Context, id string) (*focus.Session, error) {
		return m.ctrl.Complete(ctx, id, reason)
	})
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run shows the countdown until the user quits and returns the final
// session state.
func Run(ctx context.Context, ctrl Controller, sess *focus.Session, opts ...tea.ProgramOption) (*focus.Session, error) {
	p := tea.NewProgram(New(ctx, ctrl, sess), append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	final, err := p.Run()
	if err != nil {
		return sess, err
	}
	m := final.(Model)
	return m.Session(), m.Err()
}
