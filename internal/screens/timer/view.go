package timer

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focusflow/internal/focus"
	"github.com/abhisek/focusflow/internal/session"
	"github.com/abhisek/focusflow/internal/ui/components"
	"github.com/abhisek/focusflow/internal/ui/layout"
	"github.com/abhisek/focusflow/internal/ui/theme"
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.WindowTitle = "focusflow: " + m.sess.Type.DisplayName()

	p := m.Progress()
	if m.sess.State.Open() {
		state := tea.ProgressBarDefault
		if p.Paused {
			state = tea.ProgressBarWarning
		}
		v.ProgressBar = tea.NewProgressBar(state, int(p.Fraction*100))
	}

	if m.width == 0 || m.height == 0 {
		v.SetContent(m.body(p, 50))
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.sess.Type.DisplayName(), stateLabel(m.sess, p), m.width)
	footer := ""
	if !layout.IsCompactWidth(m.width) {
		footer = m.help.View(m.keys)
	}
	v.SetContent(layout.RenderFrame(header, m.body(p, min(m.width-8, 60)), footer, m.width, m.height))
	return v
}

// body renders the clock, bar and status lines.
func (m Model) body(p session.Progress, width int) string {
	if !m.sess.State.Open() {
		return m.summaryView()
	}

	lines := []string{
		theme.Clock.Render(formatClock(p.Remaining)),
		"",
		components.ProgressBar{Percent: p.Fraction, ShowPercent: true, Width: width, Paused: p.Paused}.View(),
		"",
		theme.Subtitle.Render(fmt.Sprintf("%s focused of %d min planned",
			formatClock(p.Elapsed), m.sess.PlannedDuration)),
	}
	if m.sess.InterruptionCount > 0 {
		lines = append(lines, theme.Subtitle.Render(fmt.Sprintf("%d interruptions", m.sess.InterruptionCount)))
	}
	switch {
	case p.Expired:
		lines = append(lines, "", theme.Hint.Render("Time is up. Press c to complete."))
	case p.Paused:
		lines = append(lines, "", theme.Hint.Render("Paused. Press space to resume."))
	}
	if m.err != nil {
		lines = append(lines, "", theme.Bad.Render(m.err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m Model) summaryView() string {
	sum := session.BuildSummary(m.sess)
	if sum == nil {
		return ""
	}
	var b strings.Builder
	title := "Session complete"
	if !sum.Successful {
		title = "Session ended: " + string(sum.Reason)
	}
	b.WriteString(theme.Title.Render(title) + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", theme.Label.Render("Focused"), session.FormatMinutes(sum.Actual))
	fmt.Fprintf(&b, "%s %s\n", theme.Label.Render("Planned"), session.FormatMinutes(sum.Planned))
	if sum.Successful && sum.BreakMinutes > 0 {
		fmt.Fprintf(&b, "\n%s\n", theme.Hint.Render(fmt.Sprintf("Take a %d minute break.", sum.BreakMinutes)))
	}
	b.WriteString("\n" + theme.Hint.Render("Press q to exit."))
	return theme.Card.Render(b.String())
}

func stateLabel(s *focus.Session, p session.Progress) string {
	switch {
	case !s.State.Open():
		return "done"
	case p.Paused:
		return "paused"
	case p.Expired:
		return "time up"
	default:
		return "focusing"
	}
}

// formatClock renders d as MM:SS, or H:MM:SS from an hour up.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	mnt := int(d/time.Minute) % 60
	sec := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mnt, sec)
	}
	return fmt.Sprintf("%02d:%02d", mnt, sec)
}
