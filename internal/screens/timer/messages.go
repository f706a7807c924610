package timer

import (
	"time"

	"github.com/abhisek/focusflow/internal/focus"
)

// tickMsg is sent every second to refresh the countdown.
type tickMsg time.Time

// actionDoneMsg carries the session after a pause, resume or complete call.
type actionDoneMsg struct {
	Session *focus.Session
	Err     error
}
