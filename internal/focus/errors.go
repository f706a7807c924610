package focus

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyActiveSession    = errors.New("user already has an active session")
	ErrSessionNotFound         = errors.New("session not found")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrInvalidDuration         = errors.New("invalid session duration")
	ErrInvalidSessionType      = errors.New("invalid session type")
	ErrInvalidCompletionReason = errors.New("invalid completion reason")
	ErrInvalidUserID           = errors.New("invalid user id")
	ErrInvalidWindow           = errors.New("invalid analysis window")
	ErrInvalidOutcome          = errors.New("invalid session outcome")
)

// TransitionError describes an operation that is not legal in the
// session's current state.
type TransitionError struct {
	SessionID string
	Op        string
	From      State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s session %s in state %s", e.Op, e.SessionID, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStateTransition }

// DurationError reports a planned duration outside the accepted range.
type DurationError struct {
	Minutes int
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("duration %d minutes outside %d-%d", e.Minutes, MinDuration, MaxDuration)
}

func (e *DurationError) Unwrap() error { return ErrInvalidDuration }

// WindowError reports a malformed analysis window.
type WindowError struct {
	Days int
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window of %d days: must be at least 1", e.Days)
}

func (e *WindowError) Unwrap() error { return ErrInvalidWindow }

// ValidateWindow checks an analytics window length.
func ValidateWindow(days int) error {
	if days < 1 {
		return &WindowError{Days: days}
	}
	return nil
}
