package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/focusflow/internal/focus"
)

var errNoActiveSession = errors.New("no active session")

// hintError appends a next step to a domain error.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() + "\n  " + e.hint }
func (e *hintError) Unwrap() error { return e.err }

// friendly attaches a hint to the domain errors a user can act on.
func friendly(err error) error {
	if err == nil {
		return nil
	}
	var h string
	switch {
	case errors.Is(err, errNoActiveSession):
		h = "start one with: focusflow start"
	case errors.Is(err, focus.ErrAlreadyActiveSession):
		h = "see it with: focusflow status, or end it with: focusflow cancel"
	case errors.Is(err, focus.ErrInvalidSessionType):
		h = "valid types: " + joinValues(focus.AllSessionTypes())
	case errors.Is(err, focus.ErrInvalidCompletionReason):
		h = "valid reasons: " + joinValues(focus.AllCompletionReasons())
	case errors.Is(err, focus.ErrInvalidDuration):
		h = fmt.Sprintf("use --minutes between %d and %d", focus.MinDuration, focus.MaxDuration)
	case errors.Is(err, focus.ErrInvalidStateTransition):
		h = "check the session state with: focusflow status"
	default:
		return err
	}
	return &hintError{err: err, hint: h}
}

func joinValues[T ~string](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
