package focus

import "fmt"

// State is the lifecycle state of a focus session.
type State string

const (
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// AllStates returns every state in lifecycle order.
func AllStates() []State {
	return []State{StateActive, StatePaused, StateCompleted}
}

// ParseState converts a stored string into a State.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateActive, StatePaused, StateCompleted:
		return State(s), nil
	default:
		return "", fmt.Errorf("unknown session state %q", s)
	}
}

// Open reports whether the state still accepts lifecycle operations.
func (s State) Open() bool {
	switch s {
	case StateActive, StatePaused:
		return true
	case StateCompleted:
		return false
	default:
		return false
	}
}

// SessionType identifies the kind of focus session.
type SessionType string

const (
	TypePomodoro  SessionType = "pomodoro"
	TypeLongFocus SessionType = "long_focus"
	TypeDeepWork  SessionType = "deep_work"
	TypeStudy     SessionType = "study"
	TypeCustom    SessionType = "custom"
)

// AllSessionTypes returns all session types in display order.
func AllSessionTypes() []SessionType {
	return []SessionType{TypePomodoro, TypeLongFocus, TypeDeepWork, TypeStudy, TypeCustom}
}

// ParseSessionType validates a session type name.
func ParseSessionType(s string) (SessionType, error) {
	switch SessionType(s) {
	case TypePomodoro, TypeLongFocus, TypeDeepWork, TypeStudy, TypeCustom:
		return SessionType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionType, s)
	}
}

// DurationBand is the recommended duration range for a session type, in minutes.
type DurationBand struct {
	Min int
	Max int
}

// Contains reports whether minutes falls inside the band.
func (b DurationBand) Contains(minutes int) bool {
	return minutes >= b.Min && minutes <= b.Max
}

// RecommendedBand returns the advisory duration range for the type.
// The hard limits are MinDuration and MaxDuration.
func (t SessionType) RecommendedBand() DurationBand {
	switch t {
	case TypePomodoro:
		return DurationBand{Min: 15, Max: 60}
	case TypeLongFocus:
		return DurationBand{Min: 60, Max: 180}
	case TypeDeepWork:
		return DurationBand{Min: 120, Max: 240}
	case TypeStudy:
		return DurationBand{Min: 30, Max: 120}
	case TypeCustom:
		return DurationBand{Min: MinDuration, Max: MaxDuration}
	default:
		return DurationBand{Min: MinDuration, Max: MaxDuration}
	}
}

// DefaultDuration returns the planned minutes used when none is given.
func (t SessionType) DefaultDuration() int {
	switch t {
	case TypePomodoro:
		return 25
	case TypeLongFocus:
		return 90
	case TypeDeepWork:
		return 120
	case TypeStudy:
		return 50
	case TypeCustom:
		return 30
	default:
		return 25
	}
}

// BreakMinutes returns the recommended break after a session of this type.
func (t SessionType) BreakMinutes() int {
	switch t {
	case TypePomodoro:
		return 5
	case TypeLongFocus:
		return 15
	case TypeDeepWork:
		return 20
	case TypeStudy:
		return 10
	case TypeCustom:
		return 5
	default:
		return 5
	}
}

// DisplayName returns a human-readable label for the type.
func (t SessionType) DisplayName() string {
	switch t {
	case TypePomodoro:
		return "Pomodoro"
	case TypeLongFocus:
		return "Long focus"
	case TypeDeepWork:
		return "Deep work"
	case TypeStudy:
		return "Study"
	case TypeCustom:
		return "Custom"
	default:
		return string(t)
	}
}

// CompletionReason records why a session reached the completed state.
type CompletionReason string

const (
	ReasonCompleted     CompletionReason = "completed"
	ReasonInterrupted   CompletionReason = "interrupted"
	ReasonCancelled     CompletionReason = "cancelled"
	ReasonTimeout       CompletionReason = "timeout"
	ReasonBreak         CompletionReason = "break"
	ReasonEmergency     CompletionReason = "emergency"
	ReasonVoluntaryStop CompletionReason = "voluntary_stop"
)

// AllCompletionReasons returns every accepted completion reason.
func AllCompletionReasons() []CompletionReason {
	return []CompletionReason{
		ReasonCompleted, ReasonInterrupted, ReasonCancelled, ReasonTimeout,
		ReasonBreak, ReasonEmergency, ReasonVoluntaryStop,
	}
}

// ParseCompletionReason validates a completion reason.
func ParseCompletionReason(s string) (CompletionReason, error) {
	switch CompletionReason(s) {
	case ReasonCompleted, ReasonInterrupted, ReasonCancelled, ReasonTimeout,
		ReasonBreak, ReasonEmergency, ReasonVoluntaryStop:
		return CompletionReason(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCompletionReason, s)
	}
}

// Quality is the coarse focus quality category assigned by the scorer.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// AllQualities returns the categories from best to worst.
func AllQualities() []Quality {
	return []Quality{QualityHigh, QualityMedium, QualityLow}
}

// ParseQuality converts a stored string into a Quality. The empty string
// means the session has not been scored yet.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case "", QualityHigh, QualityMedium, QualityLow:
		return Quality(s), nil
	default:
		return "", fmt.Errorf("unknown focus quality %q", s)
	}
}

// Score thresholds for quality categories.
const (
	HighQualityThreshold   = 8.0
	MediumQualityThreshold = 5.0
)

// CategorizeScore maps a 0-10 score to a quality category.
func CategorizeScore(score float64) Quality {
	switch {
	case score >= HighQualityThreshold:
		return QualityHigh
	case score >= MediumQualityThreshold:
		return QualityMedium
	default:
		return QualityLow
	}
}
