package confirmation

import (
	"errors"
	"fmt"
	"time"
)

// State is a node of the confirmation state machine.
type State int

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StatePrompting means the fall prompt is being played.
	StatePrompting
	// StateListening means the engine waits for a spoken answer.
	StateListening
	// StateClassifying means a recognition result is being evaluated.
	StateClassifying
	// StateEscalated is terminal: the dispatcher was invoked.
	StateEscalated
	// StateResolved is terminal: the user confirmed being fine.
	StateResolved
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrompting:
		return "prompting"
	case StateListening:
		return "listening"
	case StateClassifying:
		return "classifying"
	case StateEscalated:
		return "escalated"
	case StateResolved:
		return "resolved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the state ends a session.
func (s State) Terminal() bool {
	return s == StateEscalated || s == StateResolved
}

// ErrTerminal is returned when a transition is attempted out of a terminal state.
var ErrTerminal = errors.New("session already reached a terminal state")

// Session is one end-to-end confirmation attempt following a single fall.
type Session struct {
	// ID uniquely identifies the session in logs and audit records.
	ID string
	// SourceID is copied from the FallEvent that started the session.
	SourceID string
	// State is the current state machine node.
	State State
	// AttemptCount starts at 1 with the first prompt and never exceeds the engine bound.
	AttemptCount int
	// Language is selected at session start and immutable afterwards.
	Language Language
	// DetectedAt is when the fall was detected.
	DetectedAt time.Time
	// StartedAt is when the engine accepted the event.
	StartedAt time.Time
	// LastTransitionAt is when State last changed.
	LastTransitionAt time.Time
}

// Transition moves the session to the next state.
// Terminal states are final, so a second terminal transition is refused.
func (s *Session) Transition(next State, at time.Time) error {
	if s.State.Terminal() {
		return fmt.Errorf("%s -> %s: %w", s.State, next, ErrTerminal)
	}

	s.State = next
	s.LastTransitionAt = at

	return nil
}

// Clone returns a copy that is safe to hand to other goroutines.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}
