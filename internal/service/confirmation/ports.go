package confirmation

import (
	"context"
	"time"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/phrase"
)

// Adapter is the boundary to audio playback and speech recognition.
// Implementations guarantee at most one result per Listen call.
type Adapter interface {
	// Play speaks the phrase and returns when playback completes.
	// Errors wrapping domain.ErrCapabilityUnavailable or
	// domain.ErrPermissionDenied end the session with an escalation.
	Play(ctx context.Context, key phrase.Key, lang domain.Language) error
	// Listen waits for an answer for at most timeout.
	Listen(ctx context.Context, lang domain.Language, timeout time.Duration) domain.RecognitionResult
	// Stop cancels any in-flight Play or Listen. Safe to call when idle.
	Stop()
}

// Classifier maps recognition candidates to an intent.
type Classifier interface {
	Classify(candidates []string, lang domain.Language) domain.Intent
}

// Settings exposes the user preferences read at session start and escalation.
type Settings interface {
	PreferredLanguage() domain.Language
	EmergencyContact() string
	VoiceConfirmationEnabled() bool
}

// Dispatcher performs the escalation.
type Dispatcher interface {
	Escalate(ctx context.Context, contact string) *domain.Outcome
}

// Sink stores audit records.
type Sink interface {
	Append(ctx context.Context, rec *domain.Record) error
}

// Observer receives engine events, e.g. for metrics.
type Observer interface {
	// FallAccepted is called when a session starts.
	FallAccepted(lang domain.Language)
	// FallDropped is called when an event arrives while a session is active.
	FallDropped()
	// AttemptStarted is called before each fall prompt.
	AttemptStarted(attempt int)
	// Recognized is called for every listen result with its classification.
	Recognized(failure domain.FailureReason, intent domain.Intent)
	// SessionEnded is called once per session after the record is built.
	SessionEnded(rec *domain.Record)
}

// nopObserver ignores every event.
type nopObserver struct{}

func (nopObserver) FallAccepted(domain.Language) {}

func (nopObserver) FallDropped() {}

func (nopObserver) AttemptStarted(int) {}

func (nopObserver) Recognized(domain.FailureReason, domain.Intent) {}

func (nopObserver) SessionEnded(*domain.Record) {}
