package confirmation

import "time"

// OutcomeKind names the action the dispatcher took.
type OutcomeKind string

const (
	// OutcomeContactNotified means message and call were attempted to the contact.
	OutcomeContactNotified OutcomeKind = "contact_notified"
	// OutcomeSirenSounded means no contact was configured and the local siren was raised.
	OutcomeSirenSounded OutcomeKind = "siren_sounded"
	// OutcomeContactInvalidSirenSounded means a contact was configured but unusable,
	// so nobody could be notified and the local siren was raised instead.
	OutcomeContactInvalidSirenSounded OutcomeKind = "no_action_contact_missing_but_siren_sounded"
)

// Modality is one delivery channel towards the contact.
type Modality string

const (
	// ModalityMessage is the text message channel.
	ModalityMessage Modality = "message"
	// ModalityCall is the voice call channel.
	ModalityCall Modality = "call"
	// ModalitySiren is the local alarm.
	ModalitySiren Modality = "siren"
)

// Delivery records a single delivery attempt.
type Delivery struct {
	// Modality is the channel used.
	Modality Modality
	// Err is nil on success.
	Err error
}

// Outcome is the terminal record of what the dispatcher did.
type Outcome struct {
	// Kind is the action taken.
	Kind OutcomeKind
	// Contact is the number that was notified, empty for siren outcomes.
	Contact string
	// Deliveries lists every message/call attempt in order.
	Deliveries []Delivery
	// SirenSounded is true whenever the local alarm was triggered,
	// including as a fallback after every delivery to the contact failed.
	SirenSounded bool
	// SirenErr is the error of the alarm capability, if any.
	SirenErr error
	// DispatchedAt is when the dispatcher finished.
	DispatchedAt time.Time
}

// Delivered reports whether at least one delivery to the contact succeeded.
func (o *Outcome) Delivered() bool {
	if o == nil {
		return false
	}

	for _, d := range o.Deliveries {
		if d.Err == nil {
			return true
		}
	}

	return false
}

// Failures returns the failed deliveries, including a failed siren.
func (o *Outcome) Failures() []Delivery {
	if o == nil {
		return nil
	}

	var failed []Delivery

	for _, d := range o.Deliveries {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}

	if o.SirenErr != nil {
		failed = append(failed, Delivery{Modality: ModalitySiren, Err: o.SirenErr})
	}

	return failed
}

// Result is how a session ended.
type Result string

const (
	// ResultResolved means the user confirmed being fine.
	ResultResolved Result = "resolved"
	// ResultEscalated means the dispatcher ran.
	ResultEscalated Result = "escalated"
	// ResultCancelled means an external stop ended the session before a decision.
	ResultCancelled Result = "cancelled"
)

// Record is the audit entry written after every session end.
type Record struct {
	// SessionID identifies the session.
	SessionID string
	// SourceID is the detector that reported the fall, if known.
	SourceID string
	// Language is the session language.
	Language Language
	// Attempts is the final attempt count.
	Attempts int
	// Result is how the session ended.
	Result Result
	// Reason is a short machine-readable cause, e.g. "max_attempts" or "audio_error".
	Reason string
	// LastIntent is the last classified intent.
	LastIntent Intent
	// Outcome is set for escalated sessions.
	Outcome *Outcome
	// DetectedAt is when the fall was detected.
	DetectedAt time.Time
	// StartedAt is when the session started.
	StartedAt time.Time
	// EndedAt is when the session ended.
	EndedAt time.Time
}
