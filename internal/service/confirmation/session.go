package confirmation

import (
	"context"
	"errors"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/phrase"
)

// Reasons recorded on audit records. Unrecoverable listen failures use the
// failure name instead, e.g. "audio_error".
const (
	ReasonAffirmative       = "affirmative"
	ReasonMaxAttempts       = "max_attempts"
	ReasonVoiceDisabled     = "voice_confirmation_disabled"
	ReasonPromptUnavailable = "prompt_unavailable"
	ReasonCancelled         = "cancelled"
)

// sessionResult is what the confirmation loop decided.
type sessionResult struct {
	result     domain.Result
	reason     string
	lastIntent domain.Intent
	outcome    *domain.Outcome
}

// cancelled is the result of a session stopped from outside.
func cancelled(last domain.Intent) sessionResult {
	return sessionResult{
		result:     domain.ResultCancelled,
		reason:     ReasonCancelled,
		lastIntent: last,
	}
}

// run drives one session to its end and releases the single-flight slot.
func (e *Engine) run(ctx context.Context, run *active) {
	defer close(run.done)
	defer e.finish(run)
	defer run.cancel()

	res := e.confirm(ctx, run)
	rec := e.record(run, res)

	e.observer.SessionEnded(rec)

	if e.sink != nil {
		if err := e.sink.Append(context.WithoutCancel(ctx), rec); err != nil {
			logger.ErrorKV(ctx, "Failed to append audit record", "error", err)
		}
	}

	logger.InfoKV(ctx, "Confirmation session ended",
		"result", rec.Result,
		"reason", rec.Reason,
		"attempts", rec.Attempts,
		"last_intent", rec.LastIntent,
	)
}

// confirm runs the prompt, listen and classify cycle until a decision.
func (e *Engine) confirm(ctx context.Context, run *active) sessionResult {
	lang := run.session.Language

	if !e.settings.VoiceConfirmationEnabled() {
		logger.Info(ctx, "Voice confirmation is disabled, escalating immediately")

		return e.escalate(ctx, run, ReasonVoiceDisabled, domain.IntentUnknown, false)
	}

	last := domain.IntentUnknown

	for attempt := 1; ; attempt++ {
		e.setAttempt(run, attempt)
		e.transition(ctx, run, domain.StatePrompting)
		e.observer.AttemptStarted(attempt)

		if err := e.play(ctx, phrase.FallDetected, lang); err != nil {
			switch {
			case ctx.Err() != nil:
				return cancelled(last)
			case unrecoverable(err):
				logger.WarnKV(ctx, "Voice prompt unavailable, escalating", "error", err)

				return e.escalate(ctx, run, ReasonPromptUnavailable, last, false)
			default:
				logger.WarnKV(ctx, "Fall prompt failed, listening anyway", "error", err)
			}
		}

		e.transition(ctx, run, domain.StateListening)

		answer, err := e.listen(ctx, lang)
		if err != nil {
			return cancelled(last)
		}

		e.transition(ctx, run, domain.StateClassifying)

		last = domain.IntentUnknown
		if answer.Failure == domain.FailureNone {
			last = e.classifier.Classify(answer.Candidates, lang)
		}

		e.observer.Recognized(answer.Failure, last)
		logger.InfoKV(ctx, "Answer classified",
			"attempt", attempt,
			"failure", answer.Failure,
			"intent", last,
			"candidates", answer.Candidates,
		)

		switch {
		case answer.Failure.Unrecoverable():
			return e.escalate(ctx, run, answer.Failure.String(), last, true)
		case last == domain.IntentAffirmative:
			return e.resolve(ctx, run)
		case attempt >= e.cfg.MaxAttempts:
			return e.escalate(ctx, run, ReasonMaxAttempts, last, true)
		}

		e.announce(ctx, phrase.NoResponse, lang)

		if !e.pause(ctx) {
			return cancelled(last)
		}
	}
}

// resolve ends the session after a positive confirmation.
func (e *Engine) resolve(ctx context.Context, run *active) sessionResult {
	if !e.commit(ctx, run, domain.StateResolved) {
		return cancelled(domain.IntentAffirmative)
	}

	logger.Info(ctx, "User confirmed being fine")

	e.announce(ctx, phrase.ConfirmationReceived, run.session.Language)
	e.announce(ctx, phrase.TakeCare, run.session.Language)

	return sessionResult{
		result:     domain.ResultResolved,
		reason:     ReasonAffirmative,
		lastIntent: domain.IntentAffirmative,
	}
}

// escalate commits the session and runs the dispatcher. Once committed the
// dispatch is detached from cancellation.
func (e *Engine) escalate(ctx context.Context, run *active, reason string, last domain.Intent, speak bool) sessionResult {
	if !e.commit(ctx, run, domain.StateEscalated) {
		return cancelled(last)
	}

	ctx = context.WithoutCancel(ctx)

	logger.WarnKV(ctx, "Fall not confirmed, escalating", "reason", reason)

	if speak {
		e.announce(ctx, phrase.EmergencyTriggered, run.session.Language)
	}

	outcome := e.dispatcher.Escalate(ctx, e.settings.EmergencyContact())

	return sessionResult{
		result:     domain.ResultEscalated,
		reason:     reason,
		lastIntent: last,
		outcome:    outcome,
	}
}

// record builds the audit entry of a finished session.
func (e *Engine) record(run *active, res sessionResult) *domain.Record {
	e.mu.Lock()
	s := run.session.Clone()
	e.mu.Unlock()

	return &domain.Record{
		SessionID:  s.ID,
		SourceID:   s.SourceID,
		Language:   s.Language,
		Attempts:   s.AttemptCount,
		Result:     res.result,
		Reason:     res.reason,
		LastIntent: res.lastIntent,
		Outcome:    res.outcome,
		DetectedAt: s.DetectedAt,
		StartedAt:  s.StartedAt,
		EndedAt:    e.now(),
	}
}

// unrecoverable reports adapter errors that make voice confirmation impossible.
func unrecoverable(err error) bool {
	return errors.Is(err, domain.ErrCapabilityUnavailable) || errors.Is(err, domain.ErrPermissionDenied)
}
