package confirmation

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/phrase"
)

// errPromptTimeout means playback did not finish within the prompt cap.
var errPromptTimeout = errors.New("prompt did not complete in time")

// play runs one playback bounded by the prompt cap.
func (e *Engine) play(ctx context.Context, key phrase.Key, lang domain.Language) error {
	playCtx, cancel := context.WithTimeout(ctx, e.cfg.PromptTimeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- e.adapter.Play(playCtx, key, lang)
	}()

	select {
	case err := <-done:
		return err
	case <-playCtx.Done():
		e.adapter.Stop()
		awaitRelease(ctx, done, e.cfg.ReleaseGrace)

		if err := ctx.Err(); err != nil {
			return err
		}

		return fmt.Errorf("%s: %w", key, errPromptTimeout)
	}
}

// announce plays a phrase whose failure does not change the session.
func (e *Engine) announce(ctx context.Context, key phrase.Key, lang domain.Language) {
	if err := e.play(ctx, key, lang); err != nil && ctx.Err() == nil {
		logger.WarnKV(ctx, "Announcement failed", "phrase", key, "error", err)
	}
}

// listen waits for an answer or the listen timeout, whichever comes first.
// A non-nil error means the session was cancelled.
func (e *Engine) listen(ctx context.Context, lang domain.Language) (domain.RecognitionResult, error) {
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan domain.RecognitionResult, 1)

	go func() {
		results <- e.adapter.Listen(listenCtx, lang, e.cfg.ListenTimeout)
	}()

	timer := time.NewTimer(e.cfg.ListenTimeout)
	defer timer.Stop()

	select {
	case res := <-results:
		return res.Normalized(), nil
	case <-timer.C:
		cancel()
		e.adapter.Stop()
		awaitRelease(ctx, results, e.cfg.ReleaseGrace)

		logger.InfoKV(ctx, "Listen timed out", "timeout", e.cfg.ListenTimeout)

		return domain.Failed(domain.FailureTimeout), nil
	case <-ctx.Done():
		e.adapter.Stop()
		awaitRelease(ctx, results, e.cfg.ReleaseGrace)

		return domain.RecognitionResult{}, ctx.Err()
	}
}

// pause waits between attempts. It returns false when the session was cancelled.
func (e *Engine) pause(ctx context.Context) bool {
	timer := time.NewTimer(e.cfg.RetryPause)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// awaitRelease drains a stopped adapter call so the next one never overlaps it.
// Whatever the call returns is discarded.
func awaitRelease[T any](ctx context.Context, results chan T, grace time.Duration) {
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-results:
	case <-timer.C:
		logger.WarnKV(ctx, "Adapter call did not return after stop", "grace", grace)
	}
}
