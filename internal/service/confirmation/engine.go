package confirmation

import (
	"context"
	"sync"
	"time"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/logger"
)

// Status is a point-in-time view of the engine.
type Status struct {
	// SessionID is empty when idle.
	SessionID string
	// SourceID is the detector of the active session.
	SourceID string
	// State is StateIdle when no session is active.
	State domain.State
	// Attempt is the current attempt number.
	Attempt int
	// Language is the active session language.
	Language domain.Language
	// StartedAt is when the active session started.
	StartedAt time.Time
}

// active is the bookkeeping of the running session.
type active struct {
	session *domain.Session
	cancel  context.CancelFunc
	done    chan struct{}
	// committed is set once the session reached a terminal state,
	// after which it can no longer be cancelled.
	committed bool
}

// Engine runs confirmation sessions, one at a time.
type Engine struct {
	adapter    Adapter
	classifier Classifier
	settings   Settings
	dispatcher Dispatcher
	sink       Sink
	observer   Observer
	cfg        Config
	now        func() time.Time
	newID      func() string

	// mu guards current and every field of the session it points to.
	mu      sync.Mutex
	current *active
}

// New creates an engine.
func New(adapter Adapter, classifier Classifier, settings Settings, dispatcher Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		adapter:    adapter,
		classifier: classifier,
		settings:   settings,
		dispatcher: dispatcher,
		observer:   nopObserver{},
		cfg:        DefaultConfig(),
		now:        time.Now,
		newID:      newSessionID,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Config returns the effective engine bounds.
func (e *Engine) Config() Config {
	return e.cfg
}

// OnFallDetected starts a session for ev unless one is already active,
// in which case the event is dropped. It does not block: the session runs
// on its own goroutine and outlives ctx, keeping only its values.
func (e *Engine) OnFallDetected(ctx context.Context, ev domain.FallEvent) (string, bool) {
	e.mu.Lock()

	if e.current != nil {
		id := e.current.session.ID
		e.mu.Unlock()

		e.observer.FallDropped()
		logger.InfoKV(ctx, "Fall dropped, a session is already active", "active_session_id", id, "source_id", ev.SourceID)

		return "", false
	}

	now := e.now()
	if ev.DetectedAt.IsZero() {
		ev.DetectedAt = now
	}

	session := &domain.Session{
		ID:               e.newID(),
		SourceID:         ev.SourceID,
		State:            domain.StateIdle,
		Language:         e.settings.PreferredLanguage(),
		DetectedAt:       ev.DetectedAt,
		StartedAt:        now,
		LastTransitionAt: now,
	}

	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sessionCtx = logger.WithKV(sessionCtx, "session_id", session.ID)

	run := &active{
		session: session,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	e.current = run
	e.mu.Unlock()

	e.observer.FallAccepted(session.Language)
	logger.InfoKV(sessionCtx, "Fall accepted, starting confirmation",
		"source_id", ev.SourceID,
		"language", session.Language,
		"detected_at", ev.DetectedAt,
	)

	go e.run(sessionCtx, run)

	return session.ID, true
}

// Cancel stops the active session without escalating and waits for it to end.
// It returns false when idle or when the session has already reached a
// terminal state; an escalation that started always completes.
func (e *Engine) Cancel(ctx context.Context) bool {
	e.mu.Lock()

	run := e.current
	if run == nil || run.committed {
		e.mu.Unlock()

		return false
	}

	run.cancel()
	e.mu.Unlock()

	logger.InfoKV(ctx, "Cancelling confirmation session", "session_id", run.session.ID)

	e.adapter.Stop()

	select {
	case <-run.done:
	case <-ctx.Done():
	}

	return true
}

// Snapshot returns the current engine status.
func (e *Engine) Snapshot() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return Status{State: domain.StateIdle}
	}

	s := e.current.session

	return Status{
		SessionID: s.ID,
		SourceID:  s.SourceID,
		State:     s.State,
		Attempt:   s.AttemptCount,
		Language:  s.Language,
		StartedAt: s.StartedAt,
	}
}

// Wait blocks until no session is active or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	run := e.current
	e.mu.Unlock()

	if run == nil {
		return nil
	}

	select {
	case <-run.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// transition moves the session to next under the engine lock.
func (e *Engine) transition(ctx context.Context, run *active, next domain.State) {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := run.session.State
	if err := run.session.Transition(next, e.now()); err != nil {
		logger.ErrorKV(ctx, "Refused session transition", "error", err)

		return
	}

	logger.DebugKV(ctx, "Session transition", "from", from, "to", next, "attempt", run.session.AttemptCount)
}

// commit moves the session to a terminal state unless it was cancelled.
func (e *Engine) commit(ctx context.Context, run *active, terminal domain.State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}

	if err := run.session.Transition(terminal, e.now()); err != nil {
		logger.ErrorKV(ctx, "Refused terminal transition", "error", err)

		return false
	}

	run.committed = true

	return true
}

// setAttempt records the attempt number.
func (e *Engine) setAttempt(run *active, attempt int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	run.session.AttemptCount = attempt
}

// finish releases the single-flight slot.
func (e *Engine) finish(run *active) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == run {
		e.current = nil
	}
}
