package relay

import (
	"context"
	"sync"
	"time"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/phrase"
)

// DefaultPromptDuration is how long a rendered prompt is assumed to take.
const DefaultPromptDuration = 2 * time.Second

// Prompt is one rendered phrase.
type Prompt struct {
	Key      phrase.Key
	Language domain.Language
	Text     string
	At       time.Time
}

// Relay implements the engine adapter over pushed answers.
type Relay struct {
	catalog        *phrase.Catalog
	promptDuration time.Duration
	onPrompt       func(Prompt)

	mu sync.Mutex
	// op numbers operations so a late one never clears a newer cancel.
	op uint64
	// cancel stops the in-flight operation.
	cancel context.CancelFunc
	// pending receives the answer of the in-flight Listen.
	pending chan domain.RecognitionResult
	last    *Prompt
}

// Option configures a Relay.
type Option func(*Relay)

// WithPromptDuration sets how long Play blocks.
func WithPromptDuration(d time.Duration) Option {
	return func(r *Relay) {
		if d >= 0 {
			r.promptDuration = d
		}
	}
}

// WithPromptHandler is called for every played phrase.
func WithPromptHandler(fn func(Prompt)) Option {
	return func(r *Relay) {
		r.onPrompt = fn
	}
}

// New creates a relay rendering phrases from catalog.
func New(catalog *phrase.Catalog, opts ...Option) *Relay {
	if catalog == nil {
		catalog = phrase.Default()
	}

	r := &Relay{
		catalog:        catalog,
		promptDuration: DefaultPromptDuration,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Play renders the phrase and waits for the prompt duration.
func (r *Relay) Play(ctx context.Context, key phrase.Key, lang domain.Language) error {
	ctx, done := r.begin(ctx)
	defer done()

	p := Prompt{
		Key:      key,
		Language: lang,
		Text:     r.catalog.Lookup(key, lang),
		At:       time.Now(),
	}

	r.mu.Lock()
	r.last = &p
	r.mu.Unlock()

	logger.InfoKV(ctx, "Prompt", "phrase", key, "language", lang, "text", p.Text)

	if r.onPrompt != nil {
		r.onPrompt(p)
	}

	if r.promptDuration == 0 {
		return nil
	}

	timer := time.NewTimer(r.promptDuration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen waits for one pushed answer. Timeout, stop and cancellation all
// yield a NoSpeech failure.
func (r *Relay) Listen(ctx context.Context, _ domain.Language, timeout time.Duration) domain.RecognitionResult {
	ctx, done := r.begin(ctx)
	defer done()

	answers := make(chan domain.RecognitionResult, 1)

	r.mu.Lock()
	r.pending = answers
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.pending == answers {
			r.pending = nil
		}
		r.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-answers:
		return res
	case <-timer.C:
		return domain.Failed(domain.FailureNoSpeech)
	case <-ctx.Done():
		return domain.Failed(domain.FailureNoSpeech)
	}
}

// Push delivers an answer to the in-flight Listen. It returns false when no
// Listen is waiting; a Listen accepts a single answer.
func (r *Relay) Push(res domain.RecognitionResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return false
	}

	r.pending <- res
	r.pending = nil

	return true
}

// Listening reports whether an answer is awaited.
func (r *Relay) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pending != nil
}

// LastPrompt returns the most recently played phrase.
func (r *Relay) LastPrompt() (Prompt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last == nil {
		return Prompt{}, false
	}

	return *r.last, true
}

// Stop cancels the in-flight Play or Listen. It is a no-op when idle.
func (r *Relay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
}

// begin registers a new operation and returns its context.
func (r *Relay) begin(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.op++
	id := r.op
	r.cancel = cancel
	r.mu.Unlock()

	return ctx, func() {
		cancel()

		r.mu.Lock()
		defer r.mu.Unlock()

		if r.op == id {
			r.cancel = nil
		}
	}
}
