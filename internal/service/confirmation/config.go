package confirmation

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxAttempts is the number of prompts before escalating.
	DefaultMaxAttempts = 2
	// DefaultListenTimeout bounds each listening phase.
	DefaultListenTimeout = 12 * time.Second
	// DefaultPromptTimeout caps every playback.
	DefaultPromptTimeout = 10 * time.Second
	// DefaultRetryPause separates two attempts so the recognizer is released cleanly.
	DefaultRetryPause = 2 * time.Second
	// DefaultReleaseGrace is how long the engine waits for a stopped adapter call to return.
	DefaultReleaseGrace = time.Second
)

// Config holds the engine bounds.
type Config struct {
	// MaxAttempts is the number of prompts before escalating.
	MaxAttempts int
	// ListenTimeout bounds each listening phase.
	ListenTimeout time.Duration
	// PromptTimeout caps every playback.
	PromptTimeout time.Duration
	// RetryPause is the pause between attempts.
	RetryPause time.Duration
	// ReleaseGrace bounds the wait for a stopped adapter call.
	ReleaseGrace time.Duration
}

// DefaultConfig returns the built-in bounds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   DefaultMaxAttempts,
		ListenTimeout: DefaultListenTimeout,
		PromptTimeout: DefaultPromptTimeout,
		RetryPause:    DefaultRetryPause,
		ReleaseGrace:  DefaultReleaseGrace,
	}
}

// withDefaults replaces unset or invalid fields with defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.MaxAttempts < 1 {
		c.MaxAttempts = d.MaxAttempts
	}

	if c.ListenTimeout <= 0 {
		c.ListenTimeout = d.ListenTimeout
	}

	if c.PromptTimeout <= 0 {
		c.PromptTimeout = d.PromptTimeout
	}

	if c.RetryPause <= 0 {
		c.RetryPause = d.RetryPause
	}

	if c.ReleaseGrace <= 0 {
		c.ReleaseGrace = d.ReleaseGrace
	}

	return c
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the engine bounds. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg.withDefaults()
	}
}

// WithSink sets where audit records go.
func WithSink(sink Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// newSessionID returns a random UUID.
func newSessionID() string {
	return uuid.NewString()
}
