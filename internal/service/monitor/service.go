package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	api "github.com/oshokin/guardian/internal/api/grpc/monitor"
	"github.com/oshokin/guardian/internal/capability/command"
	"github.com/oshokin/guardian/internal/capability/relay"
	"github.com/oshokin/guardian/internal/config"
	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/intent"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/metrics"
	"github.com/oshokin/guardian/internal/phrase"
	"github.com/oshokin/guardian/internal/repository/audit"
	"github.com/oshokin/guardian/internal/service/confirmation"
	"github.com/oshokin/guardian/internal/service/escalation"
	"github.com/oshokin/guardian/internal/settings"
)

// daemon holds the wired components and implements the control API service.
type daemon struct {
	store   *settings.Store
	relay   *relay.Relay
	journal *escalation.Journal
	history audit.Repository
	metrics *metrics.Metrics
	engine  *confirmation.Engine
}

// newDaemon builds every component from cfg. settingsPath backs live reloads
// and may be empty. Prompts are echoed to promptOutput when it is set.
func newDaemon(ctx context.Context, cfg *config.Config, settingsPath string, promptOutput io.Writer) (*daemon, error) {
	catalog, unknown := phrase.Default().Merge(cfg.Phrases)
	for _, entry := range unknown {
		logger.WarnKV(ctx, "Ignoring phrases for unknown language", "language", entry)
	}

	var storeOpts []settings.Option
	if settingsPath != "" {
		storeOpts = append(storeOpts, settings.WithFile(settingsPath))
	}

	storeOpts = append(storeOpts, settings.WithChangeHandler(func(old, next config.Settings) {
		if old.Language() != next.Language() {
			logger.InfoKV(ctx, "Voice language changed, applies to the next session",
				"from", old.Language(), "to", next.Language())
		}
	}))

	store := settings.New(cfg.Settings, storeOpts...)

	var relayOpts []relay.Option
	if cfg.Engine.PromptDuration > 0 {
		relayOpts = append(relayOpts, relay.WithPromptDuration(cfg.Engine.PromptDuration))
	}

	if promptOutput != nil {
		relayOpts = append(relayOpts, relay.WithPromptHandler(func(p relay.Prompt) {
			//nolint:errcheck // Echo output is best effort.
			_, _ = fmt.Fprintf(promptOutput, "[%s] %s\n", p.Language, p.Text)
		}))
	}

	adapter := relay.New(catalog, relayOpts...)
	runner := command.New(cfg.Commands.Templates, cfg.Commands.Timeout)
	journal := escalation.NewJournal(0)

	dispatcher := escalation.New(runner, runner,
		escalation.WithErrorReporter(journal),
		escalation.WithLocationURL(store.LocationURL),
	)

	history, err := audit.Open(ctx, cfg.Audit.Driver, cfg.Audit.Path)
	if err != nil {
		return nil, fmt.Errorf("open audit repository: %w", err)
	}

	m := metrics.New()

	engine := confirmation.New(adapter, intent.New(cfg.KeywordOptions()...), store, dispatcher,
		confirmation.WithConfig(confirmation.Config{
			MaxAttempts:   cfg.Engine.MaxAttempts,
			ListenTimeout: cfg.Engine.ListenTimeout,
			PromptTimeout: cfg.Engine.PromptTimeout,
			RetryPause:    cfg.Engine.RetryPause,
			ReleaseGrace:  cfg.Engine.ReleaseGrace,
		}),
		confirmation.WithSink(history),
		confirmation.WithObserver(m),
	)

	return &daemon{
		store:   store,
		relay:   adapter,
		journal: journal,
		history: history,
		metrics: m,
		engine:  engine,
	}, nil
}

// ReportFall hands ev to the engine.
func (d *daemon) ReportFall(ctx context.Context, ev domain.FallEvent) (string, bool) {
	return d.engine.OnFallDetected(ctx, ev)
}

// Respond pushes a recognition result to the listening relay.
func (d *daemon) Respond(ctx context.Context, res domain.RecognitionResult) bool {
	delivered := d.relay.Push(res)
	if !delivered {
		logger.DebugKV(ctx, "Response ignored, nobody is listening")
	}

	return delivered
}

// Cancel stops the active session.
func (d *daemon) Cancel(ctx context.Context) bool {
	return d.engine.Cancel(ctx)
}

// Status combines the engine snapshot with relay and journal state.
func (d *daemon) Status(context.Context) *api.Status {
	st := &api.Status{
		Status:    d.engine.Snapshot(),
		Listening: d.relay.Listening(),
		Errors:    d.journal.Recent(),
	}

	if p, ok := d.relay.LastPrompt(); ok {
		st.Prompt = p.Text
	}

	return st
}

// ListOutcomes reads the audit repository.
func (d *daemon) ListOutcomes(ctx context.Context, limit int) ([]*domain.Record, error) {
	return d.history.List(ctx, limit)
}

// drain cancels a session still confirming and waits for any escalation to finish.
func (d *daemon) drain(ctx context.Context) error {
	if d.engine.Cancel(ctx) {
		logger.Info(ctx, "Active session cancelled on shutdown")
	}

	if err := d.engine.Wait(ctx); err != nil {
		return fmt.Errorf("wait for session: %w", err)
	}

	return nil
}

// close releases the audit repository.
func (d *daemon) close(ctx context.Context) {
	if err := d.history.Close(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WarnKV(ctx, "Failed to close audit repository", "error", err)
	}
}
