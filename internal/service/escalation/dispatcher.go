package escalation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/logger"
)

var (
	// ErrContactMissing is reported when no emergency contact is configured.
	ErrContactMissing = errors.New("emergency contact is not set")
	// ErrContactInvalid is reported when the configured contact is not a phone number.
	ErrContactInvalid = errors.New("emergency contact is not a valid phone number")
	// ErrNotifierUnavailable is the delivery error when no notifier is wired.
	ErrNotifierUnavailable = errors.New("notifier is not available")
	// ErrAlarmUnavailable is the siren error when no alarm is wired.
	ErrAlarmUnavailable = errors.New("alarm is not available")
)

// Notifier delivers alerts to the emergency contact.
type Notifier interface {
	// SendMessage sends a text message to contact.
	SendMessage(ctx context.Context, contact, message string) error
	// PlaceCall starts a voice call to contact.
	PlaceCall(ctx context.Context, contact string) error
}

// Alarm raises the local siren.
type Alarm interface {
	// Sound starts the siren.
	Sound(ctx context.Context) error
}

// ErrorReporter receives failures an operator should see.
type ErrorReporter interface {
	// ReportError records err.
	ReportError(ctx context.Context, err error)
}

// Dispatcher turns an escalation into deliveries. Each call makes exactly one
// attempt per modality; failures are reported, never retried.
type Dispatcher struct {
	notifier    Notifier
	alarm       Alarm
	reporter    ErrorReporter
	locationURL func() string
	now         func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithErrorReporter sets where delivery failures go. Defaults to the log.
func WithErrorReporter(r ErrorReporter) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithLocationURL adds a location line to alerts. The function is read on
// every escalation so a reloaded setting takes effect.
func WithLocationURL(url func() string) Option {
	return func(d *Dispatcher) {
		if url != nil {
			d.locationURL = url
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a dispatcher. Nil capabilities are tolerated and surface as
// delivery errors.
func New(notifier Notifier, alarm Alarm, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		notifier:    notifier,
		alarm:       alarm,
		reporter:    LogReporter{},
		locationURL: func() string { return "" },
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Escalate alerts contact, or sounds the siren when contact is unusable.
func (d *Dispatcher) Escalate(ctx context.Context, contact string) *domain.Outcome {
	contact = strings.TrimSpace(contact)

	var outcome *domain.Outcome

	switch {
	case contact == "":
		d.reporter.ReportError(ctx, ErrContactMissing)

		outcome = &domain.Outcome{Kind: domain.OutcomeSirenSounded}
		d.soundSiren(ctx, outcome)
	case !ValidContact(contact):
		d.reporter.ReportError(ctx, fmt.Errorf("%w: %q", ErrContactInvalid, contact))

		outcome = &domain.Outcome{Kind: domain.OutcomeContactInvalidSirenSounded}
		d.soundSiren(ctx, outcome)
	default:
		outcome = d.notify(ctx, contact)
	}

	outcome.DispatchedAt = d.now()

	logger.WarnKV(ctx, "Escalation dispatched",
		"kind", outcome.Kind,
		"contact", outcome.Contact,
		"delivered", outcome.Delivered(),
		"siren", outcome.SirenSounded,
	)

	return outcome
}

// notify sends the message and places the call, sounding the siren only if both failed.
func (d *Dispatcher) notify(ctx context.Context, contact string) *domain.Outcome {
	outcome := &domain.Outcome{
		Kind:    domain.OutcomeContactNotified,
		Contact: contact,
	}

	logger.WarnKV(ctx, "Alerting emergency contact", "contact", contact)

	message := ComposeMessage(d.locationURL())

	outcome.Deliveries = append(outcome.Deliveries,
		d.deliver(ctx, domain.ModalityMessage, contact, func(n Notifier) error {
			return n.SendMessage(ctx, contact, message)
		}),
		d.deliver(ctx, domain.ModalityCall, contact, func(n Notifier) error {
			return n.PlaceCall(ctx, contact)
		}),
	)

	if !outcome.Delivered() {
		logger.ErrorKV(ctx, "Every delivery to the contact failed, sounding siren", "contact", contact)
		d.soundSiren(ctx, outcome)
	}

	return outcome
}

// deliver performs one attempt and reports its failure.
func (d *Dispatcher) deliver(
	ctx context.Context,
	modality domain.Modality,
	contact string,
	send func(Notifier) error,
) domain.Delivery {
	var err error
	if d.notifier == nil {
		err = ErrNotifierUnavailable
	} else {
		err = send(d.notifier)
	}

	if err != nil {
		d.reporter.ReportError(ctx, fmt.Errorf("%s to %s: %w", modality, contact, err))
	}

	return domain.Delivery{Modality: modality, Err: err}
}

// soundSiren raises the alarm and records the attempt on outcome.
func (d *Dispatcher) soundSiren(ctx context.Context, outcome *domain.Outcome) {
	outcome.SirenSounded = true

	if d.alarm == nil {
		outcome.SirenErr = ErrAlarmUnavailable
	} else {
		outcome.SirenErr = d.alarm.Sound(ctx)
	}

	if outcome.SirenErr != nil {
		d.reporter.ReportError(ctx, fmt.Errorf("siren: %w", outcome.SirenErr))
	}
}
