// Package metrics exports engine activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/version"
)

const namespace = "guardian"

// Metrics holds the collectors on a private registry. A nil *Metrics ignores
// every event.
type Metrics struct {
	registry *prometheus.Registry

	falls           *prometheus.CounterVec
	attempts        prometheus.Counter
	recognitions    *prometheus.CounterVec
	sessions        *prometheus.CounterVec
	escalations     *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	sessionDuration prometheus.Histogram
}

// New registers the collectors, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	build := version.Current()
	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build metadata of the running monitor, always 1.",
		ConstLabels: prometheus.Labels{
			"version":    build.Version,
			"commit":     build.Commit,
			"go_version": build.GoVersion,
		},
	}).Set(1)

	return &Metrics{
		registry: reg,
		falls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "falls_total",
				Help:      "Fall events received, by admission.",
			},
			[]string{"admission"},
		),
		attempts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmation_attempts_total",
				Help:      "Confirmation prompts started.",
			},
		),
		recognitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recognitions_total",
				Help:      "Listen results, by failure reason and classified intent.",
			},
			[]string{"failure", "intent"},
		),
		sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Finished confirmation sessions, by result and reason.",
			},
			[]string{"result", "reason"},
		),
		escalations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "escalations_total",
				Help:      "Dispatched escalations, by outcome kind.",
			},
			[]string{"kind"},
		),
		deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Delivery attempts, by modality and status.",
			},
			[]string{"modality", "status"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Sessions in flight, zero or one.",
			},
		),
		sessionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_duration_seconds",
				Help:      "Time from session start to its end.",
				Buckets:   []float64{1, 5, 10, 15, 20, 30, 45, 60, 90, 120},
			},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FallAccepted counts an admitted fall.
func (m *Metrics) FallAccepted(domain.Language) {
	if m == nil {
		return
	}

	m.falls.WithLabelValues("accepted").Inc()
	m.activeSessions.Set(1)
}

// FallDropped counts a fall dropped by the single-flight guard.
func (m *Metrics) FallDropped() {
	if m == nil {
		return
	}

	m.falls.WithLabelValues("dropped").Inc()
}

// AttemptStarted counts a prompt.
func (m *Metrics) AttemptStarted(int) {
	if m == nil {
		return
	}

	m.attempts.Inc()
}

// Recognized counts a listen result.
func (m *Metrics) Recognized(failure domain.FailureReason, intent domain.Intent) {
	if m == nil {
		return
	}

	m.recognitions.WithLabelValues(failure.String(), intent.String()).Inc()
}

// SessionEnded records the session and its escalation outcome.
func (m *Metrics) SessionEnded(rec *domain.Record) {
	if m == nil || rec == nil {
		return
	}

	m.activeSessions.Set(0)
	m.sessions.WithLabelValues(string(rec.Result), rec.Reason).Inc()

	if !rec.StartedAt.IsZero() && rec.EndedAt.After(rec.StartedAt) {
		m.sessionDuration.Observe(rec.EndedAt.Sub(rec.StartedAt).Seconds())
	}

	o := rec.Outcome
	if o == nil {
		return
	}

	m.escalations.WithLabelValues(string(o.Kind)).Inc()

	for _, d := range o.Deliveries {
		m.deliveries.WithLabelValues(string(d.Modality), status(d.Err)).Inc()
	}

	if o.SirenSounded {
		m.deliveries.WithLabelValues(string(domain.ModalitySiren), status(o.SirenErr)).Inc()
	}
}

// status is the label of a delivery result.
func status(err error) string {
	if err != nil {
		return "failed"
	}

	return "ok"
}
