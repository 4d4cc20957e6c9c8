package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// TestMetrics_SessionEnded verifies outcomes are broken down by kind and delivery status.
func TestMetrics_SessionEnded(t *testing.T) {
	t.Parallel()

	m := New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m.FallAccepted(domain.English)
	m.FallDropped()
	m.AttemptStarted(1)
	m.Recognized(domain.FailureTimeout, domain.IntentUnknown)
	require.InDelta(t, 1, testutil.ToFloat64(m.activeSessions), 0)

	m.SessionEnded(&domain.Record{
		Result:    domain.ResultEscalated,
		Reason:    "max_attempts",
		StartedAt: start,
		EndedAt:   start.Add(30 * time.Second),
		Outcome: &domain.Outcome{
			Kind: domain.OutcomeContactNotified,
			Deliveries: []domain.Delivery{
				{Modality: domain.ModalityMessage, Err: errors.New("no network")},
				{Modality: domain.ModalityCall},
			},
		},
	})

	require.InDelta(t, 1, testutil.ToFloat64(m.falls.WithLabelValues("accepted")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.falls.WithLabelValues("dropped")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.attempts), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.recognitions.WithLabelValues("timeout", "unknown")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.sessions.WithLabelValues("escalated", "max_attempts")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.escalations.WithLabelValues("contact_notified")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.deliveries.WithLabelValues("message", "failed")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.deliveries.WithLabelValues("call", "ok")), 0)
	require.InDelta(t, 0, testutil.ToFloat64(m.activeSessions), 0)
}

// TestMetrics_Handler verifies the registry is served.
func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.FallAccepted(domain.Marathi)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `guardian_falls_total{admission="accepted"} 1`)
	require.Contains(t, rec.Body.String(), "guardian_build_info{")
}

// TestMetrics_Nil verifies a nil collector set is inert.
func TestMetrics_Nil(t *testing.T) {
	t.Parallel()

	var m *Metrics

	require.NotPanics(t, func() {
		m.FallAccepted(domain.English)
		m.FallDropped()
		m.AttemptStarted(1)
		m.Recognized(domain.FailureNone, domain.IntentAffirmative)
		m.SessionEnded(&domain.Record{})
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
