package integration

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/guardian/internal/capability/command"
	"github.com/oshokin/guardian/internal/config"
	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/service/common"
	"github.com/oshokin/guardian/internal/service/confirmation"
	"github.com/oshokin/guardian/internal/service/escalation"
	"github.com/oshokin/guardian/internal/service/monitor"
)

const (
	waitFor = 5 * time.Second
	tick    = 20 * time.Millisecond
)

// harness is a running monitor with a connected client.
type harness struct {
	client     *common.Client
	configPath string
	config     *config.Config
	deliveries string
}

// freeAddress reserves a loopback port for the monitor.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startMonitor writes a settings file, runs the daemon and waits until it answers.
func startMonitor(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("delivery commands use sh")
	}

	dir := t.TempDir()
	deliveries := filepath.Join(dir, "deliveries.log")
	voice := true

	cfg := &config.Config{
		ServerAddress: freeAddress(t),
		Timeout:       3 * time.Second,
		LogLevel:      "debug",
		Engine: config.Engine{
			MaxAttempts:    2,
			ListenTimeout:  300 * time.Millisecond,
			PromptTimeout:  time.Second,
			RetryPause:     20 * time.Millisecond,
			ReleaseGrace:   100 * time.Millisecond,
			PromptDuration: 10 * time.Millisecond,
		},
		Settings: config.Settings{
			VoiceLanguage:     "english",
			EmergencyContact:  "+1 555 0100",
			VoiceConfirmation: &voice,
			LocationURL:       "https://maps.example.com/?q=18.52,73.85",
		},
		Audit: config.Audit{
			Driver: config.AuditDriverSQLite,
			Path:   filepath.Join(dir, "audit.db"),
		},
		Commands: config.Commands{
			Templates: command.Templates{
				Message: []string{"sh", "-c", `printf 'message %s %s\n' "$0" "$1" >> "$2"`, "{contact}", "{message}", deliveries},
				Call:    []string{"sh", "-c", `printf 'call %s\n' "$0" >> "$1"`, "{contact}", deliveries},
				Siren:   []string{"true"},
			},
		},
	}

	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- monitor.Run(ctx, &monitor.Options{ConfigPath: path, Force: true})
	}()

	client, err := common.Dial(ctx, cfg.ServerAddress, common.WithCallTimeout(cfg.Timeout))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()

		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("monitor did not stop")
		}
	})

	require.Eventually(t, func() bool {
		_, err := client.Status(ctx)

		return err == nil
	}, waitFor, tick)

	return &harness{
		client:     client,
		configPath: path,
		config:     cfg,
		deliveries: deliveries,
	}
}

// waitListening blocks until the monitor awaits an answer.
func (h *harness) waitListening(t *testing.T) {
	t.Helper()

	require.Eventually(t, func() bool {
		st, err := h.client.Status(context.Background())

		return err == nil && st.Listening
	}, waitFor, tick)
}

// waitRecords blocks until n sessions are recorded and returns them.
func (h *harness) waitRecords(t *testing.T, n int) []*domain.Record {
	t.Helper()

	var records []*domain.Record

	require.Eventually(t, func() bool {
		var err error

		records, err = h.client.ListOutcomes(context.Background(), 0)

		return err == nil && len(records) >= n
	}, waitFor, tick)

	return records
}

// waitSession blocks until the session is recorded and returns its record.
func (h *harness) waitSession(t *testing.T, id string) *domain.Record {
	t.Helper()

	var found *domain.Record

	require.Eventually(t, func() bool {
		records, err := h.client.ListOutcomes(context.Background(), 0)
		if err != nil {
			return false
		}

		for _, rec := range records {
			if rec.SessionID == id {
				found = rec

				return true
			}
		}

		return false
	}, waitFor, tick)

	return found
}

// TestMonitor_ConfirmedFall reports a fall and answers it positively.
func TestMonitor_ConfirmedFall(t *testing.T) {
	t.Parallel()

	h := startMonitor(t, func(cfg *config.Config) {
		cfg.Engine.ListenTimeout = 3 * time.Second
	})
	ctx := context.Background()

	receipt, err := h.client.ReportFall(ctx, "wrist", time.Time{})
	require.NoError(t, err)
	require.True(t, receipt.Accepted)

	dropped, err := h.client.ReportFall(ctx, "wrist", time.Time{})
	require.NoError(t, err)
	require.False(t, dropped.Accepted)

	h.waitListening(t)

	delivered, err := h.client.Respond(ctx, domain.Recognized("yes I am fine"))
	require.NoError(t, err)
	require.True(t, delivered)

	records := h.waitRecords(t, 1)
	require.Equal(t, receipt.SessionID, records[0].SessionID)
	require.Equal(t, domain.ResultResolved, records[0].Result)
	require.Equal(t, 1, records[0].Attempts)

	_, err = os.Stat(h.deliveries)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestMonitor_UnansweredFallAlertsContact lets every attempt time out.
func TestMonitor_UnansweredFallAlertsContact(t *testing.T) {
	t.Parallel()

	h := startMonitor(t, nil)

	receipt, err := h.client.ReportFall(context.Background(), "wrist", time.Time{})
	require.NoError(t, err)
	require.True(t, receipt.Accepted)

	records := h.waitRecords(t, 1)
	rec := records[0]

	require.Equal(t, domain.ResultEscalated, rec.Result)
	require.Equal(t, confirmation.ReasonMaxAttempts, rec.Reason)
	require.Equal(t, 2, rec.Attempts)
	require.Equal(t, domain.OutcomeContactNotified, rec.Outcome.Kind)
	require.True(t, rec.Outcome.Delivered())
	require.False(t, rec.Outcome.SirenSounded)

	log, err := os.ReadFile(h.deliveries)
	require.NoError(t, err)
	require.Contains(t, string(log), "message +1 555 0100")
	require.Contains(t, string(log), "Location: https://maps.example.com/?q=18.52,73.85")
	require.Contains(t, string(log), "call +1 555 0100")
}

// TestMonitor_CancelledFall cancels while the monitor listens.
func TestMonitor_CancelledFall(t *testing.T) {
	t.Parallel()

	h := startMonitor(t, func(cfg *config.Config) {
		cfg.Engine.ListenTimeout = 3 * time.Second
	})
	ctx := context.Background()

	_, err := h.client.ReportFall(ctx, "wrist", time.Time{})
	require.NoError(t, err)

	h.waitListening(t)

	cancelled, err := h.client.Cancel(ctx)
	require.NoError(t, err)
	require.True(t, cancelled)

	records := h.waitRecords(t, 1)
	require.Equal(t, domain.ResultCancelled, records[0].Result)
	require.Nil(t, records[0].Outcome)

	st, err := h.client.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StateIdle.String(), st.State)
}

// TestMonitor_SettingsReload turns voice confirmation off while the daemon runs.
func TestMonitor_SettingsReload(t *testing.T) {
	t.Parallel()

	h := startMonitor(t, func(cfg *config.Config) {
		cfg.Settings.EmergencyContact = ""
	})

	disabled := false
	h.config.Settings.VoiceConfirmation = &disabled
	require.NoError(t, config.Save(h.configPath, h.config))

	ctx := context.Background()
	deadline := time.Now().Add(waitFor)

	// Falls reported before the reload still prompt; keep reporting until
	// a session skips the prompt.
	for {
		require.True(t, time.Now().Before(deadline), "settings were not reloaded")

		receipt, err := h.client.ReportFall(ctx, "wrist", time.Time{})
		require.NoError(t, err)

		if !receipt.Accepted {
			time.Sleep(tick)

			continue
		}

		rec := h.waitSession(t, receipt.SessionID)
		if rec.Reason == confirmation.ReasonVoiceDisabled {
			require.Equal(t, domain.OutcomeSirenSounded, rec.Outcome.Kind)
			require.Zero(t, rec.Attempts)

			break
		}
	}

	st, err := h.client.Status(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, st.Errors)
	require.Contains(t, st.Errors[len(st.Errors)-1].Message, escalation.ErrContactMissing.Error())
}
