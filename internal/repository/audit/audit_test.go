package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// sampleRecord returns an escalated record with a partially failed outcome.
func sampleRecord(id string, ended time.Time) *domain.Record {
	return &domain.Record{
		SessionID:  id,
		SourceID:   "wrist",
		Language:   domain.Hinglish,
		Attempts:   2,
		Result:     domain.ResultEscalated,
		Reason:     "max_attempts",
		LastIntent: domain.IntentNegative,
		DetectedAt: ended.Add(-40 * time.Second),
		StartedAt:  ended.Add(-39 * time.Second),
		EndedAt:    ended,
		Outcome: &domain.Outcome{
			Kind:    domain.OutcomeContactNotified,
			Contact: "+911234567890",
			Deliveries: []domain.Delivery{
				{Modality: domain.ModalityMessage, Err: errors.New("gateway down")},
				{Modality: domain.ModalityCall},
			},
			DispatchedAt: ended,
		},
	}
}

// requireSameRecord compares records including error messages.
func requireSameRecord(t *testing.T, want, got *domain.Record) {
	t.Helper()

	require.Equal(t, want.SessionID, got.SessionID)
	require.Equal(t, want.SourceID, got.SourceID)
	require.Equal(t, want.Language, got.Language)
	require.Equal(t, want.Attempts, got.Attempts)
	require.Equal(t, want.Result, got.Result)
	require.Equal(t, want.Reason, got.Reason)
	require.Equal(t, want.LastIntent, got.LastIntent)
	require.True(t, want.DetectedAt.Equal(got.DetectedAt))
	require.True(t, want.StartedAt.Equal(got.StartedAt))
	require.True(t, want.EndedAt.Equal(got.EndedAt))

	if want.Outcome == nil {
		require.Nil(t, got.Outcome)

		return
	}

	require.NotNil(t, got.Outcome)
	require.Equal(t, want.Outcome.Kind, got.Outcome.Kind)
	require.Equal(t, want.Outcome.Contact, got.Outcome.Contact)
	require.Equal(t, want.Outcome.SirenSounded, got.Outcome.SirenSounded)
	require.True(t, want.Outcome.DispatchedAt.Equal(got.Outcome.DispatchedAt))
	require.Len(t, got.Outcome.Deliveries, len(want.Outcome.Deliveries))

	for i, d := range want.Outcome.Deliveries {
		require.Equal(t, d.Modality, got.Outcome.Deliveries[i].Modality)

		if d.Err == nil {
			require.NoError(t, got.Outcome.Deliveries[i].Err)
		} else {
			require.EqualError(t, got.Outcome.Deliveries[i].Err, d.Err.Error())
		}
	}
}

// TestCodec_Resolved checks a record without outcome survives encoding.
func TestCodec_Resolved(t *testing.T) {
	t.Parallel()

	want := &domain.Record{
		SessionID:  "s-1",
		Language:   domain.English,
		Attempts:   1,
		Result:     domain.ResultResolved,
		Reason:     "affirmative",
		LastIntent: domain.IntentAffirmative,
		StartedAt:  time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC),
	}

	s, err := Encode(want)
	require.NoError(t, err)
	require.Equal(t, "2026-03-04T05:06:07.000000890Z", s.GetFields()["started_at"].GetStringValue())
	require.Empty(t, s.GetFields()["ended_at"].GetStringValue())

	got, err := Decode(s)
	require.NoError(t, err)
	requireSameRecord(t, want, got)
	require.True(t, got.EndedAt.IsZero())

	_, err = Encode(nil)
	require.Error(t, err)
}

// TestRepositories_AppendList checks both stores keep order and limits.
func TestRepositories_AppendList(t *testing.T) {
	t.Parallel()

	drivers := map[string]string{
		DriverFile:   "audit.jsonl",
		DriverSQLite: "audit.db",
	}

	for driver, name := range drivers {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()

			repo, err := Open(ctx, driver, filepath.Join(t.TempDir(), name))
			require.NoError(t, err)

			t.Cleanup(func() { require.NoError(t, repo.Close()) })

			empty, err := repo.List(ctx, 0)
			require.NoError(t, err)
			require.Empty(t, empty)

			base := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
			first := sampleRecord("s-1", base)
			second := sampleRecord("s-2", base.Add(time.Minute))
			second.Outcome = nil
			second.Result = domain.ResultCancelled

			require.NoError(t, repo.Append(ctx, first))
			require.NoError(t, repo.Append(ctx, second))

			all, err := repo.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 2)
			requireSameRecord(t, second, all[0])
			requireSameRecord(t, first, all[1])

			latest, err := repo.List(ctx, 1)
			require.NoError(t, err)
			require.Len(t, latest, 1)
			require.Equal(t, "s-2", latest[0].SessionID)
		})
	}
}

// TestFileRepository_CorruptLine checks a damaged file is reported with its line.
func TestFileRepository_CorruptLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.jsonl")
	repo := NewFileRepository(path)

	require.NoError(t, repo.Append(context.Background(), sampleRecord("s-1", time.Now())))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, auditFilePermissions)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = repo.List(context.Background(), 0)
	require.ErrorContains(t, err, "line 2")
}

// TestOpen_UnknownDriver checks unsupported drivers are refused.
func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "postgres", "x")
	require.ErrorIs(t, err, ErrUnknownDriver)
}
