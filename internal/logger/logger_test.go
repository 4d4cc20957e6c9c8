package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"panic":   zapcore.PanicLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers verifies that scoped loggers travel through the context.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	scoped := New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), scoped)
	require.Same(t, scoped, FromContext(ctx))

	named := WithName(ctx, "engine")
	require.NotSame(t, scoped, FromContext(named))

	withKV := WithKV(named, "session_id", "abc")
	require.NotNil(t, FromContext(withKV))

	// Logging through helpers must not panic on a scoped logger.
	InfoKV(withKV, "Session started", "attempt", 1)
	DebugKV(WithFields(withKV, "language", "english"), "Prompt played")
}

// TestNewWithOutput_JSON verifies the JSON encoder writes structured lines.
func TestNewWithOutput_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithOutput(zapcore.DebugLevel, FormatJSON, &buf)
	l.Infow("Outcome dispatched", "kind", "siren_sounded")
	require.NoError(t, l.Sync())

	require.Contains(t, buf.String(), `"message":"Outcome dispatched"`)
	require.Contains(t, buf.String(), `"kind":"siren_sounded"`)
}

// TestWithLevel verifies a scoped level is applied above and below the base level.
func TestWithLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := NewWithOutput(zapcore.InfoLevel, FormatJSON, &buf)
	ctx := ToContext(context.Background(), base)

	DebugKV(WithLevel(ctx, zapcore.DebugLevel), "Debug shown")
	InfoKV(WithLevel(ctx, zapcore.ErrorLevel), "Info hidden")
	DebugKV(ctx, "Debug hidden")

	quiet := WithKV(WithLevel(ctx, zapcore.ErrorLevel), "session_id", "abc")
	WarnKV(quiet, "Warn hidden")
	ErrorKV(quiet, "Error shown")

	require.Contains(t, buf.String(), "Debug shown")
	require.Contains(t, buf.String(), "Error shown")
	require.NotContains(t, buf.String(), "hidden")
}
