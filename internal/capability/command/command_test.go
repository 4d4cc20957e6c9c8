package command

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// requireShell skips tests on hosts without a POSIX shell.
func requireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
}

// TestExpand verifies placeholders are substituted per argument.
func TestExpand(t *testing.T) {
	t.Parallel()

	got := Expand(
		[]string{"sms", "--to={contact}", "{message}", "{unknown}"},
		map[string]string{"{contact}": "+91 1", "{message}": "fall; rm -rf /"},
	)

	require.Equal(t, []string{"sms", "--to=+91 1", "fall; rm -rf /", "{unknown}"}, got)
}

// TestRunner_NotConfigured verifies an empty template is reported, not ignored.
func TestRunner_NotConfigured(t *testing.T) {
	t.Parallel()

	r := New(Templates{}, 0)

	require.ErrorIs(t, r.SendMessage(context.Background(), "112", "x"), ErrNotConfigured)
	require.ErrorIs(t, r.PlaceCall(context.Background(), "112"), ErrNotConfigured)
	require.ErrorIs(t, r.Sound(context.Background()), ErrNotConfigured)
}

// TestRunner_SendMessage verifies the command receives the expanded arguments.
func TestRunner_SendMessage(t *testing.T) {
	t.Parallel()
	requireShell(t)

	out := filepath.Join(t.TempDir(), "sent.txt")
	r := New(Templates{
		Message: []string{"sh", "-c", `printf '%s|%s' "$1" "$2" > "$0"`, out, "{contact}", "{message}"},
	}, time.Minute)

	require.NoError(t, r.SendMessage(context.Background(), "+911234567890", "help\nneeded"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "+911234567890|help\nneeded", string(data))
}

// TestRunner_Failure verifies the exit status and output are reported.
func TestRunner_Failure(t *testing.T) {
	t.Parallel()
	requireShell(t)

	r := New(Templates{Call: []string{"sh", "-c", "echo no signal >&2; exit 3"}}, time.Minute)

	err := r.PlaceCall(context.Background(), "112")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no signal")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.ExitCode())
}

// TestRunner_Sound verifies the siren is started without waiting for it.
func TestRunner_Sound(t *testing.T) {
	t.Parallel()
	requireShell(t)

	marker := filepath.Join(t.TempDir(), "siren")
	r := New(Templates{Siren: []string{"sh", "-c", `touch "$0"`, marker}}, time.Minute)

	require.NoError(t, r.Sound(context.Background()))
	require.Eventually(t, func() bool {
		_, err := os.Stat(marker)

		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}
