package process

import (
	"errors"
	"os"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

func lister(procs ...ps.Process) Lister {
	return func() ([]ps.Process, error) { return procs, nil }
}

func TestOthers_SkipsSelf(t *testing.T) {
	t.Parallel()

	list := lister(
		fakeProcess{pid: os.Getpid(), name: "guardian-monitor"},
		fakeProcess{pid: 4242, name: "guardian-monitor"},
		fakeProcess{pid: 4343, name: "guardian-ctl"},
	)

	pids, err := Others(list, "guardian-monitor")
	require.NoError(t, err)
	require.Equal(t, []int{4242}, pids)
}

func TestEnsureSingle(t *testing.T) {
	t.Parallel()

	err := EnsureSingle(lister(fakeProcess{pid: os.Getpid(), name: "guardian-monitor"}), "guardian-monitor")
	require.NoError(t, err)

	err = EnsureSingle(lister(fakeProcess{pid: 4242, name: "guardian-monitor"}), "guardian-monitor")
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestEnsureSingle_ListError(t *testing.T) {
	t.Parallel()

	boom := errors.New("no procfs")

	err := EnsureSingle(func() ([]ps.Process, error) { return nil, boom }, "guardian-monitor")
	require.ErrorIs(t, err, boom)
}

func TestOthers_RealProcessTable(t *testing.T) {
	t.Parallel()

	pids, err := Others(nil, CurrentExecutable())
	require.NoError(t, err)
	require.NotContains(t, pids, os.Getpid())
}
