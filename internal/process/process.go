package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned by EnsureSingle when another instance is found.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lister returns the running processes.
type Lister func() ([]ps.Process, error)

// Others returns the ids of processes running executable name, excluding the current process.
// Names are compared case-insensitively on Windows.
func Others(list Lister, name string) ([]int, error) {
	if list == nil {
		list = ps.Processes
	}

	processList, err := list()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	var pids []int

	for _, p := range processList {
		if p.Pid() == thisProcessID {
			continue
		}

		if !sameExecutable(p.Executable(), name) {
			continue
		}

		pids = append(pids, p.Pid())
	}

	return pids, nil
}

// EnsureSingle fails with ErrAlreadyRunning when another process runs executable name.
func EnsureSingle(list Lister, name string) error {
	pids, err := Others(list, name)
	if err != nil {
		return err
	}

	if len(pids) > 0 {
		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, name, pids[0])
	}

	return nil
}

// CurrentExecutable returns the base name of the running executable.
func CurrentExecutable() string {
	path, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}

	return filepath.Base(path)
}

// sameExecutable compares two executable names.
// go-ps truncates names on some platforms, so a shared prefix of the
// kernel limit also matches.
func sameExecutable(running, name string) bool {
	if runtime.GOOS == "windows" {
		running = strings.ToLower(running)
		name = strings.ToLower(name)
	}

	if running == name {
		return true
	}

	const linuxCommLen = 15

	return runtime.GOOS == "linux" && len(running) == linuxCommLen && strings.HasPrefix(name, running)
}
