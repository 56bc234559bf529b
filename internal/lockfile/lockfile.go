package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned when another live session holds the lock.
var ErrLocked = errors.New("another focus session is already running")

// Lock is a PID file that allows one live session per user.
type Lock struct {
	pidFile string
	pid     int
}

func New(pidFile string) *Lock {
	return &Lock{pidFile: pidFile, pid: os.Getpid()}
}

// Acquire writes our PID to the lock file. A file left behind by a process
// that is no longer running is taken over.
func (l *Lock) Acquire() error {
	running, pid, err := l.Holder()
	if err != nil {
		return err
	}
	if running && pid != l.pid {
		return fmt.Errorf("%w (pid %d)", ErrLocked, pid)
	}
	return l.writePID()
}

// Release removes the lock file if we hold it.
func (l *Lock) Release() error {
	pid, err := l.readPID()
	if err != nil {
		return err
	}
	if pid != l.pid {
		return nil
	}
	if err := os.Remove(l.pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Holder reports whether a live process holds the lock and its PID.
// Stale PID files are removed.
func (l *Lock) Holder() (bool, int, error) {
	pid, err := l.readPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	if !processAlive(pid) {
		_ = os.Remove(l.pidFile)
		return false, 0, nil
	}

	return true, pid, nil
}

func (l *Lock) writePID() error {
	if err := os.WriteFile(l.pidFile, fmt.Appendf([]byte{}, "%d", l.pid), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

func (l *Lock) readPID() (int, error) {
	data, err := os.ReadFile(l.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}

	return pid, nil
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
