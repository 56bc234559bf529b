package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepwork.pid")
	l := New(path)

	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	running, pid, err := l.Holder()
	if err != nil || !running || pid != os.Getpid() {
		t.Errorf("Holder() = %v, %d, %v; want true, %d, nil", running, pid, err, os.Getpid())
	}

	// Re-acquiring our own lock is allowed
	if err := l.Acquire(); err != nil {
		t.Errorf("second Acquire() error: %v", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("PID file still present after Release()")
	}
	if err := l.Release(); err != nil {
		t.Errorf("Release() without a file error: %v", err)
	}
}

func TestAcquireHeldByOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepwork.pid")
	holder := New(path)
	holder.pid = os.Getppid()
	if err := holder.Acquire(); err != nil {
		t.Fatalf("holder Acquire() error: %v", err)
	}

	l := New(path)
	if err := l.Acquire(); !errors.Is(err, ErrLocked) {
		t.Errorf("Acquire() error = %v, want ErrLocked", err)
	}

	// Releasing a lock held by someone else leaves it in place
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("foreign PID file removed: %v", err)
	}
}

func TestStaleLockIsTakenOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepwork.pid")
	// PIDs are bounded well below this on Linux
	if err := os.WriteFile(path, []byte(strconv.Itoa(1<<30)), 0644); err != nil {
		t.Fatal(err)
	}

	l := New(path)
	running, _, err := l.Holder()
	if err != nil || running {
		t.Fatalf("Holder() = %v, %v; want stale lock", running, err)
	}
	if err := l.Acquire(); err != nil {
		t.Errorf("Acquire() over a stale lock error: %v", err)
	}
}

func TestInvalidPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepwork.pid")
	os.WriteFile(path, []byte("not-a-pid"), 0644)

	if err := New(path).Acquire(); err == nil {
		t.Error("Acquire() with a corrupt PID file should fail")
	}
}
