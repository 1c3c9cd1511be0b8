package pidfile

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Lock is an advisory lock guarding the read-probe-act sequence on a pid
// file. Two concurrent start invocations otherwise race between reading the
// file and launching a duplicate process. The lock lives next to the pid file
// so it survives pidfile removal.
type Lock struct {
	fl *flock.Flock
}

// NewLock returns the advisory lock for the given pid file path.
func NewLock(pidPath string) *Lock {
	return &Lock{fl: flock.New(pidPath + ".lock")}
}

// Acquire blocks until the lock is held or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o750); err != nil {
		return err
	}
	_, err := l.fl.TryLockContext(ctx, 50*time.Millisecond)
	return err
}

// Release drops the lock. Safe to call when not held.
func (l *Lock) Release() error { return l.fl.Unlock() }
