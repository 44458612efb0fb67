package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrDatabaseBusy is returned when another process holds a conflicting lock on the database.
var ErrDatabaseBusy = errors.New("database is in use by another process")

// FileLock is an advisory cross-process lock living next to the database file
// (<db>.lock). Long-running hosts (serve, mcp, tui) hold it shared; maintenance
// commands that rewrite every record take it exclusively.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for the database at dbPath. Nothing is acquired yet.
func NewFileLock(dbPath string) *FileLock {
	lockPath := dbPath + ".lock"
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock acquires the lock exclusively without blocking.
func (l *FileLock) TryLock() error {
	return l.acquire(l.flock.TryLock)
}

// TryRLock acquires the lock shared without blocking.
func (l *FileLock) TryRLock() error {
	return l.acquire(l.flock.TryRLock)
}

func (l *FileLock) acquire(try func() (bool, error)) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := try()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	if !acquired {
		return ErrDatabaseBusy
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. It is safe to call on an unlocked FileLock.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}

	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string {
	return l.path
}
