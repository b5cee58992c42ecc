package persist

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrWriterLocked means another process currently owns the selection.
var ErrWriterLocked = errors.New("selection is held by another writer")

// WriterLock keeps the persisted selection single-writer across processes.
type WriterLock struct {
	path string
	lock *flock.Flock
}

// NewWriterLock prepares a lock on the file at path.
func NewWriterLock(path string) *WriterLock {
	return &WriterLock{path: path, lock: flock.New(path)}
}

// Path returns the lock file location.
func (l *WriterLock) Path() string { return l.path }

// Acquire takes the lock without blocking.
func (l *WriterLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire writer lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrWriterLocked, l.path)
	}
	return nil
}

// Release gives the lock up.
func (l *WriterLock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release writer lock: %w", err)
	}
	return nil
}
