package persist_test

import (
	"errors"
	"path/filepath"
	"testing"

	"reach/internal/persist"
)

func TestWriterLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reach.lock")
	first := persist.NewWriterLock(path)
	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	second := persist.NewWriterLock(path)
	if err := second.Acquire(); !errors.Is(err, persist.ErrWriterLocked) {
		t.Fatalf("expected ErrWriterLocked, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = second.Release()
}
