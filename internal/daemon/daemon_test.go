package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"reach/internal/console"
	"reach/internal/persist"
	"reach/internal/testsupport"
)

func newTestDaemon(t *testing.T, lock *persist.WriterLock) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithMemoryBackend(), testsupport.WithRetailTaxonomy())
	c, err := console.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("console.Open: %v", err)
	}
	if _, err := c.WaitTaxonomy(context.Background()); err != nil {
		t.Fatalf("WaitTaxonomy: %v", err)
	}
	d, err := New(cfg, c, lock, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
	if !d.Status().Running {
		t.Fatal("expected running status")
	}
	if d.Addr() == "" || d.Addr() == "127.0.0.1:0" {
		t.Fatalf("expected resolved listen address, got %q", d.Addr())
	}
	d.Stop()
	if d.Status().Running {
		t.Fatal("expected stopped status")
	}
}

func TestDaemonReleasesWriterLockOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reach.lock")
	lock := persist.NewWriterLock(path)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	d := newTestDaemon(t, lock)

	other := persist.NewWriterLock(path)
	if err := other.Acquire(); !errors.Is(err, persist.ErrWriterLocked) {
		t.Fatalf("expected lock to be held, got %v", err)
	}
	if got := d.Status().LockFilePath; got != path {
		t.Fatalf("lock path = %q", got)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := other.Acquire(); err != nil {
		t.Fatalf("expected lock to be free after Close: %v", err)
	}
	_ = other.Release()
}

func TestNewRejectsReadOnlyConsole(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMemoryBackend(), testsupport.WithRetailTaxonomy())
	c, err := console.Open(context.Background(), cfg, nil, console.ReadOnly())
	if err != nil {
		t.Fatalf("console.Open: %v", err)
	}
	defer c.Close()
	if _, err := New(cfg, c, nil, nil); err == nil {
		t.Fatal("expected read-only console to be rejected")
	}
}
