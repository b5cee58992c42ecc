package testsupport

import (
	"testing"

	"reach/internal/persist"
)

// MustOpenStore opens a persist.Store under key on backend and registers
// cleanup.
func MustOpenStore(t testing.TB, backend persist.Backend, key string) *persist.Store {
	t.Helper()

	store, err := persist.NewStore(backend, key)
	if err != nil {
		t.Fatalf("persist.NewStore: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenSQLite opens a SQLite backend at path and registers cleanup.
func MustOpenSQLite(t testing.TB, path string, opts ...persist.SQLiteOption) *persist.SQLiteBackend {
	t.Helper()

	backend, err := persist.OpenSQLite(path, opts...)
	if err != nil {
		t.Fatalf("persist.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = backend.Close()
	})
	return backend
}
