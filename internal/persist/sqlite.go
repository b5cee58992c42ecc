package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"reach/internal/logging"
)

const defaultPollInterval = 500 * time.Millisecond

// SQLiteOption customizes a SQLiteBackend.
type SQLiteOption func(*SQLiteBackend)

// WithPollInterval sets how often watchers re-check the database when no
// filesystem event arrives.
func WithPollInterval(d time.Duration) SQLiteOption {
	return func(b *SQLiteBackend) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithSQLiteLogger sets the backend logger.
func WithSQLiteLogger(logger *slog.Logger) SQLiteOption {
	return func(b *SQLiteBackend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// SQLiteBackend stores keys in a single SQLite file that several reach
// processes may open at once. Each process is one execution context.
type SQLiteBackend struct {
	db       *sql.DB
	path     string
	id       string
	interval time.Duration
	logger   *slog.Logger

	// seen holds the last row fingerprint this context wrote or observed per
	// key; "" means absent.
	mu   sync.Mutex
	seen map[string]string
}

var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// PRAGMA data_version only ignores commits made on the connection that
	// reads it, so every statement must share one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := upgradeSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	b := &SQLiteBackend{
		db:       db,
		path:     path,
		id:       uuid.NewString(),
		interval: defaultPollInterval,
		logger:   logging.NewNop(),
		seen:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(
		slog.String(logging.FieldComponent, "sqlite"),
		slog.String(logging.FieldContextID, b.id),
	)
	return b, nil
}

// Path returns the database file location.
func (b *SQLiteBackend) Path() string { return b.path }

func (b *SQLiteBackend) ContextID() string { return b.id }

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	var (
		revision  int64
		updatedAt string
	)
	err := b.db.QueryRowContext(
		ctx,
		`INSERT INTO kv (key, value, writer, revision, updated_at) VALUES (?, ?, ?, 1, ?)
         ON CONFLICT(key) DO UPDATE SET
             value = excluded.value,
             writer = excluded.writer,
             revision = kv.revision + 1,
             updated_at = excluded.updated_at
         RETURNING revision, updated_at`,
		key,
		value,
		b.id,
		time.Now().UTC().Format(time.RFC3339Nano),
	).Scan(&revision, &updatedAt)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	b.markSeen(key, fingerprint(revision, updatedAt))
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	b.markSeen(key, "")
	return nil
}

// Watch reports foreign writes to key. A changed PRAGMA data_version means
// another connection committed something; the key's revision and writer then
// decide whether it was this key and someone else.
func (b *SQLiteBackend) Watch(key string, fn func()) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())

	version, err := b.dataVersion(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	fp, _, err := b.row(ctx, key)
	if err != nil {
		cancel()
		return nil, err
	}
	b.mu.Lock()
	if _, ok := b.seen[key]; !ok {
		b.seen[key] = fp
	}
	b.mu.Unlock()

	var events <-chan fsnotify.Event
	var fsErrors <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if addErr := watcher.Add(filepath.Dir(b.path)); addErr != nil {
			b.logger.Warn("filesystem watch unavailable; polling only", logging.Error(addErr))
			_ = watcher.Close()
			watcher = nil
		} else {
			events = watcher.Events
			fsErrors = watcher.Errors
		}
	} else {
		b.logger.Warn("filesystem watch unavailable; polling only", logging.Error(err))
		watcher = nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if watcher != nil {
			defer watcher.Close()
		}
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		check := func() {
			current, err := b.dataVersion(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.logger.Debug("read data_version failed", logging.Error(err))
				}
				return
			}
			if current == version {
				return
			}
			version = current
			if b.foreignChange(ctx, key) {
				fn()
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if b.isDatabaseFile(event.Name) {
					check()
				}
			case err, ok := <-fsErrors:
				if !ok {
					fsErrors = nil
					continue
				}
				b.logger.Debug("filesystem watch error", logging.Error(err))
			case <-ticker.C:
				check()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *SQLiteBackend) foreignChange(ctx context.Context, key string) bool {
	fp, writer, err := b.row(ctx, key)
	if err != nil {
		b.logger.Debug("read revision failed", slog.String(logging.FieldKey, key), logging.Error(err))
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen[key] == fp {
		return false
	}
	b.seen[key] = fp
	return fp == "" || writer != b.id
}

func (b *SQLiteBackend) markSeen(key, fp string) {
	b.mu.Lock()
	b.seen[key] = fp
	b.mu.Unlock()
}

// row returns the fingerprint and writer of key, or "" when it is absent.
func (b *SQLiteBackend) row(ctx context.Context, key string) (string, string, error) {
	var (
		revision  int64
		updatedAt string
		writer    string
	)
	err := b.db.QueryRowContext(ctx, `SELECT revision, updated_at, writer FROM kv WHERE key = ?`, key).Scan(&revision, &updatedAt, &writer)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return fingerprint(revision, updatedAt), writer, nil
}

func fingerprint(revision int64, updatedAt string) string {
	return fmt.Sprintf("%d@%s", revision, updatedAt)
}

func (b *SQLiteBackend) dataVersion(ctx context.Context) (int64, error) {
	var version int64
	if err := b.db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (b *SQLiteBackend) isDatabaseFile(name string) bool {
	return strings.HasPrefix(filepath.Clean(name), filepath.Clean(b.path))
}
