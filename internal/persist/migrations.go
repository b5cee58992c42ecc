package persist

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

// ErrSchemaTooNew reports a database written by a newer reach.
var ErrSchemaTooNew = errors.New("database schema is newer than this binary")

//go:embed migrations/*.sql
var migrationFS embed.FS

// schemaStep is one numbered file under migrations/, such as 001_kv.sql. The
// database records the highest applied number in PRAGMA user_version.
type schemaStep struct {
	version int
	name    string
	sql     string
}

func schemaSteps() ([]schemaStep, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	steps := make([]schemaStep, 0, len(names))
	for _, name := range names {
		base := path.Base(name)
		prefix, _, _ := strings.Cut(base, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: name must start with a positive number", base)
		}
		data, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", base, err)
		}
		steps = append(steps, schemaStep{version: version, name: base, sql: string(data)})
	}
	slices.SortFunc(steps, func(a, b schemaStep) int { return cmp.Compare(a.version, b.version) })
	for i := 1; i < len(steps); i++ {
		if steps[i].version == steps[i-1].version {
			return nil, fmt.Errorf("migrations %s and %s share version %d", steps[i-1].name, steps[i].name, steps[i].version)
		}
	}
	return steps, nil
}

func schemaVersion(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}) (int, error) {
	var version int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// upgradeSchema applies every step above the recorded version in one
// transaction. Steps are idempotent DDL, so a process that loses the race to
// upgrade accepts the version the winner recorded.
func upgradeSchema(ctx context.Context, db *sql.DB) error {
	steps, err := schemaSteps()
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return nil
	}
	latest := steps[len(steps)-1].version

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	switch {
	case current > latest:
		return fmt.Errorf("%w (database %d, supported %d)", ErrSchemaTooNew, current, latest)
	case current == latest:
		return nil
	}

	if err := applySteps(ctx, db, steps, current, latest); err != nil {
		if after, verr := schemaVersion(ctx, db); verr == nil && after >= latest {
			return nil
		}
		return err
	}
	return nil
}

func applySteps(ctx context.Context, db *sql.DB, steps []schemaStep, from, to int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema upgrade: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range steps {
		if step.version <= from {
			continue
		}
		if _, err := tx.ExecContext(ctx, step.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", step.name, err)
		}
	}
	// PRAGMA arguments cannot be bound; to is an int from the file names.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", to)); err != nil {
		return fmt.Errorf("record schema version %d: %w", to, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema upgrade: %w", err)
	}
	return nil
}
