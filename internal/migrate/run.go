// Package migrate applies the embedded SQL schema for the audit trail.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/target/grailed-admin/internal/data/pgxutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run applies every embedded migration not yet recorded in schema_migrations. It is safe to call
// repeatedly. It returns the versions applied by this call.
func Run(ctx context.Context, db *sql.DB) ([]string, error) {
	return run(ctx, db, migrationsFS)
}

func run(ctx context.Context, db *sql.DB, fsys fs.FS) ([]string, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	files, err := Versions(fsys)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "migrations")
	var applied []string
	for _, version := range files {
		ok, err := apply(ctx, db, fsys, version)
		if err != nil {
			return applied, err
		}
		if ok {
			logger.InfoContext(ctx, "applied migration", "version", version)
			applied = append(applied, version)
		}
	}
	return applied, nil
}

// Versions lists migration versions in fsys in apply order.
func Versions(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			out = append(out, strings.TrimSuffix(e.Name(), ".sql"))
		}
	}
	sort.Strings(out)
	return out, nil
}

func apply(ctx context.Context, db *sql.DB, fsys fs.FS, version string) (bool, error) {
	var exists bool
	if err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	if exists {
		return false, nil
	}

	body, err := fs.ReadFile(fsys, "migrations/"+version+".sql")
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", version, err)
	}

	err = pgxutil.WithSQLTx(ctx, db, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("exec migration %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", version, err)
		}
		return nil
	})
	return err == nil, err
}
