package data

import (
	"context"
	"database/sql"

	"github.com/target/grailed-admin/internal/migrate"
)

// RunMigrations applies the embedded schema and returns the versions it applied.
func RunMigrations(ctx context.Context, db *sql.DB) ([]string, error) {
	return migrate.Run(ctx, db)
}
