package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// migrate applies every pending migration for the dialect.
func migrate(ctx context.Context, db *sql.DB, d dialect, logger *slog.Logger) error {
	fsys, err := fs.Sub(migrations, d.migrationDir())
	if err != nil {
		return fmt.Errorf("locating migrations: %w", err)
	}

	provider, err := goose.NewProvider(d.gooseDialect(), db, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("applied migration",
			slog.String("dialect", d.name()),
			slog.String("source", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return nil
}

// schemaVersion returns the latest applied migration version.
func schemaVersion(ctx context.Context, db *sql.DB, d dialect) (int64, error) {
	fsys, err := fs.Sub(migrations, d.migrationDir())
	if err != nil {
		return 0, fmt.Errorf("locating migrations: %w", err)
	}
	provider, err := goose.NewProvider(d.gooseDialect(), db, fsys)
	if err != nil {
		return 0, fmt.Errorf("creating migration provider: %w", err)
	}
	return provider.GetDBVersion(ctx)
}
