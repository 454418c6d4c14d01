// Package db provides database connection infrastructure.
// This is part of the platform layer and contains no business logic.
package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"

	"homesafe_backend/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending migrations from the provided directory.
// An empty or missing directory is a no-op so deployments that manage the
// schema externally can skip it.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig, migrationsDir string) error {
	if strings.TrimSpace(migrationsDir) == "" {
		return nil
	}
	if _, err := os.Stat(migrationsDir); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	sqlDB, err := sql.Open("pgx", cfg.GetDatabaseURL())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, sqlDB, migrationsDir)
}
