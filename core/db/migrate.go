package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies the embedded goose migrations. Command is one of up, down, status, reset.
func (db *DB) Migrate(ctx context.Context, command string) error {
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, sqlDB, migrationsDir)
	case "down":
		err = goose.DownContext(ctx, sqlDB, migrationsDir)
	case "status":
		err = goose.StatusContext(ctx, sqlDB, migrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, sqlDB, migrationsDir)
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if err != nil {
		return fmt.Errorf("running goose %s: %w", command, err)
	}
	return nil
}
