package main

import (
	"context"
	"log/slog"
	"os"

	"adr.app/ledger/common/logger"
	"adr.app/ledger/core/config"
	"adr.app/ledger/core/db"
)

// Usage: migrate [up|down|status|reset]. Defaults to up.
func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeMigrate)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(ctx, command); err != nil {
		slog.ErrorContext(ctx, "migration failed", "command", command, "error", err)
		database.Close()
		os.Exit(1)
	}
	slog.InfoContext(ctx, "migration complete", "command", command)
}
