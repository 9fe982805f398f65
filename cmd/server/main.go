// Package main implements the entry point for the Lumo API server, which
// tracks per-topic mastery for students and schedules spaced revision
// sessions for their weak topics.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/lumohq/lumo-api/internal/config"
	"github.com/lumohq/lumo-api/internal/platform/logger"
	"github.com/lumohq/lumo-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, wires the application dependencies and starts
// the HTTP server. Kept separate from main so failures return an error
// instead of exiting mid-initialization.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := postgres.RunMigrations(context.Background(), db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.startHTTPServer(context.Background(), app.setupRouter())
}
