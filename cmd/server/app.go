package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/lumohq/lumo-api/internal/config"
	"github.com/lumohq/lumo-api/internal/domain/srs"
	"github.com/lumohq/lumo-api/internal/platform/postgres"
	"github.com/lumohq/lumo-api/internal/service/auth"
	"github.com/lumohq/lumo-api/internal/service/revision"
	"github.com/lumohq/lumo-api/internal/store"
)

// application holds the shared application dependencies so wiring happens in
// one place and cleanup runs in one place on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore     store.UserStore
	masteryStore  store.TopicMasteryStore
	scheduleStore store.RevisionScheduleStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	srsService       srs.Service
	revisionService  revision.Service
}

// newApplication wires stores and services from the loaded configuration
// and an open database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	masteryStore := postgres.NewPostgresTopicMasteryStore(db, logger)
	scheduleStore := postgres.NewPostgresRevisionScheduleStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	srsService := srs.NewDefaultService()
	revisionService := revision.NewService(db, masteryStore, scheduleStore, srsService, nil, logger)

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		userStore:        userStore,
		masteryStore:     masteryStore,
		scheduleStore:    scheduleStore,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		srsService:       srsService,
		revisionService:  revisionService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
