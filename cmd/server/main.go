// Package main implements the entry point for the anketa API server:
// a classified-listings marketplace backend with two-step registration,
// a filterable listing catalog and a recurring lease billing pass.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/anketahub/anketa-api/internal/config"
	"github.com/anketahub/anketa-api/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// run loads configuration, wires the application and serves until the
// context is canceled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redisClient, err := setupRedis(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up redis: %w", err)
	}

	app, err := newApplication(cfg, appLogger, db, redisClient)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
