package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anketahub/anketa-api/internal/billing"
	"github.com/anketahub/anketa-api/internal/config"
	"github.com/anketahub/anketa-api/internal/platform/postgres"
	"github.com/anketahub/anketa-api/internal/platform/rediscache"
	"github.com/anketahub/anketa-api/internal/service"
	"github.com/anketahub/anketa-api/internal/service/auth"
	"github.com/anketahub/anketa-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	// Stores (using interfaces for proper abstraction)
	userStore    store.UserStore
	workerStore  store.WorkerStore
	listingStore store.ListingStore
	tokenStore   store.RefreshTokenStore

	// Services
	jwtService     auth.JWTService
	authService    *auth.Service
	listingService *service.ListingService

	// Billing
	billingScheduler *billing.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger,
// database and redis connections that must be established first.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	redisClient *redis.Client,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.workerStore = postgres.NewPostgresWorkerStore(db, logger)
	app.listingStore = postgres.NewPostgresListingStore(db, logger)
	app.tokenStore = postgres.NewPostgresRefreshTokenStore(db, logger)

	sessionTTL := time.Duration(cfg.Auth.SessionTTLSeconds) * time.Second
	sessionCache := rediscache.NewSessionCache(redisClient, sessionTTL, logger)

	app.authService = auth.NewService(
		db,
		app.userStore,
		app.workerStore,
		app.tokenStore,
		app.jwtService,
		auth.NewBcryptHasher(),
		auth.NewBcryptVerifier(),
		sessionCache,
		logger,
	)

	app.listingService = service.NewListingService(
		app.listingStore,
		app.workerStore,
		app.userStore,
		logger,
	)

	pass := billing.NewPass(
		app.listingStore,
		app.workerStore,
		billing.DefaultRateTable(),
		billing.PassConfig{
			ConversionRate: cfg.Billing.ConversionRate,
			Concurrency:    cfg.Billing.Concurrency,
		},
		logger,
	)

	app.billingScheduler, err = billing.NewScheduler(cfg.Billing.CronSpec, pass, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize billing scheduler: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the billing scheduler and the HTTP server, blocking until the
// context is canceled or the server fails.
func (app *application) Run(ctx context.Context) error {
	app.billingScheduler.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. The billing
// scheduler is drained first so an in-flight pass finishes its debits.
func (app *application) cleanup() {
	if app.billingScheduler != nil {
		drained := app.billingScheduler.Stop()
		select {
		case <-drained.Done():
		case <-time.After(30 * time.Second):
			app.logger.Warn("billing scheduler did not drain in time")
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
