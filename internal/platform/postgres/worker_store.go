package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/store"
	"github.com/google/uuid"
)

// PostgresWorkerStore implements the store.WorkerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWorkerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWorkerStore creates a new PostgreSQL implementation of the WorkerStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWorkerStore(db store.DBTX, logger *slog.Logger) *PostgresWorkerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWorkerStore{
		db:     db,
		logger: logger.With(slog.String("component", "worker_store")),
	}
}

// Ensure PostgresWorkerStore implements store.WorkerStore interface
var _ store.WorkerStore = (*PostgresWorkerStore)(nil)

const workerColumns = `id, user_id, balance, age, height, weight, breast, shoe_size,
		clothing_size, appearance, nationality, body_type, hair_color,
		intimate_haircut, body_art, created_at, updated_at`

// Create implements store.WorkerStore.Create
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *PostgresWorkerStore) Create(ctx context.Context, worker *domain.Worker) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := worker.Validate(); err != nil {
		log.Warn("worker validation failed during create",
			slog.String("error", err.Error()),
			slog.String("worker_id", worker.ID.String()))
		return err
	}

	query := `
		INSERT INTO workers (` + workerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		worker.ID,
		worker.UserID,
		worker.Balance,
		worker.Age,
		worker.Height,
		worker.Weight,
		worker.Breast,
		worker.ShoeSize,
		worker.ClothingSize,
		worker.Appearance,
		worker.Nationality,
		worker.BodyType,
		worker.HairColor,
		worker.IntimateHaircut,
		worker.BodyArt,
		worker.CreatedAt,
		worker.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create worker",
			slog.String("error", err.Error()),
			slog.String("worker_id", worker.ID.String()),
			slog.String("user_id", worker.UserID.String()))
		return MapError(err)
	}

	log.Info("worker created successfully",
		slog.String("worker_id", worker.ID.String()),
		slog.String("user_id", worker.UserID.String()))
	return nil
}

// GetByID implements store.WorkerStore.GetByID
// Returns store.ErrWorkerNotFound if the worker does not exist.
func (s *PostgresWorkerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByUserID implements store.WorkerStore.GetByUserID
// Returns store.ErrWorkerNotFound if the user has no worker profile.
func (s *PostgresWorkerStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE user_id = $1`
	return s.getOne(ctx, query, userID)
}

func (s *PostgresWorkerStore) getOne(ctx context.Context, query string, arg interface{}) (*domain.Worker, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var worker domain.Worker
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&worker.ID,
		&worker.UserID,
		&worker.Balance,
		&worker.Age,
		&worker.Height,
		&worker.Weight,
		&worker.Breast,
		&worker.ShoeSize,
		&worker.ClothingSize,
		&worker.Appearance,
		&worker.Nationality,
		&worker.BodyType,
		&worker.HairColor,
		&worker.IntimateHaircut,
		&worker.BodyArt,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWorkerNotFound
		}
		log.Error("failed to get worker", slog.String("error", err.Error()))
		return nil, err
	}
	return &worker, nil
}

// Debit implements store.WorkerStore.Debit
// The guard and the subtraction execute as one UPDATE statement, so under
// concurrent passes the row lock serializes debits and the balance can never
// go below zero. Zero rows affected means either insufficient funds or a
// missing worker; a follow-up existence check distinguishes the two.
func (s *PostgresWorkerStore) Debit(ctx context.Context, id uuid.UUID, amount float64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if amount < 0 {
		return false, domain.ErrNegativeAmount
	}

	query := `
		UPDATE workers
		SET balance = balance - $1, updated_at = now()
		WHERE id = $2 AND balance >= $1
	`
	result, err := s.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		log.Error("failed to debit worker",
			slog.String("error", err.Error()),
			slog.String("worker_id", id.String()),
			slog.Float64("amount", amount))
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("worker_id", id.String()))
		return false, err
	}
	if rowsAffected > 0 {
		log.Debug("worker debited",
			slog.String("worker_id", id.String()),
			slog.Float64("amount", amount))
		return true, nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM workers WHERE id = $1)`, id).
		Scan(&exists)
	if err != nil {
		log.Error("failed to check worker existence after debit",
			slog.String("error", err.Error()),
			slog.String("worker_id", id.String()))
		return false, err
	}
	if !exists {
		return false, store.ErrWorkerNotFound
	}

	log.Debug("worker balance insufficient",
		slog.String("worker_id", id.String()),
		slog.Float64("amount", amount))
	return false, nil
}

// WithTx implements store.WorkerStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresWorkerStore) WithTx(tx *sql.Tx) store.WorkerStore {
	return &PostgresWorkerStore{
		db:     tx,
		logger: s.logger,
	}
}
