package store

import (
	"context"
	"database/sql"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/google/uuid"
)

// WorkerStore defines the interface for worker profile persistence.
type WorkerStore interface {
	// Create saves a new worker profile to the store.
	Create(ctx context.Context, worker *domain.Worker) error

	// GetByID retrieves a worker by their unique ID.
	// Returns ErrWorkerNotFound if the worker does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error)

	// GetByUserID retrieves the worker profile owned by the given user.
	// Returns ErrWorkerNotFound if the user has no worker profile.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Worker, error)

	// Debit atomically subtracts amount from the worker's balance, but only
	// when the balance covers the full amount. It reports whether the debit
	// happened: (false, nil) means the worker exists but could not afford the
	// charge. The compare and the subtraction execute as a single statement
	// so concurrent passes or mid-cycle top-ups can never double-spend.
	// Returns ErrWorkerNotFound if the worker does not exist.
	// Returns domain.ErrNegativeAmount if amount is negative.
	Debit(ctx context.Context, id uuid.UUID, amount float64) (bool, error)

	// WithTx returns a new WorkerStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) WorkerStore
}
