package store

import (
	"context"
	"database/sql"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/query"
	"github.com/google/uuid"
)

// Viewer identifies who fetched a listing, for view tracking.
// A nil UserID means the viewer is anonymous and is tracked by IP.
type Viewer struct {
	UserID *uuid.UUID
	IP     string
}

// ListingStore defines the interface for listing persistence and the
// query engine over it. Soft-deleted listings are invisible to every
// method; deletion is terminal.
type ListingStore interface {
	// Create saves a new listing to the store.
	// Returns ErrNumberIDExists if the public number ID is already taken.
	// Returns validation errors from the domain Listing if data is invalid.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by its unique ID with the owning worker
	// loaded. Returns ErrListingNotFound if the listing does not exist or
	// has been soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// ExistsByNumberID reports whether any listing carries the given public
	// number ID, including soft-deleted ones (the ID stays reserved).
	ExistsByNumberID(ctx context.Context, numberID string) (bool, error)

	// FindAll runs the query engine: filtered, sorted, paginated listings
	// with their workers loaded, plus the total number of matches before
	// pagination. The filter must already have passed query.EffectiveFilter.
	FindAll(ctx context.Context, filter query.ListingFilter) ([]*domain.Listing, int, error)

	// FindOpenWithWorkers returns every open listing with its owning worker
	// loaded. This is the billing pass input.
	FindOpenWithWorkers(ctx context.Context) ([]*domain.Listing, error)

	// UpdateStatus transitions a listing to the given status.
	// Returns ErrListingNotFound if the listing does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) error

	// RecordView atomically records that the viewer fetched the listing and
	// bumps the aggregate view counter, but only the first time that viewer
	// (user ID or IP) is seen for this listing. Fetch-and-record is a single
	// combined contract: callers read the listing and record the view in one
	// service operation.
	RecordView(ctx context.Context, id uuid.UUID, viewer Viewer) error

	// GetContacts returns the phone/telegram/whatsapp details for a listing.
	// Returns ErrListingNotFound if the listing does not exist.
	GetContacts(ctx context.Context, id uuid.UUID) (phone, telegram, whatsapp string, err error)

	// SoftDelete marks the listing as deleted without removing the row.
	// Returns ErrListingNotFound if the listing does not exist.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ListingStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ListingStore
}
