package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/store"
	"github.com/google/uuid"
)

// PostgresListingStore implements the store.ListingStore interface
// using a PostgreSQL database as the storage backend.
type PostgresListingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresListingStore creates a new PostgreSQL implementation of the ListingStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresListingStore(db store.DBTX, logger *slog.Logger) *PostgresListingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresListingStore{
		db:     db,
		logger: logger.With(slog.String("component", "listing_store")),
	}
}

// Ensure PostgresListingStore implements store.ListingStore interface
var _ store.ListingStore = (*PostgresListingStore)(nil)

// listingJoinColumns selects a full listing row plus the owning worker row.
// Every query that loads listings with workers shares this column list so the
// scan below stays in sync.
const listingJoinColumns = `
	l.id, l.worker_id, l.number_id, l.phone, l.telegram, l.whatsapp,
	l.preferences, l.from_age, l.before_age, l.city, l.section,
	l.photos, l.videos, l.tags, l.departure, l.departure_types,
	l.cost_1h_appart, l.cost_2h_appart, l.cost_night_appart,
	l.cost_1h_arrive, l.cost_2h_arrive, l.cost_night_arrive,
	l.status, l.views_count, l.created_at, l.updated_at,
	w.id, w.user_id, w.balance, w.age, w.height, w.weight, w.breast,
	w.shoe_size, w.clothing_size, w.appearance, w.nationality, w.body_type,
	w.hair_color, w.intimate_haircut, w.body_art, w.created_at, w.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanListingWithWorker scans one joined row in listingJoinColumns order.
func scanListingWithWorker(row rowScanner) (*domain.Listing, error) {
	var (
		l                                             domain.Listing
		w                                             domain.Worker
		status, city, section                         string
		preferences, photos, videos, tags, departures textArray
	)

	err := row.Scan(
		&l.ID, &l.WorkerID, &l.NumberID, &l.Phone, &l.Telegram, &l.WhatsApp,
		&preferences, &l.FromAge, &l.BeforeAge, &city, &section,
		&photos, &videos, &tags, &l.Departure, &departures,
		&l.Cost1hAppart, &l.Cost2hAppart, &l.CostNightAppart,
		&l.Cost1hArrive, &l.Cost2hArrive, &l.CostNightArrive,
		&status, &l.ViewsCount, &l.CreatedAt, &l.UpdatedAt,
		&w.ID, &w.UserID, &w.Balance, &w.Age, &w.Height, &w.Weight, &w.Breast,
		&w.ShoeSize, &w.ClothingSize, &w.Appearance, &w.Nationality, &w.BodyType,
		&w.HairColor, &w.IntimateHaircut, &w.BodyArt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = domain.ListingStatus(status)
	l.City = domain.City(city)
	l.Section = domain.Section(section)
	l.Preferences = preferences
	l.Photos = photos
	l.Videos = videos
	l.Tags = tags
	l.DepartureTypes = departures
	l.Worker = &w
	return &l, nil
}

// Create implements store.ListingStore.Create
// Returns store.ErrNumberIDExists if the public number ID is taken and
// store.ErrInvalidEntity if the owning worker does not exist.
func (s *PostgresListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		log.Warn("listing validation failed during create",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return err
	}

	query := `
		INSERT INTO listings (
			id, worker_id, number_id, phone, telegram, whatsapp,
			preferences, from_age, before_age, city, section,
			photos, videos, tags, departure, departure_types,
			cost_1h_appart, cost_2h_appart, cost_night_appart,
			cost_1h_arrive, cost_2h_arrive, cost_night_arrive,
			status, views_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		listing.ID,
		listing.WorkerID,
		listing.NumberID,
		listing.Phone,
		listing.Telegram,
		listing.WhatsApp,
		textArray(listing.Preferences),
		listing.FromAge,
		listing.BeforeAge,
		listing.City,
		listing.Section,
		textArray(listing.Photos),
		textArray(listing.Videos),
		textArray(listing.Tags),
		listing.Departure,
		textArray(listing.DepartureTypes),
		listing.Cost1hAppart,
		listing.Cost2hAppart,
		listing.CostNightAppart,
		listing.Cost1hArrive,
		listing.Cost2hArrive,
		listing.CostNightArrive,
		listing.Status,
		listing.ViewsCount,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Warn("duplicate number ID during listing create",
				slog.String("listing_id", listing.ID.String()),
				slog.String("number_id", listing.NumberID))
			return mapped
		}
		log.Error("failed to create listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return mapped
	}

	log.Info("listing created successfully",
		slog.String("listing_id", listing.ID.String()),
		slog.String("worker_id", listing.WorkerID.String()),
		slog.String("number_id", listing.NumberID))
	return nil
}

// GetByID implements store.ListingStore.GetByID
// The owning worker is loaded alongside the listing.
// Returns store.ErrListingNotFound if the listing is missing or soft-deleted.
func (s *PostgresListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + listingJoinColumns + `
		FROM listings l
		JOIN workers w ON w.id = l.worker_id
		WHERE l.id = $1 AND l.deleted_at IS NULL
	`
	listing, err := scanListingWithWorker(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("listing not found", slog.String("listing_id", id.String()))
			return nil, store.ErrListingNotFound
		}
		log.Error("failed to get listing by ID",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return nil, err
	}
	return listing, nil
}

// ExistsByNumberID implements store.ListingStore.ExistsByNumberID
// Soft-deleted listings still count: their number IDs stay reserved.
func (s *PostgresListingStore) ExistsByNumberID(ctx context.Context, numberID string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM listings WHERE number_id = $1)`
	if err := s.db.QueryRowContext(ctx, query, numberID).Scan(&exists); err != nil {
		log.Error("failed to check number ID existence",
			slog.String("error", err.Error()),
			slog.String("number_id", numberID))
		return false, err
	}
	return exists, nil
}

// FindOpenWithWorkers implements store.ListingStore.FindOpenWithWorkers
// It returns every open, non-deleted listing joined with its worker.
func (s *PostgresListingStore) FindOpenWithWorkers(ctx context.Context) ([]*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + listingJoinColumns + `
		FROM listings l
		JOIN workers w ON w.id = l.worker_id
		WHERE l.status = $1 AND l.deleted_at IS NULL
	`
	rows, err := s.db.QueryContext(ctx, query, domain.ListingStatusOpen)
	if err != nil {
		log.Error("failed to query open listings", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	listings := []*domain.Listing{}
	for rows.Next() {
		listing, err := scanListingWithWorker(rows)
		if err != nil {
			log.Error("failed to scan listing row", slog.String("error", err.Error()))
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("loaded open listings", slog.Int("count", len(listings)))
	return listings, nil
}

// UpdateStatus implements store.ListingStore.UpdateStatus
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *PostgresListingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE listings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update listing status",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("listing not found for status update",
			slog.String("listing_id", id.String()))
		return store.ErrListingNotFound
	}

	log.Info("listing status updated",
		slog.String("listing_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// RecordView implements store.ListingStore.RecordView
// The insert and the counter bump run as one statement: the counter moves
// only when this viewer has not been seen for this listing before, so
// repeated fetches by the same user or IP count once.
func (s *PostgresListingStore) RecordView(ctx context.Context, id uuid.UUID, viewer store.Viewer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		WITH ins AS (
			INSERT INTO listing_views (listing_id, user_id, ip)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
			RETURNING 1
		)
		UPDATE listings
		SET views_count = views_count + 1
		WHERE id = $1 AND EXISTS (SELECT 1 FROM ins)
	`
	_, err := s.db.ExecContext(ctx, query, id, viewer.UserID, viewer.IP)
	if err != nil {
		log.Error("failed to record listing view",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return err
	}
	return nil
}

// GetContacts implements store.ListingStore.GetContacts
// Returns store.ErrListingNotFound if the listing is missing or soft-deleted.
func (s *PostgresListingStore) GetContacts(ctx context.Context, id uuid.UUID) (string, string, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var phone, telegram, whatsapp string
	query := `
		SELECT phone, telegram, whatsapp
		FROM listings
		WHERE id = $1 AND deleted_at IS NULL
	`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&phone, &telegram, &whatsapp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", "", store.ErrListingNotFound
		}
		log.Error("failed to get listing contacts",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return "", "", "", err
	}
	return phone, telegram, whatsapp, nil
}

// SoftDelete implements store.ListingStore.SoftDelete
// Returns store.ErrListingNotFound if the listing does not exist or is
// already deleted.
func (s *PostgresListingStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE listings
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to soft delete listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("listing not found for soft delete",
			slog.String("listing_id", id.String()))
		return store.ErrListingNotFound
	}

	log.Info("listing soft deleted", slog.String("listing_id", id.String()))
	return nil
}

// WithTx implements store.ListingStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresListingStore) WithTx(tx *sql.Tx) store.ListingStore {
	return &PostgresListingStore{
		db:     tx,
		logger: s.logger,
	}
}
