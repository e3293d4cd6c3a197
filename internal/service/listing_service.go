package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/query"
	"github.com/anketahub/anketa-api/internal/store"
	"github.com/google/uuid"
)

// numberIDAttempts caps how many candidate public number IDs are tried
// before listing creation gives up.
const numberIDAttempts = 10

// ListingService implements the listing use cases: creation with number ID
// allocation, the public query engine, single fetch with view tracking,
// contact reveals, and owner-gated deletion.
type ListingService struct {
	listings store.ListingStore
	workers  store.WorkerStore
	users    store.UserStore
	logger   *slog.Logger
}

// NewListingService creates the listing service.
// If log is nil, a default logger will be used.
func NewListingService(
	listings store.ListingStore,
	workers store.WorkerStore,
	users store.UserStore,
	log *slog.Logger,
) *ListingService {
	if listings == nil || workers == nil || users == nil {
		panic("listings, workers and users stores cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ListingService{
		listings: listings,
		workers:  workers,
		users:    users,
		logger:   log.With(slog.String("component", "listing_service")),
	}
}

// Create submits a new listing owned by the acting user's worker profile.
// The public 12-digit number ID is allocated here; the caller-supplied ID,
// worker binding, status and counters are overwritten. New listings start
// pending and only become visible (and billable) once moderation opens them.
func (s *ListingService) Create(ctx context.Context, userID uuid.UUID, listing *domain.Listing) (*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	worker, err := s.workers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrWorkerNotFound) {
			return nil, ErrNoWorkerProfile
		}
		return nil, err
	}

	numberID, err := s.allocateNumberID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing.ID = uuid.New()
	listing.WorkerID = worker.ID
	listing.NumberID = numberID
	listing.Status = domain.ListingStatusPending
	listing.ViewsCount = 0
	listing.CreatedAt = now
	listing.UpdatedAt = now
	listing.DeletedAt = nil

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	log.Info("listing submitted",
		"listing_id", listing.ID,
		"worker_id", worker.ID,
		"number_id", numberID)
	listing.Worker = worker
	return listing, nil
}

// allocateNumberID draws random 12-digit candidates until one is free.
func (s *ListingService) allocateNumberID(ctx context.Context) (string, error) {
	// Candidates span [10^11, 10^12) so the first digit is never zero.
	span := big.NewInt(900000000000)

	for attempt := 0; attempt < numberIDAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return "", fmt.Errorf("failed to generate number ID: %w", err)
		}
		candidate := fmt.Sprintf("%d", n.Int64()+100000000000)

		taken, err := s.listings.ExistsByNumberID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrNumberIDExhausted
}

// Get fetches a listing and records the view in the same operation. The view
// is deduplicated per user ID (or per IP for anonymous viewers) by the store;
// a failed view record does not fail the fetch.
func (s *ListingService) Get(ctx context.Context, id uuid.UUID, viewer store.Viewer) (*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.listings.RecordView(ctx, id, viewer); err != nil {
		log.Warn("failed to record listing view",
			"error", err,
			"listing_id", id)
	}

	return listing, nil
}

// List runs the query engine for the given requester. The requester's role
// decides whether the status filter is honored; anonymous callers and plain
// users only ever see open listings.
func (s *ListingService) List(
	ctx context.Context,
	requesterID *uuid.UUID,
	filter query.ListingFilter,
) ([]*domain.Listing, int, error) {
	role := domain.RoleUser
	if requesterID != nil {
		user, err := s.users.GetByID(ctx, *requesterID)
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return nil, 0, err
		}
		if err == nil {
			role = user.Role
		}
	}

	effective := query.EffectiveFilter(role, filter)
	return s.listings.FindAll(ctx, effective)
}

// GetPhone reveals the listing's phone number.
func (s *ListingService) GetPhone(ctx context.Context, id uuid.UUID) (string, error) {
	phone, _, _, err := s.listings.GetContacts(ctx, id)
	return phone, err
}

// GetTelegram reveals the listing's telegram handle.
func (s *ListingService) GetTelegram(ctx context.Context, id uuid.UUID) (string, error) {
	_, telegram, _, err := s.listings.GetContacts(ctx, id)
	return telegram, err
}

// GetWhatsApp reveals the listing's whatsapp contact.
func (s *ListingService) GetWhatsApp(ctx context.Context, id uuid.UUID) (string, error) {
	_, _, whatsapp, err := s.listings.GetContacts(ctx, id)
	return whatsapp, err
}

// Delete soft-deletes a listing. Admins may delete any listing; everyone else
// only their own.
func (s *ListingService) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		worker, err := s.workers.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrWorkerNotFound) {
				return ErrNotOwned
			}
			return err
		}
		if listing.WorkerID != worker.ID {
			return ErrNotOwned
		}
	}

	if err := s.listings.SoftDelete(ctx, listingID); err != nil {
		return err
	}

	log.Info("listing deleted",
		"listing_id", listingID,
		"user_id", userID)
	return nil
}
