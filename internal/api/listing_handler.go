package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/anketahub/anketa-api/internal/api/shared"
	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/query"
	"github.com/anketahub/anketa-api/internal/store"
)

// ListingService defines the listing operations the handler depends on.
type ListingService interface {
	Create(ctx context.Context, userID uuid.UUID, listing *domain.Listing) (*domain.Listing, error)
	Get(ctx context.Context, id uuid.UUID, viewer store.Viewer) (*domain.Listing, error)
	List(ctx context.Context, requesterID *uuid.UUID, filter query.ListingFilter) ([]*domain.Listing, int, error)
	GetPhone(ctx context.Context, id uuid.UUID) (string, error)
	GetTelegram(ctx context.Context, id uuid.UUID) (string, error)
	GetWhatsApp(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, userID, listingID uuid.UUID) error
}

// ListingHandler handles listing-related HTTP requests.
type ListingHandler struct {
	listingService ListingService
	validator      *validator.Validate
	logger         *slog.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingService ListingService, log *slog.Logger) *ListingHandler {
	if listingService == nil {
		panic("listingService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ListingHandler{
		listingService: listingService,
		validator:      validator.New(),
		logger:         log.With(slog.String("component", "listing_handler")),
	}
}

// Create handles POST /api/forms. The caller must be authenticated and own
// a worker profile.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateListingRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	listing, err := h.listingService.Create(r.Context(), userID, req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create listing")
		return
	}

	log.Info("listing created",
		slog.String("listing_id", listing.ID.String()),
		slog.String("number_id", listing.NumberID))
	shared.RespondWithJSON(w, r, http.StatusCreated, listing)
}

// List handles POST /api/forms/filter. The filter travels in the body
// because it is too structured for query parameters. Anonymous callers are
// allowed; the service forces non-admins onto open listings.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	var req ListingFilterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	var requesterID *uuid.UUID
	if userID, ok := getUserIDFromContext(r); ok {
		requesterID = &userID
	}

	listings, total, err := h.listingService.List(r.Context(), requesterID, req.toFilter())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to query listings")
		return
	}

	if listings == nil {
		listings = []*domain.Listing{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ListingPageResponse{
		Data:  listings,
		Total: total,
	})
}

// Get handles GET /api/forms/{id}. Each fetch counts as a view, deduplicated
// per authenticated user or per client IP for anonymous callers.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	viewer := store.Viewer{}
	if userID, ok := getUserIDFromContext(r); ok {
		viewer.UserID = &userID
	} else {
		viewer.IP = clientIP(r)
	}

	listing, err := h.listingService.Get(r.Context(), id, viewer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch listing")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, listing)
}

// GetPhone handles POST /api/forms/{id}/phone.
func (h *ListingHandler) GetPhone(w http.ResponseWriter, r *http.Request) {
	h.revealContact(w, r, h.listingService.GetPhone)
}

// GetTelegram handles POST /api/forms/{id}/telegram.
func (h *ListingHandler) GetTelegram(w http.ResponseWriter, r *http.Request) {
	h.revealContact(w, r, h.listingService.GetTelegram)
}

// GetWhatsApp handles POST /api/forms/{id}/whatsapp.
func (h *ListingHandler) GetWhatsApp(w http.ResponseWriter, r *http.Request) {
	h.revealContact(w, r, h.listingService.GetWhatsApp)
}

// Delete handles DELETE /api/forms/{id}. Owners can delete their own
// listings; admins can delete any.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.listingService.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete listing")
		return
	}

	log.Info("listing deleted", slog.String("listing_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// revealContact factors the three contact endpoints, which differ only in
// which field they return.
func (h *ListingHandler) revealContact(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, id uuid.UUID) (string, error),
) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	contact, err := fetch(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch contact")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ContactResponse{Contact: contact})
}

// clientIP returns the request's remote address without the port. The
// router's RealIP middleware has already resolved proxy headers into
// RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
