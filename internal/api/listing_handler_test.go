package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anketahub/anketa-api/internal/api/shared"
	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/query"
	"github.com/anketahub/anketa-api/internal/service"
	"github.com/anketahub/anketa-api/internal/store"
)

// fakeListingService implements ListingService with overridable behavior.
type fakeListingService struct {
	createFn      func(ctx context.Context, userID uuid.UUID, listing *domain.Listing) (*domain.Listing, error)
	getFn         func(ctx context.Context, id uuid.UUID, viewer store.Viewer) (*domain.Listing, error)
	listFn        func(ctx context.Context, requesterID *uuid.UUID, filter query.ListingFilter) ([]*domain.Listing, int, error)
	getPhoneFn    func(ctx context.Context, id uuid.UUID) (string, error)
	getTelegramFn func(ctx context.Context, id uuid.UUID) (string, error)
	getWhatsAppFn func(ctx context.Context, id uuid.UUID) (string, error)
	deleteFn      func(ctx context.Context, userID, listingID uuid.UUID) error
}

var _ ListingService = (*fakeListingService)(nil)

func (f *fakeListingService) Create(
	ctx context.Context,
	userID uuid.UUID,
	listing *domain.Listing,
) (*domain.Listing, error) {
	return f.createFn(ctx, userID, listing)
}

func (f *fakeListingService) Get(
	ctx context.Context,
	id uuid.UUID,
	viewer store.Viewer,
) (*domain.Listing, error) {
	return f.getFn(ctx, id, viewer)
}

func (f *fakeListingService) List(
	ctx context.Context,
	requesterID *uuid.UUID,
	filter query.ListingFilter,
) ([]*domain.Listing, int, error) {
	return f.listFn(ctx, requesterID, filter)
}

func (f *fakeListingService) GetPhone(ctx context.Context, id uuid.UUID) (string, error) {
	return f.getPhoneFn(ctx, id)
}

func (f *fakeListingService) GetTelegram(ctx context.Context, id uuid.UUID) (string, error) {
	return f.getTelegramFn(ctx, id)
}

func (f *fakeListingService) GetWhatsApp(ctx context.Context, id uuid.UUID) (string, error) {
	return f.getWhatsAppFn(ctx, id)
}

func (f *fakeListingService) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	return f.deleteFn(ctx, userID, listingID)
}

// withUser injects an authenticated user ID the way the auth middleware does.
func withUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// newListingRouter mounts the handler; pass withUser middlewares to
// simulate an authenticated caller.
func newListingRouter(svc ListingService, middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	handler := NewListingHandler(svc, nil)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		for _, m := range middlewares {
			r.Use(m)
		}
		r.Post("/api/forms", handler.Create)
		r.Post("/api/forms/filter", handler.List)
		r.Get("/api/forms/{id}", handler.Get)
		r.Delete("/api/forms/{id}", handler.Delete)
		r.Post("/api/forms/{id}/phone", handler.GetPhone)
		r.Post("/api/forms/{id}/telegram", handler.GetTelegram)
		r.Post("/api/forms/{id}/whatsapp", handler.GetWhatsApp)
	})
	return r
}

func validCreateRequest() CreateListingRequest {
	return CreateListingRequest{
		Phone:        "+77010000000",
		Telegram:     "@contact",
		FromAge:      20,
		BeforeAge:    30,
		City:         domain.CityAstana,
		Section:      domain.SectionIndividual,
		Tags:         []string{"massage"},
		Cost1hAppart: 20000,
	}
}

func TestListingHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		router := newListingRouter(&fakeListingService{})

		rr := postJSON(t, router, http.MethodPost, "/api/forms", validCreateRequest())

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("creates listing for authenticated worker", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc := &fakeListingService{
			createFn: func(ctx context.Context, uid uuid.UUID, listing *domain.Listing) (*domain.Listing, error) {
				assert.Equal(t, userID, uid)
				assert.Equal(t, "+77010000000", listing.Phone)
				listing.ID = uuid.New()
				listing.NumberID = "123456789012"
				listing.Status = domain.ListingStatusPending
				return listing, nil
			},
		}
		router := newListingRouter(svc, withUser(userID))

		rr := postJSON(t, router, http.MethodPost, "/api/forms", validCreateRequest())

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp domain.Listing
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "123456789012", resp.NumberID)
		assert.Equal(t, domain.ListingStatusPending, resp.Status)
	})

	t.Run("rejects underage bound", func(t *testing.T) {
		t.Parallel()
		router := newListingRouter(&fakeListingService{}, withUser(uuid.New()))

		req := validCreateRequest()
		req.FromAge = 17

		rr := postJSON(t, router, http.MethodPost, "/api/forms", req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps missing worker profile to bad request", func(t *testing.T) {
		t.Parallel()
		svc := &fakeListingService{
			createFn: func(ctx context.Context, uid uuid.UUID, listing *domain.Listing) (*domain.Listing, error) {
				return nil, service.ErrNoWorkerProfile
			},
		}
		router := newListingRouter(svc, withUser(uuid.New()))

		rr := postJSON(t, router, http.MethodPost, "/api/forms", validCreateRequest())

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListingHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("anonymous caller gets a page", func(t *testing.T) {
		t.Parallel()
		svc := &fakeListingService{
			listFn: func(ctx context.Context, requesterID *uuid.UUID, filter query.ListingFilter) ([]*domain.Listing, int, error) {
				assert.Nil(t, requesterID, "anonymous caller has no requester ID")
				assert.Equal(t, domain.CityAlmaty, filter.City)
				return []*domain.Listing{{ID: uuid.New()}}, 1, nil
			},
		}
		router := newListingRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/forms/filter", ListingFilterRequest{
			City: domain.CityAlmaty,
		})

		require.Equal(t, http.StatusOK, rr.Code)

		var resp ListingPageResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("authenticated caller is passed through", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc := &fakeListingService{
			listFn: func(ctx context.Context, requesterID *uuid.UUID, filter query.ListingFilter) ([]*domain.Listing, int, error) {
				require.NotNil(t, requesterID)
				assert.Equal(t, userID, *requesterID)
				return nil, 0, nil
			},
		}
		router := newListingRouter(svc, withUser(userID))

		rr := postJSON(t, router, http.MethodPost, "/api/forms/filter", ListingFilterRequest{})

		require.Equal(t, http.StatusOK, rr.Code)

		var resp ListingPageResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.NotNil(t, resp.Data, "empty result must serialize as [] not null")
	})

	t.Run("rejects unknown sort key", func(t *testing.T) {
		t.Parallel()
		router := newListingRouter(&fakeListingService{})

		rr := postJSON(t, router, http.MethodPost, "/api/forms/filter", ListingFilterRequest{
			Sort: "alphabetical",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListingHandler_Get(t *testing.T) {
	t.Parallel()

	t.Run("anonymous view is tracked by IP", func(t *testing.T) {
		t.Parallel()
		listingID := uuid.New()
		svc := &fakeListingService{
			getFn: func(ctx context.Context, id uuid.UUID, viewer store.Viewer) (*domain.Listing, error) {
				assert.Equal(t, listingID, id)
				assert.Nil(t, viewer.UserID)
				assert.Equal(t, "192.0.2.1", viewer.IP)
				return &domain.Listing{ID: id, ViewsCount: 5}, nil
			},
		}
		router := newListingRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/forms/"+listingID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("authenticated view is tracked by user ID", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc := &fakeListingService{
			getFn: func(ctx context.Context, id uuid.UUID, viewer store.Viewer) (*domain.Listing, error) {
				require.NotNil(t, viewer.UserID)
				assert.Equal(t, userID, *viewer.UserID)
				assert.Empty(t, viewer.IP)
				return &domain.Listing{ID: id}, nil
			},
		}
		router := newListingRouter(svc, withUser(userID))

		req := httptest.NewRequest(http.MethodGet, "/api/forms/"+uuid.NewString(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("malformed ID is bad request", func(t *testing.T) {
		t.Parallel()
		router := newListingRouter(&fakeListingService{})

		req := httptest.NewRequest(http.MethodGet, "/api/forms/not-a-uuid", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing listing is not found", func(t *testing.T) {
		t.Parallel()
		svc := &fakeListingService{
			getFn: func(ctx context.Context, id uuid.UUID, viewer store.Viewer) (*domain.Listing, error) {
				return nil, store.ErrListingNotFound
			},
		}
		router := newListingRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/forms/"+uuid.NewString(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListingHandler_Contacts(t *testing.T) {
	t.Parallel()

	listingID := uuid.New()
	svc := &fakeListingService{
		getPhoneFn: func(ctx context.Context, id uuid.UUID) (string, error) {
			return "+77010000000", nil
		},
		getTelegramFn: func(ctx context.Context, id uuid.UUID) (string, error) {
			return "@contact", nil
		},
		getWhatsAppFn: func(ctx context.Context, id uuid.UUID) (string, error) {
			return "", nil
		},
	}
	router := newListingRouter(svc)

	cases := []struct {
		path string
		want string
	}{
		{"/phone", "+77010000000"},
		{"/telegram", "@contact"},
		{"/whatsapp", ""},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/forms/"+listingID.String()+tc.path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, tc.path)

		var resp ContactResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, tc.want, resp.Contact, tc.path)
	}
}

func TestListingHandler_Delete(t *testing.T) {
	t.Parallel()

	t.Run("owner deletes own listing", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		listingID := uuid.New()
		svc := &fakeListingService{
			deleteFn: func(ctx context.Context, uid, lid uuid.UUID) error {
				assert.Equal(t, userID, uid)
				assert.Equal(t, listingID, lid)
				return nil
			},
		}
		router := newListingRouter(svc, withUser(userID))

		req := httptest.NewRequest(http.MethodDelete, "/api/forms/"+listingID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		t.Parallel()
		svc := &fakeListingService{
			deleteFn: func(ctx context.Context, uid, lid uuid.UUID) error {
				return service.ErrNotOwned
			},
		}
		router := newListingRouter(svc, withUser(uuid.New()))

		req := httptest.NewRequest(http.MethodDelete, "/api/forms/"+uuid.NewString(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		router := newListingRouter(&fakeListingService{})

		req := httptest.NewRequest(http.MethodDelete, "/api/forms/"+uuid.NewString(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
