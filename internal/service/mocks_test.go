package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/query"
	"github.com/anketahub/anketa-api/internal/store"
	"github.com/google/uuid"
)

// In-memory store fakes shared by the service tests.

type fakeUserStore struct {
	byID map[uuid.UUID]*domain.User
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	s := &fakeUserStore{byID: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		s.byID[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	s.byID[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	u, ok := s.byID[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (s *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

type fakeWorkerStore struct {
	byID map[uuid.UUID]*domain.Worker
}

func newFakeWorkerStore(workers ...*domain.Worker) *fakeWorkerStore {
	s := &fakeWorkerStore{byID: make(map[uuid.UUID]*domain.Worker)}
	for _, w := range workers {
		s.byID[w.ID] = w
	}
	return s
}

func (s *fakeWorkerStore) Create(ctx context.Context, worker *domain.Worker) error {
	s.byID[worker.ID] = worker
	return nil
}

func (s *fakeWorkerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error) {
	if w, ok := s.byID[id]; ok {
		return w, nil
	}
	return nil, store.ErrWorkerNotFound
}

func (s *fakeWorkerStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Worker, error) {
	for _, w := range s.byID {
		if w.UserID == userID {
			return w, nil
		}
	}
	return nil, store.ErrWorkerNotFound
}

func (s *fakeWorkerStore) Debit(ctx context.Context, id uuid.UUID, amount float64) (bool, error) {
	w, ok := s.byID[id]
	if !ok {
		return false, store.ErrWorkerNotFound
	}
	if w.Balance < amount {
		return false, nil
	}
	w.Balance -= amount
	return true, nil
}

func (s *fakeWorkerStore) WithTx(tx *sql.Tx) store.WorkerStore { return s }

// fakeListingStore records the filter passed to FindAll and the viewers
// passed to RecordView so tests can assert on the query engine contract.
type fakeListingStore struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*domain.Listing
	views    map[uuid.UUID][]store.Viewer
	lastFind query.ListingFilter

	recordViewErr error
}

func newFakeListingStore(listings ...*domain.Listing) *fakeListingStore {
	s := &fakeListingStore{
		byID:  make(map[uuid.UUID]*domain.Listing),
		views: make(map[uuid.UUID][]store.Viewer),
	}
	for _, l := range listings {
		s.byID[l.ID] = l
	}
	return s
}

func (s *fakeListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byID {
		if l.NumberID == listing.NumberID {
			return store.ErrNumberIDExists
		}
	}
	s.byID[listing.ID] = listing
	return nil
}

func (s *fakeListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok || l.IsDeleted() {
		return nil, store.ErrListingNotFound
	}
	return l, nil
}

func (s *fakeListingStore) ExistsByNumberID(ctx context.Context, numberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byID {
		if l.NumberID == numberID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeListingStore) FindAll(ctx context.Context, filter query.ListingFilter) ([]*domain.Listing, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFind = filter

	var out []*domain.Listing
	for _, l := range s.byID {
		if l.IsDeleted() {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, l)
	}
	return out, len(out), nil
}

func (s *fakeListingStore) FindOpenWithWorkers(ctx context.Context) ([]*domain.Listing, error) {
	return nil, nil
}

func (s *fakeListingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return store.ErrListingNotFound
	}
	l.Status = status
	return nil
}

func (s *fakeListingStore) RecordView(ctx context.Context, id uuid.UUID, viewer store.Viewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordViewErr != nil {
		return s.recordViewErr
	}
	l, ok := s.byID[id]
	if !ok {
		return store.ErrListingNotFound
	}
	for _, seen := range s.views[id] {
		if viewer.UserID != nil && seen.UserID != nil && *viewer.UserID == *seen.UserID {
			return nil
		}
		if viewer.UserID == nil && seen.UserID == nil && viewer.IP == seen.IP {
			return nil
		}
	}
	s.views[id] = append(s.views[id], viewer)
	l.ViewsCount++
	return nil
}

func (s *fakeListingStore) GetContacts(ctx context.Context, id uuid.UUID) (string, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok || l.IsDeleted() {
		return "", "", "", store.ErrListingNotFound
	}
	return l.Phone, l.Telegram, l.WhatsApp, nil
}

func (s *fakeListingStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok || l.IsDeleted() {
		return store.ErrListingNotFound
	}
	now := l.UpdatedAt
	l.DeletedAt = &now
	return nil
}

func (s *fakeListingStore) WithTx(tx *sql.Tx) store.ListingStore { return s }
