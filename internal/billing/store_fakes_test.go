package billing

import (
	"context"
	"database/sql"
	"sync"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/query"
	"github.com/anketahub/anketa-api/internal/store"
	"github.com/google/uuid"
)

// fakeWorkerStore is a thread-safe in-memory WorkerStore. Debit mirrors the
// SQL implementation: a single compare-and-subtract under one lock.
type fakeWorkerStore struct {
	mu      sync.Mutex
	workers map[uuid.UUID]*domain.Worker
	debits  int
}

func newFakeWorkerStore(workers ...*domain.Worker) *fakeWorkerStore {
	s := &fakeWorkerStore{workers: make(map[uuid.UUID]*domain.Worker)}
	for _, w := range workers {
		s.workers[w.ID] = w
	}
	return s
}

func (s *fakeWorkerStore) Create(ctx context.Context, worker *domain.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[worker.ID] = worker
	return nil
}

func (s *fakeWorkerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[id]
	if !ok {
		return nil, store.ErrWorkerNotFound
	}
	copied := *w
	return &copied, nil
}

func (s *fakeWorkerStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		if w.UserID == userID {
			copied := *w
			return &copied, nil
		}
	}
	return nil, store.ErrWorkerNotFound
}

func (s *fakeWorkerStore) Debit(ctx context.Context, id uuid.UUID, amount float64) (bool, error) {
	if amount < 0 {
		return false, domain.ErrNegativeAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[id]
	if !ok {
		return false, store.ErrWorkerNotFound
	}
	if w.Balance < amount {
		return false, nil
	}
	w.Balance -= amount
	s.debits++
	return true, nil
}

func (s *fakeWorkerStore) WithTx(tx *sql.Tx) store.WorkerStore { return s }

func (s *fakeWorkerStore) balance(id uuid.UUID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers[id].Balance
}

// fakeListingStore is a thread-safe in-memory ListingStore covering what the
// billing pass touches; query-engine methods are minimal.
type fakeListingStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*domain.Listing
	workers  *fakeWorkerStore

	findErr error
}

func newFakeListingStore(workers *fakeWorkerStore, listings ...*domain.Listing) *fakeListingStore {
	s := &fakeListingStore{
		listings: make(map[uuid.UUID]*domain.Listing),
		workers:  workers,
	}
	for _, l := range listings {
		s.listings[l.ID] = l
	}
	return s
}

func (s *fakeListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[listing.ID] = listing
	return nil
}

func (s *fakeListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.IsDeleted() {
		return nil, store.ErrListingNotFound
	}
	copied := *l
	return &copied, nil
}

func (s *fakeListingStore) ExistsByNumberID(ctx context.Context, numberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.listings {
		if l.NumberID == numberID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeListingStore) FindAll(ctx context.Context, filter query.ListingFilter) ([]*domain.Listing, int, error) {
	return nil, 0, nil
}

func (s *fakeListingStore) FindOpenWithWorkers(ctx context.Context) ([]*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var open []*domain.Listing
	for _, l := range s.listings {
		if l.Status != domain.ListingStatusOpen || l.IsDeleted() {
			continue
		}
		copied := *l
		if w, ok := s.workers.workers[l.WorkerID]; ok {
			workerCopy := *w
			copied.Worker = &workerCopy
		}
		open = append(open, &copied)
	}
	return open, nil
}

func (s *fakeListingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return store.ErrListingNotFound
	}
	l.Status = status
	return nil
}

func (s *fakeListingStore) RecordView(ctx context.Context, id uuid.UUID, viewer store.Viewer) error {
	return nil
}

func (s *fakeListingStore) GetContacts(ctx context.Context, id uuid.UUID) (string, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return "", "", "", store.ErrListingNotFound
	}
	return l.Phone, l.Telegram, l.WhatsApp, nil
}

func (s *fakeListingStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *fakeListingStore) WithTx(tx *sql.Tx) store.ListingStore { return s }

func (s *fakeListingStore) status(id uuid.UUID) domain.ListingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings[id].Status
}
