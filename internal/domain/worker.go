package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyWorkerID   = errors.New("worker ID cannot be empty")
	ErrNegativeBalance = errors.New("worker balance cannot be negative")
)

// Worker is the profile that owns listings and holds the spendable balance
// the lease pass debits. A worker belongs to exactly one user and may own
// any number of listings.
//
// Balance is only ever mutated through WorkerStore.Debit, which performs an
// atomic compare-and-debit so the balance can never go negative.
type Worker struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Balance float64 `json:"balance"`

	// Physical profile attributes, filterable in the listing query engine.
	Age             int    `json:"age"`
	Height          int    `json:"height"`
	Weight          int    `json:"weight"`
	Breast          int    `json:"breast"`
	ShoeSize        int    `json:"shoe_size"`
	ClothingSize    int    `json:"clothing_size"`
	Appearance      string `json:"appearance"`
	Nationality     string `json:"nationality"`
	BodyType        string `json:"body_type"`
	HairColor       string `json:"hair_color"`
	IntimateHaircut string `json:"intimate_haircut"`
	BodyArt         string `json:"body_art"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks structural invariants of the worker profile.
func (w *Worker) Validate() error {
	if w.ID == uuid.Nil {
		return ErrEmptyWorkerID
	}
	if w.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if w.Balance < 0 {
		return ErrNegativeBalance
	}
	return nil
}
