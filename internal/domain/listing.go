package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ListingStatus tracks a listing through its visibility lifecycle.
// In the billing path the only transition is Open -> Disabled; a disabled
// listing is never reopened automatically.
type ListingStatus string

const (
	ListingStatusOpen     ListingStatus = "open"
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusDisabled ListingStatus = "disabled"
	ListingStatusBanned   ListingStatus = "banned"
)

// City names the two explicitly priced cities. Anything else falls back to
// the "other" rate table in billing.
type City string

const (
	CityAstana City = "Astana"
	CityAlmaty City = "Almaty"
)

// Section is the listing's service category and one half of the rate key.
type Section string

const (
	SectionProstitutes Section = "prostitutes"
	SectionElite       Section = "elite"
	SectionPremium     Section = "premium"
	SectionIndividual  Section = "individual"
	SectionBdsm        Section = "bdsm"
)

var (
	ErrEmptyListingID = errors.New("listing ID cannot be empty")
	ErrEmptyNumberID  = errors.New("listing number ID cannot be empty")
	ErrEmptyPhone     = errors.New("listing phone cannot be empty")
)

// validListingStatuses enumerates every status accepted by Validate.
var validListingStatuses = map[ListingStatus]bool{
	ListingStatusOpen:     true,
	ListingStatusPending:  true,
	ListingStatusDisabled: true,
	ListingStatusBanned:   true,
}

// Listing is a service offering ("form") tied to a worker profile: pricing,
// location, category and visibility status. Contact fields are only exposed
// through the dedicated reveal endpoints, never in listing payloads.
type Listing struct {
	ID       uuid.UUID `json:"id"`
	WorkerID uuid.UUID `json:"worker_id"`

	// NumberID is the public 12-digit identifier printed on the listing.
	NumberID string `json:"number_id"`

	// Contact details, revealed on demand.
	Phone    string `json:"-"`
	Telegram string `json:"-"`
	WhatsApp string `json:"-"`

	Preferences []string `json:"preferences"`
	FromAge     int      `json:"from_age"`
	BeforeAge   int      `json:"before_age"`
	City        City     `json:"city"`
	Section     Section  `json:"section"`
	Photos      []string `json:"photos"`
	Videos      []string `json:"videos"`
	Tags        []string `json:"tags"`

	Departure      string   `json:"departure"`
	DepartureTypes []string `json:"departure_types"`

	// Six cost tiers: 1 hour / 2 hours / overnight, at the worker's place
	// ("appart") or the client's ("arrive").
	Cost1hAppart    float64 `json:"cost_1h_appart"`
	Cost2hAppart    float64 `json:"cost_2h_appart"`
	CostNightAppart float64 `json:"cost_night_appart"`
	Cost1hArrive    float64 `json:"cost_1h_arrive"`
	Cost2hArrive    float64 `json:"cost_2h_arrive"`
	CostNightArrive float64 `json:"cost_night_arrive"`

	Status     ListingStatus `json:"status"`
	ViewsCount int           `json:"views_count"`

	// Worker is populated when the listing is loaded with its owner
	// (single fetch, query engine results, billing pass input).
	Worker *Worker `json:"worker,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// Validate checks if the Listing has valid data.
// Returns an error if any field fails validation.
func (l *Listing) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyListingID
	}
	if l.WorkerID == uuid.Nil {
		return ErrEmptyWorkerID
	}
	if l.NumberID == "" {
		return ErrEmptyNumberID
	}
	if l.Phone == "" {
		return ErrEmptyPhone
	}
	if !validListingStatuses[l.Status] {
		return ErrInvalidStatus
	}
	if l.FromAge < 18 || l.BeforeAge > 100 || l.FromAge > l.BeforeAge {
		return ErrInvalidAgeRange
	}
	return nil
}

// IsDeleted reports whether the listing has been soft-deleted.
func (l *Listing) IsDeleted() bool {
	return l.DeletedAt != nil
}
