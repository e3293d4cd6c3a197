// Package query defines the filter, sort and pagination contract for the
// listing query engine, plus the authorization policy that decides which
// statuses a caller may see.
package query

import "github.com/anketahub/anketa-api/internal/domain"

// SortKey selects the ordering of a listing page.
type SortKey string

const (
	// SortScore orders by view count, most viewed first.
	SortScore SortKey = "score"
	// SortNew orders by creation time, newest first. This is the default.
	SortNew SortKey = "new"
	// SortPrice orders by the 1-hour apartment price, cheapest first.
	SortPrice SortKey = "price"
	// SortPriceDesc orders by the 1-hour apartment price, most expensive first.
	SortPriceDesc SortKey = "priceDesc"
)

// Range is a closed numeric interval [Min, Max]. A nil *Range on a filter
// field means "no filtering on this field"; a present Range always carries
// both bounds.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ListingFilter describes one page request over the listing store.
// Zero values mean "don't filter". Range filters span the listing's cost
// tiers and the owning worker's profile attributes, so the engine queries
// both joined entities.
type ListingFilter struct {
	// Status is honored only for admin callers; EffectiveFilter forces it
	// to open for everyone else.
	Status domain.ListingStatus

	City           domain.City
	Section        domain.Section
	Tags           []string // matches listings carrying any of these tags
	Departure      string
	DepartureTypes []string // matches listings offering any of these types

	FromAge   *int
	BeforeAge *int

	// Listing cost tiers.
	Cost1hAppart    *Range
	Cost2hAppart    *Range
	CostNightAppart *Range
	Cost1hArrive    *Range
	Cost2hArrive    *Range
	CostNightArrive *Range

	// Worker profile attributes.
	Age          *Range
	Height       *Range
	Weight       *Range
	Breast       *Range
	ShoeSize     *Range
	ClothingSize *Range

	Appearance      string
	Nationality     string
	BodyType        string
	HairColor       string
	IntimateHaircut string
	BodyArt         string

	Sort  SortKey
	Limit int
	Page  int // 1-based
}

// Offset computes the number of rows to skip for the requested page.
func (f ListingFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return f.EffectiveLimit() * (page - 1)
}

// DefaultLimit caps pages when the caller doesn't supply a limit.
const DefaultLimit = 10

// EffectiveLimit returns the page size, applying the default when unset.
func (f ListingFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}
