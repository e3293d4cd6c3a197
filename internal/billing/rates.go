// Package billing implements the recurring lease pass over open listings:
// a static rate table keyed by city and section, the pass that debits each
// owning worker or disables the listing, and the cron scheduler driving it.
package billing

import "github.com/anketahub/anketa-api/internal/domain"

// RateTable maps (city, section) to the per-cycle base rate. It is built
// once at startup and never mutated. Cities without an explicit table fall
// back to the "other" table; a section absent from the applicable table
// means billing does not apply to that listing at all, while a zero rate
// means the listing is hosted for free.
type RateTable struct {
	cities map[domain.City]map[domain.Section]float64
	other  map[domain.Section]float64
}

// NewRateTable builds an immutable rate table from the given per-city tables
// and the fallback table. The maps are copied so later mutation of the
// arguments cannot leak in.
func NewRateTable(cities map[domain.City]map[domain.Section]float64, other map[domain.Section]float64) *RateTable {
	copied := make(map[domain.City]map[domain.Section]float64, len(cities))
	for city, table := range cities {
		inner := make(map[domain.Section]float64, len(table))
		for section, rate := range table {
			inner[section] = rate
		}
		copied[city] = inner
	}
	fallback := make(map[domain.Section]float64, len(other))
	for section, rate := range other {
		fallback[section] = rate
	}
	return &RateTable{cities: copied, other: fallback}
}

// DefaultRateTable returns the production rate table.
func DefaultRateTable() *RateTable {
	return NewRateTable(
		map[domain.City]map[domain.Section]float64{
			domain.CityAstana: {
				domain.SectionProstitutes: 3.024,
				domain.SectionElite:       6.048,
				domain.SectionPremium:     12.096,
				domain.SectionIndividual:  1.44,
				domain.SectionBdsm:        1.2096,
			},
			domain.CityAlmaty: {
				domain.SectionProstitutes: 24192,
				domain.SectionElite:       4.8384,
				domain.SectionPremium:     9.072,
				domain.SectionIndividual:  1.2096,
				domain.SectionBdsm:        1.2096,
			},
		},
		map[domain.Section]float64{
			domain.SectionProstitutes: 0,
			domain.SectionElite:       0,
			// Premium has no entry: the category does not exist outside
			// the two priced cities, so such listings are never billed.
			domain.SectionIndividual: 0,
			domain.SectionBdsm:       0,
		},
	)
}

// Lookup returns the base rate for the given city and section.
// The second return value is false when the section is not applicable for
// that city, in which case the listing is exempt from billing entirely.
func (t *RateTable) Lookup(city domain.City, section domain.Section) (float64, bool) {
	table, ok := t.cities[city]
	if !ok {
		table = t.other
	}
	rate, ok := table[section]
	return rate, ok
}
