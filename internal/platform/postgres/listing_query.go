package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/query"
)

// listingQuery accumulates WHERE conditions with numbered placeholders for
// the listing/worker join.
type listingQuery struct {
	conds []string
	args  []interface{}
}

// arg registers a bind value and returns its placeholder.
func (q *listingQuery) arg(v interface{}) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *listingQuery) where(cond string) {
	q.conds = append(q.conds, cond)
}

// rangeCond adds a closed-interval condition for a nullable Range filter.
func (q *listingQuery) rangeCond(column string, r *query.Range) {
	if r == nil {
		return
	}
	q.where(fmt.Sprintf("%s BETWEEN %s AND %s", column, q.arg(r.Min), q.arg(r.Max)))
}

// equalCond adds an equality condition unless the value is zero.
func (q *listingQuery) equalCond(column, value string) {
	if value == "" {
		return
	}
	q.where(fmt.Sprintf("%s = %s", column, q.arg(value)))
}

// buildListingQuery translates a filter into the WHERE clause and bind args
// shared by the page query and the count query. Soft-deleted rows are always
// excluded; the status condition is only emitted when the filter carries one,
// which after query.EffectiveFilter is every caller except admins asking for
// all statuses.
func buildListingQuery(f query.ListingFilter) (string, []interface{}) {
	q := &listingQuery{}

	q.where("l.deleted_at IS NULL")

	if f.Status != "" {
		q.where("l.status = " + q.arg(string(f.Status)))
	}
	q.equalCond("l.city", string(f.City))
	q.equalCond("l.section", string(f.Section))
	q.equalCond("l.departure", f.Departure)

	if len(f.Tags) > 0 {
		q.where("l.tags && " + q.arg(textArray(f.Tags)))
	}
	if len(f.DepartureTypes) > 0 {
		q.where("l.departure_types && " + q.arg(textArray(f.DepartureTypes)))
	}

	// The requested client age window must fall inside the listing's
	// advertised [from_age, before_age] interval.
	if f.FromAge != nil {
		q.where("l.from_age <= " + q.arg(*f.FromAge))
	}
	if f.BeforeAge != nil {
		q.where("l.before_age >= " + q.arg(*f.BeforeAge))
	}

	q.rangeCond("l.cost_1h_appart", f.Cost1hAppart)
	q.rangeCond("l.cost_2h_appart", f.Cost2hAppart)
	q.rangeCond("l.cost_night_appart", f.CostNightAppart)
	q.rangeCond("l.cost_1h_arrive", f.Cost1hArrive)
	q.rangeCond("l.cost_2h_arrive", f.Cost2hArrive)
	q.rangeCond("l.cost_night_arrive", f.CostNightArrive)

	q.rangeCond("w.age", f.Age)
	q.rangeCond("w.height", f.Height)
	q.rangeCond("w.weight", f.Weight)
	q.rangeCond("w.breast", f.Breast)
	q.rangeCond("w.shoe_size", f.ShoeSize)
	q.rangeCond("w.clothing_size", f.ClothingSize)

	q.equalCond("w.appearance", f.Appearance)
	q.equalCond("w.nationality", f.Nationality)
	q.equalCond("w.body_type", f.BodyType)
	q.equalCond("w.hair_color", f.HairColor)
	q.equalCond("w.intimate_haircut", f.IntimateHaircut)
	q.equalCond("w.body_art", f.BodyArt)

	return strings.Join(q.conds, " AND "), q.args
}

// orderClause maps a sort key to its ORDER BY clause. Creation time breaks
// ties so pagination stays stable.
func orderClause(sort query.SortKey) string {
	switch sort {
	case query.SortScore:
		return "ORDER BY l.views_count DESC, l.created_at DESC"
	case query.SortPrice:
		return "ORDER BY l.cost_1h_appart ASC, l.created_at DESC"
	case query.SortPriceDesc:
		return "ORDER BY l.cost_1h_appart DESC, l.created_at DESC"
	default:
		return "ORDER BY l.created_at DESC"
	}
}

// FindAll implements store.ListingStore.FindAll
// It runs the query engine: one count query for the total and one page query
// with the same conditions, sorted and paginated, workers joined in.
func (s *PostgresListingStore) FindAll(
	ctx context.Context,
	filter query.ListingFilter,
) ([]*domain.Listing, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildListingQuery(filter)

	countQuery := `
		SELECT COUNT(*)
		FROM listings l
		JOIN workers w ON w.id = l.worker_id
		WHERE ` + where

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count listings", slog.String("error", err.Error()))
		return nil, 0, err
	}

	pageQuery := `
		SELECT ` + listingJoinColumns + `
		FROM listings l
		JOIN workers w ON w.id = l.worker_id
		WHERE ` + where + `
		` + orderClause(filter.Sort) + `
		LIMIT ` + fmt.Sprintf("$%d", len(args)+1) + ` OFFSET ` + fmt.Sprintf("$%d", len(args)+2)

	pageArgs := append(append([]interface{}{}, args...), filter.EffectiveLimit(), filter.Offset())

	rows, err := s.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		log.Error("failed to query listings", slog.String("error", err.Error()))
		return nil, 0, err
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
			return nil, 0, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, 0, err
	}

	log.Debug("listing page loaded",
		slog.Int("count", len(listings)),
		slog.Int("total", total),
		slog.String("sort", string(filter.Sort)))
	return listings, total, nil
}
