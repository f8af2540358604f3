package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/port"
)

var _ port.CatalogStatsReader = (*StatsRepository)(nil)

// The partner category is compared by its raw path.
const catalogStatsQuery = `
	WITH catalog AS (
		SELECT category, brand, rating::numeric AS rating FROM products
		UNION ALL
		SELECT product_category_tree, brand, ` + partnerRatingRaw + `
		FROM partner_products
	)
	SELECT
		count(*),
		count(DISTINCT category),
		count(DISTINCT brand),
		COALESCE(avg(rating), 0)::float8
	FROM catalog;`

type StatsRepository struct {
	sqldb sqldb
}

func NewStatsRepository(sqldb sqldb) StatsRepository {
	return StatsRepository{sqldb}
}

func (r StatsRepository) CatalogStats(
	ctx context.Context,
) (domain.CatalogStats, error) {
	const op = "StatsRepository.CatalogStats"

	if err := ctx.Err(); err != nil {
		return domain.CatalogStats{}, fmt.Errorf("%s: %w", op, err)
	}

	var s domain.CatalogStats
	err := r.sqldb.QueryRowContext(ctx, catalogStatsQuery).Scan(
		&s.TotalProducts, &s.Categories, &s.Brands, &s.AvgRating,
	)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}
