package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/port"
)

var _ port.SourceAdapter = (*PartnerRepository)(nil)

const partnerColumns = `
	uniq_id,
	COALESCE(product_name, ''), COALESCE(product_category_tree, ''),
	COALESCE(image, ''),
	COALESCE(retail_price, ''), COALESCE(discounted_price, ''),
	COALESCE(product_rating, ''), COALESCE(overall_rating, ''),
	COALESCE(brand, ''), COALESCE(description, ''),
	COALESCE(product_specifications, '')`

// The partner catalog keeps prices and ratings as free text, so numeric
// filters go through guarded casts.
const (
	numericText = `'^[0-9]+(\.[0-9]+)?$'`

	partnerPriceText = `regexp_replace(COALESCE(NULLIF(btrim(discounted_price), ''), retail_price, ''), '[^0-9.]', '', 'g')`

	partnerPriceExpr = `(CASE WHEN ` + partnerPriceText + ` ~ ` + numericText +
		` THEN (` + partnerPriceText + `)::numeric ELSE 0 END)`

	partnerRatingRaw = `(CASE` +
		` WHEN btrim(product_rating) ~ ` + numericText + ` THEN btrim(product_rating)::numeric` +
		` WHEN btrim(overall_rating) ~ ` + numericText + ` THEN btrim(overall_rating)::numeric` +
		` END)`

	partnerRatingExpr = `LEAST(COALESCE(` + partnerRatingRaw + `, 4.0), 5.0)`
)

// PartnerRepository serves the bulk partner catalog imported as raw text.
type PartnerRepository struct {
	sqldb   sqldb
	stockFn func() int
}

func NewPartnerRepository(sqldb sqldb) PartnerRepository {
	return PartnerRepository{sqldb: sqldb, stockFn: partnerStock}
}

// The catalog carries no inventory.
func partnerStock() int {
	return rand.IntN(50) + 1
}

func (PartnerRepository) Source() domain.SourceTag {
	return domain.SourcePartner
}

func (r PartnerRepository) Search(
	ctx context.Context, c domain.SearchConstraints, quota int,
) ([]domain.Product, error) {
	const op = "PartnerRepository.Search"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quota <= 0 {
		return nil, nil
	}

	query, args := partnerSearchQuery(c, quota)
	ps, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r PartnerRepository) Trending(
	ctx context.Context, category string, quota int,
) ([]domain.Product, error) {
	const op = "PartnerRepository.Trending"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quota <= 0 {
		return nil, nil
	}

	query, args := partnerSearchQuery(
		domain.SearchConstraints{Category: category}, quota,
	)
	ps, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r PartnerRepository) Product(
	ctx context.Context, nativeID string,
) (domain.Product, error) {
	const op = "PartnerRepository.Product"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + partnerColumns + ` FROM partner_products WHERE uniq_id = $1;`

	row, err := scanPartner(r.sqldb.QueryRowContext(ctx, query, nativeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf(
				"%s: %w", op, domain.ErrProductNotFound,
			)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return normalizePartner(row, r.stockFn), nil
}

func (r PartnerRepository) query(
	ctx context.Context, query string, args ...any,
) ([]domain.Product, error) {
	log := slog.With("op", "PartnerRepository.query")

	rows, err := queryRows(ctx, r.sqldb, func(rows *sql.Rows) (partnerRow, error) {
		return scanPartner(rows)
	}, query, args...)
	if err != nil {
		return nil, err
	}

	ps := make([]domain.Product, len(rows))
	for i, row := range rows {
		ps[i] = normalizePartner(row, r.stockFn)
	}
	log.Debug("products read", "count", len(ps))
	return ps, nil
}

// partnerSearchQuery applies the constraints the partner schema can answer.
// Subcategory, color, location and size have no partner column.
func partnerSearchQuery(
	c domain.SearchConstraints, quota int,
) (string, []any) {
	var b whereBuilder
	b.contains("product_category_tree", c.Category)
	b.contains("brand", c.Brand)
	b.containsAny(c.TextFilter(), "product_name", "description")
	b.atMost(partnerPriceExpr, c.PriceMax)
	b.atLeast(partnerRatingExpr, c.MinRating)

	query := fmt.Sprintf(
		`SELECT %s FROM partner_products %s ORDER BY %s DESC NULLS LAST LIMIT %s;`,
		partnerColumns, b.where(), partnerRatingRaw, b.limit(quota),
	)
	return query, b.args
}

func scanPartner(s scanner) (partnerRow, error) {
	var v partnerRow
	err := s.Scan(
		&v.uniqID,
		&v.productName, &v.categoryTree,
		&v.image,
		&v.retailPrice, &v.discountedPrice,
		&v.productRating, &v.overallRating,
		&v.brand, &v.description,
		&v.specifications,
	)
	return v, err
}
