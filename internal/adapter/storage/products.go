package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/imageurl"
	"github.com/niksmo/shopfinder/internal/core/port"
)

var _ port.SourceAdapter = (*LocalRepository)(nil)

const localCurrency = "USD"

const localColumns = `
	id, name,
	COALESCE(category, ''), COALESCE(subcategory, ''), COALESCE(brand, ''),
	COALESCE(color, ''), COALESCE(size, ''), COALESCE(location, ''),
	COALESCE(description, ''), COALESCE(style_tag, ''),
	COALESCE(delivery_time, ''), COALESCE(discount, ''),
	COALESCE(price, 0)::float8, COALESCE(currency, ''),
	COALESCE(rating, 0)::float8, COALESCE(stock, 0),
	COALESCE(image_url, '')`

type localRow struct {
	id, name                         string
	category, subcategory, brand     string
	color, size, location            string
	description, styleTag            string
	deliveryTime, discount, currency string
	price, rating                    float64
	stock                            int
	imageURL                         string
}

// LocalRepository serves the in-house inventory stored in the products table.
type LocalRepository struct {
	sqldb sqldb
}

func NewLocalRepository(sqldb sqldb) LocalRepository {
	return LocalRepository{sqldb}
}

func (LocalRepository) Source() domain.SourceTag {
	return domain.SourceLocal
}

func (r LocalRepository) Search(
	ctx context.Context, c domain.SearchConstraints, quota int,
) ([]domain.Product, error) {
	const op = "LocalRepository.Search"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quota <= 0 {
		return nil, nil
	}

	query, args := localSearchQuery(c, quota)
	ps, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r LocalRepository) Trending(
	ctx context.Context, category string, quota int,
) ([]domain.Product, error) {
	const op = "LocalRepository.Trending"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quota <= 0 {
		return nil, nil
	}

	query, args := localSearchQuery(
		domain.SearchConstraints{Category: category}, quota,
	)
	ps, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r LocalRepository) Product(
	ctx context.Context, nativeID string,
) (domain.Product, error) {
	const op = "LocalRepository.Product"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + localColumns + ` FROM products WHERE id = $1;`

	row, err := scanLocal(r.sqldb.QueryRowContext(ctx, query, nativeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf(
				"%s: %w", op, domain.ErrProductNotFound,
			)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return row.toDomain(), nil
}

func (r LocalRepository) query(
	ctx context.Context, query string, args ...any,
) ([]domain.Product, error) {
	log := slog.With("op", "LocalRepository.query")

	rows, err := queryRows(ctx, r.sqldb, func(rows *sql.Rows) (localRow, error) {
		return scanLocal(rows)
	}, query, args...)
	if err != nil {
		return nil, err
	}

	ps := make([]domain.Product, len(rows))
	for i, row := range rows {
		ps[i] = row.toDomain()
	}
	log.Debug("products read", "count", len(ps))
	return ps, nil
}

// localSearchQuery applies every set constraint. Only products in stock
// are eligible.
func localSearchQuery(
	c domain.SearchConstraints, quota int,
) (string, []any) {
	var b whereBuilder
	b.add("stock > 0")
	b.contains("category", c.Category)
	b.contains("subcategory", c.Subcategory)
	b.contains("brand", c.Brand)
	b.contains("color", c.Color)
	b.contains("location", c.Location)
	b.contains("size", c.Size)
	b.containsAny(c.TextFilter(), "name", "description")
	b.atMost("price", c.PriceMax)
	b.atLeast("rating", c.MinRating)

	query := fmt.Sprintf(
		`SELECT %s FROM products %s ORDER BY rating DESC NULLS LAST LIMIT %s;`,
		localColumns, b.where(), b.limit(quota),
	)
	return query, b.args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLocal(s scanner) (localRow, error) {
	var v localRow
	err := s.Scan(
		&v.id, &v.name,
		&v.category, &v.subcategory, &v.brand,
		&v.color, &v.size, &v.location,
		&v.description, &v.styleTag,
		&v.deliveryTime, &v.discount,
		&v.price, &v.currency,
		&v.rating, &v.stock,
		&v.imageURL,
	)
	return v, err
}

func (v localRow) toDomain() domain.Product {
	currency := v.currency
	if currency == "" {
		currency = localCurrency
	}

	return domain.Product{
		ID:            domain.SourceLocal.ProductID(v.id),
		Name:          v.name,
		Category:      strings.ToLower(v.category),
		Subcategory:   v.subcategory,
		Brand:         v.brand,
		Color:         v.color,
		Size:          v.size,
		Location:      v.location,
		Description:   v.description,
		StyleTag:      v.styleTag,
		DeliveryTime:  v.deliveryTime,
		DiscountLabel: v.discount,
		Price:         domain.ClampPrice(v.price),
		Currency:      currency,
		Rating:        domain.ClampRating(v.rating),
		Stock:         max(v.stock, 0),
		ImageURL:      imageurl.Resolve(imageurl.Decode(v.imageURL)),
		Source:        domain.SourceLocal,
		ExternalID:    v.id,
	}
}
