// Package fakestore reads the FakeStore product API. The API has no text
// search, so results are filtered on the client side.
package fakestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/niksmo/shopfinder/internal/adapter"
	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/imageurl"
	"github.com/niksmo/shopfinder/internal/core/port"
)

var _ port.SourceAdapter = (*Client)(nil)

var ErrUnexpectedStatus = errors.New("unexpected response status")

const (
	DefaultBaseURL = "https://fakestoreapi.com"
	currency       = "USD"
	brand          = "Generic"
	defaultRating  = 4.0
	trendingRating = 4.0
)

// categoryPaths maps shopper categories to remote category path segments.
var categoryPaths = map[string]string{
	"apparel":     "clothing",
	"fashion":     "clothing",
	"clothing":    "clothing",
	"electronics": "electronics",
	"jewelry":     "jewelery",
	"accessories": "jewelery",
}

type (
	product struct {
		ID          int            `json:"id"`
		Title       string         `json:"title"`
		Price       adapter.Number `json:"price"`
		Description string         `json:"description"`
		Category    string         `json:"category"`
		Image       string         `json:"image"`
		Rating      rating         `json:"rating"`
	}

	rating struct {
		Rate  adapter.Number `json:"rate"`
		Count adapter.Number `json:"count"`
	}
)

type Client struct {
	baseURL string
	http    *http.Client
	stockFn func() int
}

func New(baseURL string, timeout time.Duration) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		stockFn: estimatedStock,
	}
}

// The API carries no inventory.
func estimatedStock() int {
	return rand.IntN(20) + 1
}

func (Client) Source() domain.SourceTag {
	return domain.SourceExternalB
}

func (c Client) Search(
	ctx context.Context, sc domain.SearchConstraints, quota int,
) ([]domain.Product, error) {
	const op = "fakestore.Client.Search"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quota <= 0 {
		return nil, nil
	}

	text := strings.ToLower(strings.TrimSpace(sc.Query))

	// A remote limit would cut the list before the text filter runs.
	limit := quota
	if text != "" {
		limit = 0
	}

	items, err := c.list(ctx, sc.Category, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	matched := items[:0]
	for _, item := range items {
		if item.contains(text) {
			matched = append(matched, item)
		}
	}
	return c.toDomain(matched, quota), nil
}

func (c Client) Trending(
	ctx context.Context, category string, quota int,
) ([]domain.Product, error) {
	const op = "fakestore.Client.Trending"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quota <= 0 {
		return nil, nil
	}

	items, err := c.list(ctx, category, quota)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rated := items[:0]
	for _, item := range items {
		if item.Rating.Rate.Value >= trendingRating {
			rated = append(rated, item)
		}
	}
	return c.toDomain(rated, quota), nil
}

func (c Client) Product(
	ctx context.Context, nativeID string,
) (domain.Product, error) {
	const op = "fakestore.Client.Product"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	var p *product
	err := c.get(ctx, "/products/"+url.PathEscape(nativeID), nil, &p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	if p == nil || p.ID == 0 {
		return domain.Product{}, fmt.Errorf(
			"%s: %w", op, domain.ErrProductNotFound,
		)
	}
	return p.toDomain(c.stockFn()), nil
}

func (c Client) list(
	ctx context.Context, category string, limit int,
) ([]product, error) {
	path := "/products"
	if mapped, ok := categoryPaths[strings.ToLower(category)]; ok {
		path += "/category/" + url.PathEscape(mapped)
	}

	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}

	var items []product
	if err := c.get(ctx, path, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c Client) get(
	ctx context.Context, path string, q url.Values, v any,
) error {
	u := c.baseURL + path
	if len(q) != 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return domain.ErrProductNotFound
	case res.StatusCode < 200 || res.StatusCode > 299:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	// Unknown ids are answered with an empty 200.
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func (c Client) toDomain(items []product, quota int) []domain.Product {
	log := slog.With("op", "fakestore.Client.toDomain")

	if len(items) > quota {
		items = items[:quota]
	}
	ps := make([]domain.Product, len(items))
	for i, item := range items {
		ps[i] = item.toDomain(c.stockFn())
	}
	log.Debug("products mapped", "count", len(ps))
	return ps
}

func (p product) contains(text string) bool {
	if text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), text) ||
		strings.Contains(strings.ToLower(p.Description), text)
}

func (p product) toDomain(stock int) domain.Product {
	nativeID := strconv.Itoa(p.ID)

	category := strings.ToLower(strings.TrimSpace(p.Category))
	if category == "" {
		category = "general"
	}

	rate := p.Rating.Rate.Value
	if rate == 0 {
		rate = defaultRating
	}

	return domain.Product{
		ID:             domain.SourceExternalB.ProductID(nativeID),
		Name:           p.Title,
		Category:       category,
		Brand:          brand,
		Description:    p.Description,
		Price:          domain.ClampPrice(p.Price.Value),
		Currency:       currency,
		Rating:         domain.ClampRating(rate),
		Stock:          stock,
		StockEstimated: true,
		ImageURL:       imageurl.Resolve(imageurl.RawURL(p.Image)),
		Source:         domain.SourceExternalB,
		ExternalID:     nativeID,
	}
}
