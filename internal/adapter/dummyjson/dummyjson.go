// Package dummyjson reads the DummyJSON product API.
package dummyjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
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
	DefaultBaseURL = "https://dummyjson.com"
	currency       = "USD"
	defaultRating  = 4.0
	defaultBrand   = "Unknown"
	defaultStock   = 1
)

type (
	productsResponse struct {
		Products []product `json:"products"`
	}

	product struct {
		ID                 int            `json:"id"`
		Title              string         `json:"title"`
		Description        string         `json:"description"`
		Category           string         `json:"category"`
		Price              adapter.Number `json:"price"`
		DiscountPercentage adapter.Number `json:"discountPercentage"`
		Rating             adapter.Number `json:"rating"`
		Stock              adapter.Number `json:"stock"`
		Brand              string         `json:"brand"`
		Thumbnail          string         `json:"thumbnail"`
		Images             []string       `json:"images"`
	}
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (Client) Source() domain.SourceTag {
	return domain.SourceExternalA
}

func (c Client) Search(
	ctx context.Context, sc domain.SearchConstraints, quota int,
) ([]domain.Product, error) {
	const op = "dummyjson.Client.Search"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quota <= 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", sc.Query)
	q.Set("limit", strconv.Itoa(quota))

	var res productsResponse
	if err := c.get(ctx, "/products/search", q, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c.toDomain(res.Products, quota), nil
}

// Trending ignores category, the remote listing has no such filter.
func (c Client) Trending(
	ctx context.Context, _ string, quota int,
) ([]domain.Product, error) {
	const op = "dummyjson.Client.Trending"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quota <= 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(quota))
	q.Set("sortBy", "rating")
	q.Set("order", "desc")

	var res productsResponse
	if err := c.get(ctx, "/products", q, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c.toDomain(res.Products, quota), nil
}

func (c Client) Product(
	ctx context.Context, nativeID string,
) (domain.Product, error) {
	const op = "dummyjson.Client.Product"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	var p product
	err := c.get(ctx, "/products/"+url.PathEscape(nativeID), nil, &p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	if p.ID == 0 {
		return domain.Product{}, fmt.Errorf(
			"%s: %w", op, domain.ErrProductNotFound,
		)
	}
	return p.toDomain(), nil
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
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return domain.ErrProductNotFound
	case res.StatusCode < 200 || res.StatusCode > 299:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(v)
}

func (c Client) toDomain(items []product, quota int) []domain.Product {
	log := slog.With("op", "dummyjson.Client.toDomain")

	if len(items) > quota {
		items = items[:quota]
	}
	ps := make([]domain.Product, len(items))
	for i, item := range items {
		ps[i] = item.toDomain()
	}
	log.Debug("products mapped", "count", len(ps))
	return ps
}

func (p product) toDomain() domain.Product {
	nativeID := strconv.Itoa(p.ID)

	category := strings.ToLower(strings.TrimSpace(p.Category))
	if category == "" {
		category = "general"
	}

	rating := p.Rating.Value
	if rating == 0 {
		rating = defaultRating
	}

	brand := p.Brand
	if brand == "" {
		brand = defaultBrand
	}

	stock := defaultStock
	if p.Stock.Int() > 0 {
		stock = p.Stock.Int()
	}

	var discount string
	if p.DiscountPercentage.Value > 0 {
		discount = fmt.Sprintf("%d%% OFF", int(math.Round(p.DiscountPercentage.Value)))
	}

	images := append([]string{p.Thumbnail}, p.Images...)

	return domain.Product{
		ID:            domain.SourceExternalA.ProductID(nativeID),
		Name:          p.Title,
		Category:      category,
		Brand:         brand,
		Description:   p.Description,
		DiscountLabel: discount,
		Price:         domain.ClampPrice(p.Price.Value),
		Currency:      currency,
		Rating:        domain.ClampRating(rating),
		Stock:         stock,
		ImageURL:      imageurl.Resolve(imageurl.URLList(images...)),
		Source:        domain.SourceExternalA,
		ExternalID:    nativeID,
	}
}
