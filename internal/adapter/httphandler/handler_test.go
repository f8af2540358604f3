package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Search(
	ctx context.Context, query, category string, limit int,
) (domain.SearchResult, error) {
	args := m.Called(ctx, query, category, limit)
	res, _ := args.Get(0).(domain.SearchResult)
	return res, args.Error(1)
}

func (m *MockService) Trending(
	ctx context.Context, category string, limit int,
) (domain.TrendingResult, error) {
	args := m.Called(ctx, category, limit)
	res, _ := args.Get(0).(domain.TrendingResult)
	return res, args.Error(1)
}

func (m *MockService) ProductDetail(
	ctx context.Context, productID string, source domain.SourceTag,
) (domain.Product, error) {
	args := m.Called(ctx, productID, source)
	p, _ := args.Get(0).(domain.Product)
	return p, args.Error(1)
}

func (m *MockService) Stats(ctx context.Context) (domain.CatalogStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(domain.CatalogStats)
	return s, args.Error(1)
}

func (m *MockService) SearchCount(term string) (int64, error) {
	args := m.Called(term)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

type staticHealth map[domain.SourceTag]domain.HealthStatus

func (h staticHealth) Snapshot() map[domain.SourceTag]domain.HealthStatus {
	return h
}

func newMux(svc *MockService, health staticHealth) http.Handler {
	mux := http.NewServeMux()
	RegisterSearch(mux, svc, svc)
	RegisterProducts(mux, svc)
	RegisterStats(mux, svc)
	RegisterHealth(mux, health)
	return AllowJSON(mux)
}

func do(
	t *testing.T, h http.Handler, method, target, body string,
) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequestWithContext(t.Context(), method, target, nil)
	} else {
		req = httptest.NewRequestWithContext(
			t.Context(), method, target, strings.NewReader(body),
		)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

var sample = domain.Product{
	ID:             "externalB_3",
	Name:           "Cotton Jacket",
	Category:       "clothing",
	Brand:          "Generic",
	DiscountLabel:  "10% OFF",
	Price:          55.99,
	Currency:       "USD",
	Rating:         4.7,
	Stock:          3,
	StockEstimated: true,
	ImageURL:       "https://fakestoreapi.com/img/jacket.jpg",
	Source:         domain.SourceExternalB,
	ExternalID:     "3",
}

func TestPostSearch(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Search", mock.Anything, "red shoes", "footwear", 5).Return(
			domain.SearchResult{
				Products: []domain.Product{sample},
				Total:    1,
				Sources:  domain.SourceCounts{External: 1},
			}, nil,
		)

		rec := do(t, newMux(svc, nil), http.MethodPost, "/v1/search",
			`{"query":"red shoes","category":"footwear","limit":5}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		res := decode[SearchResponse](t, rec)
		assert.Equal(t, 1, res.Total)
		assert.Equal(t, SourceCounts{External: 1}, res.Sources)
		require.Len(t, res.Products, 1)
		assert.Equal(t, productFromDomain(sample), res.Products[0])
		svc.AssertExpectations(t)
	})

	t.Run("EmptyResultIsArray", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Search", mock.Anything, "x", "", 0).Return(domain.SearchResult{}, nil)

		rec := do(t, newMux(svc, nil), http.MethodPost, "/v1/search", `{"query":"x"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"products":[]`)
	})

	t.Run("MissingQuery", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Search", mock.Anything, "", "", 0).Return(
			nil, fmt.Errorf("Service.Search: %w", domain.ErrQueryRequired),
		)

		rec := do(t, newMux(svc, nil), http.MethodPost, "/v1/search", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "query is required", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("BadJSON", func(t *testing.T) {
		rec := do(t, newMux(new(MockService), nil), http.MethodPost, "/v1/search", `{"query":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("WrongMediaType", func(t *testing.T) {
		req := httptest.NewRequestWithContext(
			t.Context(), http.MethodPost, "/v1/search", strings.NewReader("query=x"),
		)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		newMux(new(MockService), nil).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("ServiceFailure", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Search", mock.Anything, "x", "", 0).Return(nil, context.DeadlineExceeded)

		rec := do(t, newMux(svc, nil), http.MethodPost, "/v1/search", `{"query":"x"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGetTrending(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Trending", mock.Anything, "electronics", 4).Return(
			domain.TrendingResult{Products: []domain.Product{sample}, Total: 1}, nil,
		)

		rec := do(t, newMux(svc, nil), http.MethodGet, "/v1/trending?category=electronics&limit=4", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, decode[TrendingResponse](t, rec).Total)
	})

	t.Run("BadLimit", func(t *testing.T) {
		rec := do(t, newMux(new(MockService), nil), http.MethodGet, "/v1/trending?limit=ten", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductDetails(t *testing.T) {
	t.Run("PostOK", func(t *testing.T) {
		svc := new(MockService)
		svc.On("ProductDetail", mock.Anything, "externalB_3", domain.SourceTag("")).
			Return(sample, nil)

		rec := do(t, newMux(svc, nil), http.MethodPost, "/v1/products/details",
			`{"product_id":"externalB_3"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, productFromDomain(sample), decode[ProductResponse](t, rec).Product)
	})

	t.Run("GetWithSource", func(t *testing.T) {
		svc := new(MockService)
		svc.On("ProductDetail", mock.Anything, "3", domain.SourceExternalB).
			Return(sample, nil)

		rec := do(t, newMux(svc, nil), http.MethodGet, "/v1/products/3?source=externalB", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("StatusMapping", func(t *testing.T) {
		tests := []struct {
			err  error
			code int
		}{
			{domain.ErrProductNotFound, http.StatusNotFound},
			{domain.ErrUnknownSource, http.StatusBadRequest},
			{errors.New("connection reset"), http.StatusBadGateway},
		}
		for _, tt := range tests {
			t.Run(tt.err.Error(), func(t *testing.T) {
				svc := new(MockService)
				svc.On("ProductDetail", mock.Anything, "p1", domain.SourceTag("")).
					Return(nil, fmt.Errorf("Service.ProductDetail: %w", tt.err))

				rec := do(t, newMux(svc, nil), http.MethodGet, "/v1/products/p1", "")
				assert.Equal(t, tt.code, rec.Code)
			})
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		rec := do(t, newMux(new(MockService), nil), http.MethodPost, "/v1/products/details", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStats(t *testing.T) {
	t.Run("Catalog", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Stats", mock.Anything).Return(
			domain.CatalogStats{TotalProducts: 120, Categories: 8, Brands: 14, AvgRating: 4.21}, nil,
		)

		rec := do(t, newMux(svc, nil), http.MethodGet, "/v1/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t,
			StatsResponse{TotalProducts: 120, Categories: 8, Brands: 14, AvgRating: 4.21},
			decode[StatsResponse](t, rec),
		)
	})

	t.Run("CatalogFailure", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Stats", mock.Anything).Return(nil, errors.New("db down"))

		rec := do(t, newMux(svc, nil), http.MethodGet, "/v1/stats", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("SearchCount", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SearchCount", "shoes").Return(int64(7), nil)

		rec := do(t, newMux(svc, nil), http.MethodGet, "/v1/stats/searches?term=Shoes", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, SearchCountResponse{Term: "shoes", Searches: 7}, decode[SearchCountResponse](t, rec))
	})

	t.Run("SearchCountDisabled", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SearchCount", "shoes").Return(nil, domain.ErrStatsDisabled)

		rec := do(t, newMux(svc, nil), http.MethodGet, "/v1/stats/searches?term=shoes", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("SearchCountNoTerm", func(t *testing.T) {
		rec := do(t, newMux(new(MockService), nil), http.MethodGet, "/v1/stats/searches", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetHealth(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	health := staticHealth{
		domain.SourceLocal:     {OK: true, CheckedAt: at},
		domain.SourceExternalA: {Err: "timeout", CheckedAt: at},
	}

	rec := do(t, newMux(new(MockService), health), http.MethodGet, "/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", res.Status)
	assert.True(t, res.SearchEngineReady)
	assert.Equal(t, map[string]SourceHealth{
		"local":     {OK: true, CheckedAt: at},
		"externalA": {Error: "timeout", CheckedAt: at},
	}, res.Sources)

	t.Run("AllSourcesFailing", func(t *testing.T) {
		health := staticHealth{
			domain.SourceLocal:     {Err: "connection refused", CheckedAt: at},
			domain.SourceExternalB: {Err: "timeout", CheckedAt: at},
		}
		rec := do(t, newMux(new(MockService), health), http.MethodGet, "/v1/health", "")
		require.Equal(t, http.StatusOK, rec.Code)

		res := decode[HealthResponse](t, rec)
		assert.Equal(t, "degraded", res.Status)
		assert.False(t, res.SearchEngineReady)
	})

	t.Run("NoReportsYet", func(t *testing.T) {
		rec := do(t, newMux(new(MockService), staticHealth{}), http.MethodGet, "/v1/health", "")
		res := decode[HealthResponse](t, rec)
		assert.Equal(t, "healthy", res.Status)
		assert.True(t, res.SearchEngineReady)
		assert.Empty(t, res.Sources)
	})
}

func TestProductJSON(t *testing.T) {
	data, err := json.Marshal(productFromDomain(sample))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{
		"id", "name", "category", "brand", "discount", "price", "currency",
		"rating", "stock", "stock_estimated", "image_url", "source", "external_id",
	} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "color")
	assert.Equal(t, "externalB", fields["source"])
	assert.Equal(t, true, fields["stock_estimated"])
}
