package fakestore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/imageurl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listBody = `[
	{"id": 1, "title": "Fjallraven Backpack", "price": 109.95, "description": "Your perfect pack",
	 "category": "men's clothing", "image": "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
	 "rating": {"rate": 3.9, "count": 120}},
	{"id": 2, "title": "Slim Fit T-Shirt", "price": 22.3, "description": "casual backpack-friendly tee",
	 "category": "men's clothing", "image": "https://fakestoreapi.com/img/71-3HjGNDUL.jpg",
	 "rating": {"rate": 4.1, "count": 259}},
	{"id": 3, "title": "Cotton Jacket", "price": 55.99, "description": "great outerwear",
	 "category": "", "image": "broken", "rating": {"rate": 0, "count": 0}}
]`

type recorder struct {
	paths   []string
	queries []string
}

func newClient(t *testing.T, body string, rec *recorder) Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec != nil {
			rec.paths = append(rec.paths, r.URL.Path)
			rec.queries = append(rec.queries, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, time.Second)
	c.stockFn = func() int { return 9 }
	return c
}

func TestClientSearch(t *testing.T) {
	t.Run("FiltersByText", func(t *testing.T) {
		var rec recorder
		c := newClient(t, listBody, &rec)

		ps, err := c.Search(t.Context(), domain.SearchConstraints{Query: "Backpack"}, 5)
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, "externalB_1", ps[0].ID)
		assert.Equal(t, "externalB_2", ps[1].ID)

		assert.Equal(t, []string{"/products"}, rec.paths)
		assert.Equal(t, []string{""}, rec.queries)
	})

	t.Run("TruncatesToQuota", func(t *testing.T) {
		c := newClient(t, listBody, nil)
		ps, err := c.Search(t.Context(), domain.SearchConstraints{Query: "backpack"}, 1)
		require.NoError(t, err)
		assert.Len(t, ps, 1)
	})

	t.Run("MappedCategoryPath", func(t *testing.T) {
		var rec recorder
		c := newClient(t, listBody, &rec)

		_, err := c.Search(t.Context(), domain.SearchConstraints{Category: "Accessories"}, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"/products/category/jewelery"}, rec.paths)
		assert.Equal(t, []string{"limit=2"}, rec.queries)
	})

	t.Run("UnmappedCategoryIgnored", func(t *testing.T) {
		var rec recorder
		c := newClient(t, listBody, &rec)

		_, err := c.Search(t.Context(), domain.SearchConstraints{Category: "groceries"}, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"/products"}, rec.paths)
	})

	t.Run("Mapping", func(t *testing.T) {
		c := newClient(t, listBody, nil)
		ps, err := c.Search(t.Context(), domain.SearchConstraints{}, 3)
		require.NoError(t, err)
		require.Len(t, ps, 3)

		p := ps[2]
		assert.Equal(t, "Cotton Jacket", p.Name)
		assert.Equal(t, "general", p.Category)
		assert.Equal(t, 4.0, p.Rating)
		assert.Equal(t, "Generic", p.Brand)
		assert.Equal(t, "USD", p.Currency)
		assert.Equal(t, 9, p.Stock)
		assert.True(t, p.StockEstimated)
		assert.Equal(t, imageurl.Placeholder, p.ImageURL)
		assert.Equal(t, "men's clothing", ps[0].Category)
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		_, err := New(srv.URL, time.Second).Search(t.Context(), domain.SearchConstraints{}, 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})
}

func TestClientTrending(t *testing.T) {
	var rec recorder
	c := newClient(t, listBody, &rec)

	ps, err := c.Trending(t.Context(), "apparel", 3)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "externalB_2", ps[0].ID)
	assert.Equal(t, []string{"/products/category/clothing"}, rec.paths)
	assert.Equal(t, []string{"limit=3"}, rec.queries)
}

func TestClientProduct(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		c := newClient(t, `{"id": 7, "title": "Ring", "price": 10, "rating": {"rate": 4.6}}`, nil)
		p, err := c.Product(t.Context(), "7")
		require.NoError(t, err)
		assert.Equal(t, "externalB_7", p.ID)
		assert.Equal(t, 4.6, p.Rating)
	})

	t.Run("LenientNumericFields", func(t *testing.T) {
		c := newClient(t, `{"id": 8, "title": "Bracelet", "price": "n/a",
			"rating": {"rate": "4.3", "count": "many"}}`, nil)
		p, err := c.Product(t.Context(), "8")
		require.NoError(t, err)
		assert.Equal(t, "externalB_8", p.ID)
		assert.Equal(t, 0.0, p.Price)
		assert.Equal(t, 4.3, p.Rating)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		c := newClient(t, "", nil)
		_, err := c.Product(t.Context(), "999")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("NullBody", func(t *testing.T) {
		c := newClient(t, "null", nil)
		_, err := c.Product(t.Context(), "999")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestEstimatedStock(t *testing.T) {
	for range 200 {
		s := estimatedStock()
		assert.GreaterOrEqual(t, s, 1)
		assert.LessOrEqual(t, s, 20)
	}
}
