package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/port"
)

// POST v1/search JSON {"query", "category", "limit"} (200 OK, 400 Bad request)
// GET v1/trending?category=&limit= (200 OK, 400 Bad request)

type SearchHandler struct {
	searcher port.Searcher
	trending port.TrendingReader
}

func RegisterSearch(
	mux *http.ServeMux, searcher port.Searcher, trending port.TrendingReader,
) {
	h := SearchHandler{searcher, trending}
	mux.HandleFunc("POST /v1/search", h.PostSearch)
	mux.HandleFunc("GET /v1/trending", h.GetTrending)
}

func (h SearchHandler) PostSearch(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.PostSearch"
	log := slog.With("op", op)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	res, err := h.searcher.Search(r.Context(), req.Query, req.Category, req.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrQueryRequired) {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "search is unavailable")
		log.Error("failed to search", "err", err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Products: productsFromDomain(res.Products),
		Total:    res.Total,
		Sources: SourceCounts{
			Local:    res.Sources.Local,
			Partner:  res.Sources.Partner,
			External: res.Sources.External,
		},
	})
}

func (h SearchHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.GetTrending"
	log := slog.With("op", op)

	q := r.URL.Query()

	var limit int
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	res, err := h.trending.Trending(r.Context(), q.Get("category"), limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "trending is unavailable")
		log.Error("failed to read trending", "err", err)
		return
	}

	writeJSON(w, http.StatusOK, TrendingResponse{
		Products: productsFromDomain(res.Products),
		Total:    res.Total,
	})
}

// POST v1/products/details JSON {"product_id", "source"} (200 OK, 400, 404)
// GET v1/products/{id}?source= (200 OK, 400, 404)

type ProductsHandler struct {
	reader port.ProductReader
}

func RegisterProducts(mux *http.ServeMux, reader port.ProductReader) {
	h := ProductsHandler{reader}
	mux.HandleFunc("POST /v1/products/details", h.PostDetails)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
}

func (h ProductsHandler) PostDetails(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PostDetails"
	log := slog.With("op", op)

	var req ProductDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	h.writeProduct(w, r, req.ProductID, req.Source)
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	h.writeProduct(w, r, r.PathValue("id"), r.URL.Query().Get("source"))
}

func (h ProductsHandler) writeProduct(
	w http.ResponseWriter, r *http.Request, productID, source string,
) {
	const op = "ProductsHandler.writeProduct"
	log := slog.With("op", op)

	productID = strings.TrimSpace(productID)
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	p, err := h.reader.ProductDetail(
		r.Context(), productID, domain.SourceTag(strings.TrimSpace(source)),
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownSource):
			writeError(w, http.StatusBadRequest, "unknown source")
		case errors.Is(err, domain.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		default:
			writeError(w, http.StatusBadGateway, "failed to read product")
			log.Error("failed to read product", "productID", productID, "err", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, ProductResponse{Product: productFromDomain(p)})
}

// GET v1/stats (200 OK, 503 Service unavailable)
// GET v1/stats/searches?term= (200 OK, 400, 503)

type StatsHandler struct {
	stats port.StatsReader
}

func RegisterStats(mux *http.ServeMux, stats port.StatsReader) {
	h := StatsHandler{stats}
	mux.HandleFunc("GET /v1/stats", h.GetStats)
	mux.HandleFunc("GET /v1/stats/searches", h.GetSearchCount)
}

func (h StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	const op = "StatsHandler.GetStats"
	log := slog.With("op", op)

	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "stats are unavailable")
		log.Error("failed to read catalog stats", "err", err)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalProducts: stats.TotalProducts,
		Categories:    stats.Categories,
		Brands:        stats.Brands,
		AvgRating:     stats.AvgRating,
	})
}

func (h StatsHandler) GetSearchCount(w http.ResponseWriter, r *http.Request) {
	const op = "StatsHandler.GetSearchCount"
	log := slog.With("op", op)

	term := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("term")))
	if term == "" {
		writeError(w, http.StatusBadRequest, "term is required")
		return
	}

	n, err := h.stats.SearchCount(term)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "search stats are unavailable")
		if !errors.Is(err, domain.ErrStatsDisabled) {
			log.Error("failed to read search count", "err", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, SearchCountResponse{Term: term, Searches: n})
}

// GET v1/health (200 OK)

type HealthHandler struct {
	health port.SourceHealthReader
}

func RegisterHealth(mux *http.ServeMux, health port.SourceHealthReader) {
	h := HealthHandler{health}
	mux.HandleFunc("GET /v1/health", h.GetHealth)
}

func (h HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.health.Snapshot()

	sources := make(map[string]SourceHealth, len(snap))
	for tag, st := range snap {
		sources[string(tag)] = SourceHealth{
			OK:        st.OK,
			Error:     st.Err,
			CheckedAt: st.CheckedAt,
		}
	}

	ready := searchEngineReady(snap)
	status := "healthy"
	if !ready {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:            status,
		SearchEngineReady: ready,
		Sources:           sources,
	})
}

// searchEngineReady is false only when every reported source is failing.
// No reports yet means no source has been seen failing.
func searchEngineReady(snap map[domain.SourceTag]domain.HealthStatus) bool {
	if len(snap) == 0 {
		return true
	}
	for _, st := range snap {
		if st.OK {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", "writeJSON", "err", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}
