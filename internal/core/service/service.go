package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/port"
)

var (
	_ port.Searcher       = (*Service)(nil)
	_ port.TrendingReader = (*Service)(nil)
	_ port.ProductReader  = (*Service)(nil)
	_ port.StatsReader    = (*Service)(nil)
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultEventTimeout  = 5 * time.Second
	DefaultTrendingLimit = 10
)

// Sources holds one adapter per catalog. A nil adapter contributes nothing.
type Sources struct {
	Local     port.SourceAdapter
	Partner   port.SourceAdapter
	ExternalA port.SourceAdapter
	ExternalB port.SourceAdapter
}

func (s Sources) byTag(tag domain.SourceTag) port.SourceAdapter {
	switch tag {
	case domain.SourceLocal:
		return s.Local
	case domain.SourcePartner:
		return s.Partner
	case domain.SourceExternalA:
		return s.ExternalA
	case domain.SourceExternalB:
		return s.ExternalB
	}
	return nil
}

type Config struct {
	Timeout       time.Duration
	EventTimeout  time.Duration
	DefaultLimit  int
	TrendingLimit int
}

// Service aggregates the catalogs behind a single search surface.
type Service struct {
	extractor port.QueryExtractor
	sources   Sources
	health    port.SourceHealth
	events    port.SearchEventsProducer
	stats     port.CatalogStatsReader
	counts    port.SearchCountReader
	cfg       Config
	pending   *sync.WaitGroup
}

// New returns the aggregating service. The events, stats and counts
// dependencies are optional and may be nil.
func New(
	extractor port.QueryExtractor,
	sources Sources,
	health port.SourceHealth,
	events port.SearchEventsProducer,
	stats port.CatalogStatsReader,
	counts port.SearchCountReader,
	cfg Config,
) Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = DefaultEventTimeout
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = domain.DefaultResultLimit
	}
	if cfg.TrendingLimit <= 0 {
		cfg.TrendingLimit = DefaultTrendingLimit
	}
	return Service{
		extractor: extractor,
		sources:   sources,
		health:    health,
		events:    events,
		stats:     stats,
		counts:    counts,
		cfg:       cfg,
		pending:   &sync.WaitGroup{},
	}
}

// Wait blocks until the search events in flight are produced or dropped.
func (s Service) Wait() {
	s.pending.Wait()
}

func (s Service) Search(
	ctx context.Context, query, category string, limit int,
) (domain.SearchResult, error) {
	const op = "Service.Search"

	if err := ctx.Err(); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(query) == "" {
		return domain.SearchResult{}, fmt.Errorf(
			"%s: %w", op, domain.ErrQueryRequired,
		)
	}

	c := s.extractor.Extract(query)
	if category = strings.TrimSpace(category); category != "" {
		c.Category = strings.ToLower(category)
	}

	res, err := s.SearchWithConstraints(ctx, c, limit)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SearchWithConstraints queries the primary catalogs first and hands the
// unfilled part of the limit to the external catalogs.
func (s Service) SearchWithConstraints(
	ctx context.Context, c domain.SearchConstraints, limit int,
) (domain.SearchResult, error) {
	const op = "Service.SearchWithConstraints"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	c.ResultLimit = limit

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	primary := primaryQuota(limit)
	firstPhase := s.fanOut(ctx, []call{
		s.searchCall(domain.SourceLocal, c, primary),
		s.searchCall(domain.SourcePartner, c, primary),
	})
	local, partner := firstPhase[0], firstPhase[1]

	quotaA, quotaB := externalQuota(limit - len(local.products) - len(partner.products))
	secondPhase := s.fanOut(ctx, []call{
		s.searchCall(domain.SourceExternalA, c, quotaA),
		s.searchCall(domain.SourceExternalB, c, quotaB),
	})

	outcomes := []outcome{local, partner, secondPhase[0], secondPhase[1]}
	products := merge(outcomes, limit)

	res := domain.SearchResult{
		Products: products,
		Total:    len(products),
		Sources:  countSources(products),
		Statuses: statuses(outcomes),
	}

	log.Info("search served",
		"query", c.Query, "count", res.Total,
		"local", res.Sources.Local, "partner", res.Sources.Partner,
		"external", res.Sources.External,
	)

	s.emitSearchEvent(ctx, c, res)
	return res, nil
}

func (s Service) Trending(
	ctx context.Context, category string, limit int,
) (domain.TrendingResult, error) {
	const op = "Service.Trending"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.TrendingResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if limit <= 0 {
		limit = s.cfg.TrendingLimit
	}
	category = strings.ToLower(strings.TrimSpace(category))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	third := limit / 3
	quotaA, quotaB := externalQuota(limit - 2*third)

	outcomes := s.fanOut(ctx, []call{
		s.trendingCall(domain.SourceLocal, category, third),
		s.trendingCall(domain.SourcePartner, category, third),
		s.trendingCall(domain.SourceExternalA, category, quotaA),
		s.trendingCall(domain.SourceExternalB, category, quotaB),
	})

	products := merge(outcomes, 0)
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	if len(products) > limit {
		products = products[:limit]
	}

	log.Info("trending served", "category", category, "count", len(products))
	return domain.TrendingResult{Products: products, Total: len(products)}, nil
}

// ProductDetail resolves a product by its response id. The source is
// inferred from the id prefix when it is not given.
func (s Service) ProductDetail(
	ctx context.Context, productID string, source domain.SourceTag,
) (domain.Product, error) {
	const op = "Service.ProductDetail"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	tag, nativeID, err := routeProductID(productID, source)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	adapter := s.sources.byTag(tag)
	if adapter == nil {
		return domain.Product{}, fmt.Errorf(
			"%s: %w", op, domain.ErrProductNotFound,
		)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	p, err := adapter.Product(ctx, nativeID)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			s.report(tag, err)
			log.Error("failed to read product", "source", tag, "err", err)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	s.report(tag, nil)
	return p, nil
}

func (s Service) Stats(ctx context.Context) (domain.CatalogStats, error) {
	const op = "Service.Stats"

	if err := ctx.Err(); err != nil {
		return domain.CatalogStats{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.stats == nil {
		return domain.CatalogStats{}, fmt.Errorf(
			"%s: %w", op, domain.ErrStatsDisabled,
		)
	}

	stats, err := s.stats.CatalogStats(ctx)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

func (s Service) SearchCount(term string) (int64, error) {
	const op = "Service.SearchCount"

	if s.counts == nil {
		return 0, fmt.Errorf("%s: %w", op, domain.ErrStatsDisabled)
	}

	n, err := s.counts.SearchCount(strings.ToLower(strings.TrimSpace(term)))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func routeProductID(
	productID string, source domain.SourceTag,
) (domain.SourceTag, string, error) {
	if source == "" {
		if tag, nativeID, ok := domain.SplitProductID(productID); ok {
			return tag, nativeID, nil
		}
		return domain.SourceLocal, productID, nil
	}

	if !source.Valid() {
		return "", "", domain.ErrUnknownSource
	}

	nativeID := productID
	if rest, ok := strings.CutPrefix(productID, string(source)+"_"); ok && rest != "" {
		nativeID = rest
	}
	return source, nativeID, nil
}

func (s Service) emitSearchEvent(
	ctx context.Context, c domain.SearchConstraints, res domain.SearchResult,
) {
	if s.events == nil {
		return
	}

	const op = "Service.emitSearchEvent"
	log := slog.With("op", op)

	event := domain.SearchEvent{
		Query:      c.Query,
		Term:       c.Term(),
		Category:   c.Category,
		Brand:      c.Brand,
		PriceMax:   c.PriceMax,
		MinRating:  c.MinRating,
		Results:    res.Total,
		Local:      res.Sources.Local,
		Partner:    res.Sources.Partner,
		External:   res.Sources.External,
		OccurredAt: time.Now().UTC(),
	}

	// Produced off the request path, the search deadline may be spent.
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(ctx, s.cfg.EventTimeout)
		defer cancel()

		if err := s.events.ProduceSearchEvent(ctx, event); err != nil {
			log.Error("failed to produce search event", "err", err)
		}
	}()
}
