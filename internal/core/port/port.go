package port

import (
	"context"
	"sync"

	"github.com/niksmo/shopfinder/internal/core/domain"
)

type (
	runner interface {
		Run(ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

type QueryExtractor interface {
	Extract(text string) domain.SearchConstraints
}

// A SourceAdapter reads one catalog and normalizes its records into
// canonical products.
type SourceAdapter interface {
	Source() domain.SourceTag
	Search(ctx context.Context, c domain.SearchConstraints, quota int) ([]domain.Product, error)
	Trending(ctx context.Context, category string, quota int) ([]domain.Product, error)
	Product(ctx context.Context, nativeID string) (domain.Product, error)
}

// SourceHealth receives the outcome of every source call.
type SourceHealth interface {
	Report(source domain.SourceTag, err error)
}

type SourceHealthReader interface {
	Snapshot() map[domain.SourceTag]domain.HealthStatus
}

type SearchEventsProducer interface {
	ProduceSearchEvent(context.Context, domain.SearchEvent) error
}

type CatalogStatsReader interface {
	CatalogStats(context.Context) (domain.CatalogStats, error)
}

type SearchCountReader interface {
	SearchCount(term string) (int64, error)
}

// Inbound ports.

type Searcher interface {
	Search(ctx context.Context, query, category string, limit int) (domain.SearchResult, error)
}

type TrendingReader interface {
	Trending(ctx context.Context, category string, limit int) (domain.TrendingResult, error)
}

type ProductReader interface {
	ProductDetail(ctx context.Context, productID string, source domain.SourceTag) (domain.Product, error)
}

type StatsReader interface {
	Stats(context.Context) (domain.CatalogStats, error)
	SearchCount(term string) (int64, error)
}

type SearchStatsProcessor interface {
	runner
	closer
}

type SearchStatsView interface {
	runner
	SearchCountReader
}
