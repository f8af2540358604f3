package service

import (
	"context"
	"log/slog"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// A call reads one source. A skipped call has no adapter or no quota.
type call struct {
	source domain.SourceTag
	skip   bool
	fn     func(context.Context) ([]domain.Product, error)
}

type outcome struct {
	source   domain.SourceTag
	products []domain.Product
	err      error
	called   bool
}

func (s Service) searchCall(
	tag domain.SourceTag, c domain.SearchConstraints, quota int,
) call {
	adapter := s.sources.byTag(tag)
	if adapter == nil || quota <= 0 {
		return call{source: tag, skip: true}
	}
	return call{
		source: tag,
		fn: func(ctx context.Context) ([]domain.Product, error) {
			return adapter.Search(ctx, c, quota)
		},
	}
}

func (s Service) trendingCall(
	tag domain.SourceTag, category string, quota int,
) call {
	adapter := s.sources.byTag(tag)
	if adapter == nil || quota <= 0 {
		return call{source: tag, skip: true}
	}
	return call{
		source: tag,
		fn: func(ctx context.Context) ([]domain.Product, error) {
			return adapter.Trending(ctx, category, quota)
		},
	}
}

// fanOut runs calls concurrently. A failed call yields an empty outcome
// and never cancels its siblings.
func (s Service) fanOut(ctx context.Context, calls []call) []outcome {
	log := slog.With("op", "Service.fanOut")

	outcomes := make([]outcome, len(calls))

	var g errgroup.Group
	for i, c := range calls {
		outcomes[i].source = c.source
		if c.skip {
			continue
		}
		g.Go(func() error {
			ps, err := c.fn(ctx)
			outcomes[i].called = true
			if err != nil {
				log.Warn("source failed", "source", c.source, "err", err)
				outcomes[i].err = err
				s.report(c.source, err)
				return nil
			}
			outcomes[i].products = ps
			s.report(c.source, nil)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s Service) report(tag domain.SourceTag, err error) {
	if s.health != nil {
		s.health.Report(tag, err)
	}
}

// primaryQuota is the share of limit each primary catalog may fill.
func primaryQuota(limit int) int {
	return limit / 4
}

// externalQuota splits rem between the external catalogs, the odd unit
// going to the first one.
func externalQuota(rem int) (a, b int) {
	if rem <= 0 {
		return 0, 0
	}
	return (rem + 1) / 2, rem / 2
}

// merge concatenates outcomes in order, keeping the first product per id.
// A limit of zero keeps everything.
func merge(outcomes []outcome, limit int) []domain.Product {
	var n int
	for _, o := range outcomes {
		n += len(o.products)
	}

	seen := make(map[string]struct{}, n)
	products := make([]domain.Product, 0, n)
	for _, o := range outcomes {
		for _, p := range o.products {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			products = append(products, p)
		}
	}

	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products
}

func countSources(products []domain.Product) domain.SourceCounts {
	var counts domain.SourceCounts
	for _, p := range products {
		switch p.Source {
		case domain.SourceLocal:
			counts.Local++
		case domain.SourcePartner:
			counts.Partner++
		case domain.SourceExternalA, domain.SourceExternalB:
			counts.External++
		}
	}
	return counts
}

func statuses(outcomes []outcome) []domain.SourceStatus {
	out := make([]domain.SourceStatus, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.called {
			continue
		}
		st := domain.SourceStatus{
			Source: o.source,
			OK:     o.err == nil,
			Count:  len(o.products),
		}
		if o.err != nil {
			st.Err = o.err.Error()
		}
		out = append(out, st)
	}
	return out
}
