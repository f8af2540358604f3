package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/shopfinder/internal/core/port"
)

var _ port.SearchStatsView = (*SearchStatsView)(nil)

const recoveryPollInterval = 200 * time.Millisecond

// A SearchStatsView reads the search counts table
// kept by [SearchStatsProcessor].
type SearchStatsView struct {
	gv *goka.View
}

func NewSearchStatsView(
	seedBrokers []string, groupTable string,
) (*SearchStatsView, error) {
	const op = "NewSearchStatsView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(groupTable)),
		searchCountCodec{},
		goka.WithViewLogger(nonlogger()),
	)
	if err != nil {
		return nil, opErr(err, op)
	}
	return &SearchStatsView{gv}, nil
}

// Run starts the view and returns once its table is recovered.
func (v *SearchStatsView) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "SearchStatsView.Run"
	log := slog.With("op", op)

	defer wg.Done()

	go func() {
		defer stopFn()
		if err := v.gv.Run(ctx); err != nil {
			log.Error("unexpected fail on run", "err", err)
			return
		}
		log.Info("stopped")
	}()

	log.Info("recovering...")
	ticker := time.NewTicker(recoveryPollInterval)
	defer ticker.Stop()
	for !v.gv.Recovered() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
	log.Info("running")
}

func (v *SearchStatsView) SearchCount(term string) (int64, error) {
	const op = "SearchStatsView.SearchCount"

	value, err := v.gv.Get(termKey(term))
	if err != nil {
		return 0, opErr(err, op)
	}
	if value == nil {
		return 0, nil
	}

	n, ok := value.(searchCount)
	if !ok {
		return 0, opErr(
			fmt.Errorf("%w: %T", ErrInvalidValueType, value), op,
		)
	}
	return int64(n), nil
}
