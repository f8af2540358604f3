package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/shopfinder/internal/core/port"
	"github.com/niksmo/shopfinder/pkg/schema"
)

var _ port.SearchStatsProcessor = (*SearchStatsProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A searchEventCodec used for serde [schema.SearchEventV1]
type searchEventCodec struct {
	serde Serde
}

func (c searchEventCodec) Encode(v any) ([]byte, error) {
	const op = "searchEventCodec.Encode"
	if _, ok := v.(schema.SearchEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c searchEventCodec) Decode(data []byte) (any, error) {
	const op = "searchEventCodec.Decode"
	var s schema.SearchEventV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A searchCount is the number of searches seen for one term.
type searchCount int64

// A searchCountCodec used for serde [searchCount]
type searchCountCodec struct{}

func (searchCountCodec) Encode(v any) ([]byte, error) {
	const op = "searchCountCodec.Encode"
	n, ok := v.(searchCount)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return strconv.AppendInt(nil, int64(n), 10), nil
}

func (searchCountCodec) Decode(data []byte) (any, error) {
	const op = "searchCountCodec.Decode"
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil, opErr(err, op)
	}
	return searchCount(n), nil
}

// A SearchStatsProcessor counts search events per term
// from the events stream into a group table.
type SearchStatsProcessor struct {
	opPrefix string
	proc     processor
}

func NewSearchStatsProc(
	seedBrokers []string,
	inputStream string,
	groupTable string,
	searchEventSerde Serde,
) (*SearchStatsProcessor, error) {
	const op = "NewSearchStatsProc"

	p := SearchStatsProcessor{opPrefix: "SearchStatsProcessor"}

	gg := goka.DefineGroup(goka.Group(groupTable),
		goka.Input(
			goka.Stream(inputStream),
			searchEventCodec{searchEventSerde},
			p.processFn,
		),
		goka.Persist(searchCountCodec{}),
	)

	gp, err := goka.NewProcessor(
		seedBrokers, gg, goka.WithLogger(nonlogger()),
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return &p, nil
}

func (p *SearchStatsProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *SearchStatsProcessor) Close() {
	p.proc.close()
}

func (p *SearchStatsProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op))

	event, _ := msg.(schema.SearchEventV1)
	n := nextCount(ctx.Value())
	ctx.SetValue(n)
	log.Debug("search counted", "term", event.Term, "count", int64(n))
}

func nextCount(current any) searchCount {
	n, _ := current.(searchCount)
	return n + 1
}
