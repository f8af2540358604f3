package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/niksmo/shopfinder/config"
	"github.com/niksmo/shopfinder/internal/adapter"
	"github.com/niksmo/shopfinder/internal/adapter/dummyjson"
	"github.com/niksmo/shopfinder/internal/adapter/fakestore"
	"github.com/niksmo/shopfinder/internal/adapter/health"
	"github.com/niksmo/shopfinder/internal/adapter/httphandler"
	"github.com/niksmo/shopfinder/internal/adapter/kafka"
	"github.com/niksmo/shopfinder/internal/adapter/storage"
	"github.com/niksmo/shopfinder/internal/core/extractor"
	"github.com/niksmo/shopfinder/internal/core/lexicon"
	"github.com/niksmo/shopfinder/internal/core/port"
	"github.com/niksmo/shopfinder/internal/core/service"
	"github.com/niksmo/shopfinder/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type stores struct {
	db      storage.SQLDB
	local   storage.LocalRepository
	partner storage.PartnerRepository
	stats   storage.StatsRepository
}

// Broker parts stay nil when no seed brokers are configured.
type broker struct {
	tlsConfig   *tls.Config
	eventsSerde schema.Serde
	producer    *kafka.SearchEventsProducer
	processor   port.SearchStatsProcessor
	view        port.SearchStatsView
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	stores     stores
	broker     broker
	health     *health.Registry
	service    service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg, health: health.NewRegistry()}

	app.initLogger()
	app.initStores()
	app.initBroker()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStores() {
	const op = "App.initStores"

	db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}

	app.stores = stores{
		db:      db,
		local:   storage.NewLocalRepository(db),
		partner: storage.NewPartnerRepository(db),
		stats:   storage.NewStatsRepository(db),
	}
}

func (app *App) initBroker() {
	const op = "App.initBroker"
	log := slog.With("op", op)

	cfg := app.cfg.Broker
	if !cfg.Enabled() {
		log.Warn("no seed brokers, search events are disabled")
		return
	}

	tlsFiles := adapter.TLSFiles{
		CA:   cfg.TLS.CA,
		Cert: cfg.TLS.Cert,
		Key:  cfg.TLS.Key,
	}
	if tlsFiles.Enabled() {
		tlsConfig, err := adapter.MakeTLSConfig(tlsFiles)
		if err != nil {
			app.fallDown(op, err)
		}
		app.broker.tlsConfig = tlsConfig
		kafka.UseTLS(tlsConfig)
	}

	app.initSerdes()
	app.initProducer()
	app.initSearchStats()
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if app.broker.tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.broker.tlsConfig))
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	subject := app.cfg.Broker.Topics.SearchEvents + "-value"
	eventsSerde, err := schema.NewSerdeSearchEventV1(
		app.ctx,
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker.eventsSerde = eventsSerde
}

func (app *App) initProducer() {
	const op = "App.initProducer"

	producer, err := kafka.NewSearchEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx,
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.Topics.SearchEvents,
			app.broker.tlsConfig,
		),
		kafka.ProducerEncoderOpt(app.broker.eventsSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker.producer = &producer
}

func (app *App) initSearchStats() {
	const op = "App.initSearchStats"

	seedBrokers := app.cfg.Broker.SeedBrokers
	group := app.cfg.Broker.Consumers.SearchStatsGroup

	processor, err := kafka.NewSearchStatsProc(
		seedBrokers,
		app.cfg.Broker.Topics.SearchEvents,
		group,
		app.broker.eventsSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	view, err := kafka.NewSearchStatsView(seedBrokers, group)
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker.processor = processor
	app.broker.view = view
}

func (app *App) initCoreService() {
	sources := service.Sources{
		Local:   app.stores.local,
		Partner: app.stores.partner,
		ExternalA: dummyjson.New(
			app.cfg.Sources.ExternalA.BaseURL,
			app.cfg.Sources.ExternalA.Timeout,
		),
		ExternalB: fakestore.New(
			app.cfg.Sources.ExternalB.BaseURL,
			app.cfg.Sources.ExternalB.Timeout,
		),
	}

	// Interfaces holding typed nil pointers would not compare equal to nil.
	var (
		events port.SearchEventsProducer
		counts port.SearchCountReader
	)
	if app.broker.producer != nil {
		events = app.broker.producer
	}
	if app.broker.view != nil {
		counts = app.broker.view
	}

	app.service = service.New(
		extractor.New(lexicon.Default()),
		sources,
		app.health,
		events,
		app.stores.stats,
		counts,
		service.Config{
			Timeout:       app.cfg.Search.Timeout,
			EventTimeout:  app.cfg.Broker.ProduceTimeout,
			DefaultLimit:  app.cfg.Search.DefaultLimit,
			TrendingLimit: app.cfg.Search.TrendingLimit,
		},
	)
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterSearch(mux, app.service, app.service)
	httphandler.RegisterProducts(mux, app.service)
	httphandler.RegisterStats(mux, app.service)
	httphandler.RegisterHealth(mux, app.health)

	handler := httphandler.LogRequests(httphandler.AllowJSON(mux))
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.HTTPHandlerTimeout,
	)
}

// Run starts the stream components and the http server.
//
// Blocks current goroutine while stream components are preparing.
func (app *App) Run(stopFn context.CancelFunc) {
	if app.broker.processor != nil {
		var wg sync.WaitGroup
		wg.Add(2)
		go app.broker.processor.Run(app.ctx, stopFn, &wg)
		go app.broker.view.Run(app.ctx, stopFn, &wg)
		wg.Wait()
	}

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.service.Wait()
	if app.broker.processor != nil {
		app.broker.processor.Close()
	}
	if app.broker.producer != nil {
		app.broker.producer.Close()
	}
	app.stores.db.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
