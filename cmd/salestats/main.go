package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"salestats/internal/amqp"
	"salestats/internal/backend"
	"salestats/internal/cache"
	"salestats/internal/cli"
	"salestats/internal/core"
	apphttp "salestats/internal/http"
	"salestats/internal/log"
	"salestats/internal/metrics"
	"salestats/internal/seed"
	"salestats/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	source, err := seed.New(ctx, cli.SeedConfig(cfg))
	if err != nil {
		logger.Error("Failed to create seed source", "error", err, "source", cfg.SeedSource)
		os.Exit(1)
	}

	collector := metrics.NewCollector("salestats")

	queryOpts := []services.QueryOption{
		services.WithQueryMetrics(collector),
		services.WithQueryLogger(logger.WithComponent(log.ComponentQuery)),
	}
	var cacheManager *cache.Manager
	if cfg.StatsCacheEnabled() {
		stats := cache.NewLRU[any](cfg.StatsCacheSize, cfg.StatsCacheTTL)
		cacheManager = cache.NewManager()
		cacheManager.Register(stats)
		cacheManager.StartCleanup(cfg.StatsCacheTTL)
		defer cacheManager.Stop()
		queryOpts = append(queryOpts, services.WithStatsCache(stats))
		logger.Info("Statistics cache enabled", "ttl", cfg.StatsCacheTTL, "size", cfg.StatsCacheSize)
	}
	queries := services.NewQueryService(store.Store, core.NewMonthResolver(cfg.ReferenceYear), queryOpts...)

	seeder := services.NewSeedService(source, store.Store,
		services.WithSeedMetrics(collector),
		services.WithSeedLogger(logger.WithComponent(log.ComponentSeed)),
		services.WithInvalidation(queries))

	deps := apphttp.Deps{
		Queries:            queries,
		Loader:             seeder,
		Pinger:             store.Pinger,
		Metrics:            collector,
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InitRateLimit:      cfg.InitRateLimit,
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		deps.Publisher = amqpClient
		logger.Info("Queued seed loads enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	if cfg.LoadOnStart {
		res, err := seeder.Load(ctx)
		if err != nil {
			logger.Error("Initial seed load failed", "error", err, "source", source.Name())
			os.Exit(1)
		}
		logger.Info("Initial seed load complete", log.FieldRecords, res.RecordsLoaded, "source", source.Name())
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting salestats server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"seed_source", source.Name(),
			"reference_year", strconv.Itoa(cfg.ReferenceYear))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
