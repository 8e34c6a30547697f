package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"salestats/internal/amqp"
	"salestats/internal/backend"
	"salestats/internal/cli"
	"salestats/internal/log"
	"salestats/internal/seed"
	"salestats/internal/services"
	"salestats/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)

	logger.Info("Starting salestats-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	// A memory store would not be visible to the API process
	if cfg.DataBackend != string(backend.SQLiteBackend) {
		logger.Error("The worker requires DATA_BACKEND=sqlite", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	source, err := seed.New(ctx, cli.SeedConfig(cfg))
	if err != nil {
		logger.Error("Failed to create seed source", "error", err, "source", cfg.SeedSource)
		os.Exit(1)
	}

	seeder := services.NewSeedService(source, store.Store,
		services.WithSeedLogger(logger.WithComponent(log.ComponentSeed)))

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	seedWorker := worker.NewSeedWorker(seeder)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming seed requests", "queue", cfg.AMQPQueue, "source", source.Name())
		if err := amqpClient.Run(gctx, seedWorker.HandleSeedRequest); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if cfg.SeedRefreshInterval > 0 {
		g.Go(func() error {
			logger.Info("Scheduled seed loads enabled", "interval", cfg.SeedRefreshInterval)
			seedWorker.RunPeriodic(gctx, cfg.SeedRefreshInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
