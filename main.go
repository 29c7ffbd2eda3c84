package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/pricepeek/config"
	"sjsage522/pricepeek/internal"
	"sjsage522/pricepeek/logger"
	"sjsage522/pricepeek/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("browser_mode", cfg.BrowserMode).
		Dur("cache_ttl", cfg.CacheTTL).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	deps, err := internal.NewDependencies(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer deps.Cleanup()

	pipeline := deps.Pipeline(cfg)

	if len(cfg.WatchURLs) == 0 {
		log.Warn().Msg("WATCH_URLS is empty, the worker has nothing to refresh")
	}

	// Create and start worker
	w := worker.NewWorker(
		ctx,
		pipeline.Cache,
		deps.Publisher,
		cfg.WatchURLs,
		cfg.RefreshInterval,
	)

	workerDone := make(chan struct{})
	go func() {
		w.Start()
		close(workerDone)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case <-workerDone:
		log.Info().Msg("Worker exited")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}
