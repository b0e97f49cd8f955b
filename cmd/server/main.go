package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"propscout/internal/api/routes"
	"propscout/internal/callback"
	"propscout/internal/config"
	"propscout/internal/discovery"
	"propscout/internal/extractor"
	"propscout/internal/geocode"
	"propscout/internal/logging"
	"propscout/internal/orchestrator"
	"propscout/internal/scraper/workers"
	"propscout/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting PropScout listing ingestion service")

	ctx := context.Background()

	// Stores
	configStore, err := store.NewConfigStore(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Error("Failed to connect to Postgres", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer configStore.Close()

	if err := configStore.Migrate(ctx); err != nil {
		logger.Error("Failed to run migrations", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	jobStore := store.NewJobStore(cfg)
	defer jobStore.Close()
	if err := jobStore.Ping(ctx); err != nil {
		logger.Error("Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Extraction engine and discovery assistant. A typed nil geocoder must
	// not end up inside the interface, the engine checks for nil.
	var engine *extractor.Engine
	if geocoder := geocode.NewClient(cfg); geocoder != nil {
		engine = extractor.NewEngine(cfg, geocoder)
	} else {
		engine = extractor.NewEngine(cfg, nil)
	}
	analyzer := discovery.NewAnalyzer(cfg)

	// Property delivery sink
	var sink callback.Sink
	if client := callback.NewClient(cfg); client != nil {
		sink = client
	}

	// Worker pool
	crawler := workers.NewCrawler(cfg, engine, jobStore, configStore, sink)
	poolManager := workers.NewPoolManager(cfg, crawler)
	if err := poolManager.Initialize(); err != nil {
		logger.Error("Failed to start worker pool", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer poolManager.Shutdown()

	// Orchestrator
	orch := orchestrator.New(cfg, configStore, jobStore, poolManager)

	// Retention janitor
	janitor := store.NewJanitor(cfg, jobStore)
	if err := janitor.Start(); err != nil {
		logger.Error("Failed to start retention janitor", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer janitor.Stop()

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, &routes.Dependencies{
		Config:      cfg,
		Engine:      engine,
		Analyzer:    analyzer,
		ConfigStore: configStore,
		JobStore:    jobStore,
		PoolManager: poolManager,
		Orch:        orch,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Stopping automation loops...")
		orch.Shutdown(shutdownCtx)

		logger.Info("Stopping worker pool...")
		if err := poolManager.Shutdown(); err != nil {
			logger.Error("Error stopping worker pool", map[string]interface{}{"error": err.Error()})
		}

		janitor.Stop()

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Info("Server stopped", map[string]interface{}{"reason": err.Error()})
	}
}
