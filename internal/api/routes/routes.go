package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propscout/internal/api/handlers"
	"propscout/internal/api/middleware"
	"propscout/internal/config"
	"propscout/internal/discovery"
	"propscout/internal/extractor"
	"propscout/internal/orchestrator"
	"propscout/internal/scraper/workers"
	"propscout/internal/store"
)

// Dependencies bundles everything the route table needs.
type Dependencies struct {
	Config      *config.Config
	Engine      *extractor.Engine
	Analyzer    *discovery.Analyzer
	ConfigStore *store.ConfigStore
	JobStore    *store.JobStore
	PoolManager *workers.PoolManager
	Orch        *orchestrator.Orchestrator
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, deps *Dependencies) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.SelectiveTimeoutConfig(deps.Config.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps.ConfigStore, deps.JobStore, deps.PoolManager))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Prometheus metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.POST("/extract", handlers.ExtractHandler(deps.Config, deps.Engine, deps.ConfigStore))
		v1.POST("/analyze", handlers.AnalyzeHandler(deps.Config, deps.Analyzer))

		// Scraper configuration and automation routes
		scrapers := v1.Group("/scrapers")
		{
			scrapers.GET("", handlers.ListScrapersHandler(deps.ConfigStore))
			scrapers.GET("/:domain", handlers.GetScraperHandler(deps.ConfigStore))
			scrapers.PUT("/:domain", handlers.UpsertScraperHandler(deps.ConfigStore))
			scrapers.DELETE("/:domain", handlers.DeleteScraperHandler(deps.ConfigStore))

			scrapers.POST("/:domain/run", handlers.RunScraperHandler(deps.Orch))
			scrapers.POST("/:domain/history/start", handlers.StartHistoryHandler(deps.Orch))
			scrapers.POST("/:domain/watcher/start", handlers.StartWatcherHandler(deps.Orch))
			scrapers.POST("/:domain/automation/stop", handlers.StopAutomationHandler(deps.Orch))
		}

		v1.GET("/automations", handlers.ListAutomationsHandler(deps.Orch))

		// Shared proxy record
		v1.GET("/proxy", handlers.GetProxyHandler(deps.ConfigStore))
		v1.PUT("/proxy", handlers.UpsertProxyHandler(deps.ConfigStore))

		// Job monitoring routes
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", handlers.ListJobsHandler(deps.JobStore))
			jobs.GET("/:id", handlers.GetJobHandler(deps.JobStore))
			jobs.GET("/:id/logs", handlers.GetJobLogsHandler(deps.JobStore))
			jobs.GET("/:id/stream", handlers.StreamJobLogsHandler(deps.JobStore))
			jobs.POST("/:id/stop", handlers.StopJobHandler(deps.Orch))
		}

		// Worker monitoring routes
		workerRoutes := v1.Group("/workers")
		{
			workerRoutes.GET("/stats", handlers.WorkerStatsHandler(deps.PoolManager))
		}

		// Domain-specific rate limiter stats
		domains := v1.Group("/domains")
		{
			domains.GET("/:domain/stats", handlers.DomainStatsHandler(deps.PoolManager))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "PropScout Listing Ingestion",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
