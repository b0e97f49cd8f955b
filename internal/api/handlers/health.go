package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"propscout/internal/logging"
	"propscout/internal/scraper/workers"
	"propscout/internal/store"
	"propscout/pkg/models"
)

var startTime = time.Now()

const serviceVersion = "1.0.0"

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	})
}

// ReadinessHandler reports whether the service can take traffic: both
// stores reachable and the worker pool running.
func ReadinessHandler(configs *store.ConfigStore, jobs *store.JobStore, poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		checks := map[string]string{
			"postgres": "ok",
			"redis":    "ok",
			"workers":  "ok",
		}
		healthy := true

		if err := configs.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		}
		if err := jobs.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
		if !poolManager.IsHealthy() {
			checks["workers"] = "not running"
			healthy = false
		}

		status := "ready"
		code := http.StatusOK
		if !healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
			logging.GetGlobalLogger().Warn("Readiness check failed", map[string]interface{}{"checks": checks})
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   serviceVersion,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Uptime:    time.Since(startTime),
	})
}
