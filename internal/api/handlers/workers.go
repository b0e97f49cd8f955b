package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"propscout/internal/scraper/workers"
)

// WorkerStatsHandler returns worker pool statistics
func WorkerStatsHandler(poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := poolManager.GetStats()
		if err != nil {
			return errorResponse(c, http.StatusServiceUnavailable, "pool_unavailable", err.Error())
		}
		return c.JSON(http.StatusOK, stats)
	}
}

// DomainStatsHandler returns rate limiter statistics for one partner domain
func DomainStatsHandler(poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := poolManager.GetDomainStats(c.Param("domain"))
		if err != nil {
			return errorResponse(c, http.StatusServiceUnavailable, "pool_unavailable", err.Error())
		}
		return c.JSON(http.StatusOK, stats)
	}
}
