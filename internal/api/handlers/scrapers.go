package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"propscout/internal/logging"
	"propscout/internal/orchestrator"
	"propscout/internal/store"
	"propscout/pkg/models"
)

// ListScrapersHandler returns every scraper configuration.
func ListScrapersHandler(configs *store.ConfigStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := configs.ListConfigs(c.Request().Context())
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		return c.JSON(http.StatusOK, list)
	}
}

// GetScraperHandler returns one scraper configuration by domain.
func GetScraperHandler(configs *store.ConfigStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		cfg, err := configs.GetConfig(c.Request().Context(), c.Param("domain"))
		if err != nil {
			if errors.Is(err, store.ErrConfigNotFound) {
				return errorResponse(c, http.StatusNotFound, "not_found", "no scraper config for domain")
			}
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		return c.JSON(http.StatusOK, cfg)
	}
}

// UpsertScraperHandler creates or replaces a scraper configuration. The
// domain in the path wins over the one in the body.
func UpsertScraperHandler(configs *store.ConfigStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var cfg models.ScraperConfig
		if err := c.Bind(&cfg); err != nil {
			return errorResponse(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}
		cfg.Domain = c.Param("domain")
		if err := validate.Struct(&cfg); err != nil {
			return validationError(c, err)
		}

		if err := configs.UpsertConfig(c.Request().Context(), &cfg); err != nil {
			code, kind := statusForError(err)
			return errorResponse(c, code, kind, err.Error())
		}
		return c.JSON(http.StatusOK, cfg)
	}
}

// DeleteScraperHandler removes a scraper configuration.
func DeleteScraperHandler(configs *store.ConfigStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := configs.DeleteConfig(c.Request().Context(), c.Param("domain"))
		if err != nil {
			if errors.Is(err, store.ErrConfigNotFound) {
				return errorResponse(c, http.StatusNotFound, "not_found", "no scraper config for domain")
			}
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// GetProxyHandler returns the shared proxy configuration.
func GetProxyHandler(configs *store.ConfigStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		proxy, err := configs.GetProxyConfig(c.Request().Context())
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		if proxy == nil {
			proxy = &models.ProxyConfig{}
		}
		return c.JSON(http.StatusOK, proxy)
	}
}

// UpsertProxyHandler replaces the shared proxy configuration.
func UpsertProxyHandler(configs *store.ConfigStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var proxy models.ProxyConfig
		if err := c.Bind(&proxy); err != nil {
			return errorResponse(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}
		if err := configs.UpsertProxyConfig(c.Request().Context(), &proxy); err != nil {
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		return c.JSON(http.StatusOK, proxy)
	}
}

type runRequest struct {
	Mode models.JobMode `json:"mode"`
}

// RunScraperHandler launches a single crawl cycle for a domain.
func RunScraperHandler(orch *orchestrator.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		domain := c.Param("domain")

		req := runRequest{Mode: models.ModeHistory}
		if err := c.Bind(&req); err != nil {
			return errorResponse(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}
		if req.Mode != models.ModeHistory && req.Mode != models.ModeWatcher {
			return errorResponse(c, http.StatusBadRequest, "validation_failed", "mode must be history or watcher")
		}

		jobID, err := orch.RunOnce(c.Request().Context(), domain, req.Mode)
		if err != nil {
			return automationError(c, err)
		}

		logging.GetGlobalLogger().Info("One-shot crawl started", map[string]interface{}{
			"domain": domain,
			"mode":   string(req.Mode),
			"job_id": jobID,
		})
		return c.JSON(http.StatusAccepted, map[string]string{"job_id": jobID})
	}
}

// StartHistoryHandler starts the history automation loop for a domain.
func StartHistoryHandler(orch *orchestrator.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := orch.StartHistory(c.Request().Context(), c.Param("domain")); err != nil {
			return automationError(c, err)
		}
		return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
	}
}

// StartWatcherHandler starts the watcher automation loop for a domain.
func StartWatcherHandler(orch *orchestrator.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := orch.StartWatcher(c.Request().Context(), c.Param("domain")); err != nil {
			return automationError(c, err)
		}
		return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
	}
}

// StopAutomationHandler stops the active automation loop for a domain.
func StopAutomationHandler(orch *orchestrator.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := orch.StopAutomation(c.Request().Context(), c.Param("domain")); err != nil {
			return errorResponse(c, http.StatusNotFound, "not_found", err.Error())
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "stopped"})
	}
}

// ListAutomationsHandler lists the active automation loops.
func ListAutomationsHandler(orch *orchestrator.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, orch.ActiveLoops())
	}
}

func automationError(c echo.Context, err error) error {
	if errors.Is(err, orchestrator.ErrLoopActive) {
		return errorResponse(c, http.StatusConflict, "automation_active", err.Error())
	}
	if errors.Is(err, store.ErrConfigNotFound) {
		return errorResponse(c, http.StatusNotFound, "not_found", err.Error())
	}
	code, kind := statusForError(err)
	return errorResponse(c, code, kind, err.Error())
}
