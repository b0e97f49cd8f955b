package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"propscout/internal/logging"
	"propscout/internal/orchestrator"
	"propscout/internal/store"
	"propscout/pkg/models"
)

// ListJobsHandler returns the most recent jobs, newest first.
func ListJobsHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		if raw := c.QueryParam("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}
		list, err := jobs.ListJobs(c.Request().Context(), limit)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		return c.JSON(http.StatusOK, list)
	}
}

// GetJobHandler returns one job together with its buffered log lines.
func GetJobHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		jobID := c.Param("id")

		job, err := jobs.GetJob(ctx, jobID)
		if err != nil {
			if errors.Is(err, store.ErrJobNotFound) {
				return errorResponse(c, http.StatusNotFound, "not_found", "job not found")
			}
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}

		logs, err := jobs.GetLogs(ctx, jobID)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		return c.JSON(http.StatusOK, models.JobResponse{Job: job, Logs: logs})
	}
}

// GetJobLogsHandler returns the buffered log lines for a job.
func GetJobLogsHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("id")
		if _, err := jobs.GetJob(c.Request().Context(), jobID); err != nil {
			if errors.Is(err, store.ErrJobNotFound) {
				return errorResponse(c, http.StatusNotFound, "not_found", "job not found")
			}
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}

		logs, err := jobs.GetLogs(c.Request().Context(), jobID)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		return c.JSON(http.StatusOK, logs)
	}
}

// StopJobHandler raises the cooperative stop flag for a job. The crawl
// finishes the listing it is on and then ends in stopped state.
func StopJobHandler(orch *orchestrator.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("id")
		if err := orch.StopJob(c.Request().Context(), jobID); err != nil {
			if errors.Is(err, store.ErrJobNotFound) {
				return errorResponse(c, http.StatusNotFound, "not_found", "job not found")
			}
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}
		return c.JSON(http.StatusAccepted, map[string]string{"status": "stop_requested"})
	}
}

// StreamJobLogsHandler streams a job's log lines over server-sent events.
// Buffered lines are replayed first, then live lines as they arrive. The
// stream ends with an "end" event when the job reaches a terminal status.
func StreamJobLogsHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		jobID := c.Param("id")
		logger := logging.GetGlobalLogger()

		job, err := jobs.GetJob(ctx, jobID)
		if err != nil {
			if errors.Is(err, store.ErrJobNotFound) {
				return errorResponse(c, http.StatusNotFound, "not_found", "job not found")
			}
			return errorResponse(c, http.StatusInternalServerError, "storage_error", err.Error())
		}

		w := c.Response()
		w.Header().Set(echo.HeaderContentType, "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		// Subscribe before the replay so lines arriving in between are not
		// lost. A line published during the replay window may come through
		// twice, clients key on timestamps.
		logSub := jobs.SubscribeLogs(ctx, jobID)
		defer logSub.Close()
		statusSub := jobs.SubscribeStatus(ctx, jobID)
		defer statusSub.Close()

		replay, err := jobs.GetLogs(ctx, jobID)
		if err != nil {
			return err
		}
		for _, entry := range replay {
			if err := writeSSE(c, "log", entry); err != nil {
				return nil
			}
		}
		w.Flush()

		if job.Status.Terminal() {
			_ = writeSSE(c, "end", map[string]string{"status": string(job.Status)})
			w.Flush()
			return nil
		}

		logger.Debug("Log stream opened", map[string]interface{}{"job_id": jobID})

		logCh := logSub.Channel()
		statusCh := statusSub.Channel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-logCh:
				if !ok {
					return nil
				}
				if _, err := fmt.Fprintf(w, "event: log\ndata: %s\n\n", msg.Payload); err != nil {
					return nil
				}
				w.Flush()
			case msg, ok := <-statusCh:
				if !ok {
					return nil
				}
				status := models.JobStatus(msg.Payload)
				if status.Terminal() {
					_ = writeSSE(c, "end", map[string]string{"status": msg.Payload})
					w.Flush()
					return nil
				}
			}
		}
	}
}

func writeSSE(c echo.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, data)
	return err
}
