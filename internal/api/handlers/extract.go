package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"propscout/internal/config"
	"propscout/internal/discovery"
	"propscout/internal/extractor"
	"propscout/internal/logging"
	"propscout/internal/store"
	"propscout/pkg/models"
	"propscout/pkg/utils"
)

var validate = validator.New()

func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return utils.GenerateRequestID()
}

func errorResponse(c echo.Context, code int, kind, message string) error {
	return c.JSON(code, models.ErrorResponse{
		Error:     kind,
		Message:   message,
		RequestID: requestID(c),
		Timestamp: time.Now(),
	})
}

// validationError renders a failed payload validation through the error
// taxonomy.
func validationError(c echo.Context, err error) error {
	verr := utils.NewValidationError(err.Error())
	return errorResponse(c, verr.Code, verr.Kind, verr.Error())
}

// statusForError maps the error taxonomy to HTTP status codes. Fetch
// failures carry the upstream status, which may be outside the range a
// proxying API should emit, so those collapse to 502.
func statusForError(err error) (int, string) {
	var ce *utils.CustomError
	if errors.As(err, &ce) {
		code := ce.Code
		if code < 400 || code > 599 {
			code = http.StatusBadGateway
		}
		return code, ce.Kind
	}
	return http.StatusInternalServerError, "internal_error"
}

// ExtractHandler runs one synchronous extraction of a listing page.
func ExtractHandler(cfg *config.Config, engine *extractor.Engine, configs *store.ConfigStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		logger := logging.GetGlobalLogger()

		var req models.ExtractRequest
		if err := c.Bind(&req); err != nil {
			return errorResponse(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return validationError(c, err)
		}

		ctx := c.Request().Context()

		var proxy *models.ProxyConfig
		if configs != nil {
			if p, err := configs.GetProxyConfig(ctx); err == nil {
				proxy = p
			}
		}

		prop, err := engine.Extract(ctx, extractor.ExtractInput{
			URL:       req.URL,
			Selectors: req.Selectors,
			Cookies:   req.Cookies,
			RawHTML:   req.RawHTML,
			Proxy:     proxy,
		})
		if err != nil {
			logger.Error("Extraction failed", map[string]interface{}{
				"url":   req.URL,
				"error": err.Error(),
			})
			code, kind := statusForError(err)
			return errorResponse(c, code, kind, err.Error())
		}

		logger.Info("Extraction completed", map[string]interface{}{
			"url":             req.URL,
			"processing_time": time.Since(started).String(),
		})

		return c.JSON(http.StatusOK, models.ExtractResponse{
			Success:        true,
			Property:       prop,
			ProcessingTime: time.Since(started),
			RequestID:      requestID(c),
		})
	}
}

// AnalyzeHandler runs the attribute discovery assistant against a sample
// listing page.
func AnalyzeHandler(cfg *config.Config, analyzer *discovery.Analyzer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.AnalyzeRequest
		if err := c.Bind(&req); err != nil {
			return errorResponse(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return validationError(c, err)
		}

		candidates, err := analyzer.Analyze(c.Request().Context(), req.URL)
		if err != nil {
			code, kind := statusForError(err)
			return errorResponse(c, code, kind, err.Error())
		}

		return c.JSON(http.StatusOK, models.AnalyzeResponse{
			Success:    true,
			URL:        req.URL,
			Candidates: candidates,
			RequestID:  requestID(c),
		})
	}
}
