package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"propscout/pkg/models"
	"propscout/pkg/utils"
)

// RequestValidation middleware validates incoming requests
func RequestValidation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Add request ID to context
			requestID := utils.GenerateRequestID()
			c.Set("request_id", requestID)
			c.Response().Header().Set("X-Request-ID", requestID)

			// Content length validation for POST requests. Raw HTML payloads
			// for the extract endpoint can be large, hence the 5MB cap.
			if c.Request().Method == http.MethodPost {
				if c.Request().ContentLength > 5*1024*1024 {
					return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Error:     "request_too_large",
						Message:   "Request body too large",
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}
			}

			return next(c)
		}
	}
}
