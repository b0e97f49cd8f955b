// Package callback delivers finished property records to the downstream
// listing service.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"propscout/internal/config"
	"propscout/internal/logging"
	"propscout/pkg/models"
)

// Sink receives scraped property records. The worker pool only depends on
// this interface, which keeps delivery swappable in tests.
type Sink interface {
	DeliverProperty(ctx context.Context, prop *models.ScrapedProperty) error
}

// Client posts property records to the configured HTTP endpoint with a
// small bounded retry loop.
type Client struct {
	config *config.Config
	client *http.Client
	logger logging.Logger
}

// NewClient creates a delivery client, or nil when no callback endpoint is
// configured. Callers treat a nil *Client as "log only".
func NewClient(cfg *config.Config) *Client {
	if !cfg.Callback.Enabled || cfg.Callback.URL == "" {
		return nil
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Callback.Timeout},
		logger: logging.GetGlobalLogger().WithField("component", "callback"),
	}
}

// DeliverProperty posts one record, retrying transient failures with a
// linear backoff.
func (c *Client) DeliverProperty(ctx context.Context, prop *models.ScrapedProperty) error {
	body, err := json.Marshal(prop)
	if err != nil {
		return fmt.Errorf("failed to encode property: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.Callback.MaxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Callback.URL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.logger.Debug("Property delivered", map[string]interface{}{
				"source_url": prop.SourceURL,
				"attempt":    attempt,
			})
			return nil
		}

		lastErr = fmt.Errorf("callback endpoint returned status %d", resp.StatusCode)
		// Client errors other than 429 will not heal on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			break
		}
	}

	c.logger.Error("Property delivery failed", map[string]interface{}{
		"source_url": prop.SourceURL,
		"error":      lastErr.Error(),
	})
	return lastErr
}
