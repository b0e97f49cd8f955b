// Package geocode resolves free-form addresses to coordinates through an
// external Nominatim-compatible service. Callers treat every failure as a
// soft miss, so the client never panics and never retries aggressively.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"propscout/internal/config"
	"propscout/internal/logging"
)

// Client queries the configured geocoding service.
type Client struct {
	config *config.Config
	client *http.Client
	logger logging.Logger
}

// NewClient creates a geocoding client, or nil when geocoding is disabled.
// A nil *Client is a valid Geocoder for the extraction engine because the
// engine checks for nil before calling.
func NewClient(cfg *config.Config) *Client {
	if !cfg.Geocode.Enabled || cfg.Geocode.BaseURL == "" {
		return nil
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Geocode.Timeout},
		logger: logging.GetGlobalLogger().WithField("component", "geocode"),
	}
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves the address to WGS84 coordinates. One request per call,
// no retries.
func (c *Client) Geocode(ctx context.Context, address string) (float64, float64, error) {
	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	if c.config.Geocode.APIKey != "" {
		query.Set("key", c.config.Geocode.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Geocode.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("User-Agent", c.config.Scraper.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode service returned status %d", resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no results for address")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, err
	}

	c.logger.Debug("Address resolved", map[string]interface{}{
		"address": address,
		"lat":     lat,
		"lng":     lng,
	})

	return lat, lng, nil
}
