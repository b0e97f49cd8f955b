package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"propscout/internal/config"
	"propscout/internal/metrics"
	"propscout/pkg/models"
	"propscout/pkg/utils"
)

// Fetcher is the fetch layer: plain GET with a realistic User-Agent, optional
// cookie injection and an optional authenticated upstream proxy.
type Fetcher struct {
	config *config.Config
}

// NewFetcher creates a new fetcher
func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{config: cfg}
}

// ValidateURL checks that rawURL is well-formed and uses an HTTP(S) scheme.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return utils.NewInvalidInputError(fmt.Sprintf("malformed url: %v", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return utils.NewInvalidInputError(fmt.Sprintf("unsupported scheme %q", parsed.Scheme))
	}
	if parsed.Host == "" {
		return utils.NewInvalidInputError("url has no host")
	}
	return nil
}

// Fetch performs the GET and returns the raw markup. Non-2xx responses fail
// with a FetchFailed error carrying the status; network errors fail with a
// TransportError. Both are terminal for the call, retries belong to the
// orchestrator.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, cookies string, proxy *models.ProxyConfig) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	client := &http.Client{Timeout: f.config.Scraper.RequestTimeout}
	if proxyURL := proxy.URL(); proxyURL != nil {
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", utils.NewInvalidInputError(err.Error())
	}

	req.Header.Set("User-Agent", f.config.Scraper.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ro;q=0.8")
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := client.Do(req)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("transport_error").Inc()
		return "", utils.NewTransportError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.PagesFetched.WithLabelValues("bad_status").Inc()
		return "", utils.NewFetchFailedError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("transport_error").Inc()
		return "", utils.NewTransportError(err.Error())
	}

	metrics.PagesFetched.WithLabelValues("ok").Inc()
	return string(body), nil
}
