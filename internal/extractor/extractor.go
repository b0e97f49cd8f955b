package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"propscout/internal/config"
	"propscout/internal/logging"
	"propscout/internal/metrics"
	"propscout/pkg/models"
	"propscout/pkg/utils"
)

// Geocoder is the external geocoding collaborator. Failures are silent: the
// engine proceeds without coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

// ExtractInput carries everything one extraction call needs. RawHTML skips
// the fetch when the caller already holds the markup.
type ExtractInput struct {
	URL       string
	Selectors map[string]string
	Cookies   string
	RawHTML   string
	Proxy     *models.ProxyConfig
}

// Engine is the layered extraction engine. Within one call the layers run in
// fixed precedence order: custom selectors, structured data, generic image
// fallback, site adapters, cross-field inference.
type Engine struct {
	config   *config.Config
	fetcher  *Fetcher
	geocoder Geocoder
	logger   logging.Logger
}

// NewEngine creates an extraction engine. geocoder may be nil.
func NewEngine(cfg *config.Config, geocoder Geocoder) *Engine {
	return &Engine{
		config:   cfg,
		fetcher:  NewFetcher(cfg),
		geocoder: geocoder,
		logger:   logging.GetGlobalLogger().WithField("component", "extractor"),
	}
}

// Extract turns one listing page into a ScrapedProperty. The only conditions
// that abort the call are invalid input and fetch/transport failure; every
// other missing datum is simply absent from the result.
func (e *Engine) Extract(ctx context.Context, input ExtractInput) (*models.ScrapedProperty, error) {
	started := time.Now()

	if err := ValidateURL(input.URL); err != nil {
		metrics.Extractions.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	html := input.RawHTML
	if html == "" {
		fetched, err := e.fetcher.Fetch(ctx, input.URL, input.Cookies, input.Proxy)
		if err != nil {
			metrics.Extractions.WithLabelValues("fetch_failed").Inc()
			return nil, err
		}
		html = fetched
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		metrics.Extractions.WithLabelValues("parse_failed").Inc()
		return nil, utils.NewTransportError("failed to parse document: " + err.Error())
	}

	stripNonContent(doc)

	prop := &models.ScrapedProperty{SourceURL: input.URL}
	images := NewImageSet(input.URL)

	if len(input.Selectors) > 0 {
		applyCustomSelectors(doc, input.Selectors, prop, images)
	}
	applyStructuredData(doc, prop, images)
	applyImageFallback(doc, images)

	host := utils.ExtractDomain(input.URL)
	applied := applySiteAdapters(host, doc, prop, images)

	applyInference(prop, input.URL)

	prop.Images = images.Finalize()
	appendProvenance(prop, input.URL)

	e.geocode(ctx, prop)

	metrics.Extractions.WithLabelValues("ok").Inc()
	metrics.ExtractionDuration.Observe(time.Since(started).Seconds())

	e.logger.Debug("Extraction completed", map[string]interface{}{
		"url":      input.URL,
		"adapters": strings.Join(applied, ","),
		"images":   len(prop.Images),
		"duration": time.Since(started).String(),
	})

	return prop, nil
}

// stripNonContent drops nodes that only add noise to text extraction.
// Structured-data scripts stay, as do inline scripts carrying gallery image
// arrays, which the JS-array adapter still needs.
func stripNonContent(doc *goquery.Document) {
	doc.Find("style, nav, footer, header, iframe, svg, noscript").Remove()
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		if scriptType, _ := script.Attr("type"); scriptType == "application/ld+json" {
			return
		}
		if jsImageArrayRe.MatchString(script.Text()) {
			return
		}
		script.Remove()
	})
}

// appendProvenance records where the record came from in the private notes.
func appendProvenance(prop *models.ScrapedProperty, sourceURL string) {
	note := "Imported from " + sourceURL
	if prop.PrivateNotes == "" {
		prop.PrivateNotes = note
		return
	}
	prop.PrivateNotes += "\n" + note
}

// geocode issues at most one request for the joined address-like fields and
// never fails the extraction.
func (e *Engine) geocode(ctx context.Context, prop *models.ScrapedProperty) {
	if e.geocoder == nil || prop.Latitude != nil {
		return
	}

	var parts []string
	for _, part := range []string{prop.Address, prop.Area, prop.City, prop.County} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return
	}

	lat, lng, err := e.geocoder.Geocode(ctx, strings.Join(parts, ", "))
	if err != nil {
		e.logger.Debug("Geocoding failed", map[string]interface{}{"error": err.Error()})
		return
	}
	prop.Latitude = &lat
	prop.Longitude = &lng
}
