// Package discovery implements the attribute discovery assistant: it
// reverse-engineers a sample listing page's structure and proposes ranked
// field-mapping candidates for the operator. It never writes configuration.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"propscout/internal/config"
	"propscout/internal/extractor"
	"propscout/internal/logging"
	"propscout/pkg/models"
)

const (
	maxLabelLen = 50
	maxValueLen = 200
)

// Analyzer scans a page for generic label/value patterns.
type Analyzer struct {
	config  *config.Config
	fetcher *extractor.Fetcher
	logger  logging.Logger
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(cfg *config.Config) *Analyzer {
	return &Analyzer{
		config:  cfg,
		fetcher: extractor.NewFetcher(cfg),
		logger:  logging.GetGlobalLogger().WithField("component", "discovery"),
	}
}

// Analyze fetches the page (same header strategy as the extraction engine,
// no proxy) and returns ranked attribute candidates, deduplicated by
// generated selector, first occurrence wins.
func (a *Analyzer) Analyze(ctx context.Context, url string) ([]models.AttributeCandidate, error) {
	html, err := a.fetcher.Fetch(ctx, url, "", nil)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeHTML(url, html)
}

// AnalyzeHTML runs the scan over markup the caller already holds.
func (a *Analyzer) AnalyzeHTML(url, html string) ([]models.AttributeCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	c := &collector{seen: make(map[string]struct{})}

	a.scanMetaTags(doc, c)
	a.scanHeadings(doc, c)
	a.scanDefinitionLists(doc, c)
	a.scanTables(doc, c)
	a.scanLabelValuePairs(doc, c)
	a.scanPriceClasses(doc, c)

	a.logger.Debug("Analysis completed", map[string]interface{}{
		"url":        url,
		"candidates": len(c.candidates),
	})

	return c.candidates, nil
}

// collector validates and deduplicates candidates as they are found.
type collector struct {
	seen       map[string]struct{}
	candidates []models.AttributeCandidate
}

func (c *collector) add(label, value, selector string, confidence float64, source string) {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	if label == "" || value == "" || len(label) > maxLabelLen || len(value) > maxValueLen {
		return
	}
	if _, dup := c.seen[selector]; dup {
		return
	}
	c.seen[selector] = struct{}{}
	c.candidates = append(c.candidates, models.AttributeCandidate{
		ID:         uuid.New().String(),
		Label:      label,
		Value:      value,
		Selector:   selector,
		Confidence: confidence,
		Source:     source,
	})
}

func (a *Analyzer) scanMetaTags(doc *goquery.Document, c *collector) {
	metaProperties := []struct {
		property string
		label    string
	}{
		{"og:title", "Title"},
		{"og:price:amount", "Price"},
	}
	for _, meta := range metaProperties {
		selector := fmt.Sprintf(`meta[property=%q]`, meta.property)
		if content, ok := doc.Find(selector).Attr("content"); ok {
			c.add(meta.label, content, selector, 0.9, models.SourceMeta)
		}
	}
}

func (a *Analyzer) scanHeadings(doc *goquery.Document, c *collector) {
	heading := doc.Find("h1").First()
	if heading.Length() > 0 {
		c.add("Title", heading.Text(), "h1", 0.9, models.SourceIDClass)
	}
}

func (a *Analyzer) scanDefinitionLists(doc *goquery.Document, c *collector) {
	doc.Find("dl dt").Each(func(_ int, term *goquery.Selection) {
		value := term.NextFiltered("dd")
		if value.Length() == 0 {
			return
		}
		label := strings.TrimSpace(term.Text())
		selector := fmt.Sprintf(`dt:contains(%q) + dd`, label)
		c.add(label, value.Text(), selector, 0.8, models.SourceDL)
	})
}

func (a *Analyzer) scanTables(doc *goquery.Document, c *collector) {
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		label := strings.TrimSpace(cells.First().Text())
		selector := fmt.Sprintf(`td:contains(%q) + td`, label)
		c.add(label, cells.Last().Text(), selector, 0.8, models.SourceTable)
	})
}

func (a *Analyzer) scanLabelValuePairs(doc *goquery.Document, c *collector) {
	doc.Find(`.label, .key, .attribute-label, strong, b`).Each(func(_ int, labelNode *goquery.Selection) {
		value := labelNode.Next()
		if value.Length() == 0 {
			return
		}
		label := strings.TrimSpace(labelNode.Text())

		// Prefer a class-based selector on the value element, fall back to
		// an adjacent-sibling selector on the label
		var selector string
		if class, ok := value.Attr("class"); ok && strings.TrimSpace(class) != "" {
			selector = "." + strings.Fields(class)[0]
		} else {
			tag := goquery.NodeName(labelNode)
			selector = fmt.Sprintf(`%s:contains(%q) + %s`, tag, label, goquery.NodeName(value))
		}

		c.add(label, value.Text(), selector, 0.8, models.SourceLabelValue)
	})
}

func (a *Analyzer) scanPriceClasses(doc *goquery.Document, c *collector) {
	doc.Find(`[class*="price"]`).Each(func(_ int, node *goquery.Selection) {
		text := strings.TrimSpace(node.Text())
		if text == "" || len(text) > 30 || extractor.ParseNumber(text) == nil {
			return
		}
		class, _ := node.Attr("class")
		fields := strings.Fields(class)
		if len(fields) == 0 {
			return
		}
		c.add("Price", text, "."+fields[0], 0.6, models.SourceIDClass)
	})
}
