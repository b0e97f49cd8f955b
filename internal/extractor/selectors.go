package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propscout/pkg/models"
)

// applyCustomSelectors is the highest-precedence layer: operator-configured
// selectors from the partner's ScraperConfig. Fields are visited in the
// canonical order so extraction is deterministic.
func applyCustomSelectors(doc *goquery.Document, selectors map[string]string, prop *models.ScrapedProperty, images *ImageSet) {
	for _, field := range models.SelectorFields {
		selector := strings.TrimSpace(selectors[field])
		if selector == "" {
			continue
		}

		switch field {
		case "images":
			doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
				images.Add(nodeURLValue(sel))
			})
		case "features":
			doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
				if text := strings.TrimSpace(sel.Text()); text != "" {
					prop.Features = append(prop.Features, text)
				}
			})
		case "video_url", "virtual_tour_url":
			node := doc.Find(selector).First()
			if node.Length() == 0 {
				break
			}
			applyField(prop, field, nodeURLValue(node))
		default:
			node := doc.Find(selector).First()
			if node.Length() == 0 {
				break
			}
			value := strings.TrimSpace(node.Text())
			if value == "" {
				value = nodeURLValue(node)
			}
			applyField(prop, field, value)
		}
	}
}

// nodeURLValue pulls a URL-ish value from a node: src, data-src, href, then
// text.
func nodeURLValue(sel *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "href", "content"} {
		if value, ok := sel.Attr(attr); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return strings.TrimSpace(sel.Text())
}
