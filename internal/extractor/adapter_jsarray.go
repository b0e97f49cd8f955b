package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propscout/pkg/models"
)

// jsImageArrayRe pulls quoted image URLs out of inline script gallery arrays
// like `var images = ["...", "..."];`.
var jsImageArrayRe = regexp.MustCompile(`["']((?:https?:)?//[^"']+\.(?:jpe?g|png|webp)[^"']*)["']`)

// jsArrayAdapter handles portals that embed the gallery as a JavaScript
// array inside an inline script and publish attributes as label/value span
// pairs.
type jsArrayAdapter struct {
	hostAdapter
}

func (a *jsArrayAdapter) extract(doc *goquery.Document, prop *models.ScrapedProperty, images *ImageSet) {
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		text := script.Text()
		if !strings.Contains(text, "images") && !strings.Contains(text, "slides") {
			return
		}
		for _, match := range jsImageArrayRe.FindAllStringSubmatch(text, -1) {
			images.Add(match[1])
		}
	})

	doc.Find(`[class*="attribute"], [class*="detail-item"]`).Each(func(_ int, item *goquery.Selection) {
		label := item.Find(`[class*="label"], span`).First().Text()
		value := item.Find(`[class*="value"], span`).Last().Text()
		if label != "" && value != "" && label != value {
			applyLabeledValue(prop, label, value)
		}
	})

	if prop.OwnerPhone == "" {
		prop.OwnerPhone = findPhone(doc.Find(`[class*="contact"]`).Text())
	}
}
