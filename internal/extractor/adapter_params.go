package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propscout/pkg/models"
)

// parameterListAdapter handles portals that publish attributes as
// "Label: value" paragraph/list items and encode location in the title.
type parameterListAdapter struct {
	hostAdapter
}

func (a *parameterListAdapter) extract(doc *goquery.Document, prop *models.ScrapedProperty, images *ImageSet) {
	doc.Find(`ul li, [class*="parameter"] p, [class*="details"] p`).Each(func(_ int, item *goquery.Selection) {
		text := strings.TrimSpace(item.Text())
		label, value, found := strings.Cut(text, ":")
		if !found || len(value) > 120 {
			return
		}
		applyLabeledValue(prop, label, value)
	})

	// Titles read like "Apartament 3 camere, Manastur, Cluj-Napoca"; the
	// trailing tokens usually name the neighbourhood and city.
	if prop.City == "" || prop.Area == "" {
		tokens := strings.Split(prop.Title, ",")
		if len(tokens) >= 3 {
			setText(&prop.Area, tokens[len(tokens)-2])
			setText(&prop.City, tokens[len(tokens)-1])
		}
	}
	if county := countyFromText(prop.Title); county != "" {
		setText(&prop.County, county)
	}

	if prop.OwnerPhone == "" {
		prop.OwnerPhone = findPhone(doc.Text())
	}

	doc.Find(`[class*="swiper"] img, [data-testid*="image"] img`).Each(func(_ int, img *goquery.Selection) {
		images.Add(nodeURLValue(img))
	})
}
