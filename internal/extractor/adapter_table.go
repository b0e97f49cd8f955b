package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propscout/pkg/models"
)

// tableAttributeAdapter handles portals that publish listing attributes as
// two-cell table rows and location as a breadcrumb trail.
type tableAttributeAdapter struct {
	hostAdapter
}

func (a *tableAttributeAdapter) extract(doc *goquery.Document, prop *models.ScrapedProperty, images *ImageSet) {
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() != 2 {
			return
		}
		label := cells.First().Text()
		value := cells.Last().Text()
		applyLabeledValue(prop, label, value)
	})

	// Breadcrumbs run general to specific: county, city, neighbourhood
	var crumbs []string
	doc.Find(`[class*="breadcrumb"] a, nav.breadcrumbs a, ol.breadcrumb li`).Each(func(_ int, crumb *goquery.Selection) {
		if text := strings.TrimSpace(crumb.Text()); text != "" {
			crumbs = append(crumbs, text)
		}
	})
	for _, crumb := range crumbs {
		if county := countyFromText(crumb); county != "" {
			setText(&prop.County, county)
			break
		}
	}
	if len(crumbs) >= 2 {
		setText(&prop.City, crumbs[len(crumbs)-2])
		setText(&prop.Area, crumbs[len(crumbs)-1])
	}

	if prop.OwnerPhone == "" {
		if phone := findPhone(doc.Find(`[class*="contact"], [class*="phone"]`).Text()); phone != "" {
			prop.OwnerPhone = phone
		}
	}

	doc.Find(`[class*="gallery"] img, [class*="galerie"] img`).Each(func(_ int, img *goquery.Selection) {
		images.Add(nodeURLValue(img))
	})
}
