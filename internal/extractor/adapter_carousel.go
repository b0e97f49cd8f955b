package extractor

import (
	"github.com/PuerkitoBio/goquery"

	"propscout/pkg/models"
)

// carouselAdapter handles portals whose gallery is a carousel of anchors
// wrapping full-size image links and whose attributes sit in definition
// lists.
type carouselAdapter struct {
	hostAdapter
}

func (a *carouselAdapter) extract(doc *goquery.Document, prop *models.ScrapedProperty, images *ImageSet) {
	doc.Find(`[class*="carousel"] a[href], [class*="image-gallery"] a[href]`).Each(func(_ int, anchor *goquery.Selection) {
		if href, ok := anchor.Attr("href"); ok && looksLikeImageURL(href) {
			images.Add(href)
		}
	})

	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		terms := dl.Find("dt")
		values := dl.Find("dd")
		if terms.Length() != values.Length() {
			return
		}
		terms.Each(func(i int, term *goquery.Selection) {
			applyLabeledValue(prop, term.Text(), values.Eq(i).Text())
		})
	})

	if county := countyFromText(doc.Find(`[class*="breadcrumb"]`).Text()); county != "" {
		setText(&prop.County, county)
	}
}
