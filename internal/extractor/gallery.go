package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var backgroundImageRe = regexp.MustCompile(`background-image\s*:\s*url\(['"]?([^'")]+)['"]?\)`)

// galleryContainers matches the class names partner sites typically hang
// their photo galleries on.
const galleryContainers = `[class*="gallery"], [class*="galerie"], [class*="carousel"], [class*="slider"], [class*="photos"], [class*="thumbnail"]`

// applyImageFallback is the generic image layer. It is only engaged while the
// accumulated set is thin (fewer than five entries): gallery-class
// containers, anchors pointing at image files inside gallery-like containers
// and CSS background-image values.
func applyImageFallback(doc *goquery.Document, images *ImageSet) {
	if images.Len() >= 5 {
		return
	}

	doc.Find(galleryContainers).Each(func(_ int, container *goquery.Selection) {
		container.Find("img").Each(func(_ int, img *goquery.Selection) {
			images.Add(nodeURLValue(img))
		})

		container.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
			if href, ok := anchor.Attr("href"); ok && looksLikeImageURL(href) {
				images.Add(href)
			}
		})
	})

	doc.Find(`[style*="background-image"]`).Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		if match := backgroundImageRe.FindStringSubmatch(style); match != nil {
			if candidate := strings.TrimSpace(match[1]); looksLikeImageURL(candidate) {
				images.Add(candidate)
			}
		}
	})
}
