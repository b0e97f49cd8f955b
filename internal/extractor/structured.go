package extractor

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propscout/pkg/models"
	"propscout/pkg/utils"
)

// controlCharRe matches C0 control characters that are illegal inside JSON
// and routinely leak into hand-built JSON-LD blocks.
var controlCharRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)

// listingTypes are the JSON-LD @type values treated as listing-like.
var listingTypes = []string{
	"product", "offer", "realestatelisting", "apartment", "house",
	"singlefamilyresidence", "residence", "accommodation", "place",
}

// applyStructuredData is the meta/Open Graph + JSON-LD layer. Every
// og:image/twitter:image URL is accumulated; JSON-LD blocks are parsed with
// per-block tolerance, a malformed block is skipped, never aborts the
// extraction.
func applyStructuredData(doc *goquery.Document, prop *models.ScrapedProperty, images *ImageSet) {
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		setText(&prop.Title, content)
	}
	if content, ok := doc.Find(`meta[property="og:description"], meta[name="description"]`).Attr("content"); ok {
		setText(&prop.Description, content)
	}

	doc.Find(`meta[property="og:image"], meta[property="og:image:secure_url"], meta[name="twitter:image"]`).
		Each(func(_ int, sel *goquery.Selection) {
			if content, ok := sel.Attr("content"); ok {
				images.Add(content)
			}
		})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := controlCharRe.ReplaceAllString(sel.Text(), "")

		var root interface{}
		if err := json.Unmarshal([]byte(raw), &root); err != nil {
			// Malformed block, skip it
			return
		}

		if listing := findListingObject(root); listing != nil {
			applyListingObject(listing, prop, images)
		}
	})
}

// findListingObject walks arbitrary JSON-LD (objects, arrays, @graph) and
// returns the first object with a listing-like @type.
func findListingObject(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if isListingType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			if m := findListingObject(graph); m != nil {
				return m
			}
		}
	case []interface{}:
		for _, item := range t {
			if m := findListingObject(item); m != nil {
				return m
			}
		}
	}
	return nil
}

func isListingType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		if utils.Contains(listingTypes, strings.ToLower(t)) {
			return true
		}
	case []interface{}:
		for _, item := range t {
			if isListingType(item) {
				return true
			}
		}
	}
	return false
}

// applyListingObject maps a listing-like JSON-LD object onto fields not
// already claimed by the custom-selector layer.
func applyListingObject(obj map[string]interface{}, prop *models.ScrapedProperty, images *ImageSet) {
	setText(&prop.Title, jsonString(obj["name"]))
	setText(&prop.Description, jsonString(obj["description"]))

	for _, img := range jsonStrings(obj["image"]) {
		images.Add(img)
	}

	offers := obj["offers"]
	if list, ok := offers.([]interface{}); ok && len(list) > 0 {
		offers = list[0]
	}
	if offer, ok := offers.(map[string]interface{}); ok {
		if prop.Price == nil {
			switch price := offer["price"].(type) {
			case float64:
				prop.Price = &price
			case string:
				setFloat(&prop.Price, ParseNumber(price))
			}
		}
		setText(&prop.Currency, jsonString(offer["priceCurrency"]))
	}
}

func jsonString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func jsonStrings(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
