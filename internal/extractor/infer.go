package extractor

import (
	"strings"

	"propscout/pkg/models"
)

var (
	rentKeywords = []string{"de inchiriat", "inchiriere", "închiriat", "chirie", "for rent", "to rent", "rental", "/inchiriat", "/rent"}
	saleKeywords = []string{"de vanzare", "vanzare", "vânzare", "for sale", "/vanzare", "/sale"}

	typeKeywords = []struct {
		propertyType string
		keywords     []string
	}{
		{"Apartment", []string{"apartament", "apartment", "garsoniera", "garsonieră", "studio", "flat", "penthouse"}},
		{"House", []string{"casa", "casă", "vila", "vilă", "villa", "house", "duplex"}},
		{"Land", []string{"teren", "land", "plot", "parcela"}},
		{"Commercial", []string{"spatiu comercial", "spațiu comercial", "commercial", "birou", "office", "hala", "depozit"}},
	}
)

// applyInference is the last layer: cross-field inference over whatever the
// earlier layers produced. Listing type and property type come from keyword
// search across title, description and URL; currency defaults to EUR once a
// title exists.
func applyInference(prop *models.ScrapedProperty, sourceURL string) {
	haystack := strings.ToLower(prop.Title + " " + prop.Description + " " + sourceURL)

	if prop.ListingType == "" && prop.Title != "" {
		if containsAny(haystack, rentKeywords) {
			prop.ListingType = "for_rent"
		} else if containsAny(haystack, saleKeywords) {
			prop.ListingType = "for_sale"
		}
	}

	if prop.Type == "" {
		for _, candidate := range typeKeywords {
			if containsAny(haystack, candidate.keywords) {
				prop.Type = candidate.propertyType
				break
			}
		}
	}

	if prop.Currency == "" && prop.Title != "" {
		prop.Currency = "EUR"
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
