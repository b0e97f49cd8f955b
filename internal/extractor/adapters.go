package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propscout/pkg/models"
)

// siteAdapter isolates per-partner extraction heuristics. Adapters run after
// the generic layers for every registered adapter whose host fragment matches
// the listing URL, in registration order, and only fill fields the earlier
// layers left empty.
type siteAdapter interface {
	name() string
	matches(host string) bool
	extract(doc *goquery.Document, prop *models.ScrapedProperty, images *ImageSet)
}

// hostAdapter is the common matcher: a hostname substring.
type hostAdapter struct {
	adapterName  string
	hostFragment string
}

func (a hostAdapter) name() string { return a.adapterName }

func (a hostAdapter) matches(host string) bool {
	return strings.Contains(strings.ToLower(host), a.hostFragment)
}

// siteAdapters is the registry, tried in order.
var siteAdapters = []siteAdapter{
	&tableAttributeAdapter{hostAdapter{"table-attributes", "imobiliare.ro"}},
	&parameterListAdapter{hostAdapter{"parameter-list", "olx.ro"}},
	&carouselAdapter{hostAdapter{"carousel", "storia.ro"}},
	&jsArrayAdapter{hostAdapter{"js-array", "publi24.ro"}},
}

func applySiteAdapters(host string, doc *goquery.Document, prop *models.ScrapedProperty, images *ImageSet) []string {
	var applied []string
	for _, adapter := range siteAdapters {
		if adapter.matches(host) {
			adapter.extract(doc, prop, images)
			applied = append(applied, adapter.name())
		}
	}
	return applied
}

// Shared per-site heuristics

var diacriticReplacer = strings.NewReplacer(
	"ă", "a", "â", "a", "î", "i", "ș", "s", "ş", "s", "ț", "t", "ţ", "t",
	"Ă", "a", "Â", "a", "Î", "i", "Ș", "s", "Ş", "s", "Ț", "t", "Ţ", "t",
)

func normalizeLabel(label string) string {
	label = diacriticReplacer.Replace(strings.ToLower(label))
	label = strings.Trim(label, " \t\n:.-")
	label = strings.Join(strings.Fields(label), " ")
	return strings.TrimPrefix(label, "nr. ")
}

// labelFieldMap routes a normalized attribute label to an internal field.
var labelFieldMap = map[string]string{
	"suprafata utila":        "usable_area",
	"suprafata utila totala": "total_usable_area",
	"suprafata construita":   "built_area",
	"suprafata teren":        "land_area",
	"suprafata balcon":       "balcony_area",
	"camere":                 "rooms",
	"numar camere":           "rooms",
	"numar de camere":        "rooms",
	"dormitoare":             "bedrooms",
	"bai":                    "bathrooms",
	"numar bai":              "bathrooms",
	"etaj":                   "floor",
	"etaje":                  "total_floors",
	"numar etaje":            "total_floors",
	"an constructie":         "year_built",
	"an finalizare":          "year_built",
	"compartimentare":        "partitioning",
	"confort":                "comfort",
	"tip imobil":             "building_type",
	"tip constructie":        "building_type",
	"stare interior":         "interior_condition",
	"mobilat":                "furnishing",
	"mobilare":               "furnishing",
	"pret":                   "price",
	"localitate":             "city",
	"oras":                   "city",
	"judet":                  "county",
	"zona":                   "area",
	"cartier":                "area",
	"adresa":                 "address",
	"surface":                "usable_area",
	"rooms":                  "rooms",
	"bedrooms":               "bedrooms",
	"bathrooms":              "bathrooms",
	"floor":                  "floor",
	"year built":             "year_built",
	"price":                  "price",
}

// applyLabeledValue routes one label/value attribute pair into the record.
func applyLabeledValue(prop *models.ScrapedProperty, label, value string) {
	if field, ok := labelFieldMap[normalizeLabel(label)]; ok {
		applyField(prop, field, value)
	}
}

// romanianPhoneRe matches Romanian mobile and landline formats as they
// appear on listing pages.
var romanianPhoneRe = regexp.MustCompile(`(?:\+?40|0)\s?[237]\d{2}[\s.\-]?\d{3}[\s.\-]?\d{3}`)

func findPhone(text string) string {
	return strings.TrimSpace(romanianPhoneRe.FindString(text))
}

// romanianCounties backs breadcrumb and title-token county lookups.
var romanianCounties = []string{
	"Alba", "Arad", "Arges", "Bacau", "Bihor", "Bistrita-Nasaud", "Botosani",
	"Braila", "Brasov", "Bucuresti", "Buzau", "Calarasi", "Caras-Severin",
	"Cluj", "Constanta", "Covasna", "Dambovita", "Dolj", "Galati", "Giurgiu",
	"Gorj", "Harghita", "Hunedoara", "Ialomita", "Iasi", "Ilfov", "Maramures",
	"Mehedinti", "Mures", "Neamt", "Olt", "Prahova", "Salaj", "Satu Mare",
	"Sibiu", "Suceava", "Teleorman", "Timis", "Tulcea", "Valcea", "Vaslui",
	"Vrancea",
}

func countyFromText(text string) string {
	normalized := diacriticReplacer.Replace(strings.ToLower(text))
	for _, county := range romanianCounties {
		if strings.Contains(normalized, strings.ToLower(county)) {
			return county
		}
	}
	return ""
}
