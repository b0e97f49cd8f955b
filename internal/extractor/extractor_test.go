package extractor

import (
	"context"
	"strings"
	"testing"

	"propscout/internal/config"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return NewEngine(cfg, nil)
}

func TestExtractCustomSelectorsWin(t *testing.T) {
	engine := testEngine(t)

	html := `<html><head>
		<meta property="og:title" content="Meta Title"/>
	</head><body>
		<h1>Nice Flat</h1>
		<span class="price">87.990 EUR</span>
	</body></html>`

	prop, err := engine.Extract(context.Background(), ExtractInput{
		URL: "https://example.com/listing/1",
		Selectors: map[string]string{
			"title": "h1",
			"price": ".price",
		},
		RawHTML: html,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// The og:title must not overwrite the custom-selector value
	if prop.Title != "Nice Flat" {
		t.Errorf("Title = %q, want %q", prop.Title, "Nice Flat")
	}
	if prop.Price == nil || *prop.Price != 87990 {
		t.Errorf("Price = %v, want 87990", prop.Price)
	}
}

func TestExtractFallsBackToStructuredData(t *testing.T) {
	engine := testEngine(t)

	html := `<html><head>
		<meta property="og:title" content="Garsoniera centrala"/>
		<meta property="og:image" content="https://example.com/photo.jpg"/>
		<script type="application/ld+json">
		{"@type": "Offer", "name": "Garsoniera centrala",
		 "offers": {"price": "45000", "priceCurrency": "EUR"}}
		</script>
	</head><body></body></html>`

	prop, err := engine.Extract(context.Background(), ExtractInput{
		URL:     "https://example.com/listing/2",
		RawHTML: html,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if prop.Title != "Garsoniera centrala" {
		t.Errorf("Title = %q, want og:title fallback", prop.Title)
	}
	if prop.Price == nil || *prop.Price != 45000 {
		t.Errorf("Price = %v, want 45000 from JSON-LD", prop.Price)
	}
	if prop.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", prop.Currency)
	}
	if len(prop.Images) != 1 || prop.Images[0] != "https://example.com/photo.jpg" {
		t.Errorf("Images = %v, want the og:image", prop.Images)
	}
}

func TestExtractToleratesMalformedJSONLD(t *testing.T) {
	engine := testEngine(t)

	html := `<html><head>
		<script type="application/ld+json">{not valid json</script>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Casa cu curte"}
		</script>
	</head><body></body></html>`

	prop, err := engine.Extract(context.Background(), ExtractInput{
		URL:     "https://example.com/listing/3",
		RawHTML: html,
	})
	if err != nil {
		t.Fatalf("Extract failed on malformed JSON-LD: %v", err)
	}
	if prop.Title != "Casa cu curte" {
		t.Errorf("Title = %q, the valid block must still apply", prop.Title)
	}
}

func TestExtractRejectsBadURLs(t *testing.T) {
	engine := testEngine(t)

	for _, raw := range []string{"", "ftp://example.com/x", "not a url", "https://"} {
		if _, err := engine.Extract(context.Background(), ExtractInput{URL: raw, RawHTML: "<html></html>"}); err == nil {
			t.Errorf("Extract(%q) succeeded, want invalid input error", raw)
		}
	}
}

func TestExtractAppendsProvenance(t *testing.T) {
	engine := testEngine(t)

	prop, err := engine.Extract(context.Background(), ExtractInput{
		URL:     "https://example.com/listing/4",
		RawHTML: "<html><body><h1>X</h1></body></html>",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(prop.PrivateNotes, "Imported from https://example.com/listing/4") {
		t.Errorf("PrivateNotes = %q, want provenance note", prop.PrivateNotes)
	}
}

func TestExtractInfersListingTypeAndCurrency(t *testing.T) {
	engine := testEngine(t)

	html := `<html><body><h1>Apartament 2 camere de inchiriat</h1></body></html>`
	prop, err := engine.Extract(context.Background(), ExtractInput{
		URL:       "https://example.com/listing/5",
		Selectors: map[string]string{"title": "h1"},
		RawHTML:   html,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if prop.ListingType != "for_rent" {
		t.Errorf("ListingType = %q, want for_rent", prop.ListingType)
	}
	if prop.Type != "Apartment" {
		t.Errorf("Type = %q, want Apartment", prop.Type)
	}
	if prop.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR default", prop.Currency)
	}
}

func TestExtractImageFallbackOnlyBelowThreshold(t *testing.T) {
	engine := testEngine(t)

	// Five custom-selector images suppress the generic fallback scan, so
	// the slider container stays untouched
	html := `<html><body>
		<div class="main-photos">
			<img src="/g/1.jpg"><img src="/g/2.jpg"><img src="/g/3.jpg">
			<img src="/g/4.jpg"><img src="/g/5.jpg">
		</div>
		<div class="slider"><img src="/stray/extra.jpg"></div>
	</body></html>`

	prop, err := engine.Extract(context.Background(), ExtractInput{
		URL:       "https://example.com/listing/6",
		Selectors: map[string]string{"images": ".main-photos img"},
		RawHTML:   html,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(prop.Images) != 5 {
		t.Errorf("got %d images, want exactly the 5 gallery images: %v", len(prop.Images), prop.Images)
	}
	for _, img := range prop.Images {
		if strings.Contains(img, "stray") {
			t.Errorf("fallback image %q leaked in despite threshold", img)
		}
	}
}
