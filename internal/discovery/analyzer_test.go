package discovery

import (
	"strings"
	"testing"

	"propscout/internal/config"
	"propscout/pkg/models"
)

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return NewAnalyzer(cfg)
}

func findBySelector(candidates []models.AttributeCandidate, selector string) *models.AttributeCandidate {
	for i := range candidates {
		if candidates[i].Selector == selector {
			return &candidates[i]
		}
	}
	return nil
}

func TestAnalyzeHeadingAndMeta(t *testing.T) {
	analyzer := testAnalyzer(t)

	html := `<html><head>
		<meta property="og:title" content="Apartament 3 camere"/>
		<meta property="og:price:amount" content="87990"/>
	</head><body>
		<h1>Apartament 3 camere Manastur</h1>
	</body></html>`

	candidates, err := analyzer.AnalyzeHTML("https://example.com/x", html)
	if err != nil {
		t.Fatalf("AnalyzeHTML: %v", err)
	}

	heading := findBySelector(candidates, "h1")
	if heading == nil {
		t.Fatal("no candidate for the first heading")
	}
	if heading.Confidence != 0.9 || heading.Label != "Title" {
		t.Errorf("heading candidate = %+v, want Title at 0.9", heading)
	}

	meta := findBySelector(candidates, `meta[property="og:price:amount"]`)
	if meta == nil {
		t.Fatal("no candidate for og:price:amount")
	}
	if meta.Value != "87990" || meta.Source != models.SourceMeta {
		t.Errorf("meta candidate = %+v", meta)
	}
}

func TestAnalyzeDefinitionListsAndTables(t *testing.T) {
	analyzer := testAnalyzer(t)

	html := `<html><body>
		<dl><dt>Suprafata</dt><dd>53 m2</dd></dl>
		<table><tr><td>Camere</td><td>3</td></tr>
		<tr><td>one</td><td>two</td><td>three</td></tr></table>
	</body></html>`

	candidates, err := analyzer.AnalyzeHTML("https://example.com/x", html)
	if err != nil {
		t.Fatalf("AnalyzeHTML: %v", err)
	}

	dd := findBySelector(candidates, `dt:contains("Suprafata") + dd`)
	if dd == nil {
		t.Fatal("no dt/dd candidate")
	}
	if dd.Value != "53 m2" || dd.Confidence != 0.8 || dd.Source != models.SourceDL {
		t.Errorf("dt/dd candidate = %+v", dd)
	}

	td := findBySelector(candidates, `td:contains("Camere") + td`)
	if td == nil {
		t.Fatal("no two-cell table candidate")
	}
	if td.Value != "3" || td.Source != models.SourceTable {
		t.Errorf("table candidate = %+v", td)
	}

	// Three-cell rows are not label/value pairs
	for _, cand := range candidates {
		if strings.Contains(cand.Selector, "one") {
			t.Errorf("three-cell row produced a candidate: %+v", cand)
		}
	}
}

func TestAnalyzeLabelValuePrefersClassSelector(t *testing.T) {
	analyzer := testAnalyzer(t)

	html := `<html><body>
		<div><span class="label">Etaj</span><span class="value floor">4</span></div>
		<p><strong>Confort</strong><em>lux</em></p>
	</body></html>`

	candidates, err := analyzer.AnalyzeHTML("https://example.com/x", html)
	if err != nil {
		t.Fatalf("AnalyzeHTML: %v", err)
	}

	classed := findBySelector(candidates, ".value")
	if classed == nil {
		t.Fatal("no class-based candidate for the classed value element")
	}
	if classed.Label != "Etaj" || classed.Value != "4" {
		t.Errorf("classed candidate = %+v", classed)
	}

	sibling := findBySelector(candidates, `strong:contains("Confort") + em`)
	if sibling == nil {
		t.Fatal("no adjacent-sibling candidate for the unclassed value element")
	}
	if sibling.Value != "lux" || sibling.Source != models.SourceLabelValue {
		t.Errorf("sibling candidate = %+v", sibling)
	}
}

func TestAnalyzeDeduplicatesBySelectorFirstWins(t *testing.T) {
	analyzer := testAnalyzer(t)

	html := `<html><body>
		<table>
		<tr><td>Camere</td><td>3</td></tr>
		<tr><td>Camere</td><td>5</td></tr>
		</table>
	</body></html>`

	candidates, err := analyzer.AnalyzeHTML("https://example.com/x", html)
	if err != nil {
		t.Fatalf("AnalyzeHTML: %v", err)
	}

	var matches []models.AttributeCandidate
	for _, cand := range candidates {
		if cand.Selector == `td:contains("Camere") + td` {
			matches = append(matches, cand)
		}
	}
	if len(matches) != 1 {
		t.Fatalf("got %d candidates for the same selector, want 1", len(matches))
	}
	if matches[0].Value != "3" {
		t.Errorf("kept value %q, first occurrence must win", matches[0].Value)
	}
}

func TestAnalyzeValidatesLengths(t *testing.T) {
	analyzer := testAnalyzer(t)

	longLabel := strings.Repeat("x", 60)
	longValue := strings.Repeat("y", 250)
	html := `<html><body>
		<dl>
		<dt>` + longLabel + `</dt><dd>ok</dd>
		<dt>Descriere</dt><dd>` + longValue + `</dd>
		<dt>Zona</dt><dd>Manastur</dd>
		</dl>
	</body></html>`

	candidates, err := analyzer.AnalyzeHTML("https://example.com/x", html)
	if err != nil {
		t.Fatalf("AnalyzeHTML: %v", err)
	}

	for _, cand := range candidates {
		if len(cand.Label) > 50 {
			t.Errorf("candidate with oversized label leaked: %q", cand.Label)
		}
		if len(cand.Value) > 200 {
			t.Errorf("candidate with oversized value leaked")
		}
	}
	if found := findBySelector(candidates, `dt:contains("Zona") + dd`); found == nil {
		t.Error("valid pair next to oversized ones was dropped")
	}
}

func TestAnalyzePriceClassCandidates(t *testing.T) {
	analyzer := testAnalyzer(t)

	html := `<html><body>
		<span class="price-box">87.990 EUR</span>
		<div class="price-description">Very long marketing text about the price of this property</div>
	</body></html>`

	candidates, err := analyzer.AnalyzeHTML("https://example.com/x", html)
	if err != nil {
		t.Fatalf("AnalyzeHTML: %v", err)
	}

	price := findBySelector(candidates, ".price-box")
	if price == nil {
		t.Fatal("no candidate for the numeric price class")
	}
	if price.Confidence != 0.6 {
		t.Errorf("price candidate confidence = %v, want 0.6", price.Confidence)
	}
	if findBySelector(candidates, ".price-description") != nil {
		t.Error("non-numeric price-class text produced a candidate")
	}
}
