package extractor

import (
	"testing"

	"propscout/pkg/models"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Suprafață utilă:", "suprafata utila"},
		{"  Nr. camere ", "camere"},
		{"AN CONSTRUCȚIE", "an constructie"},
		{"Preț", "pret"},
	}
	for _, tt := range tests {
		if got := normalizeLabel(tt.input); got != tt.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestApplyLabeledValue(t *testing.T) {
	prop := &models.ScrapedProperty{}

	applyLabeledValue(prop, "Suprafață utilă", "53,9 m2")
	applyLabeledValue(prop, "Nr. camere", "3")
	applyLabeledValue(prop, "Etaj", "4")
	applyLabeledValue(prop, "Compartimentare", "decomandat")
	applyLabeledValue(prop, "Unrecognized label", "whatever")

	if prop.UsableArea == nil || *prop.UsableArea != 53.9 {
		t.Errorf("UsableArea = %v, want 53.9", prop.UsableArea)
	}
	if prop.Rooms == nil || *prop.Rooms != 3 {
		t.Errorf("Rooms = %v, want 3", prop.Rooms)
	}
	if prop.Floor == nil || *prop.Floor != 4 {
		t.Errorf("Floor = %v, want 4", prop.Floor)
	}
	if prop.Partitioning != "decomandat" {
		t.Errorf("Partitioning = %q, want decomandat", prop.Partitioning)
	}
}

func TestApplyLabeledValueNeverOverwrites(t *testing.T) {
	rooms := 2
	prop := &models.ScrapedProperty{Rooms: &rooms}

	applyLabeledValue(prop, "Camere", "5")
	if *prop.Rooms != 2 {
		t.Errorf("Rooms overwritten to %d, earlier layers must win", *prop.Rooms)
	}
}

func TestFindPhone(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Contact: 0722 123 456", "0722 123 456"},
		{"Suna la +40 722 123 456 acum", "+40 722 123 456"},
		{"0212345678", "0212345678"},
		{"no phone here", ""},
	}
	for _, tt := range tests {
		if got := findPhone(tt.text); got != tt.want {
			t.Errorf("findPhone(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestCountyFromText(t *testing.T) {
	if got := countyFromText("Anunturi > Cluj > Cluj-Napoca > Manastur"); got != "Cluj" {
		t.Errorf("countyFromText = %q, want Cluj", got)
	}
	if got := countyFromText("Apartament în Brașov central"); got != "Brasov" {
		t.Errorf("countyFromText = %q, want Brasov (diacritics folded)", got)
	}
	if got := countyFromText("no county named"); got != "" {
		t.Errorf("countyFromText = %q, want empty", got)
	}
}

func TestSiteAdapterMatching(t *testing.T) {
	adapter := hostAdapter{"table-attributes", "imobiliare.ro"}
	if !adapter.matches("www.imobiliare.ro") {
		t.Error("adapter must match subdomains of its host fragment")
	}
	if adapter.matches("www.olx.ro") {
		t.Error("adapter must not match other hosts")
	}
}
