package extractor

import "testing"

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		none  bool
	}{
		{"european thousands", "87.990", 87990, false},
		{"european with decimal comma", "1.234,56", 1234.56, false},
		{"multiple groups", "1.234.567", 1234567, false},
		{"decimal comma only", "53,5", 53.5, false},
		{"unit suffix", "53 m2", 53, false},
		{"currency prefix", "EUR 1200", 1200, false},
		{"us grouping", "1,200,000", 1200000, false},
		{"plain integer", "42", 42, false},
		{"plain decimal", "42.5", 42.5, false},
		{"embedded in text", "etaj 3 din 8", 3, false},
		{"no digits", "parter", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if tt.none {
				if got != nil {
					t.Fatalf("ParseNumber(%q) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseNumber(%q) = nil, want %v", tt.input, tt.want)
			}
			if *got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestParseNumberIdempotent(t *testing.T) {
	// Normalizing an already-normalized value must not change it
	first := ParseNumber("87.990")
	if first == nil {
		t.Fatal("first parse returned nil")
	}
	second := ParseNumber("87990")
	if second == nil || *second != *first {
		t.Errorf("re-parse of normalized value changed it: %v vs %v", first, second)
	}
}

func TestParseInteger(t *testing.T) {
	if got := ParseInteger("3 camere"); got == nil || *got != 3 {
		t.Errorf("ParseInteger(\"3 camere\") = %v, want 3", got)
	}
	if got := ParseInteger("53,9 m2"); got == nil || *got != 53 {
		t.Errorf("ParseInteger(\"53,9 m2\") = %v, want 53", got)
	}
	if got := ParseInteger("none"); got != nil {
		t.Errorf("ParseInteger(\"none\") = %v, want nil", *got)
	}
}
