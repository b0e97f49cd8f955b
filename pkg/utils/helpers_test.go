package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1.5m"},
		{90 * time.Minute, "1.5h"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContains(t *testing.T) {
	slice := []string{"product", "offer", "residence"}
	if !Contains(slice, "offer") {
		t.Error("Contains missed a present item")
	}
	if Contains(slice, "Offer") {
		t.Error("Contains must be case sensitive")
	}
	if Contains(nil, "offer") {
		t.Error("Contains found an item in a nil slice")
	}
}

func TestGetStringOrDefault(t *testing.T) {
	if got := GetStringOrDefault("", "fallback"); got != "fallback" {
		t.Errorf("empty value: got %q", got)
	}
	if got := GetStringOrDefault("title", "fallback"); got != "title" {
		t.Errorf("set value: got %q", got)
	}
}

func TestExtractDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.Imobiliare.ro/anunt/3", "www.imobiliare.ro"},
		{"http://olx.ro", "olx.ro"},
		{"not a url at all\x7f", "unknown"},
		{"/relative/path", "unknown"},
	}
	for _, tc := range cases {
		if got := ExtractDomain(tc.in); got != tc.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
