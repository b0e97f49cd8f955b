package extractor

import (
	"fmt"
	"testing"

	"propscout/pkg/models"
)

func TestImageSetResolvesRelativeURLs(t *testing.T) {
	set := NewImageSet("https://example.com/listing/42")
	set.Add("/photos/1.jpg")
	set.Add("//cdn.example.com/photos/2.jpg")
	set.Add("https://other.example.com/3.jpg")

	urls := set.Finalize()
	want := []string{
		"https://example.com/photos/1.jpg",
		"https://cdn.example.com/photos/2.jpg",
		"https://other.example.com/3.jpg",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %d urls, want %d: %v", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestImageSetDeduplicates(t *testing.T) {
	set := NewImageSet("https://example.com/listing/42")
	set.Add("/photos/1.jpg")
	set.Add("https://example.com/photos/1.jpg")
	set.Add("/photos/1.jpg")

	if set.Len() != 1 {
		t.Errorf("got %d urls after duplicate adds, want 1", set.Len())
	}
}

func TestImageSetFiltersChrome(t *testing.T) {
	set := NewImageSet("https://example.com/")
	set.Add("/assets/logo.png")
	set.Add("/assets/favicon.ico")
	set.Add("data:image/png;base64,AAAA")
	set.Add("")
	set.Add("/photos/real.jpg")

	if set.Len() != 1 {
		t.Fatalf("got %d urls, want 1: %v", set.Len(), set.Finalize())
	}
	if got := set.Finalize()[0]; got != "https://example.com/photos/real.jpg" {
		t.Errorf("kept %q, want the real photo", got)
	}
}

func TestImageSetCapAppliedAtFinalize(t *testing.T) {
	set := NewImageSet("https://example.com/")
	for i := 0; i < models.MaxImages+10; i++ {
		set.Add(fmt.Sprintf("/photos/%d.jpg", i))
	}

	// Len reports everything accumulated, the cap only applies on finalize
	if set.Len() != models.MaxImages+10 {
		t.Errorf("Len() = %d, want %d", set.Len(), models.MaxImages+10)
	}
	if got := len(set.Finalize()); got != models.MaxImages {
		t.Errorf("Finalize() returned %d urls, want %d", got, models.MaxImages)
	}
}

func TestLooksLikeImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/a.jpg", true},
		{"https://example.com/a.webp?w=800", true},
		{"https://example.com/a.PNG", true},
		{"https://example.com/listing/42", false},
		{"https://example.com/a.html", false},
	}
	for _, tt := range tests {
		if got := looksLikeImageURL(tt.url); got != tt.want {
			t.Errorf("looksLikeImageURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
