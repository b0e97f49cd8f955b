package extractor

import (
	"net/url"
	"strings"

	"propscout/pkg/models"
)

// ImageSet accumulates gallery image candidates. URLs are deduplicated,
// resolved to absolute form against the page URL and order-preserving. The
// 25-entry cap is applied when the set is finalized, not on insert.
type ImageSet struct {
	base *url.URL
	seen map[string]struct{}
	urls []string
}

// NewImageSet creates an accumulator resolving against baseURL. A bad base
// URL leaves candidates unresolved rather than dropping them.
func NewImageSet(baseURL string) *ImageSet {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}
	return &ImageSet{
		base: base,
		seen: make(map[string]struct{}),
	}
}

// Add resolves and records one candidate URL. Candidates containing "logo" or
// "icon" are dropped as chrome, not content.
func (s *ImageSet) Add(candidate string) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || strings.HasPrefix(candidate, "data:") {
		return
	}

	lower := strings.ToLower(candidate)
	if strings.Contains(lower, "logo") || strings.Contains(lower, "icon") {
		return
	}

	resolved := candidate
	if s.base != nil {
		if ref, err := url.Parse(candidate); err == nil {
			resolved = s.base.ResolveReference(ref).String()
		}
	}

	if _, dup := s.seen[resolved]; dup {
		return
	}
	s.seen[resolved] = struct{}{}
	s.urls = append(s.urls, resolved)
}

// Len returns the number of accumulated images.
func (s *ImageSet) Len() int {
	return len(s.urls)
}

// Finalize returns the accumulated URLs capped at the gallery limit.
func (s *ImageSet) Finalize() []string {
	if len(s.urls) > models.MaxImages {
		return s.urls[:models.MaxImages]
	}
	return s.urls
}

// looksLikeImageURL reports whether a URL path ends in a known image
// extension.
func looksLikeImageURL(raw string) bool {
	lower := strings.ToLower(raw)
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
