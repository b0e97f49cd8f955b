package workers

import "testing"

func TestBuildPageURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		page int
		want string
	}{
		{
			"page token",
			"https://example.com/anunturi/pagina-{page}.html",
			7,
			"https://example.com/anunturi/pagina-7.html",
		},
		{
			"query param appended",
			"https://example.com/anunturi",
			3,
			"https://example.com/anunturi?page=3",
		},
		{
			"query param replaces existing",
			"https://example.com/anunturi?page=1&sort=new",
			3,
			"https://example.com/anunturi?page=3&sort=new",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildPageURL(tt.url, tt.page); got != tt.want {
				t.Errorf("BuildPageURL(%q, %d) = %q, want %q", tt.url, tt.page, got, tt.want)
			}
		})
	}
}

func TestCollectListingLinks(t *testing.T) {
	html := `<html><body>
		<div class="results">
			<a class="listing" href="/anunt/1">First</a>
			<a class="listing" href="https://example.com/anunt/2">Second</a>
			<a class="listing" href="/anunt/1">Duplicate</a>
			<a class="listing" href="#top">Anchor</a>
			<a class="listing" href="javascript:void(0)">Script</a>
		</div>
		<a href="/unrelated">Not matched</a>
	</body></html>`

	links, err := collectListingLinks(html, "https://example.com/anunturi?page=2", "a.listing")
	if err != nil {
		t.Fatalf("collectListingLinks: %v", err)
	}

	want := []string{
		"https://example.com/anunt/1",
		"https://example.com/anunt/2",
	}
	if len(links) != len(want) {
		t.Fatalf("got %d links, want %d: %v", len(links), len(want), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestCollectListingLinksContainerSelector(t *testing.T) {
	// Selectors pointing at containers still work through the nested anchor
	html := `<html><body>
		<div class="card"><a href="/anunt/10">Ten</a></div>
		<div class="card"><span>no link</span></div>
	</body></html>`

	links, err := collectListingLinks(html, "https://example.com/list", "div.card")
	if err != nil {
		t.Fatalf("collectListingLinks: %v", err)
	}
	if len(links) != 1 || links[0] != "https://example.com/anunt/10" {
		t.Errorf("links = %v, want the nested anchor target", links)
	}
}
