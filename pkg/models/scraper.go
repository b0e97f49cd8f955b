package models

import (
	"fmt"
	"net/url"
	"time"
)

// SelectorFields lists every internal field an operator can map to a
// selector. The selectors map of a ScraperConfig always carries all of them,
// defaulted to empty strings.
var SelectorFields = []string{
	"title", "description", "type", "listing_type",
	"price", "currency",
	"address", "county", "city", "area",
	"rooms", "bedrooms", "bathrooms",
	"usable_area", "built_area", "total_usable_area", "land_area", "balcony_area",
	"floor", "total_floors", "year_built",
	"partitioning", "comfort", "building_type", "interior_condition", "furnishing",
	"owner_name", "owner_phone",
	"images", "video_url", "virtual_tour_url", "features",
}

// DefaultSelectors returns a selector map with every known field present and
// empty.
func DefaultSelectors() map[string]string {
	selectors := make(map[string]string, len(SelectorFields))
	for _, field := range SelectorFields {
		selectors[field] = ""
	}
	return selectors
}

// ScraperConfig is the per-partner-domain configuration: field selectors plus
// automation parameters. LastScrapedID is the next page cursor for history
// mode and is the only field the orchestrator mutates itself.
type ScraperConfig struct {
	Domain               string            `json:"domain" validate:"required"`
	Name                 string            `json:"name"`
	Selectors            map[string]string `json:"selectors"`
	CategoryURL          string            `json:"category_url"`
	LinkSelector         string            `json:"link_selector"`
	DelayMin             int               `json:"delay_min"` // seconds
	DelayMax             int               `json:"delay_max"` // seconds
	AutoInterval         int               `json:"auto_interval"` // minutes
	WatcherIntervalHours int               `json:"watcher_interval_hours"`
	LastScrapedID        int               `json:"last_scraped_id"`
	IsActive             bool              `json:"is_active"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Normalize fills in the selector map so every known field is present and
// clamps nonsensical automation parameters.
func (c *ScraperConfig) Normalize() {
	selectors := DefaultSelectors()
	for field, sel := range c.Selectors {
		selectors[field] = sel
	}
	c.Selectors = selectors

	if c.LastScrapedID < 1 {
		c.LastScrapedID = 1
	}
	if c.DelayMin < 0 {
		c.DelayMin = 0
	}
	if c.DelayMax < c.DelayMin {
		c.DelayMax = c.DelayMin
	}
	if c.AutoInterval < 1 {
		c.AutoInterval = 60
	}
	if c.WatcherIntervalHours < 1 {
		c.WatcherIntervalHours = 6
	}
}

// ProxyConfig is the upstream proxy record consumed by the fetch layer.
type ProxyConfig struct {
	IsActive bool   `json:"is_active"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// URL builds the proxy URL, with basic-auth credentials when configured.
// Returns nil when the proxy is inactive or incomplete.
func (p *ProxyConfig) URL() *url.URL {
	if p == nil || !p.IsActive || p.Host == "" || p.Port == 0 {
		return nil
	}
	u := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u
}
