package models

// ScrapedProperty represents a structured property listing extracted from a
// partner site. Every field is optional: absence means "not extracted".
type ScrapedProperty struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`         // Apartment, House, Land, Commercial
	ListingType string `json:"listing_type,omitempty"` // for_sale, for_rent

	Price    *float64 `json:"price,omitempty"`
	Currency string   `json:"currency,omitempty"`

	Address   string   `json:"address,omitempty"`
	County    string   `json:"county,omitempty"`
	City      string   `json:"city,omitempty"`
	Area      string   `json:"area,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Rooms     *int `json:"rooms,omitempty"`
	Bedrooms  *int `json:"bedrooms,omitempty"`
	Bathrooms *int `json:"bathrooms,omitempty"`

	UsableArea      *float64 `json:"usable_area,omitempty"`
	BuiltArea       *float64 `json:"built_area,omitempty"`
	TotalUsableArea *float64 `json:"total_usable_area,omitempty"`
	LandArea        *float64 `json:"land_area,omitempty"`
	BalconyArea     *float64 `json:"balcony_area,omitempty"`

	Floor             *int   `json:"floor,omitempty"`
	TotalFloors       *int   `json:"total_floors,omitempty"`
	YearBuilt         *int   `json:"year_built,omitempty"`
	Partitioning      string `json:"partitioning,omitempty"`
	Comfort           string `json:"comfort,omitempty"`
	BuildingType      string `json:"building_type,omitempty"`
	InteriorCondition string `json:"interior_condition,omitempty"`
	Furnishing        string `json:"furnishing,omitempty"`

	OwnerName    string `json:"owner_name,omitempty"`
	OwnerPhone   string `json:"owner_phone,omitempty"`
	PrivateNotes string `json:"private_notes,omitempty"`

	Images         []string `json:"images,omitempty"`
	VideoURL       string   `json:"video_url,omitempty"`
	VirtualTourURL string   `json:"virtual_tour_url,omitempty"`
	Features       []string `json:"features,omitempty"`

	SourceURL string `json:"source_url,omitempty"`
}

// MaxImages is the hard cap on accumulated gallery images per listing.
const MaxImages = 25

// AttributeCandidate is a proposed (label, value, selector) triple produced by
// the attribute discovery assistant. It is not yet bound to an internal field.
type AttributeCandidate struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Value      string  `json:"value"`
	Selector   string  `json:"selector"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Candidate source type tags
const (
	SourceTable      = "table"
	SourceDL         = "dl"
	SourceLabelValue = "label-value"
	SourceMeta       = "meta"
	SourceIDClass    = "id-class"
)
