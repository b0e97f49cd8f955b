package extractor

import (
	"strings"

	"propscout/pkg/models"
)

// Setters used by every layer: a field already populated by an earlier,
// higher-precedence layer is never overwritten.

func setText(dst *string, value string) {
	value = strings.TrimSpace(value)
	if *dst == "" && value != "" {
		*dst = value
	}
}

func setFloat(dst **float64, value *float64) {
	if *dst == nil && value != nil {
		*dst = value
	}
}

func setInt(dst **int, value *int) {
	if *dst == nil && value != nil {
		*dst = value
	}
}

// applyField routes a raw text value into the property record by internal
// field name, passing numeric fields through the normalizer. Unknown fields
// are ignored.
func applyField(prop *models.ScrapedProperty, field, raw string) {
	switch field {
	case "title":
		setText(&prop.Title, raw)
	case "description":
		setText(&prop.Description, raw)
	case "type":
		setText(&prop.Type, raw)
	case "listing_type":
		setText(&prop.ListingType, raw)
	case "price":
		setFloat(&prop.Price, ParseNumber(raw))
	case "currency":
		setText(&prop.Currency, raw)
	case "address":
		setText(&prop.Address, raw)
	case "county":
		setText(&prop.County, raw)
	case "city":
		setText(&prop.City, raw)
	case "area":
		setText(&prop.Area, raw)
	case "rooms":
		setInt(&prop.Rooms, ParseInteger(raw))
	case "bedrooms":
		setInt(&prop.Bedrooms, ParseInteger(raw))
	case "bathrooms":
		setInt(&prop.Bathrooms, ParseInteger(raw))
	case "usable_area":
		setFloat(&prop.UsableArea, ParseNumber(raw))
	case "built_area":
		setFloat(&prop.BuiltArea, ParseNumber(raw))
	case "total_usable_area":
		setFloat(&prop.TotalUsableArea, ParseNumber(raw))
	case "land_area":
		setFloat(&prop.LandArea, ParseNumber(raw))
	case "balcony_area":
		setFloat(&prop.BalconyArea, ParseNumber(raw))
	case "floor":
		setInt(&prop.Floor, ParseInteger(raw))
	case "total_floors":
		setInt(&prop.TotalFloors, ParseInteger(raw))
	case "year_built":
		setInt(&prop.YearBuilt, ParseInteger(raw))
	case "partitioning":
		setText(&prop.Partitioning, raw)
	case "comfort":
		setText(&prop.Comfort, raw)
	case "building_type":
		setText(&prop.BuildingType, raw)
	case "interior_condition":
		setText(&prop.InteriorCondition, raw)
	case "furnishing":
		setText(&prop.Furnishing, raw)
	case "owner_name":
		setText(&prop.OwnerName, raw)
	case "owner_phone":
		setText(&prop.OwnerPhone, raw)
	case "video_url":
		setText(&prop.VideoURL, raw)
	case "virtual_tour_url":
		setText(&prop.VirtualTourURL, raw)
	}
}
