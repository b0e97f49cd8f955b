package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRunRe = regexp.MustCompile(`\d[\d.,]*`)
	// European thousands grouping: 87.990 or 1.234.567, optional decimal comma
	europeanRe = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(,\d+)?$`)
	// Decimal comma without grouping: 53,5
	decimalCommaRe = regexp.MustCompile(`^\d+,\d+$`)
)

// ParseNumber extracts the first contiguous run of digits/separators from
// text and normalizes it to a machine float. It is format-aware:
//
//	"87.990"   -> 87990     (European thousands grouping)
//	"1.234,56" -> 1234.56   (grouping plus decimal comma)
//	"53 m2"    -> 53
//
// Returns nil when no number is found. Never fails.
func ParseNumber(text string) *float64 {
	run := numberRunRe.FindString(text)
	if run == "" {
		return nil
	}
	run = strings.Trim(run, ".,")

	var normalized string
	switch {
	case europeanRe.MatchString(run):
		normalized = strings.ReplaceAll(run, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
	case decimalCommaRe.MatchString(run):
		normalized = strings.ReplaceAll(run, ",", ".")
	default:
		// Plain decimal, possibly with US-style comma grouping
		normalized = strings.ReplaceAll(run, ",", "")
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseInteger is ParseNumber truncated to an int pointer.
func ParseInteger(text string) *int {
	value := ParseNumber(text)
	if value == nil {
		return nil
	}
	intValue := int(*value)
	return &intValue
}
