package domain

import "strings"

// NormalizeAddress collapses runs of whitespace and trims the ends. Geocoders
// and geocode caches key their results by the normalised form.
func NormalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
