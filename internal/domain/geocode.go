package domain

import (
	"strings"
	"time"
)

// Coordinates is a geocoded latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PostcodeEntry maps a normalized UK postcode to its geocoded location.
// Entries are written once on first successful lookup and never expire.
type PostcodeEntry struct {
	Postcode  string    `json:"postcode"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizePostcode produces the cache key for a UK postcode: uppercase
// with all spaces stripped ("ls1 1aa" -> "LS11AA").
func NormalizePostcode(postcode string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(postcode), " ", ""))
}
