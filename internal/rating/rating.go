// Package rating converts between the canonical 0-10 storage scale and the
// five-star scale used for display. Storage always holds 0-10; this is the
// single conversion point.
package rating

import (
	"math"
)

// ToFiveStar maps a 0-10 value onto 0-5 stars with one decimal. Values
// already within 0-5 pass through unchanged so five-star sources round-trip.
func ToFiveStar(value float64) float64 {
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	normalized := value
	if normalized > 5 {
		normalized = normalized / 2
	}
	return math.Round(normalized*10) / 10
}
