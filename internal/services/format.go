package services

import (
	"fmt"
	"math"
)

// FormatDistance renders a distance in meters for display: whole meters
// (truncated, so 999.9 stays "999 m") below one kilometer, kilometers with
// two decimals from there on.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", math.Floor(meters))
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}
