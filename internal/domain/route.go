package domain

// Travel mode requested from the routing service. Only pedestrian routing
// is supported.
type TravelMode string

const Pedestrian TravelMode = "pedestrian"

// Represents a route polyline returned by a routing service.
// LengthMeters and DurationSeconds are advisory values reported by the
// provider; progress tracking derives its own distances from Points.
// A Route is replaced as a whole and never mutated after it is installed.
type Route struct {
	Points          []GeoPoint
	LengthMeters    float64
	DurationSeconds float64
}

// Number of points in the polyline; a nil route has none.
func (r *Route) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Points)
}

// Sum of great-circle segment lengths from index from to the last point.
func (r *Route) LengthFrom(from int) float64 {
	if r == nil || from < 0 {
		return 0
	}

	total := 0.0
	for i := from; i+1 < len(r.Points); i++ {
		total += Haversine(r.Points[i], r.Points[i+1])
	}
	return total
}
