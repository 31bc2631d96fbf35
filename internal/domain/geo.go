package domain

import "math"

// Mean Earth radius in meters.
const EarthRadiusMeters = 6371000.0

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// Great-circle distance in meters between a and b (haversine formula).
func Haversine(a, b GeoPoint) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h slightly outside [0,1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Initial great-circle bearing from a to b in degrees, normalised to [0,360).
// Coincident points yield 0.
func InitialBearing(a, b GeoPoint) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	if y == 0 && x == 0 {
		return 0
	}

	return Wrap360(toDegrees(math.Atan2(y, x)))
}

// Normalise an angle in degrees to [0,360). NaN and infinities map to 0.
func Wrap360(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}

	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// -1e-15 + 360 rounds to exactly 360.
	if d >= 360 {
		d = 0
	}
	return d
}
