package domain

import (
	"math"
	"time"
)

// Immutable geographic point (latitude, longitude) in WGS84 degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point is finite and inside WGS84 bounds.
func (p GeoPoint) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		math.Abs(p.Lat) <= 90 && math.Abs(p.Lon) <= 180
}

// Return the point as [lon, lat] for external API compatibility.
func (p GeoPoint) CoordsToList() []float64 { return []float64{p.Lon, p.Lat} }

// A single position fix from the device. Only Lat/Lon drive route progress;
// Accuracy (meters) and Timestamp are carried for logging and clients.
type Fix struct {
	Lat       float64
	Lon       float64
	Accuracy  float64
	Timestamp time.Time
}

func (f Fix) Point() GeoPoint { return GeoPoint{Lat: f.Lat, Lon: f.Lon} }
