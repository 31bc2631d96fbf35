package cache

import (
	"encoding/json"
	"fmt"
	"pedestrian-nav-service/internal/domain"
)

// routeRecord is the stored form of a route; points are [lon, lat] pairs
// like the routing services return them.
type routeRecord struct {
	Points          [][2]float64 `json:"points"`
	LengthMeters    float64      `json:"length_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
}

func encodeRoute(r *domain.Route) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("encode route: route is nil")
	}

	rec := routeRecord{
		Points:          make([][2]float64, 0, len(r.Points)),
		LengthMeters:    r.LengthMeters,
		DurationSeconds: r.DurationSeconds,
	}
	for _, p := range r.Points {
		rec.Points = append(rec.Points, [2]float64{p.Lon, p.Lat})
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode route: %w", err)
	}
	return b, nil
}

func decodeRoute(b []byte) (*domain.Route, error) {
	var rec routeRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}

	r := &domain.Route{
		Points:          make([]domain.GeoPoint, 0, len(rec.Points)),
		LengthMeters:    rec.LengthMeters,
		DurationSeconds: rec.DurationSeconds,
	}
	for _, p := range rec.Points {
		r.Points = append(r.Points, domain.GeoPoint{Lon: p[0], Lat: p[1]})
	}
	return r, nil
}
