package ports

import (
	"context"
	"pedestrian-nav-service/internal/domain"
)

// Contract for resolving free-form addresses to coordinates. Results are
// keyed by domain.NormalizeAddress; unresolvable addresses are omitted.
type Geocoder interface {
	Geocode(ctx context.Context, addresses []string) (map[string]domain.GeoPoint, error)
}

// Port: persistent address -> coordinate cache used by geocoders.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.GeoPoint, error)
	PutMany(ctx context.Context, results map[string]domain.GeoPoint) error
}
