package ports

import (
	"context"
	"errors"
	"pedestrian-nav-service/internal/domain"
)

// Contract for retrieving a route polyline from an external routing service.
type RouteProvider interface {
	// Return the route through the ordered waypoints for the given travel mode.
	FetchRoute(ctx context.Context, waypoints []domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error)
}

// ErrMalformedResponse marks provider errors caused by an undecodable or
// structurally invalid routing response. Adapters wrap it; every other
// provider error counts as the service being unavailable.
var ErrMalformedResponse = errors.New("malformed routing response")
