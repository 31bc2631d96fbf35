package ports

import (
	"context"
	"pedestrian-nav-service/internal/domain"
)

// Port: a boundary for caching routing service results by request key.
type RouteCache interface {
	// Return the cached route and true, or false on a miss.
	GetRoute(ctx context.Context, key string) (*domain.Route, bool, error)
	PutRoute(ctx context.Context, key string, route *domain.Route) error
}
