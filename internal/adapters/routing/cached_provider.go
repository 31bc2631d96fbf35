package routing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/ports"
	"strings"
)

// CachedProvider decorates a RouteProvider with a persistent route cache.
// Cache read failures fall through to the provider; write failures are
// logged and never fail the request.
type CachedProvider struct {
	next  ports.RouteProvider
	cache ports.RouteCache
}

func NewCachedProvider(next ports.RouteProvider, cache ports.RouteCache) *CachedProvider {
	return &CachedProvider{next: next, cache: cache}
}

// RouteKey builds a stable cache key for an ordered waypoint list. Coordinates
// are rounded to 6 decimals (about 0.1 m) so float noise does not defeat the cache.
func RouteKey(waypoints []domain.GeoPoint, mode domain.TravelMode) string {
	var b strings.Builder
	b.WriteString(string(mode))
	for _, w := range waypoints {
		fmt.Fprintf(&b, "|%.6f,%.6f", w.Lat, w.Lon)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func (c *CachedProvider) FetchRoute(
	ctx context.Context,
	waypoints []domain.GeoPoint,
	mode domain.TravelMode,
) (*domain.Route, error) {
	key := RouteKey(waypoints, mode)

	if c.cache != nil {
		route, ok, err := c.cache.GetRoute(ctx, key)
		if err != nil {
			log.Printf("route cache read failed key=%s: %v", key[:12], err)
		} else if ok {
			return route, nil
		}
	}

	route, err := c.next.FetchRoute(ctx, waypoints, mode)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && route != nil && len(route.Points) > 0 {
		if err := c.cache.PutRoute(ctx, key, route); err != nil {
			log.Printf("route cache write failed key=%s: %v", key[:12], err)
		}
	}

	return route, nil
}
