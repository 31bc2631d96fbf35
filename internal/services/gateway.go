package services

import (
	"context"
	"errors"
	"fmt"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/platform/obs"
	"pedestrian-nav-service/internal/ports"
)

// RouteResult is the single outcome of an asynchronous route request.
type RouteResult struct {
	Route *domain.Route
	Err   error
}

// RouteGateway requests route polylines from a routing provider.
//
// It validates waypoints before any I/O, never retries, and reports every
// failure as a *RouteError: callers never receive a partial route. The
// gateway holds no mutable state and is safe for concurrent use.
type RouteGateway struct {
	provider ports.RouteProvider
}

func NewRouteGateway(provider ports.RouteProvider) *RouteGateway {
	return &RouteGateway{provider: provider}
}

func (g *RouteGateway) RequestRoute(
	ctx context.Context,
	waypoints []domain.GeoPoint,
	mode domain.TravelMode,
) (route *domain.Route, err error) {
	if len(waypoints) < 2 {
		return nil, &RouteError{
			Kind: InsufficientWaypoints,
			Err:  fmt.Errorf("got %d waypoints, need at least 2", len(waypoints)),
		}
	}

	defer obs.Time(ctx, "gateway.RequestRoute")(&err)

	if g.provider == nil {
		return nil, &RouteError{Kind: RouteUnavailable, Err: errors.New("no routing provider configured")}
	}

	defer func() {
		if r := recover(); r != nil {
			route = nil
			err = &RouteError{Kind: RouteMalformed, Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	route, err = g.provider.FetchRoute(ctx, waypoints, mode)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	if err := validateRoute(route); err != nil {
		return nil, &RouteError{Kind: RouteMalformed, Err: err}
	}

	return route, nil
}

// RequestRouteAsync runs RequestRoute on its own goroutine and delivers
// exactly one result on the returned channel.
func (g *RouteGateway) RequestRouteAsync(
	ctx context.Context,
	waypoints []domain.GeoPoint,
	mode domain.TravelMode,
) <-chan RouteResult {
	out := make(chan RouteResult, 1)
	wps := append([]domain.GeoPoint(nil), waypoints...)

	go func() {
		route, err := g.RequestRoute(ctx, wps, mode)
		out <- RouteResult{Route: route, Err: err}
		close(out)
	}()

	return out
}

func classifyProviderError(err error) *RouteError {
	var re *RouteError
	if errors.As(err, &re) {
		return re
	}
	if errors.Is(err, ports.ErrMalformedResponse) {
		return &RouteError{Kind: RouteMalformed, Err: err}
	}
	return &RouteError{Kind: RouteUnavailable, Err: err}
}

func validateRoute(route *domain.Route) error {
	if route == nil || len(route.Points) == 0 {
		return errors.New("route has no points")
	}

	for i, p := range route.Points {
		if !p.Valid() {
			return fmt.Errorf("route point %d out of range: (%v, %v)", i, p.Lat, p.Lon)
		}
	}

	return nil
}
