package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"pedestrian-nav-service/internal/adapters/routing"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/ports"
	"testing"
)

// providerFunc adapts a function to ports.RouteProvider.
type providerFunc func(ctx context.Context, wps []domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error)

func (f providerFunc) FetchRoute(ctx context.Context, wps []domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error) {
	return f(ctx, wps, mode)
}

var twoWaypoints = []domain.GeoPoint{{Lat: 37.0, Lon: 127.0}, {Lat: 37.002, Lon: 127.0}}

func TestGatewayRejectsTooFewWaypointsWithoutIO(t *testing.T) {
	mock := routing.NewMockRouteProvider(northRoute(3), nil)
	g := NewRouteGateway(mock)

	for _, wps := range [][]domain.GeoPoint{nil, {{Lat: 37, Lon: 127}}} {
		route, err := g.RequestRoute(context.Background(), wps, domain.Pedestrian)
		if route != nil {
			t.Fatalf("route = %+v, want nil", route)
		}
		if !errors.Is(err, ErrInsufficientWaypoints) {
			t.Fatalf("err = %v, want insufficient waypoints", err)
		}
	}

	if n := mock.Calls(); n != 0 {
		t.Fatalf("provider calls = %d, want 0", n)
	}
}

func TestGatewayReturnsRoute(t *testing.T) {
	want := northRoute(4)
	g := NewRouteGateway(routing.NewMockRouteProvider(want, nil))

	got, err := g.RequestRoute(context.Background(), twoWaypoints, domain.Pedestrian)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("points = %d, want %d", got.Len(), want.Len())
	}
}

func TestGatewayClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider ports.RouteProvider
		want     error
	}{
		{
			name:     "transport error",
			provider: routing.NewMockRouteProvider(nil, errors.New("dial tcp: connection refused")),
			want:     ErrRouteUnavailable,
		},
		{
			name:     "timeout",
			provider: routing.NewMockRouteProvider(nil, context.DeadlineExceeded),
			want:     ErrRouteUnavailable,
		},
		{
			name:     "undecodable body",
			provider: routing.NewMockRouteProvider(nil, fmt.Errorf("decode: %w", ports.ErrMalformedResponse)),
			want:     ErrRouteMalformed,
		},
		{
			name:     "empty polyline",
			provider: routing.NewMockRouteProvider(&domain.Route{}, nil),
			want:     ErrRouteMalformed,
		},
		{
			name:     "nil route",
			provider: routing.NewMockRouteProvider(nil, nil),
			want:     ErrRouteMalformed,
		},
		{
			name: "NaN coordinate",
			provider: routing.NewMockRouteProvider(&domain.Route{Points: []domain.GeoPoint{
				{Lat: 37, Lon: 127}, {Lat: math.NaN(), Lon: 127},
			}}, nil),
			want: ErrRouteMalformed,
		},
		{
			name: "latitude out of range",
			provider: routing.NewMockRouteProvider(&domain.Route{Points: []domain.GeoPoint{
				{Lat: 137, Lon: 127},
			}}, nil),
			want: ErrRouteMalformed,
		},
		{
			name: "provider panic",
			provider: providerFunc(func(context.Context, []domain.GeoPoint, domain.TravelMode) (*domain.Route, error) {
				panic("index out of range")
			}),
			want: ErrRouteMalformed,
		},
		{
			name:     "no provider",
			provider: nil,
			want:     ErrRouteUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewRouteGateway(tt.provider)
			route, err := g.RequestRoute(context.Background(), twoWaypoints, domain.Pedestrian)

			if route != nil {
				t.Fatalf("route = %+v, want nil alongside an error", route)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			var re *RouteError
			if !errors.As(err, &re) {
				t.Fatalf("err %T is not a *RouteError", err)
			}
		})
	}
}

func TestRouteErrorKindsAreDistinct(t *testing.T) {
	err := &RouteError{Kind: RouteMalformed, Err: errors.New("bad")}
	if errors.Is(err, ErrRouteUnavailable) {
		t.Fatalf("malformed error matched unavailable")
	}
	if got := err.Error(); got != "route malformed: bad" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestGatewayAsync(t *testing.T) {
	g := NewRouteGateway(routing.NewMockRouteProvider(northRoute(2), nil))

	res, ok := <-g.RequestRouteAsync(context.Background(), twoWaypoints, domain.Pedestrian)
	if !ok {
		t.Fatalf("channel closed without a result")
	}
	if res.Err != nil || res.Route.Len() != 2 {
		t.Fatalf("result = %+v", res)
	}

	res = <-g.RequestRouteAsync(context.Background(), twoWaypoints[:1], domain.Pedestrian)
	if !errors.Is(res.Err, ErrInsufficientWaypoints) {
		t.Fatalf("err = %v, want insufficient waypoints", res.Err)
	}
}

func TestGatewayAsyncCancelled(t *testing.T) {
	mock := routing.NewMockRouteProvider(northRoute(2), nil)
	mock.Block = make(chan struct{})
	g := NewRouteGateway(mock)

	ctx, cancel := context.WithCancel(context.Background())
	ch := g.RequestRouteAsync(ctx, twoWaypoints, domain.Pedestrian)
	cancel()

	res := <-ch
	if !errors.Is(res.Err, ErrRouteUnavailable) || res.Route != nil {
		t.Fatalf("result = %+v, want unavailable without route", res)
	}
}
