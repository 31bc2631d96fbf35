package routing

import (
	"context"
	"pedestrian-nav-service/internal/domain"
	"sync"
)

// MockRouteProvider returns a fixed route or error and records every call.
type MockRouteProvider struct {
	Route *domain.Route
	Err   error
	// Block, when set, delays each call until it is closed or ctx is done.
	Block chan struct{}

	mu    sync.Mutex
	calls [][]domain.GeoPoint
}

func NewMockRouteProvider(route *domain.Route, err error) *MockRouteProvider {
	return &MockRouteProvider{Route: route, Err: err}
}

func (p *MockRouteProvider) FetchRoute(
	ctx context.Context,
	waypoints []domain.GeoPoint,
	mode domain.TravelMode,
) (*domain.Route, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]domain.GeoPoint(nil), waypoints...))
	block := p.Block
	p.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if p.Err != nil {
		return nil, p.Err
	}
	return p.Route, nil
}

// Calls returns the number of FetchRoute invocations so far.
func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
