package services

import (
	"context"
	"errors"
	"pedestrian-nav-service/internal/domain"
	"time"
)

// RetryPolicy is the caller-side retry policy for route requests. The
// gateway itself never retries.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// WithRetry repeats RequestRoute while it fails with RouteUnavailable, using
// exponential backoff and respecting context cancellation. Validation and
// malformed-response failures are returned immediately.
func WithRetry(
	ctx context.Context,
	g *RouteGateway,
	policy RetryPolicy,
	waypoints []domain.GeoPoint,
	mode domain.TravelMode,
) (*domain.Route, error) {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := policy.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		route, err := g.RequestRoute(ctx, waypoints, mode)
		if err == nil {
			return route, nil
		}
		lastErr = err

		if !errors.Is(err, ErrRouteUnavailable) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &RouteError{Kind: RouteUnavailable, Err: ctx.Err()}
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
