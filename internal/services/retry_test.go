package services

import (
	"context"
	"errors"
	"fmt"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/ports"
	"sync/atomic"
	"testing"
	"time"
)

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		failErr   error
		attempts  int
		wantCalls int32
		wantErr   error
	}{
		{name: "succeeds first time", failures: 0, attempts: 3, wantCalls: 1},
		{name: "recovers after unavailable", failures: 2, failErr: errors.New("503"), attempts: 3, wantCalls: 3},
		{name: "gives up", failures: 5, failErr: errors.New("503"), attempts: 3, wantCalls: 3, wantErr: ErrRouteUnavailable},
		{name: "zero policy is one attempt", failures: 1, failErr: errors.New("503"), attempts: 0, wantCalls: 1, wantErr: ErrRouteUnavailable},
		{
			name:      "malformed is not retried",
			failures:  5,
			failErr:   fmt.Errorf("bad json: %w", ports.ErrMalformedResponse),
			attempts:  3,
			wantCalls: 1,
			wantErr:   ErrRouteMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			p := providerFunc(func(context.Context, []domain.GeoPoint, domain.TravelMode) (*domain.Route, error) {
				if int(calls.Add(1)) <= tt.failures {
					return nil, tt.failErr
				}
				return northRoute(2), nil
			})

			policy := RetryPolicy{MaxAttempts: tt.attempts, Backoff: time.Millisecond}
			route, err := WithRetry(context.Background(), NewRouteGateway(p), policy, twoWaypoints, domain.Pedestrian)

			if got := calls.Load(); got != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || route != nil {
					t.Fatalf("route, err = %v, %v; want nil, %v", route, err, tt.wantErr)
				}
				return
			}
			if err != nil || route == nil {
				t.Fatalf("route, err = %v, %v; want route", route, err)
			}
		})
	}
}

func TestWithRetryInsufficientWaypointsNotRetried(t *testing.T) {
	var calls atomic.Int32
	p := providerFunc(func(context.Context, []domain.GeoPoint, domain.TravelMode) (*domain.Route, error) {
		calls.Add(1)
		return northRoute(2), nil
	})

	_, err := WithRetry(context.Background(), NewRouteGateway(p), RetryPolicy{MaxAttempts: 3}, twoWaypoints[:1], domain.Pedestrian)
	if !errors.Is(err, ErrInsufficientWaypoints) {
		t.Fatalf("err = %v, want insufficient waypoints", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("provider called %d times", calls.Load())
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	p := providerFunc(func(context.Context, []domain.GeoPoint, domain.TravelMode) (*domain.Route, error) {
		return nil, errors.New("503")
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := WithRetry(ctx, NewRouteGateway(p), RetryPolicy{MaxAttempts: 10, Backoff: time.Second}, twoWaypoints, domain.Pedestrian)
	if !errors.Is(err, ErrRouteUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want to wrap context.Canceled", err)
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Fatalf("retry kept waiting after cancel")
	}
}
