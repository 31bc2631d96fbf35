package ports

import (
	"context"
	"pedestrian-nav-service/internal/domain"
)

// Emits position fixes at an external cadence until ctx is done or the
// source is exhausted; the channel is closed in both cases.
type FixSource interface {
	Fixes(ctx context.Context) <-chan domain.Fix
}
