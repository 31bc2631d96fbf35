package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/platform/obs"
	"time"
)

// SQLRouteCache is a Postgres-backed cache of routing service results.
type SQLRouteCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSQLRouteCache(db *sql.DB, maxAge time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, MaxAge: maxAge}
}

func (s *SQLRouteCache) GetRoute(ctx context.Context, key string) (_ *domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.sql.GetRoute")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	var payload string
	var createdAt int64
	err = s.DB.QueryRowContext(ctx, `
	SELECT payload, created_at
    FROM route_cache
    WHERE route_key = $1;
	`, key).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if expired(createdAt, s.MaxAge) {
		return nil, false, nil
	}

	route, err := decodeRoute([]byte(payload))
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}
	return route, true, nil
}

func (s *SQLRouteCache) PutRoute(ctx context.Context, key string, route *domain.Route) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if key == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	payload, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (route_key, payload, created_at)
    VALUES ($1, $2, $3)
	ON CONFLICT (route_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		created_at = EXCLUDED.created_at;
	`, key, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
