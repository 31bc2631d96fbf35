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

// SQLGeocodeCache is the Postgres flavour of SqliteGeocodeCache.
type SQLGeocodeCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSQLGeocodeCache(db *sql.DB, maxAge time.Duration) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, MaxAge: maxAge}
}

func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.GeoPoint, err error) {
	defer obs.Time(ctx, "geocode.cache.sql.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	keys := addressKeys(addresses)
	if len(keys) == 0 {
		return map[string]domain.GeoPoint{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT address, lat, lon
    FROM geocode_cache
    WHERE address = ANY($1::text[]) AND resolved_at >= $2;
	`, keys, cutoff(s.MaxAge))
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query: %w", err)
	}
	defer rows.Close()

	return scanGeocodeRows(rows, len(keys))
}

func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.GeoPoint) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	return putGeocodes(ctx, s.DB, results, `
	INSERT INTO geocode_cache (address, lat, lon, resolved_at)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		resolved_at = EXCLUDED.resolved_at;
	`)
}
