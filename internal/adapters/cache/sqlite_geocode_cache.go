package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/platform/obs"
	"strings"
	"time"
)

// SqliteGeocodeCache maps normalised addresses to coordinates in SQLite.
// Results older than MaxAge (when non-zero) are not returned, so moved or
// renamed places are geocoded again eventually.
type SqliteGeocodeCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSqliteGeocodeCache(db *sql.DB, maxAge time.Duration) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db, MaxAge: maxAge}
}

func (s *SqliteGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.GeoPoint, err error) {
	defer obs.Time(ctx, "geocode.cache.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	keys := addressKeys(addresses)
	if len(keys) == 0 {
		return map[string]domain.GeoPoint{}, nil
	}

	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		args = append(args, k)
	}
	args = append(args, cutoff(s.MaxAge))

	// Only the placeholder list is interpolated; values stay bound.
	q := fmt.Sprintf(`
	SELECT address, lat, lon
    FROM geocode_cache
    WHERE address IN (%s) AND resolved_at >= ?;
	`, strings.TrimSuffix(strings.Repeat("?,", len(keys)), ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query: %w", err)
	}
	defer rows.Close()

	return scanGeocodeRows(rows, len(keys))
}

func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.GeoPoint) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	return putGeocodes(ctx, s.DB, results, `
	INSERT OR REPLACE INTO geocode_cache (address, lat, lon, resolved_at)
    VALUES (?, ?, ?, ?);
	`)
}

// putGeocodes writes every valid result in one transaction with the given
// dialect-specific upsert statement. Keys are normalised before writing;
// points outside WGS84 bounds are skipped.
func putGeocodes(ctx context.Context, db *sql.DB, results map[string]domain.GeoPoint, upsert string) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("insert geocode cache: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for addr, p := range results {
		key := domain.NormalizeAddress(addr)
		if key == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		if !p.Valid() {
			continue
		}
		if _, err := stmt.ExecContext(ctx, key, p.Lat, p.Lon, now); err != nil {
			return fmt.Errorf("insert geocode cache address=%q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache: commit: %w", err)
	}
	return nil
}

func scanGeocodeRows(rows *sql.Rows, hint int) (map[string]domain.GeoPoint, error) {
	out := make(map[string]domain.GeoPoint, hint)
	for rows.Next() {
		var addr string
		var p domain.GeoPoint
		if err := rows.Scan(&addr, &p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan: %w", err)
		}
		out[addr] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: rows: %w", err)
	}
	return out, nil
}

// addressKeys returns the distinct non-empty keys of in, in order.
func addressKeys(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	keys := make([]string, 0, len(in))
	for _, a := range in {
		k := domain.NormalizeAddress(a)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// cutoff is the oldest unix time still fresh for maxAge; zero disables expiry.
func cutoff(maxAge time.Duration) int64 {
	if maxAge <= 0 {
		return 0
	}
	return time.Now().Add(-maxAge).Unix()
}
