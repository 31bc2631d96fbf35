package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the cache schema. The DDL is valid for both SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        route_key TEXT PRIMARY KEY,
        payload TEXT NOT NULL,
        created_at BIGINT NOT NULL
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL,
        resolved_at BIGINT NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_cache_created_at
    ON route_cache(created_at);
	`

	statements := []string{
		createRouteCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
