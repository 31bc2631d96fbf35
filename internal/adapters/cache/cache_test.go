package cache

import (
	"context"
	"database/sql"
	"pedestrian-nav-service/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

var sampleRoute = &domain.Route{
	Points: []domain.GeoPoint{
		{Lat: 37.0, Lon: 127.0},
		{Lat: 37.0005, Lon: 127.0002},
		{Lat: 37.001, Lon: 127.0},
	},
	LengthMeters:    118.5,
	DurationSeconds: 85,
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(context.Background(), db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func assertSameRoute(t *testing.T, got, want *domain.Route) {
	t.Helper()

	if len(got.Points) != len(want.Points) {
		t.Fatalf("points = %d, want %d", len(got.Points), len(want.Points))
	}
	for i := range want.Points {
		if got.Points[i] != want.Points[i] {
			t.Fatalf("point %d = %+v, want %+v", i, got.Points[i], want.Points[i])
		}
	}
	if got.LengthMeters != want.LengthMeters || got.DurationSeconds != want.DurationSeconds {
		t.Fatalf("summary = %v/%v, want %v/%v", got.LengthMeters, got.DurationSeconds, want.LengthMeters, want.DurationSeconds)
	}
}

func TestSqliteRouteCache(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteRouteCache(openTestDB(t), 0)

	if _, ok, err := c.GetRoute(ctx, "missing"); err != nil || ok {
		t.Fatalf("miss = (%v, %v), want (false, nil)", ok, err)
	}

	if err := c.PutRoute(ctx, "k1", sampleRoute); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.GetRoute(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("hit = (%v, %v), want (true, nil)", ok, err)
	}
	assertSameRoute(t, got, sampleRoute)

	// Overwrite keeps a single entry.
	if err := c.PutRoute(ctx, "k1", sampleRoute); err != nil {
		t.Fatalf("second put: %v", err)
	}

	if err := c.PutRoute(ctx, "", sampleRoute); err == nil {
		t.Fatalf("empty key should be rejected")
	}
}

func TestSqliteRouteCacheExpiry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	c := NewSqliteRouteCache(db, time.Hour)

	payload, err := encodeRoute(sampleRoute)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour).Unix()
	if _, err := db.Exec(`INSERT INTO route_cache (route_key, payload, created_at) VALUES (?, ?, ?)`, "old", string(payload), old); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, ok, err := c.GetRoute(ctx, "old"); err != nil || ok {
		t.Fatalf("expired entry = (%v, %v), want miss", ok, err)
	}
}

func TestSqliteGeocodeCache(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openTestDB(t), 0)

	in := map[string]domain.GeoPoint{
		"Seoul Station": {Lat: 37.5547, Lon: 126.9707},
		"City Hall":     {Lat: 37.5663, Lon: 126.9779},
	}
	if err := c.PutMany(ctx, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"Seoul Station", " Seoul Station ", "Nowhere", ""})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("hits = %d, want 1", len(got))
	}
	if got["Seoul Station"] != in["Seoul Station"] {
		t.Fatalf("Seoul Station = %+v", got["Seoul Station"])
	}
}

func TestSqliteGeocodeCacheNormalisesAndSkipsInvalid(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openTestDB(t), 0)

	err := c.PutMany(ctx, map[string]domain.GeoPoint{
		"  Gwanghwamun   Square ": {Lat: 37.5725, Lon: 126.9769},
		"Broken":                  {Lat: 137, Lon: 0},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"Gwanghwamun Square", "Broken"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := got["Gwanghwamun Square"]; !ok {
		t.Fatalf("normalised key missing: %v", got)
	}
	if _, ok := got["Broken"]; ok {
		t.Fatalf("out-of-range point was cached")
	}
}

func TestSqliteGeocodeCacheExpiry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	c := NewSqliteGeocodeCache(db, time.Hour)

	old := time.Now().Add(-2 * time.Hour).Unix()
	if _, err := db.Exec(`INSERT INTO geocode_cache (address, lat, lon, resolved_at) VALUES (?, ?, ?, ?)`,
		"Old Town", 37.0, 127.0, old); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := c.PutMany(ctx, map[string]domain.GeoPoint{"New Town": {Lat: 37.1, Lon: 127.1}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"Old Town", "New Town"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got["New Town"] != (domain.GeoPoint{Lat: 37.1, Lon: 127.1}) {
		t.Fatalf("got %v, want only the fresh entry", got)
	}
}

func TestRedisRouteCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	c := NewRedisRouteCache(client, time.Minute)

	if _, ok, err := c.GetRoute(ctx, "k"); err != nil || ok {
		t.Fatalf("miss = (%v, %v), want (false, nil)", ok, err)
	}

	if err := c.PutRoute(ctx, "k", sampleRoute); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.GetRoute(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("hit = (%v, %v), want (true, nil)", ok, err)
	}
	assertSameRoute(t, got, sampleRoute)

	if ttl := mr.TTL(redisRouteKeyPrefix + "k"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.GetRoute(ctx, "k"); ok {
		t.Fatalf("entry should have expired")
	}
}
