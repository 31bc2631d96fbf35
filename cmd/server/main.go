package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"pedestrian-nav-service/internal/adapters/cache"
	"pedestrian-nav-service/internal/adapters/guidance"
	"pedestrian-nav-service/internal/adapters/routing"
	"pedestrian-nav-service/internal/api"
	"pedestrian-nav-service/internal/config"
	"pedestrian-nav-service/internal/platform/db"
	"pedestrian-nav-service/internal/platform/obs"
	"pedestrian-nav-service/internal/ports"
	"pedestrian-nav-service/internal/services"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (routing provider, caches, websocket hub) behind
// ports and starts the HTTP server.
func main() {
	obs.InitLogging()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("NAV_CONFIG", "config.yml"))
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caches, closeCaches, err := openCaches(ctx, cfg.Cache)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCaches()

	provider, err := routing.NewProvider(routing.ProviderOptions{
		Name:        cfg.Routing.Provider,
		ORSAPIKey:   cfg.Routing.ORSAPIKey,
		ORSBaseURL:  cfg.Routing.ORSBaseURL,
		OSRMBaseURL: cfg.Routing.OSRMBaseURL,
		Timeout:     cfg.Routing.Timeout(),
	})
	if err != nil {
		log.Fatal(err)
	}
	if caches.route != nil {
		provider = routing.NewCachedProvider(provider, caches.route)
	}

	// Address waypoints need the ORS geocoder; with OSRM only coordinates are accepted.
	var geocoder ports.Geocoder
	if cfg.Routing.ORSAPIKey != "" {
		g, err := routing.NewORSGeocoder(cfg.Routing.ORSAPIKey, cfg.Routing.ORSBaseURL, cfg.Routing.GeocodeRegion, caches.geocode)
		if err != nil {
			log.Fatal(err)
		}
		geocoder = g
	}

	hub := guidance.NewHub()

	// Server-side speech is logged; clients receive the same utterances as
	// interrupting speak frames on the websocket stream.
	// The store closes each sink when its session is deleted.
	sinks := func(sessionID string) ports.GuidanceSink {
		return guidance.NewInterruptingSink(guidance.LogVoice)
	}

	store := services.NewSessionStore(ctx, services.NewRouteGateway(provider), sinks, hub, services.SessionConfig{
		VoiceThresholdMeters: cfg.Guidance.VoiceThresholdMeters,
		Retry:                services.RetryPolicy{MaxAttempts: cfg.Routing.RetryAttempts},
	})

	router := api.NewRouter(store, geocoder, hub)

	port := strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening addr=:%s provider=%s cache=%s", port, cfg.Routing.Provider, cfg.Cache.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Println("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server error: %v", err)
	}

	store.CloseAll()
}

type cacheSet struct {
	route   ports.RouteCache
	geocode ports.GeocodeCache
}

// openCaches connects the configured cache backend. The returned func
// releases its connections.
func openCaches(ctx context.Context, cfg config.CacheConfig) (cacheSet, func(), error) {
	switch cfg.Backend {
	case "none":
		return cacheSet{}, func() {}, nil

	case "sqlite":
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return cacheSet{}, nil, err
		}
		if err := cache.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return cacheSet{}, nil, err
		}
		return cacheSet{
			route:   cache.NewSqliteRouteCache(conn, cfg.TTL()),
			geocode: cache.NewSqliteGeocodeCache(conn, cfg.TTL()),
		}, closeDB(conn), nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return cacheSet{}, nil, errors.New("DATABASE_URL is required for the postgres cache")
		}
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return cacheSet{}, nil, err
		}
		return cacheSet{
			route:   cache.NewSQLRouteCache(conn, cfg.TTL()),
			geocode: cache.NewSQLGeocodeCache(conn, cfg.TTL()),
		}, closeDB(conn), nil

	case "redis":
		if cfg.RedisAddr == "" {
			return cacheSet{}, nil, errors.New("REDIS_ADDR is required for the redis cache")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return cacheSet{}, nil, fmt.Errorf("connect redis %q: %w", cfg.RedisAddr, err)
		}
		return cacheSet{route: cache.NewRedisRouteCache(client, cfg.TTL())}, func() { client.Close() }, nil

	default:
		return cacheSet{}, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func closeDB(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}
}
