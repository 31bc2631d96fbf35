package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lt=65536"`
}

type RoutingConfig struct {
	Provider      string `yaml:"provider" validate:"oneof=ors osrm"`
	ORSBaseURL    string `yaml:"orsBaseURL" validate:"omitempty,url"`
	ORSAPIKey     string `yaml:"orsApiKey"`
	OSRMBaseURL   string `yaml:"osrmBaseURL" validate:"omitempty,url"`
	GeocodeRegion string `yaml:"geocodeRegion" validate:"omitempty,len=2"`
	TimeoutMS     int    `yaml:"timeoutMS" validate:"gte=0"`
	RetryAttempts int    `yaml:"retryAttempts" validate:"gte=0,lte=10"`
}

type CacheConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=none sqlite postgres redis"`
	SQLitePath  string `yaml:"sqlitePath"`
	DatabaseURL string `yaml:"databaseURL"`
	RedisAddr   string `yaml:"redisAddr" validate:"omitempty,hostname_port"`
	TTLSeconds  int    `yaml:"ttlSeconds" validate:"gte=0"`
}

type GuidanceConfig struct {
	VoiceThresholdMeters float64 `yaml:"voiceThresholdMeters" validate:"gte=0"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Routing  RoutingConfig  `yaml:"routing"`
	Cache    CacheConfig    `yaml:"cache"`
	Guidance GuidanceConfig `yaml:"guidance"`
}

func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8080},
		Routing: RoutingConfig{
			Provider:      "ors",
			ORSBaseURL:    "https://api.openrouteservice.org",
			OSRMBaseURL:   "https://router.project-osrm.org",
			TimeoutMS:     10000,
			RetryAttempts: 1,
		},
		Cache: CacheConfig{
			Backend:    "sqlite",
			SQLitePath: "data/cache.db",
			TTLSeconds: 7 * 24 * 3600,
		},
		Guidance: GuidanceConfig{VoiceThresholdMeters: 30},
	}
}

// Get returns the environment variable key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the YAML file at path on top of the defaults (a missing file is
// not an error), applies environment overrides and validates the result.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return AppConfig{}, fmt.Errorf("load config: parse %q: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return AppConfig{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("load config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("load config: validate: %w", err)
	}

	if cfg.Routing.Provider == "ors" && strings.TrimSpace(cfg.Routing.ORSAPIKey) == "" {
		return AppConfig{}, errors.New("load config: ORS_API_KEY is required for the ors provider")
	}

	return cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	cfg.Routing.Provider = Get("ROUTING_PROVIDER", cfg.Routing.Provider)
	cfg.Routing.ORSAPIKey = Get("ORS_API_KEY", cfg.Routing.ORSAPIKey)
	cfg.Routing.ORSBaseURL = Get("ORS_BASE_URL", cfg.Routing.ORSBaseURL)
	cfg.Routing.OSRMBaseURL = Get("OSRM_BASE_URL", cfg.Routing.OSRMBaseURL)

	cfg.Cache.Backend = Get("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.SQLitePath = Get("DB_PATH", cfg.Cache.SQLitePath)
	cfg.Cache.DatabaseURL = Get("DATABASE_URL", cfg.Cache.DatabaseURL)
	cfg.Cache.RedisAddr = Get("REDIS_ADDR", cfg.Cache.RedisAddr)

	if v := os.Getenv("VOICE_THRESHOLD_METERS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("VOICE_THRESHOLD_METERS %q: %w", v, err)
		}
		cfg.Guidance.VoiceThresholdMeters = f
	}

	return nil
}

func (c RoutingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
