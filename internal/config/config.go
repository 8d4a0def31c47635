package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// NASA FIRMS hotspot feed.
	FIRMSAPIKey  string
	FIRMSBaseURL string
	FIRMSBBox    string
	FIRMSTimeout time.Duration

	// Hotspot result cache.
	CacheBackend    string // "memory" or "redis"
	CacheTTL        time.Duration
	CacheMaxEntries int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Earth Engine analysis backend.
	GEEBaseURL         string
	GEEProject         string
	GEECredentialsFile string
	GEETimeout         time.Duration

	// Application persistence and auth.
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	// Alert event publishing (feature-flagged: off when no brokers set).
	KafkaBrokers     []string
	KafkaAlertsTopic string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged in first.
func Load() (*Config, error) {
	// Missing .env is fine: containers inject the environment directly.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	firmsTimeout, err := parseDuration("FIRMS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	geeTimeout, err := parseDuration("GEE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	jwtTTL, err := parseDuration("JWT_TTL", "24h")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FIRMSAPIKey:  os.Getenv("FIRMS_API_KEY"),
		FIRMSBaseURL: envOrDefault("FIRMS_BASE_URL", "https://firms.modaps.eosdis.nasa.gov/api/area/csv"),
		FIRMSBBox:    envOrDefault("FIRMS_BBOX", "-60,-31,-57,-26"),
		FIRMSTimeout: firmsTimeout,

		CacheBackend:    envOrDefault("CACHE_BACKEND", "memory"),
		CacheTTL:        cacheTTL,
		CacheMaxEntries: envIntOrDefault("CACHE_MAX_ENTRIES", 20),
		RedisAddr:       envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envIntOrDefault("REDIS_DB", 0),

		GEEBaseURL:         envOrDefault("GEE_BASE_URL", "https://earthengine.googleapis.com"),
		GEEProject:         os.Getenv("GEE_PROJECT"),
		GEECredentialsFile: os.Getenv("GEE_CREDENTIALS_FILE"),
		GEETimeout:         geeTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      jwtTTL,

		KafkaBrokers:     parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertsTopic: envOrDefault("KAFKA_ALERTS_TOPIC", "wildfire-alerts"),
	}

	if cfg.FIRMSAPIKey == "" {
		return nil, errors.New("FIRMS_API_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q (use memory or redis)", cfg.CacheBackend)
	}
	if cfg.CacheMaxEntries < 1 {
		return nil, errors.New("CACHE_MAX_ENTRIES must be at least 1")
	}

	return cfg, nil
}

// AlertsEnabled reports whether Kafka alert publishing is configured.
func (c *Config) AlertsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// GEEEnabled reports whether the analysis backend is configured.
func (c *Config) GEEEnabled() bool {
	return c.GEEProject != "" && c.GEECredentialsFile != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
