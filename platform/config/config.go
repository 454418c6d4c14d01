// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSweepCronSpec() string
}

// CoreSyncConfig provides settings for the external system of record.
type CoreSyncConfig interface {
	GetCoreBaseURL() string
	GetCoreTimeout() time.Duration
}

// GeoAPIConfig provides settings for outbound elevation and places lookups.
type GeoAPIConfig interface {
	GetElevationBaseURL() string
	GetPlacesBaseURL() string
	GetPlacesAPIKey() string
	GetGeoAPITimeout() time.Duration
}

// EnrichmentConfig provides settings for the narrative enrichment pipeline.
type EnrichmentConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsEnrichmentEnabled() bool
	GetEnrichmentPollInterval() time.Duration
	GetEnrichmentErrorBackoff() time.Duration
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	MigrationsDir   string
	JWTAccessSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
	SweepCronSpec    string

	CoreBaseURL string
	CoreTimeout time.Duration

	ElevationBaseURL string
	PlacesBaseURL    string
	PlacesAPIKey     string
	GeoAPITimeout    time.Duration

	GeminiAPIKey           string
	GeminiModel            string
	EnrichmentEnabled      bool
	EnrichmentPollInterval time.Duration
	EnrichmentErrorBackoff time.Duration
}

// Load reads configuration from the environment, falling back to .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	geminiKey := getEnv("GEMINI_API_KEY", "")
	enrichmentEnabled := strings.EqualFold(getEnv("ENRICHMENT_ENABLED", "true"), "true")

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsDir:   getEnv("MIGRATIONS_DIR", "migrations"),
		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "scores"),
		AsynqConcurrency: int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "10"))),
		SweepCronSpec:    getEnv("SWEEP_CRON_SPEC", "0 */12 * * *"),

		CoreBaseURL: getEnv("CORE_BASE_URL", ""),
		CoreTimeout: mustDuration(getEnv("CORE_TIMEOUT", "5s")),

		ElevationBaseURL: getEnv("ELEVATION_BASE_URL", "https://api.open-meteo.com"),
		PlacesBaseURL:    getEnv("PLACES_BASE_URL", "https://maps.googleapis.com"),
		PlacesAPIKey:     getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeoAPITimeout:    mustDuration(getEnv("GEOAPI_TIMEOUT", "3s")),

		GeminiAPIKey:           geminiKey,
		GeminiModel:            getEnv("GEMINI_LLM_MODEL", "gemini-2.0-flash"),
		EnrichmentEnabled:      enrichmentEnabled && geminiKey != "",
		EnrichmentPollInterval: mustDuration(getEnv("ENRICHMENT_POLL_INTERVAL", "5s")),
		EnrichmentErrorBackoff: mustDuration(getEnv("ENRICHMENT_ERROR_BACKOFF", "10s")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.CoreTimeout <= 0 {
		cfg.CoreTimeout = 5 * time.Second
	}
	if cfg.GeoAPITimeout <= 0 {
		cfg.GeoAPITimeout = 3 * time.Second
	}
	if cfg.EnrichmentPollInterval <= 0 {
		cfg.EnrichmentPollInterval = 5 * time.Second
	}
	if cfg.EnrichmentErrorBackoff <= 0 {
		cfg.EnrichmentErrorBackoff = 10 * time.Second
	}

	return cfg, nil
}

func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetSweepCronSpec() string  { return c.SweepCronSpec }

func (c *Config) GetCoreBaseURL() string        { return c.CoreBaseURL }
func (c *Config) GetCoreTimeout() time.Duration { return c.CoreTimeout }

func (c *Config) GetElevationBaseURL() string     { return c.ElevationBaseURL }
func (c *Config) GetPlacesBaseURL() string        { return c.PlacesBaseURL }
func (c *Config) GetPlacesAPIKey() string         { return c.PlacesAPIKey }
func (c *Config) GetGeoAPITimeout() time.Duration { return c.GeoAPITimeout }

func (c *Config) GetGeminiAPIKey() string                  { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string                   { return c.GeminiModel }
func (c *Config) IsEnrichmentEnabled() bool                { return c.EnrichmentEnabled }
func (c *Config) GetEnrichmentPollInterval() time.Duration { return c.EnrichmentPollInterval }
func (c *Config) GetEnrichmentErrorBackoff() time.Duration { return c.EnrichmentErrorBackoff }

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
