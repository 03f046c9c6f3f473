// Package config loads application configuration from the
// environment, with optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration for the API server and
// the refresh worker.
type Config struct {
	Env  string `validate:"oneof=development staging production"`
	Port string `validate:"required"`

	LogLevel string `validate:"oneof=trace debug info warn error"`

	// Telemetry.
	TelemetryEnabled bool
	OTLPEndpoint     string

	// Upstream sources.
	SoilGridsBaseURL    string
	OpenMeteoBaseURL    string
	ArchiveBaseURL      string
	AgmarknetBaseURL    string
	AgmarknetAPIKey     string
	SourceFetchTimeout  time.Duration `validate:"min=1s"`
	RainfallPeriodDays  int           `validate:"min=7,max=365"`
	WeatherForecastDays int           `validate:"min=1,max=14"`

	// Snapshot cache.
	CacheTTL      time.Duration `validate:"min=1m"`
	CacheCapacity int           `validate:"min=1"`

	// Recommendation defaults.
	MinScore         float64 `validate:"gte=0,lte=1"`
	MaxResults       int     `validate:"min=1,max=20"`
	ProfitCeilingINR float64 `validate:"gt=0"`

	// Worker.
	RefreshInterval time.Duration `validate:"min=1m"`
}

var validate = validator.New()

// Load reads configuration from the environment with defaults. A
// .env file is honored when present.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getenv("APP_ENV", "development"),
		Port:     getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:     getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SoilGridsBaseURL: os.Getenv("SOILGRIDS_BASE_URL"),
		OpenMeteoBaseURL: os.Getenv("OPENMETEO_BASE_URL"),
		ArchiveBaseURL:   os.Getenv("OPENMETEO_ARCHIVE_BASE_URL"),
		AgmarknetBaseURL: os.Getenv("AGMARKNET_BASE_URL"),
		AgmarknetAPIKey:  os.Getenv("AGMARKNET_API_KEY"),
	}

	var err error
	if cfg.SourceFetchTimeout, err = getenvDuration("SOURCE_FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("SNAPSHOT_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheCapacity, err = getenvInt("SNAPSHOT_CACHE_CAPACITY", 100); err != nil {
		return nil, err
	}
	if cfg.RainfallPeriodDays, err = getenvInt("RAINFALL_PERIOD_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.WeatherForecastDays, err = getenvInt("WEATHER_FORECAST_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.MaxResults, err = getenvInt("RECOMMEND_MAX_RESULTS", 5); err != nil {
		return nil, err
	}
	if cfg.MinScore, err = getenvFloat("RECOMMEND_MIN_SCORE", 0.3); err != nil {
		return nil, err
	}
	if cfg.ProfitCeilingINR, err = getenvFloat("PROFIT_CEILING_INR", 100000); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool { return c.Env == "production" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
