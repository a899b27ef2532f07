package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Store backend selectors for STORE_BACKEND.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Store configuration.
	StoreBackend string
	DataFile     string

	// StrictValidation blocks submission when any safe-range warning
	// fires, matching the original dashboard behavior. When false,
	// out-of-range readings are stored and the warnings returned.
	StrictValidation bool

	// Reverse geocoding configuration.
	GeocoderEnabled bool
	GeocoderBaseURL string
	GeocoderTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := parseDuration("GEOCODER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StoreBackend:     envOrDefault("STORE_BACKEND", BackendCSV),
		DataFile:         envOrDefault("DATA_FILE", "water_quality_readings.csv"),
		StrictValidation: os.Getenv("STRICT_VALIDATION") == "true",

		GeocoderEnabled: envOrDefault("GEOCODER_ENABLED", "true") == "true",
		GeocoderBaseURL: envOrDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderTimeout: geocoderTimeout,
	}

	switch cfg.StoreBackend {
	case BackendCSV, BackendSQLite, BackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be csv, sqlite, or memory", cfg.StoreBackend)
	}
	if cfg.StoreBackend != BackendMemory && cfg.DataFile == "" {
		return nil, errors.New("DATA_FILE is required")
	}
	if cfg.GeocoderEnabled && cfg.GeocoderBaseURL == "" {
		return nil, errors.New("GEOCODER_ENABLED is true but GEOCODER_BASE_URL is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}
