package config

import (
	"os"
	"strconv"
	"time"

	"nomen/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig
	Collector CollectorConfig
	Database  DatabaseConfig
	Paths     PathConfig
}

// AnalysisConfig holds statistical engine settings
type AnalysisConfig struct {
	Alpha         float64
	MinSampleSize int
}

// CollectorConfig holds HTTP collector settings
type CollectorConfig struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// DatabaseConfig holds optional report-ledger connection settings.
// Persistence is disabled when URL is empty.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// PathConfig holds filesystem output locations
type PathConfig struct {
	OutputDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Analysis: AnalysisConfig{
			Alpha:         getEnvFloatOrDefault("ANALYSIS_ALPHA", 0.05),
			MinSampleSize: getEnvIntOrDefault("ANALYSIS_MIN_N", 30),
		},
		Collector: CollectorConfig{
			Timeout:           getEnvDurationOrDefault("COLLECTOR_TIMEOUT", 30*time.Second),
			RequestsPerSecond: getEnvFloatOrDefault("COLLECTOR_RPS", 1.0),
			Burst:             getEnvIntOrDefault("COLLECTOR_BURST", 2),
			UserAgent:         getEnvOrDefault("COLLECTOR_USER_AGENT", "nomen/1.0"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Paths: PathConfig{
			OutputDir: getEnvOrDefault("OUTPUT_DIR", "analysis_outputs"),
		},
	}
	cfg.Database.Enabled = cfg.Database.URL != ""

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Analysis.Alpha <= 0 || cfg.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("ANALYSIS_ALPHA must be in (0, 1)")
	}
	if cfg.Analysis.MinSampleSize < 3 {
		return errors.ConfigInvalid("ANALYSIS_MIN_N must be at least 3")
	}
	if cfg.Collector.RequestsPerSecond <= 0 {
		return errors.ConfigInvalid("COLLECTOR_RPS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
