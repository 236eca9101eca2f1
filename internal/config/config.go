package config

import (
	"os"
	"strconv"

	"churnscope/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Charts ChartConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	APIPort     string
	MaxUploadMB int
}

// DataConfig holds data source settings
type DataConfig struct {
	// File optionally preloads a dataset at boot so the dashboard is live
	// without an interactive upload.
	File string
}

// ChartConfig holds aggregation settings
type ChartConfig struct {
	HistogramBins int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvOrDefault("PORT", "8080"),
			APIPort:     getEnvOrDefault("API_PORT", "8081"),
			MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 16),
		},
		Data: DataConfig{
			File: getEnvOrDefault("DATA_FILE", ""),
		},
		Charts: ChartConfig{
			HistogramBins: getEnvIntOrDefault("HISTOGRAM_BINS", 20),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Charts.HistogramBins < 1 || cfg.Charts.HistogramBins > 200 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be between 1 and 200")
	}
	if cfg.Server.MaxUploadMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if cfg.Server.Port == cfg.Server.APIPort {
		return errors.ConfigInvalid("PORT and API_PORT must differ")
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
