// Package config provides configuration management for the ingest service.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nucleus/ingest-core/internal/apperr"
)

// Config holds all configuration for the ingest service.
type Config struct {
	// Server settings
	Host string
	Port string

	// TLS settings; both must be set and readable to serve TLS.
	CertPath string
	KeyPath  string

	// Database settings
	DatabaseURL string

	// Auth settings
	BearerToken string

	// Ingestion pipeline tuning
	ChannelCapacity      int
	BatchLimit           int
	MaxUncompressedBytes int64
	RateLimitPerSecond   float64
	RateLimitBurst       int
}

// Load reads configuration from environment variables, applying the
// defaults spec.md pins for the pipeline (batch limit 1000, channel
// capacity on the order of a batch, rate limit 200rps/burst 400). It
// returns a *apperr.Error (CodeConfig) when a required variable is
// missing — callers should exit the process before binding the server.
func Load() (*Config, error) {
	cfg := &Config{
		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "8443"),

		CertPath: getEnv("CERT_PATH", ""),
		KeyPath:  getEnv("KEY_PATH", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		BearerToken: getEnv("BEARER_TOKEN", ""),

		ChannelCapacity:      getEnvInt("INGEST_CHANNEL_CAPACITY", 1000),
		BatchLimit:           getEnvInt("INGEST_BATCH_LIMIT", 1000),
		MaxUncompressedBytes: getEnvInt64("INGEST_MAX_UNCOMPRESSED_BYTES", 256<<20),
		RateLimitPerSecond:   getEnvFloat("INGEST_RATE_LIMIT_RPS", 200),
		RateLimitBurst:       getEnvInt("INGEST_RATE_LIMIT_BURST", 400),
	}

	if cfg.DatabaseURL == "" {
		return nil, apperr.Config(fmt.Errorf("DATABASE_URL is required"))
	}
	if cfg.BearerToken == "" {
		return nil, apperr.Config(fmt.Errorf("BEARER_TOKEN is required"))
	}

	return cfg, nil
}

// TLSEnabled reports whether both a certificate and key path are configured.
func (c *Config) TLSEnabled() bool {
	return c.CertPath != "" && c.KeyPath != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
