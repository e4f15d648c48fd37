// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	API      APIConfig
	Session  SessionConfig
	LogLevel string
	Port     int
	DevMode  bool
}

// APIConfig describes the remote banking-transactions API and how it is polled.
type APIConfig struct {
	BaseURL            string
	Timeout            time.Duration // Per-call deadline
	CacheTTL           time.Duration // Freshness window of the cache registry
	PageSize           int
	ProfileConcurrency int // Max concurrent profile lookups when a collection carries bare IDs
}

// SessionConfig controls the per-browser orchestrator sessions of the state server.
type SessionConfig struct {
	IdleTimeout  time.Duration
	ReapSchedule string // cron spec for the idle-session reaper
	Rate         float64
	Burst        int
}

// Defaults mirror the remote API's documented limits.
const (
	DefaultAPIURL             = "http://localhost:8000"
	DefaultAPITimeout         = 30 * time.Second
	DefaultCacheTTL           = 60 * time.Second
	DefaultPageSize           = 50
	DefaultProfileConcurrency = 8
	DefaultPort               = 8002
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment without validating it.
func FromEnv() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:            getEnv("BANKDASH_API_URL", DefaultAPIURL),
			Timeout:            getEnvAsDuration("BANKDASH_API_TIMEOUT", DefaultAPITimeout),
			CacheTTL:           getEnvAsDuration("BANKDASH_CACHE_TTL", DefaultCacheTTL),
			PageSize:           getEnvAsInt("BANKDASH_PAGE_SIZE", DefaultPageSize),
			ProfileConcurrency: getEnvAsInt("BANKDASH_PROFILE_CONCURRENCY", DefaultProfileConcurrency),
		},
		Session: SessionConfig{
			IdleTimeout:  getEnvAsDuration("BANKDASH_SESSION_IDLE_TIMEOUT", 30*time.Minute),
			ReapSchedule: getEnv("BANKDASH_SESSION_REAP_SCHEDULE", "@every 1m"),
			Rate:         getEnvAsFloat("BANKDASH_SESSION_RATE", 20),
			Burst:        getEnvAsInt("BANKDASH_SESSION_BURST", 40),
		},
		Port:     getEnvAsInt("GO_PORT", DefaultPort),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid BANKDASH_API_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid BANKDASH_API_URL %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("BANKDASH_API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.API.CacheTTL <= 0 {
		return fmt.Errorf("BANKDASH_CACHE_TTL must be positive, got %s", c.API.CacheTTL)
	}
	if c.API.ProfileConcurrency <= 0 {
		return fmt.Errorf("BANKDASH_PROFILE_CONCURRENCY must be positive, got %d", c.API.ProfileConcurrency)
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("BANKDASH_SESSION_IDLE_TIMEOUT must be positive, got %s", c.Session.IdleTimeout)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT out of range: %d", c.Port)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("45s") or a bare number of seconds ("60").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
