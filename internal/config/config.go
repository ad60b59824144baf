package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the MoneyToad server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Analyzer AnalyzerConfig
	Auth     AuthConfig
	Poller   PollerConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AnalyzerConfig points at the external analysis service that processes
// uploaded transaction files.
type AnalyzerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// PollerConfig drives the analysis job scheduler.
type PollerConfig struct {
	// Interval is the cadence between scheduler ticks.
	Interval time.Duration
	// BatchSize bounds how many jobs one tick may process.
	BatchSize int
	// LeaseDuration is how long a job stays locked to one poll step.
	LeaseDuration time.Duration
	// BackoffCap bounds the exponential still-processing backoff.
	BackoffCap time.Duration
	// ErrorRetryDelay is the fixed reschedule delay after a failed poll step.
	ErrorRetryDelay time.Duration
	// InitialDelay is how long a freshly enqueued job waits before its
	// first poll.
	InitialDelay time.Duration
}

// Load reads configuration from environment variables and returns a
// validated Config. Returns an error with a descriptive message if any
// required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("MONEYTOAD_PORT", 8080),
			Env:  envString("MONEYTOAD_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Analyzer: AnalyzerConfig{
			BaseURL: os.Getenv("ANALYZER_BASE_URL"),
			Timeout: envDuration("ANALYZER_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
			RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 14*24*time.Hour),
		},
		Poller: PollerConfig{
			Interval:        envDuration("POLLER_INTERVAL", 2*time.Second),
			BatchSize:       envInt("POLLER_BATCH_SIZE", 10),
			LeaseDuration:   envDuration("POLLER_LEASE_DURATION", 15*time.Second),
			BackoffCap:      envDuration("POLLER_BACKOFF_CAP", 60*time.Second),
			ErrorRetryDelay: envDuration("POLLER_ERROR_RETRY_DELAY", 10*time.Second),
			InitialDelay:    envDuration("POLLER_INITIAL_DELAY", 2*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Analyzer.BaseURL == "" {
		return fmt.Errorf("ANALYZER_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Analyzer.BaseURL, "http://") && !strings.HasPrefix(c.Analyzer.BaseURL, "https://") {
		return fmt.Errorf("ANALYZER_BASE_URL must start with http:// or https://, got %q", c.Analyzer.BaseURL)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Poller.Interval <= 0 {
		return fmt.Errorf("POLLER_INTERVAL must be positive, got %v", c.Poller.Interval)
	}
	if c.Poller.BatchSize <= 0 {
		return fmt.Errorf("POLLER_BATCH_SIZE must be positive, got %d", c.Poller.BatchSize)
	}
	if c.Poller.LeaseDuration <= 0 {
		return fmt.Errorf("POLLER_LEASE_DURATION must be positive, got %v", c.Poller.LeaseDuration)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
