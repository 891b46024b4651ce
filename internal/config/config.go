// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	LogLevel       slog.Level
	AllowedOrigins []string
	MetricsEnabled bool
	RateLimit      RateLimitConfig
	Janitor        JanitorConfig
	Retry          RetryConfig
}

// RateLimitConfig bounds requests per client over a sliding window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// JanitorConfig controls sealing of abandoned, unfinished debates.
// A zero DebateTTL disables the janitor.
type JanitorConfig struct {
	DebateTTL time.Duration
	Interval  time.Duration
}

// Enabled reports whether stale debates should be sealed.
func (j JanitorConfig) Enabled() bool {
	return j.DebateTTL > 0
}

// RetryConfig controls retries of database writes that hit SQLITE_BUSY.
// DatabaseMaxRetries counts retries after the first attempt.
type RetryConfig struct {
	DatabaseMaxRetries     int
	DatabaseRetryBaseDelay time.Duration
}

// Error reports an invalid configuration value.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Field + " " + e.Reason
}

// Load reads configuration from environment variables and validates it.
// It never exits the process; the caller decides what to do with an error.
func Load() (*Config, error) {
	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/debates.db"),
		LogLevel:       level,
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
		Janitor: JanitorConfig{
			DebateTTL: getEnvDuration("DEBATE_TTL", 7*24*time.Hour),
			Interval:  getEnvDuration("SWEEP_INTERVAL", time.Hour),
		},
		Retry: RetryConfig{
			DatabaseMaxRetries:     getEnvInt("DB_MAX_RETRIES", 3),
			DatabaseRetryBaseDelay: getEnvDuration("DB_RETRY_BASE_DELAY", 50*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return &Error{Field: "PORT", Reason: "cannot be empty"}
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return &Error{Field: "PORT", Reason: "must be numeric"}
	}
	if c.DBPath == "" {
		return &Error{Field: "DB_PATH", Reason: "cannot be empty"}
	}
	if c.RateLimit.Requests < 0 {
		return &Error{Field: "RATE_LIMIT_REQUESTS", Reason: "must be >= 0"}
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return &Error{Field: "RATE_LIMIT_WINDOW", Reason: "must be > 0"}
	}
	if c.Janitor.DebateTTL < 0 {
		return &Error{Field: "DEBATE_TTL", Reason: "must be >= 0"}
	}
	if c.Janitor.Enabled() && c.Janitor.Interval <= 0 {
		return &Error{Field: "SWEEP_INTERVAL", Reason: "must be > 0"}
	}
	if c.Retry.DatabaseMaxRetries < 0 {
		return &Error{Field: "DB_MAX_RETRIES", Reason: "must be >= 0"}
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return 0, &Error{Field: "LOG_LEVEL", Reason: "must be one of debug, info, warn, error"}
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
