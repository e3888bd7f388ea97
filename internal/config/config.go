package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the survey service settings read from the environment
type Config struct {
	Port           string        `json:"port"`
	RedisURL       string        `json:"redisUrl"`       // Empty keeps sessions in process memory
	SessionTTL     time.Duration `json:"sessionTtl"`     // Idle lifetime of a form session
	SubmitDelay    time.Duration `json:"submitDelay"`    // Simulated submission round trip
	SessionSecret  string        `json:"-"`              // Never serialize
	SchemaPath     string        `json:"schemaPath"`     // Empty selects the built-in questionnaire
	LogLevel       string        `json:"logLevel"`       // debug, info, warn or error
	AllowedOrigins string        `json:"allowedOrigins"` // CORS
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	sessionTTL, err := getDurationOrDefault("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	submitDelay, err := getDurationOrDefault("SUBMIT_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		RedisURL:       os.Getenv("REDIS_URL"),
		SessionTTL:     sessionTTL,
		SubmitDelay:    submitDelay,
		SessionSecret:  getEnvOrDefault("SESSION_SECRET", "dev-secret-change-in-production"),
		SchemaPath:     os.Getenv("SURVEY_SCHEMA"),
		LogLevel:       strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		AllowedOrigins: getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("SUBMIT_DELAY must not be negative, got %s", c.SubmitDelay)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// UsesRedis reports whether sessions go to Redis instead of memory
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
