package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	API     APIConfig     `mapstructure:"api" validate:"required"`
	Storage StorageConfig `mapstructure:"storage"`
	Polling PollingConfig `mapstructure:"polling"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type StorageConfig struct {
	// Path to the local SQLite cache that stands in for browser storage
	// (token, duplicated access_token, serialized user).
	Path string `mapstructure:"path"`
}

type PollingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Limit    int           `mapstructure:"limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- DEFAULTS -----------------

const (
	DefaultBaseURL        = "http://localhost:8000/api/"
	DefaultRequestTimeout = 15 * time.Second
	DefaultPollInterval   = 5 * time.Second
	DefaultPollLimit      = 50
)

func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gradportal.db"
	}
	return filepath.Join(home, ".gradportal", "cache.db")
}

func (c *Config) ApplyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = DefaultRequestTimeout
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath()
	}
	if c.Polling.Interval <= 0 {
		c.Polling.Interval = DefaultPollInterval
	}
	if c.Polling.Limit <= 0 {
		c.Polling.Limit = DefaultPollLimit
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// LoadConfigFromEnv builds a Config purely from environment variables, used
// for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		API: APIConfig{
			BaseURL:        getEnv("PORTAL_API_BASE_URL", DefaultBaseURL),
			RequestTimeout: time.Duration(getEnvAsInt("PORTAL_API_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Storage: StorageConfig{
			Path: getEnv("PORTAL_STORAGE_PATH", DefaultStoragePath()),
		},
		Polling: PollingConfig{
			Interval: time.Duration(getEnvAsInt("PORTAL_POLL_INTERVAL_SECONDS", 5)) * time.Second,
			Limit:    getEnvAsInt("PORTAL_POLL_LIMIT", DefaultPollLimit),
		},
		Logging: LoggingConfig{
			Level:  getEnv("PORTAL_LOG_LEVEL", "info"),
			Format: getEnv("PORTAL_LOG_FORMAT", "json"),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("api config: %v", err))
	}

	if err := c.Polling.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("polling config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *APIConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %s: %w", c.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %s", parsed.Scheme)
	}
	return nil
}

func (c *PollingConfig) Validate() error {
	if c.Interval < time.Second {
		return errors.New("interval must be at least 1s")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	return nil
}
