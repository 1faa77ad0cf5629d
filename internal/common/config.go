// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PortfolioConfig holds engine behaviour configuration.
type PortfolioConfig struct {
	// DuplicatePolicy controls what happens when a symbol already held is
	// added again: "reject" (default) or "merge" (sum quantities, re-average
	// cost basis).
	DuplicatePolicy string `toml:"duplicate_policy"`

	// RefreshSchedule is a cron expression for background price refreshes.
	// Empty disables the scheduler.
	RefreshSchedule string `toml:"refresh_schedule"`

	// SearchDebounce is the quiet period before a symbol search is issued.
	SearchDebounce string `toml:"search_debounce"`
}

// GetSearchDebounce parses and returns the search debounce duration.
func (c *PortfolioConfig) GetSearchDebounce() time.Duration {
	d, err := time.ParseDuration(c.SearchDebounce)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	StockAPI StockAPIConfig `toml:"stockapi"`
}

// StockAPIConfig holds quote/search provider API configuration
type StockAPIConfig struct {
	BaseURL     string `toml:"base_url"`
	RateLimit   int    `toml:"rate_limit"`
	Timeout     string `toml:"timeout"`
	SearchLimit int    `toml:"search_limit"`
}

// GetTimeout parses and returns the timeout duration
func (c *StockAPIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Portfolio: PortfolioConfig{
			DuplicatePolicy: "reject",
			RefreshSchedule: "@every 5m",
			SearchDebounce:  "300ms",
		},
		Clients: ClientsConfig{
			StockAPI: StockAPIConfig{
				BaseURL:     "http://localhost:3000",
				RateLimit:   10,
				Timeout:     "10s",
				SearchLimit: 10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateDuplicatePolicy(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if url := os.Getenv("FOLIO_STOCKAPI_URL"); url != "" {
		config.Clients.StockAPI.BaseURL = url
	}

	if policy := os.Getenv("FOLIO_DUPLICATE_POLICY"); policy != "" {
		config.Portfolio.DuplicatePolicy = policy
	}

	if sched := os.Getenv("FOLIO_REFRESH_SCHEDULE"); sched != "" {
		config.Portfolio.RefreshSchedule = sched
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateDuplicatePolicy ensures DuplicatePolicy is "reject" or "merge",
// defaulting to "reject".
func validateDuplicatePolicy(config *Config) {
	policy := strings.ToLower(strings.TrimSpace(config.Portfolio.DuplicatePolicy))
	if policy != "reject" && policy != "merge" {
		policy = "reject"
	}
	config.Portfolio.DuplicatePolicy = policy
}
