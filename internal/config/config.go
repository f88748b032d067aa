// Package config provides configuration loading and validation for the clinic server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied by MergeWithDefaults when a field is unset.
const (
	DefaultPort            = 8080
	DefaultLanguage        = "en"
	DefaultCatalogCacheTTL = 5 * time.Minute
)

// Config represents the server configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from flags and env.
type Config struct {
	Port            int    `json:"port,omitempty"`              // HTTP listen port
	DatabaseURL     string `json:"database_url,omitempty"`      // PostgreSQL connection URL
	AllowedOrigin   string `json:"allowed_origin,omitempty"`    // CORS origin of the public site
	DefaultLanguage string `json:"default_language,omitempty"`  // "en" or "es"
	CatalogCacheTTL string `json:"catalog_cache_ttl,omitempty"` // Go duration, e.g. "5m"
	Verbose         bool   `json:"verbose,omitempty"`           // Debug logging
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	switch c.DefaultLanguage {
	case "", "en", "es":
	default:
		return fmt.Errorf("config error: 'default_language' must be \"en\" or \"es\", got %q", c.DefaultLanguage)
	}
	if c.CatalogCacheTTL != "" {
		ttl, err := time.ParseDuration(c.CatalogCacheTTL)
		if err != nil {
			return fmt.Errorf("config error: invalid 'catalog_cache_ttl': %w", err)
		}
		if ttl < 0 {
			return fmt.Errorf("config error: 'catalog_cache_ttl' must be non-negative")
		}
	}
	return nil
}

// CacheTTL returns the parsed catalog cache TTL, or the default when unset or invalid.
func (c *Config) CacheTTL() time.Duration {
	if c.CatalogCacheTTL == "" {
		return DefaultCatalogCacheTTL
	}
	ttl, err := time.ParseDuration(c.CatalogCacheTTL)
	if err != nil || ttl < 0 {
		return DefaultCatalogCacheTTL
	}
	return ttl
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.AllowedOrigin == "" {
		result.AllowedOrigin = defaults.AllowedOrigin
	}
	if result.DefaultLanguage == "" {
		result.DefaultLanguage = defaults.DefaultLanguage
	}
	if result.DefaultLanguage == "" {
		result.DefaultLanguage = DefaultLanguage
	}
	if result.CatalogCacheTTL == "" {
		result.CatalogCacheTTL = defaults.CatalogCacheTTL
	}

	// Bools cannot distinguish unset from false, so flags always win.

	return result
}

// FromEnv returns a Config populated from environment variables, for use as
// the defaults argument of MergeWithDefaults.
func FromEnv() Config {
	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AllowedOrigin:   os.Getenv("ALLOWED_ORIGIN"),
		DefaultLanguage: os.Getenv("DEFAULT_LANGUAGE"),
		CatalogCacheTTL: os.Getenv("CATALOG_CACHE_TTL"),
	}
	if p := os.Getenv("PORT"); p != "" {
		_, _ = fmt.Sscanf(p, "%d", &cfg.Port)
	}
	return cfg
}
