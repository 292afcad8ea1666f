package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/intake/pkg/middleware"
	"github.com/JaimeStill/intake/pkg/pagination"
)

const (
	EnvAPIBasePath   = "INTAKE_API_BASE_PATH"
	EnvAPIRunTimeout = "INTAKE_API_RUN_TIMEOUT"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "INTAKE_CORS_ENABLED",
	Origins:          "INTAKE_CORS_ORIGINS",
	AllowedMethods:   "INTAKE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "INTAKE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "INTAKE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "INTAKE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "INTAKE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "INTAKE_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, and pagination settings.
type APIConfig struct {
	BasePath   string                `toml:"base_path"`
	RunTimeout string                `toml:"run_timeout"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
}

// RunTimeoutDuration bounds a single evaluation requested over HTTP.
func (c *APIConfig) RunTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := time.ParseDuration(c.RunTimeout); err != nil {
		return fmt.Errorf("invalid run_timeout: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.RunTimeout != "" {
		c.RunTimeout = overlay.RunTimeout
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.RunTimeout == "" {
		c.RunTimeout = "10m"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIRunTimeout); v != "" {
		c.RunTimeout = v
	}
}
