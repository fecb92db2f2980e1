// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, purchase engine) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/comicpass/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Comicpass API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"25"`
	DatabaseMinConns int32  `env:"DATABASE_MIN_CONNS" envDefault:"5"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// JWTPubKeyPath points at the PEM key that verifies access tokens.
	// Tokens are issued by the identity service.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Purchasing
	ChapterPrice        int64 `env:"CHAPTER_PRICE"         envDefault:"299"`
	StartingGrant       int64 `env:"STARTING_GRANT"        envDefault:"0"`
	PurchaseMaxAttempts int   `env:"PURCHASE_MAX_ATTEMPTS" envDefault:"3"`

	// EntitlementCacheTTL bounds how long the reader trusts a cached entitlement.
	EntitlementCacheTTL time.Duration `env:"ENTITLEMENT_CACHE_TTL" envDefault:"10m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects values that would break the purchase invariants at runtime.
func (c *Config) validate() error {
	if c.ChapterPrice <= 0 {
		return fmt.Errorf("config: CHAPTER_PRICE must be positive, got %d", c.ChapterPrice)
	}
	if c.StartingGrant < 0 || c.StartingGrant > constants.MaxGrant {
		return fmt.Errorf("config: STARTING_GRANT must be within [0, %d], got %d", constants.MaxGrant, c.StartingGrant)
	}
	if c.DatabaseMaxConns < 1 || c.DatabaseMinConns < 0 || c.DatabaseMinConns > c.DatabaseMaxConns {
		return fmt.Errorf("config: DATABASE_MIN_CONNS/DATABASE_MAX_CONNS out of range (%d/%d)", c.DatabaseMinConns, c.DatabaseMaxConns)
	}
	if c.PurchaseMaxAttempts < 1 {
		return fmt.Errorf("config: PURCHASE_MAX_ATTEMPTS must be at least 1, got %d", c.PurchaseMaxAttempts)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the production origin list extended by EXTRA_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	origins := []string{"https://comicpass.app", "https://*.comicpass.app"}
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
