// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

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
  - DI-Friendly: Passed to core components (store, lookup clients) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Tana server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// DataFile is the path of the collection file. The whole collection is
	// loaded from it at startup and rewritten on every mutation.
	DataFile string `env:"DATA_FILE" envDefault:"./data/collection.json"`

	// Release-date lookup providers.
	//
	// Rakuten Books is only consulted when an application ID is configured;
	// Google Books needs no credentials. The base URLs are overridable so
	// tests and local setups can point the clients at stubs.
	RakutenAppID    string `env:"RAKUTEN_APP_ID"`
	GoogleBooksURL  string `env:"GOOGLE_BOOKS_URL"  envDefault:"https://www.googleapis.com/books/v1"`
	RakutenBooksURL string `env:"RAKUTEN_BOOKS_URL" envDefault:"https://app.rakuten.co.jp/services/api/BooksBook/Search/20170404"`

	// The Media Arts Database (the national manga archive) joins title
	// searches when enabled. It is credential-free, so it defaults on.
	MADBEnabled   bool   `env:"MADB_ENABLED"    envDefault:"true"`
	MADBSparqlURL string `env:"MADB_SPARQL_URL" envDefault:"https://mediaarts-db.artmuseums.go.jp/sparql"`

	// LookupTimeout bounds a single outbound metadata request.
	LookupTimeout time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"15s"`

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

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins configured via EXTRA_ORIGINS
// (comma-separated). An empty setting yields a nil slice.
func (c *Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.ExtraOrigins) == "" {
		return nil
	}
	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
