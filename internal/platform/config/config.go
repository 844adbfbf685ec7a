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
  - Startup Resolution: The remote datastore variant is chosen here, once.
  - Fail Fast: A missing signing secret aborts startup.
*/
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/spark/internal/platform/constants"
)

// # Remote Datastore Variants

// RemoteKind names the remote datastore implementation selected at startup.
type RemoteKind string

const (
	// RemoteAuto picks REST when a Supabase URL and key are set, else Postgres
	// when a DATABASE_URL is set, else none.
	RemoteAuto RemoteKind = "auto"
	// RemoteREST talks to a PostgREST-compatible HTTP endpoint.
	RemoteREST RemoteKind = "rest"
	// RemotePostgres talks to PostgreSQL directly through pgx.
	RemotePostgres RemoteKind = "postgres"
	// RemoteNone disables the remote datastore; every request is served in demo mode.
	RemoteNone RemoteKind = "none"
)

// envPrefixPattern matches values delivered as "NAME=value" by some hosting
// platforms. Base64 padding ("abc==") does not match because the prefix must be
// an upper-case identifier.
var envPrefixPattern = regexp.MustCompile(`^[A-Z_]+=(.+)$`)

// # Configuration Schema

// Config holds all runtime configuration for the Spark API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// TokenSecret signs bearer tokens. It has no default.
	TokenSecret string `env:"TOKEN_SECRET,required,notEmpty"`

	// Remote datastore selection
	RemoteBackend RemoteKind    `env:"REMOTE_BACKEND" envDefault:"auto"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"8s"`

	// REST-queryable datastore (Supabase / PostgREST)
	SupabaseURL           string `env:"SUPABASE_URL"`
	SupabasePublicURL     string `env:"NEXT_PUBLIC_SUPABASE_URL"`
	SupabaseServiceKey    string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseAnonKey       string `env:"SUPABASE_ANON_KEY"`
	SupabasePublicAnonKey string `env:"NEXT_PUBLIC_SUPABASE_ANON_KEY"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Local fallback durability. DataDir mirrors to JSON files, RedisURL mirrors
	// to Redis. With neither set the fallback lives in memory only.
	DataDir  string `env:"DATA_DIR"`
	RedisURL string `env:"REDIS_URL"`

	// AllowAnonymousVotes lets unauthenticated clients move vote counters.
	AllowAnonymousVotes bool `env:"ALLOW_ANONYMOUS_VOTES" envDefault:"true"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses configuration from an explicit environment map instead of the
// process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(options env.Options) (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, options); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.TokenSecret = unwrapValue(cfg.TokenSecret)
	cfg.DatabaseURL = unwrapValue(cfg.DatabaseURL)

	switch cfg.RemoteBackend {
	case RemoteAuto, RemoteREST, RemotePostgres, RemoteNone:
	default:
		return nil, fmt.Errorf("config: unknown REMOTE_BACKEND %q", cfg.RemoteBackend)
	}

	if cfg.RemoteTimeout <= 0 {
		return nil, fmt.Errorf("config: REMOTE_TIMEOUT must be positive")
	}
	if limit := constants.GlobalRequestTimeout - constants.LocalFallbackReserve; cfg.RemoteTimeout > limit {
		return nil, fmt.Errorf("config: REMOTE_TIMEOUT must not exceed %s", limit)
	}

	return cfg, nil
}

// unwrapValue strips a leading "NAME=" and surrounding whitespace.
func unwrapValue(value string) string {
	if match := envPrefixPattern.FindStringSubmatch(value); match != nil {
		value = match[1]
	}
	return strings.TrimSpace(value)
}

// # Derived Settings

// SupabaseEndpoint returns the REST datastore base URL, if any.
func (c *Config) SupabaseEndpoint() string {
	return unwrapValue(firstNonEmpty(c.SupabaseURL, c.SupabasePublicURL))
}

// SupabaseKey returns the REST datastore credential, preferring the service key.
func (c *Config) SupabaseKey() string {
	return unwrapValue(firstNonEmpty(c.SupabaseServiceKey, c.SupabaseAnonKey, c.SupabasePublicAnonKey))
}

// RemoteKind resolves "auto" into a concrete variant.
func (c *Config) RemoteKind() RemoteKind {
	if c.RemoteBackend != RemoteAuto {
		return c.RemoteBackend
	}
	if c.SupabaseEndpoint() != "" && c.SupabaseKey() != "" {
		return RemoteREST
	}
	if c.DatabaseURL != "" {
		return RemotePostgres
	}
	return RemoteNone
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
// It gates the Secure flag on the session cookie.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins as a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
