/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Limits are the hard ceilings shared by the rule model and seed picker.
// They are injected into those components at construction. Operations that
// would exceed a ceiling are silent no-ops, never errors.
type Limits struct {
	MaxRules         int
	MaxSeedTracks    int
	MaxPlaylistLimit int
}

// SearchConfig groups the seed-track search knobs.
type SearchConfig struct {
	Debounce time.Duration
	MinQuery int
	Limit    int
}

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	DBBackend   DatabaseBackend
	DBDSN       string

	// Rule model ceilings
	Limits Limits

	// Seed-track search behaviour
	SearchDebounce time.Duration
	SearchMinQuery int
	SearchLimit    int

	// Matching engine (external collaborator)
	MatchingEngineURL     string
	MatchingEngineTimeout time.Duration

	// Redis cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cross-instance event bus
	NATSURL    string
	InstanceID string

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("RESONANCE_ENV", "development"),
		HTTPBind:    getEnv("RESONANCE_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("RESONANCE_HTTP_PORT", 8080),
		DBBackend:   DatabaseBackend(getEnv("RESONANCE_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:       getEnv("RESONANCE_DB_DSN", "resonance.db"),

		Limits: Limits{
			MaxRules:         getEnvInt("RESONANCE_MAX_RULES", 25),
			MaxSeedTracks:    getEnvInt("RESONANCE_MAX_SEED_TRACKS", 5),
			MaxPlaylistLimit: getEnvInt("RESONANCE_MAX_PLAYLIST_LIMIT", 500),
		},

		SearchDebounce: getEnvDuration("RESONANCE_SEARCH_DEBOUNCE", 300*time.Millisecond),
		SearchMinQuery: getEnvInt("RESONANCE_SEARCH_MIN_QUERY", 2),
		SearchLimit:    getEnvInt("RESONANCE_SEARCH_LIMIT", 10),

		MatchingEngineURL:     getEnv("RESONANCE_MATCHING_ENGINE_URL", ""),
		MatchingEngineTimeout: getEnvDuration("RESONANCE_MATCHING_ENGINE_TIMEOUT", 30*time.Second),

		RedisAddr:     getEnv("RESONANCE_REDIS_ADDR", ""),
		RedisPassword: getEnv("RESONANCE_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("RESONANCE_REDIS_DB", 0),

		NATSURL:    getEnv("RESONANCE_NATS_URL", ""),
		InstanceID: getEnv("RESONANCE_INSTANCE_ID", ""),

		TracingEnabled:    getEnvBool("RESONANCE_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("RESONANCE_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("RESONANCE_TRACING_SAMPLE_RATE", 0.1),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBBackend {
	case DatabasePostgres, DatabaseMySQL, DatabaseSQLite:
	default:
		return fmt.Errorf("invalid RESONANCE_DB_BACKEND: %s", c.DBBackend)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("RESONANCE_DB_DSN is required")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid RESONANCE_HTTP_PORT: %d", c.HTTPPort)
	}
	if c.Limits.MaxRules < 1 {
		return fmt.Errorf("RESONANCE_MAX_RULES must be at least 1")
	}
	if c.Limits.MaxSeedTracks < 1 {
		return fmt.Errorf("RESONANCE_MAX_SEED_TRACKS must be at least 1")
	}
	if c.Limits.MaxPlaylistLimit < 1 {
		return fmt.Errorf("RESONANCE_MAX_PLAYLIST_LIMIT must be at least 1")
	}
	if c.SearchMinQuery < 1 {
		return fmt.Errorf("RESONANCE_SEARCH_MIN_QUERY must be at least 1")
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("RESONANCE_SEARCH_LIMIT must be at least 1")
	}
	return nil
}

// Search returns the grouped search knobs.
func (c *Config) Search() SearchConfig {
	return SearchConfig{
		Debounce: c.SearchDebounce,
		MinQuery: c.SearchMinQuery,
		Limit:    c.SearchLimit,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
