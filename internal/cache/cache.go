/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for track summaries
// and smart playlist documents, with graceful fallback when Redis is
// unavailable.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/resonance-stream/resonance/internal/models"
	"github.com/resonance-stream/resonance/internal/telemetry"
)

// Default TTL values for different cache types
const (
	DefaultTrackTTL         = 1 * time.Hour
	DefaultSmartPlaylistTTL = 1 * time.Hour
)

// Key prefixes for Redis cache
const (
	KeyTrack         = "resonance:cache:track:"          // + track_id
	KeySmartPlaylist = "resonance:cache:smart_playlist:" // + playlist_id
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL overrides
	TrackTTL         time.Duration
	SmartPlaylistTTL time.Duration

	// If true, disable caching after a Redis error instead of retrying.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		TrackTTL:         DefaultTrackTTL,
		SmartPlaylistTTL: DefaultSmartPlaylistTTL,
		DisableOnError:   true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool
}

// New creates a new cache instance. An empty Redis address or an
// unreachable server yields a disabled cache, not an error: callers fall
// through to the database.
func New(cfg Config, logger zerolog.Logger) *Cache {
	log := logger.With().Str("component", "cache").Logger()

	if cfg.TrackTTL <= 0 {
		cfg.TrackTTL = DefaultTrackTTL
	}
	if cfg.SmartPlaylistTTL <= 0 {
		cfg.SmartPlaylistTTL = DefaultSmartPlaylistTTL
	}

	if cfg.RedisAddr == "" {
		log.Info().Msg("no Redis address configured, running without caching")
		return &Cache{logger: log, config: cfg, disabled: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{logger: log, config: cfg, disabled: true}
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")
	return &Cache{client: client, logger: log, config: cfg}
}

// Enabled reports whether the cache is active.
func (c *Cache) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// GetTrack returns a cached track summary.
func (c *Cache) GetTrack(ctx context.Context, id string) (models.TrackSummary, bool) {
	var ts models.TrackSummary
	if !c.get(ctx, KeyTrack+id, &ts) {
		telemetry.CacheHits.WithLabelValues("track", "miss").Inc()
		return models.TrackSummary{}, false
	}
	telemetry.CacheHits.WithLabelValues("track", "hit").Inc()
	return ts, true
}

// SetTrack stores a track summary.
func (c *Cache) SetTrack(ctx context.Context, ts models.TrackSummary) {
	c.set(ctx, KeyTrack+ts.ID, ts, c.config.TrackTTL)
}

// InvalidateTrack evicts a track summary.
func (c *Cache) InvalidateTrack(ctx context.Context, id string) {
	c.del(ctx, KeyTrack+id)
}

// GetSmartPlaylist returns a cached smart playlist record.
func (c *Cache) GetSmartPlaylist(ctx context.Context, id string) (models.SmartPlaylist, bool) {
	var sp models.SmartPlaylist
	if !c.get(ctx, KeySmartPlaylist+id, &sp) {
		telemetry.CacheHits.WithLabelValues("smart_playlist", "miss").Inc()
		return models.SmartPlaylist{}, false
	}
	telemetry.CacheHits.WithLabelValues("smart_playlist", "hit").Inc()
	return sp, true
}

// SetSmartPlaylist stores a smart playlist record.
func (c *Cache) SetSmartPlaylist(ctx context.Context, sp models.SmartPlaylist) {
	c.set(ctx, KeySmartPlaylist+sp.ID, sp, c.config.SmartPlaylistTTL)
}

// InvalidateSmartPlaylist evicts a smart playlist record.
func (c *Cache) InvalidateSmartPlaylist(ctx context.Context, id string) {
	c.del(ctx, KeySmartPlaylist+id)
}

func (c *Cache) get(ctx context.Context, key string, out any) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.handleError(err, "get", key)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("corrupt cache entry, evicting")
		c.del(ctx, key)
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set", key)
	}
}

func (c *Cache) del(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "del", key)
	}
}

func (c *Cache) handleError(err error, op, key string) {
	c.logger.Warn().Err(err).Str("op", op).Str("key", key).Msg("Redis error")
	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("caching disabled after Redis error")
	}
}
