/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires configuration, storage, cache, event bus and the
// HTTP API into a runnable service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/resonance-stream/resonance/internal/api"
	"github.com/resonance-stream/resonance/internal/cache"
	"github.com/resonance-stream/resonance/internal/config"
	"github.com/resonance-stream/resonance/internal/db"
	"github.com/resonance-stream/resonance/internal/eventbus"
	"github.com/resonance-stream/resonance/internal/events"
	"github.com/resonance-stream/resonance/internal/library"
	"github.com/resonance-stream/resonance/internal/matching"
	"github.com/resonance-stream/resonance/internal/telemetry"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db       *gorm.DB
	cache    *cache.Cache
	bus      *eventbus.NATSBus
	library  *library.Service
	matching *matching.Client
	api      *api.API

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		router: chi.NewRouter(),
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	s.db = gdb
	s.DeferClose(func() error { return db.Close(gdb) })

	if err := db.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	s.cache = cache.New(cacheConfig(cfg), logger)
	s.DeferClose(s.cache.Close)

	natsCfg := eventbus.DefaultNATSConfig()
	natsCfg.URL = cfg.NATSURL
	bus, err := eventbus.NewNATSBus(natsCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("event bus: %w", err)
	}
	s.bus = bus
	s.DeferClose(bus.Close)

	s.library = library.NewService(gdb, s.cache, logger)
	s.matching = matching.NewClient(cfg.MatchingEngineURL, cfg.MatchingEngineTimeout, logger)
	s.api = api.New(gdb, s.library, s.matching, s.cache, bus, cfg.Limits, cfg.Search(), logger)

	s.configureRoutes()
	s.startBackgroundWorkers()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func cacheConfig(cfg *config.Config) cache.Config {
	c := cache.DefaultConfig()
	c.RedisAddr = cfg.RedisAddr
	c.RedisPassword = cfg.RedisPassword
	c.RedisDB = cfg.RedisDB
	return c
}

func (s *Server) configureRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(telemetry.TracingMiddleware("resonance-api"))
	s.router.Use(telemetry.MetricsMiddleware)

	s.api.Routes(s.router)
	s.router.Handle("/metrics", telemetry.Handler())
}

// HTTPServer returns the configured HTTP server for the caller to run.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// DeferClose registers a cleanup function run in reverse order on Close.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close stops background workers and releases resources.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.runCacheInvalidationListener(ctx)
	}()
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel != nil {
		s.bgCancel()
	}
	s.bgWG.Wait()
}

// runCacheInvalidationListener evicts cache entries when library or
// playlist mutations are announced, locally or from another node.
func (s *Server) runCacheInvalidationListener(ctx context.Context) {
	trackUpdated := s.bus.Subscribe(events.EventTrackUpdated)
	trackDeleted := s.bus.Subscribe(events.EventTrackDeleted)
	playlistUpdated := s.bus.Subscribe(events.EventSmartPlaylistUpdated)
	playlistDeleted := s.bus.Subscribe(events.EventSmartPlaylistDeleted)

	defer func() {
		s.bus.Unsubscribe(events.EventTrackUpdated, trackUpdated)
		s.bus.Unsubscribe(events.EventTrackDeleted, trackDeleted)
		s.bus.Unsubscribe(events.EventSmartPlaylistUpdated, playlistUpdated)
		s.bus.Unsubscribe(events.EventSmartPlaylistDeleted, playlistDeleted)
	}()

	s.logger.Info().Msg("cache invalidation listener started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache invalidation listener stopped")
			return

		case payload := <-trackUpdated:
			if trackID, ok := payload["track_id"].(string); ok {
				s.cache.InvalidateTrack(ctx, trackID)
			}

		case payload := <-trackDeleted:
			if trackID, ok := payload["track_id"].(string); ok {
				s.cache.InvalidateTrack(ctx, trackID)
			}

		case payload := <-playlistUpdated:
			if playlistID, ok := payload["playlist_id"].(string); ok {
				s.cache.InvalidateSmartPlaylist(ctx, playlistID)
			}

		case payload := <-playlistDeleted:
			if playlistID, ok := payload["playlist_id"].(string); ok {
				s.cache.InvalidateSmartPlaylist(ctx, playlistID)
			}
		}
	}
}
