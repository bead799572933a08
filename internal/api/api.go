/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the HTTP surface: smart playlist CRUD and
// materialization, track search for the seed picker, and the field
// registry the rule editor is driven by.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/resonance-stream/resonance/internal/cache"
	"github.com/resonance-stream/resonance/internal/config"
	"github.com/resonance-stream/resonance/internal/events"
	"github.com/resonance-stream/resonance/internal/library"
	"github.com/resonance-stream/resonance/internal/matching"
)

// Publisher is the event bus surface the API needs.
type Publisher interface {
	Publish(eventType events.EventType, payload events.Payload)
}

// API exposes HTTP handlers.
type API struct {
	db       *gorm.DB
	library  *library.Service
	matching *matching.Client
	cache    *cache.Cache
	bus      Publisher
	limits   config.Limits
	search   config.SearchConfig
	logger   zerolog.Logger
}

// New creates the API router wrapper.
func New(db *gorm.DB, lib *library.Service, match *matching.Client, c *cache.Cache, bus Publisher, limits config.Limits, search config.SearchConfig, logger zerolog.Logger) *API {
	return &API{
		db:       db,
		library:  lib,
		matching: match,
		cache:    c,
		bus:      bus,
		limits:   limits,
		search:   search,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Routes registers all API routes.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Get("/fields", a.handleFieldsList)

		r.Get("/tracks/search", a.handleTrackSearch)
		r.Get("/tracks/{trackID}", a.handleTrackGet)

		r.Route("/smart-playlists", func(r chi.Router) {
			r.Get("/", a.handleSmartPlaylistsList)
			r.Post("/", a.handleSmartPlaylistCreate)
			r.Route("/{playlistID}", func(r chi.Router) {
				r.Get("/", a.handleSmartPlaylistGet)
				r.Put("/", a.handleSmartPlaylistUpdate)
				r.Delete("/", a.handleSmartPlaylistDelete)
				r.Post("/materialize", a.handleSmartPlaylistMaterialize)
			})
		})
		r.Post("/smart-playlists/preview", a.handleSmartPlaylistPreview)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
