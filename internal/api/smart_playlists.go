/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resonance-stream/resonance/internal/events"
	"github.com/resonance-stream/resonance/internal/matching"
	"github.com/resonance-stream/resonance/internal/models"
	"github.com/resonance-stream/resonance/internal/smartrules"
)

// smartPlaylistRequest is the create/update payload. Rules carries the
// wire-encoded rule document and is validated before anything persists.
type smartPlaylistRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Rules       json.RawMessage `json:"rules"`
}

type smartPlaylistResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MatchMode   string          `json:"matchMode"`
	Limit       int             `json:"limit"`
	Rules       json.RawMessage `json:"rules,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func playlistResponse(sp models.SmartPlaylist, includeRules bool) smartPlaylistResponse {
	resp := smartPlaylistResponse{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		MatchMode:   sp.MatchMode,
		Limit:       sp.Limit,
		CreatedAt:   sp.CreatedAt,
		UpdatedAt:   sp.UpdatedAt,
	}
	if includeRules {
		resp.Rules = json.RawMessage(sp.Rules)
	}
	return resp
}

// validateRules decodes and validates the submitted rule document,
// including a library check on any seed track references. Returns the
// normalized document ready for storage.
func (a *API) validateRules(r *http.Request, raw json.RawMessage) (smartrules.Document, string, bool) {
	if len(raw) == 0 {
		return smartrules.Document{}, "rules_required", false
	}
	doc, err := smartrules.DecodeDocument(raw, a.limits)
	if err != nil {
		a.logger.Debug().Err(err).Msg("rule document rejected")
		return smartrules.Document{}, "invalid_rules", false
	}

	if seeds := seedTrackIDs(doc); len(seeds) > 0 {
		ok, err := a.library.TrackExists(r.Context(), seeds)
		if err != nil {
			a.logger.Error().Err(err).Msg("seed track lookup failed")
			return smartrules.Document{}, "db_error", false
		}
		if !ok {
			return smartrules.Document{}, "unknown_seed_track", false
		}
	}
	return doc, "", true
}

func seedTrackIDs(doc smartrules.Document) []string {
	var ids []string
	for _, rule := range doc.Rules {
		if seeds, ok := rule.Value.(smartrules.SeedTracksValue); ok {
			ids = append(ids, seeds.TrackIDs...)
		}
	}
	return ids
}

func (a *API) handleSmartPlaylistsList(w http.ResponseWriter, r *http.Request) {
	var playlists []models.SmartPlaylist
	if err := a.db.WithContext(r.Context()).Order("name ASC").Find(&playlists).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	out := make([]smartPlaylistResponse, 0, len(playlists))
	for _, sp := range playlists {
		out = append(out, playlistResponse(sp, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"smartPlaylists": out})
}

func (a *API) handleSmartPlaylistCreate(w http.ResponseWriter, r *http.Request) {
	var req smartPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}

	doc, code, ok := a.validateRules(r, req.Rules)
	if !ok {
		status := http.StatusBadRequest
		if code == "db_error" {
			status = http.StatusInternalServerError
		}
		writeError(w, status, code)
		return
	}

	stored, err := json.Marshal(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_error")
		return
	}

	sp := models.SmartPlaylist{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Rules:       string(stored),
		MatchMode:   string(doc.MatchMode),
		Limit:       doc.Limit,
	}
	if err := a.db.WithContext(r.Context()).Create(&sp).Error; err != nil {
		a.logger.Error().Err(err).Msg("create smart playlist failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.cache != nil {
		a.cache.SetSmartPlaylist(r.Context(), sp)
	}
	a.bus.Publish(events.EventSmartPlaylistCreated, events.Payload{"playlist_id": sp.ID})

	a.logger.Info().Str("playlist_id", sp.ID).Str("name", sp.Name).Msg("smart playlist created")
	writeJSON(w, http.StatusCreated, playlistResponse(sp, true))
}

func (a *API) handleSmartPlaylistGet(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")

	if a.cache != nil {
		if sp, ok := a.cache.GetSmartPlaylist(r.Context(), playlistID); ok {
			writeJSON(w, http.StatusOK, playlistResponse(sp, true))
			return
		}
	}

	var sp models.SmartPlaylist
	if err := a.db.WithContext(r.Context()).First(&sp, "id = ?", playlistID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.cache != nil {
		a.cache.SetSmartPlaylist(r.Context(), sp)
	}
	writeJSON(w, http.StatusOK, playlistResponse(sp, true))
}

func (a *API) handleSmartPlaylistUpdate(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")

	var sp models.SmartPlaylist
	if err := a.db.WithContext(r.Context()).First(&sp, "id = ?", playlistID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req smartPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}

	doc, code, ok := a.validateRules(r, req.Rules)
	if !ok {
		status := http.StatusBadRequest
		if code == "db_error" {
			status = http.StatusInternalServerError
		}
		writeError(w, status, code)
		return
	}

	stored, err := json.Marshal(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_error")
		return
	}

	sp.Name = req.Name
	sp.Description = req.Description
	sp.Rules = string(stored)
	sp.MatchMode = string(doc.MatchMode)
	sp.Limit = doc.Limit
	if err := a.db.WithContext(r.Context()).Save(&sp).Error; err != nil {
		a.logger.Error().Err(err).Str("playlist_id", playlistID).Msg("update smart playlist failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.cache != nil {
		a.cache.InvalidateSmartPlaylist(r.Context(), sp.ID)
	}
	a.bus.Publish(events.EventSmartPlaylistUpdated, events.Payload{"playlist_id": sp.ID})

	writeJSON(w, http.StatusOK, playlistResponse(sp, true))
}

func (a *API) handleSmartPlaylistDelete(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")

	result := a.db.WithContext(r.Context()).Delete(&models.SmartPlaylist{}, "id = ?", playlistID)
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	if a.cache != nil {
		a.cache.InvalidateSmartPlaylist(r.Context(), playlistID)
	}
	a.bus.Publish(events.EventSmartPlaylistDeleted, events.Payload{"playlist_id": playlistID})

	a.logger.Info().Str("playlist_id", playlistID).Msg("smart playlist deleted")
	w.WriteHeader(http.StatusNoContent)
}

// handleSmartPlaylistMaterialize resolves a stored playlist into tracks
// via the matching engine.
func (a *API) handleSmartPlaylistMaterialize(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")

	var sp models.SmartPlaylist
	if err := a.db.WithContext(r.Context()).First(&sp, "id = ?", playlistID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	// Stored documents were validated on write, but re-validate in case
	// the ceilings have been lowered since.
	doc, err := smartrules.DecodeDocument([]byte(sp.Rules), a.limits)
	if err != nil {
		a.logger.Error().Err(err).Str("playlist_id", playlistID).Msg("stored rule document invalid")
		writeError(w, http.StatusUnprocessableEntity, "invalid_rules")
		return
	}

	a.materialize(w, r, doc)
}

// handleSmartPlaylistPreview materializes a submitted document without
// persisting it, for the editor's live preview.
func (a *API) handleSmartPlaylistPreview(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	doc, code, ok := a.validateRules(r, raw)
	if !ok {
		status := http.StatusBadRequest
		if code == "db_error" {
			status = http.StatusInternalServerError
		}
		writeError(w, status, code)
		return
	}

	a.materialize(w, r, doc)
}

func (a *API) materialize(w http.ResponseWriter, r *http.Request, doc smartrules.Document) {
	tracks, err := a.matching.Materialize(r.Context(), doc)
	if err != nil {
		if errors.Is(err, matching.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "engine_not_configured")
			return
		}
		a.logger.Error().Err(err).Msg("materialize failed")
		writeError(w, http.StatusBadGateway, "engine_error")
		return
	}
	if tracks == nil {
		tracks = []models.TrackSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}
