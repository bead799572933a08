/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/resonance-stream/resonance/internal/models"
)

// handleTrackSearch backs the seed picker's debounced search. Queries
// below the minimum length return an empty result set rather than an
// error so the picker can simply clear its dropdown.
func (a *API) handleTrackSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(query)) < a.search.MinQuery {
		writeJSON(w, http.StatusOK, map[string]any{"results": []models.TrackSummary{}})
		return
	}

	limit := a.search.Limit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	results, err := a.library.SearchTracks(r.Context(), query, limit)
	if err != nil {
		a.logger.Error().Err(err).Str("query", query).Msg("track search failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if results == nil {
		results = []models.TrackSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleTrackGet returns a single track summary, used to render seed
// chips for documents loaded from storage.
func (a *API) handleTrackGet(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")
	if trackID == "" {
		writeError(w, http.StatusBadRequest, "track_id_required")
		return
	}

	summary, err := a.library.GetTrack(r.Context(), trackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		a.logger.Error().Err(err).Str("track_id", trackID).Msg("track lookup failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
