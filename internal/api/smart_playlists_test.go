/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/resonance-stream/resonance/internal/config"
	"github.com/resonance-stream/resonance/internal/events"
	"github.com/resonance-stream/resonance/internal/library"
	"github.com/resonance-stream/resonance/internal/matching"
	"github.com/resonance-stream/resonance/internal/models"
)

func testLimits() config.Limits {
	return config.Limits{MaxRules: 25, MaxSeedTracks: 5, MaxPlaylistLimit: 500}
}

func newTestAPI(t *testing.T, engineURL string) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Artist{}, &models.Album{}, &models.Track{}, &models.SmartPlaylist{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	seed := []any{
		&models.Artist{ID: "a1", Name: "The Beatles"},
		&models.Album{ID: "al1", ArtistID: "a1", Title: "Abbey Road", Year: 1969},
		&models.Track{ID: "t1", AlbumID: "al1", ArtistID: "a1", Title: "Come Together", DurationMS: 259000, Genres: "Rock"},
		&models.Track{ID: "t2", AlbumID: "al1", ArtistID: "a1", Title: "Something", DurationMS: 182000, Genres: "Rock"},
	}
	for _, record := range seed {
		if err := db.Create(record).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	lib := library.NewService(db, nil, zerolog.Nop())
	match := matching.NewClient(engineURL, time.Second, zerolog.Nop())
	search := config.SearchConfig{Debounce: 300 * time.Millisecond, MinQuery: 2, Limit: 10}

	a := New(db, lib, match, nil, events.NewBus(), testLimits(), search, zerolog.Nop())
	r := chi.NewRouter()
	a.Routes(r)
	return r
}

func validRules() string {
	return `{
		"matchMode": "all",
		"rules": [
			{"field": "genre", "operator": "contains", "value": "rock"},
			{"field": "year", "operator": "between", "value": {"min": 1960, "max": 1975}}
		],
		"limit": 100,
		"sortBy": "artist",
		"sortOrder": "asc"
	}`
}

func createPlaylist(t *testing.T, h http.Handler, name, rules string) smartPlaylistResponse {
	t.Helper()
	body := fmt.Sprintf(`{"name": %q, "description": "test", "rules": %s}`, name, rules)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/smart-playlists/", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp smartPlaylistResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp
}

func TestSmartPlaylistCreateAndGet(t *testing.T) {
	h := newTestAPI(t, "")

	created := createPlaylist(t, h, "Classic Rock", validRules())
	if created.ID == "" || created.Name != "Classic Rock" {
		t.Fatalf("created = %+v", created)
	}
	if created.MatchMode != "all" || created.Limit != 100 {
		t.Errorf("denormalized fields = %s/%d, want all/100", created.MatchMode, created.Limit)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/smart-playlists/"+created.ID+"/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got smartPlaylistResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if len(got.Rules) == 0 {
		t.Error("get response missing rules document")
	}
	var doc map[string]any
	if err := json.Unmarshal(got.Rules, &doc); err != nil {
		t.Fatalf("stored rules not valid JSON: %v", err)
	}
	if doc["matchMode"] != "all" {
		t.Errorf("stored matchMode = %v", doc["matchMode"])
	}
}

func TestSmartPlaylistCreateRejectsInvalidRules(t *testing.T) {
	h := newTestAPI(t, "")

	cases := []struct {
		name  string
		body  string
		errib string
	}{
		{"missing name", `{"rules": ` + validRules() + `}`, "name_required"},
		{"missing rules", `{"name": "x"}`, "rules_required"},
		{"bad operator", `{"name": "x", "rules": {"matchMode":"all","rules":[{"field":"year","operator":"contains","value":"x"}],"limit":10,"sortBy":"artist","sortOrder":"asc"}}`, "invalid_rules"},
		{"unknown field", `{"name": "x", "rules": {"matchMode":"all","rules":[{"field":"bpm","operator":"equals","value":1}],"limit":10,"sortBy":"artist","sortOrder":"asc"}}`, "invalid_rules"},
		{"limit above ceiling", `{"name": "x", "rules": {"matchMode":"all","rules":[{"field":"genre","operator":"contains","value":"rock"}],"limit":9999,"sortBy":"artist","sortOrder":"asc"}}`, "invalid_rules"},
		{"unknown seed track", `{"name": "x", "rules": {"matchMode":"all","rules":[{"field":"similar_to","operator":"equals","value":{"track_ids":["ghost"]}}],"limit":10,"sortBy":"artist","sortOrder":"asc"}}`, "unknown_seed_track"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/smart-playlists/", strings.NewReader(tc.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var resp map[string]string
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp["error"] != tc.errib {
				t.Errorf("error = %q, want %q", resp["error"], tc.errib)
			}
		})
	}
}

func TestSmartPlaylistCreateAcceptsSeedRules(t *testing.T) {
	h := newTestAPI(t, "")

	rules := `{"matchMode":"any","rules":[{"field":"similar_to","operator":"equals","value":{"track_ids":["t1","t2"]}}],"limit":50,"sortBy":"random","sortOrder":"asc"}`
	created := createPlaylist(t, h, "Like These", rules)
	if created.MatchMode != "any" || created.Limit != 50 {
		t.Errorf("created = %+v", created)
	}
}

func TestSmartPlaylistUpdate(t *testing.T) {
	h := newTestAPI(t, "")
	created := createPlaylist(t, h, "Old Name", validRules())

	newRules := `{"matchMode":"any","rules":[{"field":"rating","operator":"greater_than","value":80}],"limit":25,"sortBy":"rating","sortOrder":"desc"}`
	body := fmt.Sprintf(`{"name": "New Name", "rules": %s}`, newRules)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/smart-playlists/"+created.ID+"/", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated smartPlaylistResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Name != "New Name" || updated.MatchMode != "any" || updated.Limit != 25 {
		t.Errorf("updated = %+v", updated)
	}
}

func TestSmartPlaylistDelete(t *testing.T) {
	h := newTestAPI(t, "")
	created := createPlaylist(t, h, "Doomed", validRules())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/smart-playlists/"+created.ID+"/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/smart-playlists/"+created.ID+"/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/smart-playlists/"+created.ID+"/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestSmartPlaylistList(t *testing.T) {
	h := newTestAPI(t, "")
	createPlaylist(t, h, "Beta", validRules())
	createPlaylist(t, h, "Alpha", validRules())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/smart-playlists/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var resp struct {
		SmartPlaylists []smartPlaylistResponse `json:"smartPlaylists"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.SmartPlaylists) != 2 {
		t.Fatalf("list length = %d, want 2", len(resp.SmartPlaylists))
	}
	if resp.SmartPlaylists[0].Name != "Alpha" || resp.SmartPlaylists[1].Name != "Beta" {
		t.Errorf("list not sorted by name: %v", resp.SmartPlaylists)
	}
	if len(resp.SmartPlaylists[0].Rules) != 0 {
		t.Error("list entries should omit the rules document")
	}
}

func TestSmartPlaylistMaterialize(t *testing.T) {
	var gotDoc map[string]any
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotDoc)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tracks":[{"id":"t1","title":"Come Together"}]}`))
	}))
	defer engine.Close()

	h := newTestAPI(t, engine.URL)
	created := createPlaylist(t, h, "Rock", validRules())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/smart-playlists/"+created.ID+"/materialize", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("materialize status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Tracks []models.TrackSummary `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Tracks) != 1 || resp.Tracks[0].ID != "t1" {
		t.Errorf("tracks = %v", resp.Tracks)
	}
	if gotDoc["matchMode"] != "all" {
		t.Errorf("engine received matchMode = %v", gotDoc["matchMode"])
	}
}

func TestSmartPlaylistMaterializeEngineNotConfigured(t *testing.T) {
	h := newTestAPI(t, "")
	created := createPlaylist(t, h, "Rock", validRules())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/smart-playlists/"+created.ID+"/materialize", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestSmartPlaylistPreview(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tracks":[]}`))
	}))
	defer engine.Close()

	h := newTestAPI(t, engine.URL)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/smart-playlists/preview",
		bytes.NewReader([]byte(validRules()))))
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d, body %s", rec.Code, rec.Body.String())
	}

	var count int64
	// Preview must not persist anything; verified through the list endpoint.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/smart-playlists/", nil))
	var resp struct {
		SmartPlaylists []smartPlaylistResponse `json:"smartPlaylists"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	count = int64(len(resp.SmartPlaylists))
	if count != 0 {
		t.Errorf("preview persisted %d playlists", count)
	}
}
