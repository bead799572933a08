/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package matching

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/resonance-stream/resonance/internal/config"
	"github.com/resonance-stream/resonance/internal/smartrules"
)

func testDocument(t *testing.T) smartrules.Document {
	t.Helper()
	limits := config.Limits{MaxRules: 25, MaxSeedTracks: 5, MaxPlaylistLimit: 500}
	rs := smartrules.NewRuleSet(limits)
	return rs.Document()
}

func TestMaterializePostsDocumentAndDecodesTracks(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tracks":[{"id":"t1","title":"Come Together"},{"id":"t2","title":"Something"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	tracks, err := client.Materialize(context.Background(), testDocument(t))
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	if gotPath != "/v1/match" {
		t.Errorf("path = %q, want /v1/match", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	for _, key := range []string{"matchMode", "rules", "limit", "sortBy", "sortOrder"} {
		if _, ok := gotBody[key]; !ok {
			t.Errorf("request body missing %q: %v", key, gotBody)
		}
	}

	if len(tracks) != 2 || tracks[0].ID != "t1" || tracks[1].ID != "t2" {
		t.Errorf("tracks = %v, want engine order [t1 t2]", tracks)
	}
}

func TestMaterializeEngineErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	if _, err := client.Materialize(context.Background(), testDocument(t)); err == nil {
		t.Error("no error for engine 500")
	}
}

func TestMaterializeNotConfigured(t *testing.T) {
	client := NewClient("", time.Second, zerolog.Nop())
	_, err := client.Materialize(context.Background(), testDocument(t))
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
