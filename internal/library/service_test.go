/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package library

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/resonance-stream/resonance/internal/models"
)

func testService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Artist{}, &models.Album{}, &models.Track{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	artists := []models.Artist{
		{ID: "a1", Name: "The Beatles"},
		{ID: "a2", Name: "ABBA"},
	}
	albums := []models.Album{
		{ID: "al1", ArtistID: "a1", Title: "Abbey Road", Year: 1969, CoverArtURL: "/art/al1.jpg"},
		{ID: "al2", ArtistID: "a2", Title: "Arrival", Year: 1976},
	}
	tracks := []models.Track{
		{ID: "t1", AlbumID: "al1", ArtistID: "a1", Title: "Come Together", DurationMS: 259000, Genres: "Rock"},
		{ID: "t2", AlbumID: "al1", ArtistID: "a1", Title: "Something", DurationMS: 182000, Genres: "Rock"},
		{ID: "t3", AlbumID: "al2", ArtistID: "a2", Title: "Dancing Queen", DurationMS: 230000, Genres: "Pop,Disco"},
	}
	if err := db.Create(&artists).Error; err != nil {
		t.Fatalf("seed artists: %v", err)
	}
	if err := db.Create(&albums).Error; err != nil {
		t.Fatalf("seed albums: %v", err)
	}
	if err := db.Create(&tracks).Error; err != nil {
		t.Fatalf("seed tracks: %v", err)
	}

	return NewService(db, nil, zerolog.Nop())
}

func TestSearchTracksMatchesTitleArtistAlbum(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"title substring", "together", []string{"t1"}},
		{"artist substring", "abba", []string{"t3"}},
		{"album substring", "abbey", []string{"t1", "t2"}},
		{"case insensitive", "DANCING", []string{"t3"}},
		{"no match", "zeppelin", nil},
		{"blank query", "   ", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.SearchTracks(ctx, tc.query, 10)
			if err != nil {
				t.Fatalf("SearchTracks(%q): %v", tc.query, err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("results = %d, want %d (%v)", len(got), len(tc.want), got)
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Errorf("result[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSearchTracksRespectsLimit(t *testing.T) {
	svc := testService(t)

	got, err := svc.SearchTracks(context.Background(), "e", 2)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}
	if len(got) > 2 {
		t.Errorf("results = %d, want at most 2", len(got))
	}
}

func TestSearchTracksBuildsSummaries(t *testing.T) {
	svc := testService(t)

	got, err := svc.SearchTracks(context.Background(), "dancing", 10)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("results = %d, want 1", len(got))
	}
	s := got[0]
	if s.Artist.Name != "ABBA" {
		t.Errorf("artist = %q, want ABBA", s.Artist.Name)
	}
	if s.Album.Title != "Arrival" {
		t.Errorf("album = %q, want Arrival", s.Album.Title)
	}
	if s.FormattedDuration != "3:50" {
		t.Errorf("formatted duration = %q, want 3:50", s.FormattedDuration)
	}
	if len(s.Genres) != 2 || s.Genres[0] != "Pop" {
		t.Errorf("genres = %v, want [Pop Disco]", s.Genres)
	}
}

func TestGetTrack(t *testing.T) {
	svc := testService(t)

	got, err := svc.GetTrack(context.Background(), "t2")
	if err != nil {
		t.Fatalf("GetTrack: %v", err)
	}
	if got.Title != "Something" {
		t.Errorf("title = %q, want Something", got.Title)
	}

	if _, err := svc.GetTrack(context.Background(), "missing"); err == nil {
		t.Error("GetTrack on missing id did not fail")
	}
}

func TestTrackExists(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	ok, err := svc.TrackExists(ctx, []string{"t1", "t3"})
	if err != nil || !ok {
		t.Errorf("TrackExists(existing) = %v, %v", ok, err)
	}
	ok, err = svc.TrackExists(ctx, []string{"t1", "nope"})
	if err != nil || ok {
		t.Errorf("TrackExists(partial) = %v, %v, want false", ok, err)
	}
	ok, err = svc.TrackExists(ctx, nil)
	if err != nil || !ok {
		t.Errorf("TrackExists(empty) = %v, %v, want true", ok, err)
	}
}
