/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "fmt"

// AlbumRef is the denormalized album slice of a track summary.
type AlbumRef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CoverArtURL string `json:"coverArtUrl"`
}

// ArtistRef is the denormalized artist slice of a track summary.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TrackSummary is the track display shape returned by track search and the
// matching engine: enough to render a result row or a seed-track chip
// without further lookups.
type TrackSummary struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	DurationMS        int64     `json:"durationMs"`
	FormattedDuration string    `json:"formattedDuration"`
	Genres            []string  `json:"genres"`
	Album             AlbumRef  `json:"album"`
	Artist            ArtistRef `json:"artist"`
}

// Summary builds the denormalized summary for a track. Album and Artist
// must be preloaded.
func (t *Track) Summary() TrackSummary {
	return TrackSummary{
		ID:                t.ID,
		Title:             t.Title,
		DurationMS:        t.DurationMS,
		FormattedDuration: FormatDuration(t.DurationMS),
		Genres:            t.GenreList(),
		Album: AlbumRef{
			ID:          t.Album.ID,
			Title:       t.Album.Title,
			CoverArtURL: t.Album.CoverArtURL,
		},
		Artist: ArtistRef{
			ID:   t.Artist.ID,
			Name: t.Artist.Name,
		},
	}
}

// FormatDuration renders milliseconds as m:ss (h:mm:ss past the hour).
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSec := ms / 1000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
