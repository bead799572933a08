/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package models defines the persistent library entities.
package models

import (
	"strings"
	"time"
)

// Artist is a library artist.
type Artist struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Album is a library album.
type Album struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	ArtistID    string `gorm:"type:uuid;index"`
	Artist      Artist `gorm:"foreignKey:ArtistID"`
	Title       string `gorm:"index"`
	Year        int
	CoverArtURL string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Track is a single library track. List-valued metadata (genres, moods,
// AI tags) is stored as CSV text columns.
type Track struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	AlbumID      string `gorm:"type:uuid;index"`
	Album        Album  `gorm:"foreignKey:AlbumID"`
	ArtistID     string `gorm:"type:uuid;index"`
	Artist       Artist `gorm:"foreignKey:ArtistID"`
	Title        string `gorm:"index"`
	DurationMS   int64
	Year         int
	Genres       string `gorm:"type:text"` // CSV: "Rock,Indie"
	Moods        string `gorm:"type:text"` // CSV
	AITags       string `gorm:"type:text"` // CSV
	Format       string `gorm:"type:varchar(16)"`
	Rating       int    // 0-100
	PlayCount    int64
	LastPlayedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GenreList splits the CSV genres column into a slice.
func (t *Track) GenreList() []string {
	return splitCSV(t.Genres)
}

// SmartPlaylist stores a saved smart playlist rule document. Rules holds the
// wire-encoded rule set as JSON text; MatchMode and Limit are denormalized
// for listing without decoding.
type SmartPlaylist struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"index;not null"`
	Description string `gorm:"type:text"`
	Rules       string `gorm:"type:text;not null"`
	MatchMode   string `gorm:"type:varchar(8)"`
	Limit       int    `gorm:"column:result_limit"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
