/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package library provides read access to the music library: track
// lookup with a cache in front, and the substring search that backs the
// seed track picker.
package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/resonance-stream/resonance/internal/cache"
	"github.com/resonance-stream/resonance/internal/models"
)

// DefaultSearchLimit caps search result pages when the caller passes no
// limit.
const DefaultSearchLimit = 10

// Service answers library queries.
type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewService creates a library service.
func NewService(db *gorm.DB, c *cache.Cache, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		cache:  c,
		logger: logger.With().Str("component", "library").Logger(),
	}
}

// SearchTracks performs a case-insensitive substring search over track
// title, artist name and album title, ordered by title. Results carry
// enough display data for a picker row.
func (s *Service) SearchTracks(ctx context.Context, query string, limit int) ([]models.TrackSummary, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	like := "%" + strings.ToLower(query) + "%"
	var tracks []models.Track
	err := s.db.WithContext(ctx).
		Preload("Album").
		Preload("Artist").
		Joins("JOIN artists ON artists.id = tracks.artist_id").
		Joins("JOIN albums ON albums.id = tracks.album_id").
		Where("LOWER(tracks.title) LIKE ? OR LOWER(artists.name) LIKE ? OR LOWER(albums.title) LIKE ?",
			like, like, like).
		Order("tracks.title ASC").
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}

	summaries := make([]models.TrackSummary, 0, len(tracks))
	for i := range tracks {
		summary := tracks[i].Summary()
		summaries = append(summaries, summary)
		if s.cache != nil {
			s.cache.SetTrack(ctx, summary)
		}
	}
	return summaries, nil
}

// GetTrack returns a single track summary, cache first.
func (s *Service) GetTrack(ctx context.Context, id string) (models.TrackSummary, error) {
	if s.cache != nil {
		if summary, ok := s.cache.GetTrack(ctx, id); ok {
			return summary, nil
		}
	}

	var track models.Track
	err := s.db.WithContext(ctx).
		Preload("Album").
		Preload("Artist").
		First(&track, "id = ?", id).Error
	if err != nil {
		return models.TrackSummary{}, fmt.Errorf("get track %s: %w", id, err)
	}

	summary := track.Summary()
	if s.cache != nil {
		s.cache.SetTrack(ctx, summary)
	}
	return summary, nil
}

// TrackExists reports whether every given track id is present in the
// library. Used to validate seed track references before persisting a
// rule document.
func (s *Service) TrackExists(ctx context.Context, ids []string) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Track{}).
		Where("id IN ?", ids).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count tracks: %w", err)
	}
	return count == int64(len(ids)), nil
}
