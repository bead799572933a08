/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/resonance-stream/resonance/internal/db"
	"github.com/resonance-stream/resonance/internal/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a small demo library",
	Long:  "Insert a handful of artists, albums and tracks for local development. Safe to run repeatedly; existing demo rows are kept.",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error().Err(err).Msg("close database failed")
		}
	}()

	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := seedLibrary(gdb); err != nil {
		return fmt.Errorf("seed library: %w", err)
	}

	logger.Info().Msg("demo library seeded")
	return nil
}

type seedTrack struct {
	title    string
	duration int64
	genres   string
	moods    string
	rating   int
	plays    int64
}

type seedAlbum struct {
	artist string
	title  string
	year   int
	format string
	tracks []seedTrack
}

var demoLibrary = []seedAlbum{
	{
		artist: "The Beatles", title: "Abbey Road", year: 1969, format: "flac",
		tracks: []seedTrack{
			{"Come Together", 259000, "Rock", "groovy", 92, 340},
			{"Something", 182000, "Rock", "mellow", 88, 210},
			{"Here Comes the Sun", 185000, "Rock,Pop", "uplifting", 95, 510},
		},
	},
	{
		artist: "ABBA", title: "Arrival", year: 1976, format: "mp3",
		tracks: []seedTrack{
			{"Dancing Queen", 230000, "Pop,Disco", "energetic,uplifting", 90, 620},
			{"Money, Money, Money", 185000, "Pop", "energetic", 78, 180},
		},
	},
	{
		artist: "Miles Davis", title: "Kind of Blue", year: 1959, format: "flac",
		tracks: []seedTrack{
			{"So What", 562000, "Jazz", "mellow,contemplative", 97, 150},
			{"Blue in Green", 337000, "Jazz", "melancholic", 91, 95},
		},
	},
}

func seedLibrary(gdb *gorm.DB) error {
	now := time.Now()
	for _, album := range demoLibrary {
		var artist models.Artist
		err := gdb.Where("name = ?", album.artist).First(&artist).Error
		if err == gorm.ErrRecordNotFound {
			artist = models.Artist{ID: uuid.NewString(), Name: album.artist}
			if err := gdb.Create(&artist).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var rec models.Album
		err = gdb.Where("artist_id = ? AND title = ?", artist.ID, album.title).First(&rec).Error
		if err == gorm.ErrRecordNotFound {
			rec = models.Album{
				ID:       uuid.NewString(),
				ArtistID: artist.ID,
				Title:    album.title,
				Year:     album.year,
			}
			if err := gdb.Create(&rec).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, track := range album.tracks {
			var existing models.Track
			err := gdb.Where("album_id = ? AND title = ?", rec.ID, track.title).First(&existing).Error
			if err == nil {
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
			lastPlayed := now.Add(-time.Duration(track.plays) * time.Hour)
			if err := gdb.Create(&models.Track{
				ID:           uuid.NewString(),
				AlbumID:      rec.ID,
				ArtistID:     artist.ID,
				Title:        track.title,
				DurationMS:   track.duration,
				Year:         album.year,
				Genres:       track.genres,
				Moods:        track.moods,
				Format:       album.format,
				Rating:       track.rating,
				PlayCount:    track.plays,
				LastPlayedAt: &lastPlayed,
			}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
