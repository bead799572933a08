/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package cache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/resonance-stream/resonance/internal/models"
)

func TestCacheDisabledWithoutRedisAddr(t *testing.T) {
	c := New(DefaultConfig(), zerolog.Nop())
	defer c.Close()

	if c.Enabled() {
		t.Fatal("cache enabled with no Redis address")
	}

	ctx := context.Background()

	// Every operation must be a safe no-op when disabled.
	c.SetTrack(ctx, models.TrackSummary{ID: "t1", Title: "x"})
	if _, ok := c.GetTrack(ctx, "t1"); ok {
		t.Error("disabled cache returned a hit")
	}
	c.InvalidateTrack(ctx, "t1")

	c.SetSmartPlaylist(ctx, models.SmartPlaylist{ID: "p1"})
	if _, ok := c.GetSmartPlaylist(ctx, "p1"); ok {
		t.Error("disabled cache returned a hit")
	}
	c.InvalidateSmartPlaylist(ctx, "p1")
}

func TestDefaultConfigTTLs(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TrackTTL != DefaultTrackTTL || cfg.SmartPlaylistTTL != DefaultSmartPlaylistTTL {
		t.Errorf("defaults = %+v", cfg)
	}
	if !cfg.DisableOnError {
		t.Error("DisableOnError not defaulted")
	}
}
