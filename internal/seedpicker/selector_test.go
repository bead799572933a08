/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package seedpicker

import (
	"fmt"
	"testing"

	"github.com/resonance-stream/resonance/internal/models"
)

func track(id string) models.TrackSummary {
	return models.TrackSummary{
		ID:    id,
		Title: "Title " + id,
		Artist: models.ArtistRef{
			ID:   "artist-" + id,
			Name: "Artist " + id,
		},
	}
}

func TestSelectorPreservesInsertionOrder(t *testing.T) {
	s := NewSelector(5)

	for _, id := range []string{"t3", "t1", "t2"} {
		if !s.Select(track(id)) {
			t.Fatalf("select %s failed", id)
		}
	}

	want := []string{"t3", "t1", "t2"}
	got := s.TrackIDs()
	if len(got) != len(want) {
		t.Fatalf("selection = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("selection = %v, want %v", got, want)
		}
	}
}

func TestSelectorDuplicateIsNoOp(t *testing.T) {
	s := NewSelector(5)
	s.Select(track("t1"))
	s.Select(track("t2"))

	if s.Select(track("t1")) {
		t.Error("duplicate select reported as applied")
	}
	if got := s.Len(); got != 2 {
		t.Errorf("selection size = %d, want 2", got)
	}
}

func TestSelectorCeilingIsNoOp(t *testing.T) {
	s := NewSelector(3)
	for i := 0; i < 3; i++ {
		s.Select(track(fmt.Sprintf("t%d", i)))
	}

	if s.Select(track("overflow")) {
		t.Error("select above ceiling reported as applied")
	}
	if got := s.Len(); got != 3 {
		t.Errorf("selection size = %d, want 3", got)
	}
	if !s.Full() {
		t.Error("Full() = false at ceiling")
	}
}

func TestSelectorCacheSurvivesRemoval(t *testing.T) {
	s := NewSelector(5)
	s.Select(track("t1"))

	s.Remove("t1")

	if s.Len() != 0 {
		t.Fatalf("selection size = %d after removal, want 0", s.Len())
	}
	// Re-adding must hit the retained cache entry, no re-fetch needed.
	cached, ok := s.Track("t1")
	if !ok {
		t.Fatal("display cache evicted on removal")
	}
	if cached.Title != "Title t1" {
		t.Errorf("cached title = %q, want %q", cached.Title, "Title t1")
	}

	if !s.Select(cached) {
		t.Error("re-select after removal failed")
	}
}

func TestSelectorRemoveLast(t *testing.T) {
	s := NewSelector(5)
	s.Select(track("t1"))
	s.Select(track("t2"))

	if got := s.RemoveLast(); got != "t2" {
		t.Errorf("RemoveLast() = %q, want t2", got)
	}
	if got := s.RemoveLast(); got != "t1" {
		t.Errorf("RemoveLast() = %q, want t1", got)
	}
	if got := s.RemoveLast(); got != "" {
		t.Errorf("RemoveLast() on empty = %q, want empty", got)
	}
}

func TestSelectorValue(t *testing.T) {
	s := NewSelector(5)
	s.Select(track("t1"))
	s.Select(track("t2"))

	v := s.Value()
	if len(v.TrackIDs) != 2 || v.TrackIDs[0] != "t1" || v.TrackIDs[1] != "t2" {
		t.Errorf("value = %v, want [t1 t2]", v.TrackIDs)
	}
}
