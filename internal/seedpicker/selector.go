/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package seedpicker maintains the editing state for a similar_to rule's
// seed tracks: a bounded, ordered selection of unique track IDs, a
// debounced search box over the library collaborator, and the dropdown
// keyboard state machine.
package seedpicker

import (
	"github.com/resonance-stream/resonance/internal/models"
	"github.com/resonance-stream/resonance/internal/smartrules"
)

// Selector holds an ordered list of unique seed track IDs plus a local
// cache of display data keyed by ID. Insertion order is significant to the
// similarity engine and is never re-sorted. Cache entries survive removal
// so a removed-then-reselected track needs no new search round-trip.
type Selector struct {
	max  int
	ids  []string
	byID map[string]models.TrackSummary
}

// NewSelector creates a selector bounded by maxSeeds.
func NewSelector(maxSeeds int) *Selector {
	return &Selector{
		max:  maxSeeds,
		byID: make(map[string]models.TrackSummary),
	}
}

// Select appends a track to the selection and caches its display data.
// Selecting a duplicate, or selecting at the ceiling, is a silent no-op;
// the returned bool reports whether the selection changed.
func (s *Selector) Select(t models.TrackSummary) bool {
	if s.contains(t.ID) {
		return false
	}
	if len(s.ids) >= s.max {
		return false
	}
	s.ids = append(s.ids, t.ID)
	s.byID[t.ID] = t
	return true
}

// Remove drops a track ID from the selection. The display-data cache entry
// is retained on purpose.
func (s *Selector) Remove(id string) {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// RemoveLast drops the most-recently-added selection (Backspace on an empty
// query). Returns the removed ID, or "" when the selection is empty.
func (s *Selector) RemoveLast() string {
	if len(s.ids) == 0 {
		return ""
	}
	id := s.ids[len(s.ids)-1]
	s.ids = s.ids[:len(s.ids)-1]
	return id
}

// TrackIDs returns the selection in insertion order.
func (s *Selector) TrackIDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Track returns cached display data for an ID. Hits include tracks that
// have since been removed from the selection.
func (s *Selector) Track(id string) (models.TrackSummary, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// Len returns the current selection size.
func (s *Selector) Len() int { return len(s.ids) }

// Full reports whether the selection is at its ceiling.
func (s *Selector) Full() bool { return len(s.ids) >= s.max }

// Value renders the selection as a similar_to rule value.
func (s *Selector) Value() smartrules.SeedTracksValue {
	return smartrules.SeedTracksValue{TrackIDs: s.TrackIDs()}
}

func (s *Selector) contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}
