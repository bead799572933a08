/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package seedpicker

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/resonance-stream/resonance/internal/models"
)

// Key enumerates the keyboard inputs the picker responds to.
type Key int

const (
	KeyArrowDown Key = iota
	KeyArrowUp
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyHome
	KeyEnd
	KeyTab
)

// Picker is the headless seed-track editor: query input, debounced search,
// dropdown focus handling, and the bounded selection. It is the state
// behind a similar_to rule's value editor.
type Picker struct {
	mu       sync.Mutex
	selector *Selector
	box      *SearchBox

	query   string
	results []models.TrackSummary
	open    bool
	focus   int
	lastErr string
}

// NewPicker creates a picker over the given search collaborator.
func NewPicker(searcher TrackSearcher, cfg SearchBoxConfig, maxSeeds int, logger zerolog.Logger) *Picker {
	p := &Picker{
		selector: NewSelector(maxSeeds),
	}
	p.box = NewSearchBox(searcher, cfg, logger, p.applyResults, p.applyError)
	return p
}

// Input revises the query, typically once per keystroke.
func (p *Picker) Input(q string) {
	p.mu.Lock()
	p.query = q
	p.lastErr = ""
	p.mu.Unlock()
	p.box.SetQuery(q)
}

// HandleKey applies one keyboard event:
// ArrowDown opens the result list or advances focus; ArrowUp retreats with
// a floor at the first result; Enter commits the focused result; Escape
// closes the list and clears the query; Backspace on an empty query removes
// the most-recently-added seed; Home/End jump focus; Tab closes the
// dropdown without otherwise altering state.
func (p *Picker) HandleKey(k Key) {
	var clearBox bool

	p.mu.Lock()
	switch k {
	case KeyArrowDown:
		if !p.open {
			if len(p.results) > 0 {
				p.open = true
				p.focus = 0
			}
		} else if p.focus < len(p.results)-1 {
			p.focus++
		}
	case KeyArrowUp:
		if p.open && p.focus > 0 {
			p.focus--
		}
	case KeyEnter:
		if p.open && p.focus >= 0 && p.focus < len(p.results) {
			p.selector.Select(p.results[p.focus])
			p.open = false
			p.focus = 0
		}
	case KeyEscape:
		p.open = false
		p.focus = 0
		p.query = ""
		clearBox = true
	case KeyBackspace:
		if p.query == "" {
			p.selector.RemoveLast()
		}
	case KeyHome:
		if p.open {
			p.focus = 0
		}
	case KeyEnd:
		if p.open && len(p.results) > 0 {
			p.focus = len(p.results) - 1
		}
	case KeyTab:
		p.open = false
	}
	p.mu.Unlock()

	if clearBox {
		p.box.Clear()
	}
}

// Select commits a result directly (mouse click path).
func (p *Picker) Select(t models.TrackSummary) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selector.Select(t)
}

// Remove drops a selected seed by ID (chip close button).
func (p *Picker) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selector.Remove(id)
}

// Selection returns the seed track IDs in insertion order.
func (p *Picker) Selection() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selector.TrackIDs()
}

// CachedTrack returns display data for a seed, including removed ones.
func (p *Picker) CachedTrack(id string) (models.TrackSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selector.Track(id)
}

// Results returns the current result list.
func (p *Picker) Results() []models.TrackSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.TrackSummary, len(p.results))
	copy(out, p.results)
	return out
}

// Open reports whether the dropdown is showing.
func (p *Picker) Open() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Focus returns the focused result index.
func (p *Picker) Focus() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focus
}

// Query returns the current query text.
func (p *Picker) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Status returns the inline search error message, empty when healthy.
func (p *Picker) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Close releases the debounce timer.
func (p *Picker) Close() {
	p.box.Close()
}

func (p *Picker) applyResults(query string, results []models.TrackSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = results
	p.lastErr = ""
	if len(results) == 0 {
		p.open = false
		p.focus = 0
		return
	}
	p.open = true
	p.focus = 0
}

func (p *Picker) applyError(query string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Non-blocking inline status; the selection and other rules stand.
	p.lastErr = "search_failed"
}
