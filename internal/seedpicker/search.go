/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package seedpicker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/resonance-stream/resonance/internal/models"
	"github.com/resonance-stream/resonance/internal/telemetry"
)

// TrackSearcher resolves a free-text query against the library.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.TrackSummary, error)
}

// SearchBoxConfig tunes the debounced search behaviour.
type SearchBoxConfig struct {
	// Debounce is the settle window between the last keystroke and the
	// query actually being issued.
	Debounce time.Duration
	// MinQuery is the minimum query length (in runes) that triggers a
	// search; shorter queries clear the result list.
	MinQuery int
	// Limit caps the number of results requested per query.
	Limit int
}

// DefaultSearchBoxConfig mirrors the editor's fixed behaviour: 300ms
// debounce, two-character minimum, ten results.
func DefaultSearchBoxConfig() SearchBoxConfig {
	return SearchBoxConfig{Debounce: 300 * time.Millisecond, MinQuery: 2, Limit: 10}
}

// SearchBox debounces keystrokes into at most one outstanding search per
// settled query. Every query submission carries a monotonically increasing
// sequence number; a response is applied only when its sequence number
// still equals the latest issued one, so a stale response is discarded on
// arrival and the result list always reflects the most recent query. The
// in-flight request is not aborted, only superseded.
type SearchBox struct {
	cfg      SearchBoxConfig
	searcher TrackSearcher
	logger   zerolog.Logger

	// onResults receives the settled query and its results; an empty or
	// too-short query delivers nil results (cleared list).
	onResults func(query string, results []models.TrackSummary)
	// onError surfaces search failures as a non-blocking status; selected
	// seeds and other rules are unaffected.
	onError func(query string, err error)

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	closed bool
}

// NewSearchBox creates a search box over the given collaborator. Both
// callbacks may be nil. Callbacks are invoked from the debounce timer's
// goroutine.
func NewSearchBox(searcher TrackSearcher, cfg SearchBoxConfig, logger zerolog.Logger,
	onResults func(string, []models.TrackSummary), onError func(string, error)) *SearchBox {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultSearchBoxConfig().Debounce
	}
	if cfg.MinQuery < 1 {
		cfg.MinQuery = DefaultSearchBoxConfig().MinQuery
	}
	if cfg.Limit < 1 {
		cfg.Limit = DefaultSearchBoxConfig().Limit
	}
	return &SearchBox{
		cfg:       cfg,
		searcher:  searcher,
		logger:    logger.With().Str("component", "seedpicker").Logger(),
		onResults: onResults,
		onError:   onError,
	}
}

// SetQuery revises the query, typically once per keystroke. A new call
// before the debounce window elapses cancels the pending search intent by
// bumping the sequence counter and rearming the timer.
func (b *SearchBox) SetQuery(q string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.seq++
	snapshot := b.seq
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}

	trimmed := strings.TrimSpace(q)
	if len([]rune(trimmed)) < b.cfg.MinQuery {
		b.mu.Unlock()
		b.deliver(trimmed, nil)
		return
	}

	b.timer = time.AfterFunc(b.cfg.Debounce, func() {
		b.fire(snapshot, trimmed)
	})
	b.mu.Unlock()
}

// Clear resets the query and result list (Escape).
func (b *SearchBox) Clear() {
	b.SetQuery("")
}

// Close stops any pending debounce timer. Responses already in flight are
// discarded by the sequence guard.
func (b *SearchBox) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.seq++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *SearchBox) fire(snapshot uint64, query string) {
	b.mu.Lock()
	if b.closed || b.seq != snapshot {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	results, err := b.searcher.SearchTracks(context.Background(), query, b.cfg.Limit)

	b.mu.Lock()
	stale := b.closed || b.seq != snapshot
	b.mu.Unlock()
	if stale {
		// A newer query settled while this request was in flight; its
		// response must not be rendered against the newer query.
		telemetry.SearchStaleDrops.Inc()
		b.logger.Debug().Str("query", query).Msg("dropped stale search response")
		return
	}

	if err != nil {
		b.logger.Warn().Err(err).Str("query", query).Msg("seed track search failed")
		if b.onError != nil {
			b.onError(query, err)
		}
		return
	}
	b.deliver(query, results)
}

func (b *SearchBox) deliver(query string, results []models.TrackSummary) {
	if b.onResults != nil {
		b.onResults(query, results)
	}
}
