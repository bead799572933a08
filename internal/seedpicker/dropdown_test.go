/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package seedpicker

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/resonance-stream/resonance/internal/models"
)

func newTestPicker(t *testing.T) *Picker {
	t.Helper()
	p := NewPicker(newFakeSearcher(), testBoxConfig(), 5, zerolog.Nop())
	t.Cleanup(p.Close)
	return p
}

func seedResults(p *Picker, ids ...string) {
	results := make([]models.TrackSummary, 0, len(ids))
	for _, id := range ids {
		results = append(results, track(id))
	}
	p.applyResults(p.Query(), results)
}

func TestArrowDownOpensThenAdvances(t *testing.T) {
	p := newTestPicker(t)
	seedResults(p, "t1", "t2", "t3")
	p.HandleKey(KeyTab) // start closed

	p.HandleKey(KeyArrowDown)
	if !p.Open() || p.Focus() != 0 {
		t.Fatalf("after open: open=%v focus=%d, want open at 0", p.Open(), p.Focus())
	}

	p.HandleKey(KeyArrowDown)
	if p.Focus() != 1 {
		t.Errorf("focus = %d, want 1", p.Focus())
	}

	// Advancing past the last result stays on the last result.
	p.HandleKey(KeyArrowDown)
	p.HandleKey(KeyArrowDown)
	p.HandleKey(KeyArrowDown)
	if p.Focus() != 2 {
		t.Errorf("focus = %d, want clamped 2", p.Focus())
	}
}

func TestArrowUpFloorsAtFirstResult(t *testing.T) {
	p := newTestPicker(t)
	seedResults(p, "t1", "t2")
	p.HandleKey(KeyArrowDown)
	p.HandleKey(KeyArrowDown)

	p.HandleKey(KeyArrowUp)
	if p.Focus() != 0 {
		t.Fatalf("focus = %d, want 0", p.Focus())
	}
	p.HandleKey(KeyArrowUp)
	if p.Focus() != 0 {
		t.Errorf("focus = %d, want floor 0", p.Focus())
	}
}

func TestEnterCommitsFocusedResult(t *testing.T) {
	p := newTestPicker(t)
	seedResults(p, "t1", "t2")
	p.HandleKey(KeyArrowDown)
	p.HandleKey(KeyArrowDown) // focus t2

	p.HandleKey(KeyEnter)

	sel := p.Selection()
	if len(sel) != 1 || sel[0] != "t2" {
		t.Errorf("selection = %v, want [t2]", sel)
	}
	if p.Open() {
		t.Error("dropdown still open after commit")
	}
}

func TestEnterWithClosedDropdownIsNoOp(t *testing.T) {
	p := newTestPicker(t)
	seedResults(p, "t1")
	p.HandleKey(KeyTab)

	p.HandleKey(KeyEnter)

	if got := p.Selection(); len(got) != 0 {
		t.Errorf("selection = %v, want empty", got)
	}
}

func TestEscapeClosesAndClearsQuery(t *testing.T) {
	p := newTestPicker(t)
	p.Input("beat")
	seedResults(p, "t1")
	p.HandleKey(KeyArrowDown)

	p.HandleKey(KeyEscape)

	if p.Open() {
		t.Error("dropdown open after Escape")
	}
	if p.Query() != "" {
		t.Errorf("query = %q after Escape, want empty", p.Query())
	}
}

func TestBackspaceOnEmptyQueryRemovesLastChip(t *testing.T) {
	p := newTestPicker(t)
	p.Select(track("t1"))
	p.Select(track("t2"))

	p.HandleKey(KeyBackspace)

	sel := p.Selection()
	if len(sel) != 1 || sel[0] != "t1" {
		t.Errorf("selection = %v, want [t1]", sel)
	}
}

func TestBackspaceWithQueryLeavesChips(t *testing.T) {
	p := newTestPicker(t)
	p.Select(track("t1"))
	p.Input("be")

	p.HandleKey(KeyBackspace)

	if got := p.Selection(); len(got) != 1 {
		t.Errorf("selection = %v, want [t1]", got)
	}
}

func TestHomeEndJumpFocus(t *testing.T) {
	p := newTestPicker(t)
	seedResults(p, "t1", "t2", "t3", "t4")
	p.HandleKey(KeyArrowDown)

	p.HandleKey(KeyEnd)
	if p.Focus() != 3 {
		t.Errorf("focus after End = %d, want 3", p.Focus())
	}
	p.HandleKey(KeyHome)
	if p.Focus() != 0 {
		t.Errorf("focus after Home = %d, want 0", p.Focus())
	}
}

func TestTabClosesDropdown(t *testing.T) {
	p := newTestPicker(t)
	seedResults(p, "t1")
	p.HandleKey(KeyArrowDown)

	p.HandleKey(KeyTab)

	if p.Open() {
		t.Error("dropdown open after Tab")
	}
	if got := p.Selection(); len(got) != 0 {
		t.Errorf("Tab altered selection: %v", got)
	}
}

func TestResultsArrivalOpensDropdown(t *testing.T) {
	p := newTestPicker(t)

	seedResults(p, "t1", "t2")

	if !p.Open() || p.Focus() != 0 {
		t.Errorf("open=%v focus=%d after results, want open at 0", p.Open(), p.Focus())
	}

	p.applyResults("", nil)
	if p.Open() {
		t.Error("dropdown open after empty results")
	}
}

func TestSearchErrorSetsInlineStatus(t *testing.T) {
	p := newTestPicker(t)
	p.Select(track("t1"))

	p.applyError("beat", errTest)

	if p.Status() == "" {
		t.Error("no inline status after search failure")
	}
	if got := p.Selection(); len(got) != 1 {
		t.Errorf("search failure disturbed selection: %v", got)
	}
}

var errTest = errorString("test error")

type errorString string

func (e errorString) Error() string { return string(e) }
