/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartrules

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/resonance-stream/resonance/internal/config"
)

// MatchMode selects how a rule set's rules combine.
type MatchMode string

const (
	MatchAll MatchMode = "all" // logical AND
	MatchAny MatchMode = "any" // logical OR
)

// SortDirection orders the materialized result.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortField enumerates result orderings offered by the editor.
type SortField string

const (
	SortByTitle    SortField = "title"
	SortByArtist   SortField = "artist"
	SortByAlbum    SortField = "album"
	SortByYear     SortField = "year"
	SortByAdded    SortField = "added"
	SortByPlays    SortField = "plays"
	SortByRating   SortField = "rating"
	SortByDuration SortField = "duration"
	SortByRandom   SortField = "random"
)

var validSortFields = map[SortField]bool{
	SortByTitle: true, SortByArtist: true, SortByAlbum: true,
	SortByYear: true, SortByAdded: true, SortByPlays: true,
	SortByRating: true, SortByDuration: true, SortByRandom: true,
}

// Rule is one field/operator/value predicate. Its operator is always a
// member of its field's operator list and its value always conforms to the
// shape mandated by (valueType, operator); the RuleSet mutation methods
// preserve both.
type Rule struct {
	ID       string
	Field    Field
	Operator Operator
	Value    Value
}

// RuleSet is the editable smart playlist definition: an ordered list of
// rules plus aggregation settings. All mutations keep editing state
// well-formed by silently clamping or ignoring out-of-range input; final
// acceptance is the matching engine's responsibility at submission time.
type RuleSet struct {
	limits config.Limits

	matchMode MatchMode
	rules     []Rule
	limit     int
	sortBy    SortField
	sortDir   SortDirection

	// limitBuffer holds the raw limit text while the input is being
	// edited; it may be transiently invalid and is only coerced back into
	// range on commit (input blur).
	limitBuffer  string
	limitEditing bool
}

// DefaultResultLimit is the limit assigned to a fresh rule set.
const DefaultResultLimit = 100

// NewRuleSet creates a rule set with a single default rule. The ceilings in
// limits are fixed for the life of the set.
func NewRuleSet(limits config.Limits) *RuleSet {
	rs := &RuleSet{
		limits:    limits,
		matchMode: MatchAll,
		limit:     DefaultResultLimit,
		sortBy:    SortByAdded,
		sortDir:   SortDesc,
	}
	if rs.limit > limits.MaxPlaylistLimit {
		rs.limit = limits.MaxPlaylistLimit
	}
	rs.rules = append(rs.rules, newDefaultRule())
	return rs
}

func newDefaultRule() Rule {
	cfg := DefaultField()
	return Rule{
		ID:       uuid.NewString(),
		Field:    cfg.Field,
		Operator: cfg.DefaultOperator(),
		Value:    DefaultValue(cfg),
	}
}

// Rules returns a copy of the rule list in order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Rule returns the rule with the given ID.
func (rs *RuleSet) Rule(id string) (Rule, bool) {
	if r := rs.find(id); r != nil {
		return *r, true
	}
	return Rule{}, false
}

// MatchMode returns the current match mode.
func (rs *RuleSet) MatchMode() MatchMode { return rs.matchMode }

// Limit returns the committed result limit.
func (rs *RuleSet) Limit() int { return rs.limit }

// SortBy returns the current sort field.
func (rs *RuleSet) SortBy() SortField { return rs.sortBy }

// SortDirection returns the current sort direction.
func (rs *RuleSet) SortDirection() SortDirection { return rs.sortDir }

// Limits returns the injected ceilings.
func (rs *RuleSet) Limits() config.Limits { return rs.limits }

// AddRule appends a new rule with a fresh ID and the library-wide default
// field, operator, and value. No-op when the rule ceiling is reached; the
// returned bool reports whether a rule was added.
func (rs *RuleSet) AddRule() (Rule, bool) {
	if len(rs.rules) >= rs.limits.MaxRules {
		return Rule{}, false
	}
	r := newDefaultRule()
	rs.rules = append(rs.rules, r)
	return r, true
}

// DeleteRule removes the rule with the given ID. The last remaining rule
// can never be deleted; that call is a silent no-op.
func (rs *RuleSet) DeleteRule(id string) {
	if len(rs.rules) <= 1 {
		return
	}
	for i, r := range rs.rules {
		if r.ID == id {
			rs.rules = append(rs.rules[:i], rs.rules[i+1:]...)
			return
		}
	}
}

// ChangeField moves a rule to a new field, resetting operator and value
// together: the operator becomes the field's declared default and the value
// the field's type default. The three-way reset is atomic from the caller's
// perspective. An unknown field aborts the mutation and leaves the rule
// untouched.
func (rs *RuleSet) ChangeField(id string, f Field) {
	r := rs.find(id)
	if r == nil {
		return
	}
	cfg, ok := FieldConfigFor(f)
	if !ok {
		return
	}
	r.Field = cfg.Field
	r.Operator = cfg.DefaultOperator()
	r.Value = DefaultValue(cfg)
}

// ChangeOperator replaces a rule's operator. If either the old or new
// operator is is_empty the value is reset to the field's type default, so
// switching away from is_empty never resurrects a stale value of the wrong
// shape. When the change crosses value shapes within the field (e.g.
// equals -> between) the value is reset to the new shape's default. An
// operator not legal for the rule's field is ignored.
func (rs *RuleSet) ChangeOperator(id string, op Operator) {
	r := rs.find(id)
	if r == nil {
		return
	}
	cfg, ok := FieldConfigFor(r.Field)
	if !ok {
		return
	}
	if !cfg.HasOperator(op) {
		return
	}
	switch {
	case r.Operator == OpIsEmpty || op == OpIsEmpty:
		r.Value = DefaultValue(cfg)
	case !conforms(r.Value, cfg.ValueType, op):
		r.Value = shapeDefault(cfg, op)
	}
	r.Operator = op
}

// ChangeValue replaces a rule's value. The value must conform to the shape
// mandated by the rule's (valueType, operator) pair; a nonconforming value
// is silently ignored.
func (rs *RuleSet) ChangeValue(id string, v Value) {
	r := rs.find(id)
	if r == nil {
		return
	}
	cfg, ok := FieldConfigFor(r.Field)
	if !ok {
		return
	}
	if !conforms(v, cfg.ValueType, r.Operator) {
		return
	}
	r.Value = v
}

// SetMatchMode switches between all/any. Invalid modes are ignored.
func (rs *RuleSet) SetMatchMode(m MatchMode) {
	if m == MatchAll || m == MatchAny {
		rs.matchMode = m
	}
}

// SetSort replaces the sort field and direction. Invalid input is ignored.
func (rs *RuleSet) SetSort(f SortField, d SortDirection) {
	if !validSortFields[f] {
		return
	}
	if d != SortAsc && d != SortDesc {
		return
	}
	rs.sortBy = f
	rs.sortDir = d
}

// EditLimit stores the raw limit text while the input is being edited. The
// buffer may be transiently empty or out of range; nothing is clamped until
// CommitLimit.
func (rs *RuleSet) EditLimit(raw string) {
	rs.limitBuffer = raw
	rs.limitEditing = true
}

// CommitLimit coerces the edit buffer back into [1, MaxPlaylistLimit] and
// applies it, returning the committed limit. Non-numeric or sub-1 input
// becomes 1; input above the ceiling becomes the ceiling. Called on input
// blur rather than per keystroke.
func (rs *RuleSet) CommitLimit() int {
	if !rs.limitEditing {
		return rs.limit
	}
	rs.limitEditing = false

	n, err := strconv.Atoi(strings.TrimSpace(rs.limitBuffer))
	if err != nil || n < 1 {
		n = 1
	}
	if n > rs.limits.MaxPlaylistLimit {
		n = rs.limits.MaxPlaylistLimit
	}
	rs.limit = n
	rs.limitBuffer = ""
	return rs.limit
}

func (rs *RuleSet) find(id string) *Rule {
	for i := range rs.rules {
		if rs.rules[i].ID == id {
			return &rs.rules[i]
		}
	}
	return nil
}
