/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartrules

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/resonance-stream/resonance/internal/config"
)

// WireRule is one rule as submitted to the matching engine.
type WireRule struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value"`
}

// Document is the JSON payload handed to the matching engine on save. The
// editor is responsible for never producing a value shape that mismatches
// its (field, operator) pair; DecodeDocument enforces the same table on the
// way back in.
type Document struct {
	MatchMode MatchMode     `json:"matchMode"`
	Rules     []WireRule    `json:"rules"`
	Limit     int           `json:"limit"`
	SortBy    SortField     `json:"sortBy"`
	SortOrder SortDirection `json:"sortOrder"`
}

// Document serializes the rule set for submission. is_empty rules always
// carry a null value on the wire regardless of the stored default.
func (rs *RuleSet) Document() Document {
	doc := Document{
		MatchMode: rs.matchMode,
		Rules:     make([]WireRule, 0, len(rs.rules)),
		Limit:     rs.limit,
		SortBy:    rs.sortBy,
		SortOrder: rs.sortDir,
	}
	for _, r := range rs.rules {
		v := r.Value
		if r.Operator == OpIsEmpty {
			v = NoValue{}
		}
		doc.Rules = append(doc.Rules, WireRule{Field: r.Field, Operator: r.Operator, Value: v})
	}
	return doc
}

// wireRuleRaw defers value decoding until field and operator are known.
type wireRuleRaw struct {
	Field    Field           `json:"field"`
	Operator Operator        `json:"operator"`
	Value    json.RawMessage `json:"value"`
}

type documentRaw struct {
	MatchMode MatchMode     `json:"matchMode"`
	Rules     []wireRuleRaw `json:"rules"`
	Limit     int           `json:"limit"`
	SortBy    SortField     `json:"sortBy"`
	SortOrder SortDirection `json:"sortOrder"`
}

// DecodeDocument parses and validates a wire document against the field
// registry, the shape table, and the injected ceilings. Unlike the editor
// mutations, decoding rejects malformed input with errors: documents from
// the wire bypass the editor's structural guarantees.
func DecodeDocument(data []byte, limits config.Limits) (Document, error) {
	var raw documentRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}

	if raw.MatchMode != MatchAll && raw.MatchMode != MatchAny {
		return Document{}, fmt.Errorf("invalid match mode %q", raw.MatchMode)
	}
	if len(raw.Rules) < 1 {
		return Document{}, fmt.Errorf("document requires at least one rule")
	}
	if len(raw.Rules) > limits.MaxRules {
		return Document{}, fmt.Errorf("document exceeds %d rules", limits.MaxRules)
	}
	if raw.Limit < 1 || raw.Limit > limits.MaxPlaylistLimit {
		return Document{}, fmt.Errorf("limit %d outside [1, %d]", raw.Limit, limits.MaxPlaylistLimit)
	}
	if !validSortFields[raw.SortBy] {
		return Document{}, fmt.Errorf("invalid sort field %q", raw.SortBy)
	}
	if raw.SortOrder != SortAsc && raw.SortOrder != SortDesc {
		return Document{}, fmt.Errorf("invalid sort order %q", raw.SortOrder)
	}

	doc := Document{
		MatchMode: raw.MatchMode,
		Rules:     make([]WireRule, 0, len(raw.Rules)),
		Limit:     raw.Limit,
		SortBy:    raw.SortBy,
		SortOrder: raw.SortOrder,
	}
	for i, rr := range raw.Rules {
		cfg, ok := FieldConfigFor(rr.Field)
		if !ok {
			return Document{}, fmt.Errorf("rule %d: unknown field %q", i, rr.Field)
		}
		if !cfg.HasOperator(rr.Operator) {
			return Document{}, fmt.Errorf("rule %d: operator %q not legal for field %q", i, rr.Operator, rr.Field)
		}
		v, err := decodeValue(cfg.ValueType, rr.Operator, rr.Value)
		if err != nil {
			return Document{}, fmt.Errorf("rule %d: %w", i, err)
		}
		if seeds, ok := v.(SeedTracksValue); ok {
			if len(seeds.TrackIDs) < 1 {
				return Document{}, fmt.Errorf("rule %d: similar_to requires at least one seed track", i)
			}
			if len(seeds.TrackIDs) > limits.MaxSeedTracks {
				return Document{}, fmt.Errorf("rule %d: similar_to exceeds %d seed tracks", i, limits.MaxSeedTracks)
			}
		}
		doc.Rules = append(doc.Rules, WireRule{Field: rr.Field, Operator: rr.Operator, Value: v})
	}
	return doc, nil
}

// RuleSetFromDocument rebuilds an editable rule set from a validated
// document, assigning fresh rule IDs.
func RuleSetFromDocument(doc Document, limits config.Limits) *RuleSet {
	rs := &RuleSet{
		limits:    limits,
		matchMode: doc.MatchMode,
		limit:     doc.Limit,
		sortBy:    doc.SortBy,
		sortDir:   doc.SortOrder,
	}
	for _, wr := range doc.Rules {
		v := wr.Value
		if wr.Operator == OpIsEmpty {
			if cfg, ok := FieldConfigFor(wr.Field); ok {
				v = DefaultValue(cfg)
			}
		}
		rs.rules = append(rs.rules, Rule{
			ID:       uuid.NewString(),
			Field:    wr.Field,
			Operator: wr.Operator,
			Value:    v,
		})
	}
	return rs
}
