/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartrules

import (
	"encoding/json"
	"fmt"
)

// Value is the sealed tagged union of rule value shapes. The concrete type
// carried by a rule is fully determined by its field's value type and its
// operator; see valueShape.
type Value interface {
	json.Marshaler
	valueKind() valueShape
}

// valueShape classifies the wire shape of a value.
type valueShape int

const (
	shapeText valueShape = iota
	shapeTextList
	shapeNumber
	shapeNumberRange
	shapeDate
	shapeDateRange
	shapeSeedTracks
	shapeNone
)

// TextValue is a single string value.
type TextValue string

// TextListValue is an ordered list of strings, used by in/not_in operators.
type TextListValue []string

// NumberValue is a numeric value; Valid=false represents null.
type NumberValue struct {
	N     float64
	Valid bool
}

// NumberRangeValue is an inclusive numeric range for the between operator.
type NumberRangeValue struct {
	Min float64
	Max float64
}

// DateValue is an ISO date string (YYYY-MM-DD).
type DateValue string

// DateRangeValue is an inclusive ISO date range for the between operator.
type DateRangeValue struct {
	Min string
	Max string
}

// SeedTracksValue anchors a similar_to rule. Track order is significant to
// the similarity engine and must never be re-sorted.
type SeedTracksValue struct {
	TrackIDs []string
}

// NoValue is the value carried by is_empty rules; it serializes to null.
type NoValue struct{}

func (TextValue) valueKind() valueShape        { return shapeText }
func (TextListValue) valueKind() valueShape    { return shapeTextList }
func (NumberValue) valueKind() valueShape      { return shapeNumber }
func (NumberRangeValue) valueKind() valueShape { return shapeNumberRange }
func (DateValue) valueKind() valueShape        { return shapeDate }
func (DateRangeValue) valueKind() valueShape   { return shapeDateRange }
func (SeedTracksValue) valueKind() valueShape  { return shapeSeedTracks }
func (NoValue) valueKind() valueShape          { return shapeNone }

// MarshalJSON encodes the value as a bare string.
func (v TextValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// MarshalJSON encodes the value as a string array (never null).
func (v TextListValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(v))
}

// MarshalJSON encodes the value as a number, or null when not set.
func (v NumberValue) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.N)
}

// MarshalJSON encodes the range as {"min":n,"max":n}.
func (v NumberRangeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]float64{"min": v.Min, "max": v.Max})
}

// MarshalJSON encodes the date as a bare string.
func (v DateValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// MarshalJSON encodes the range as {"min":s,"max":s}.
func (v DateRangeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"min": v.Min, "max": v.Max})
}

// MarshalJSON encodes the seeds as {"track_ids":[...]}.
func (v SeedTracksValue) MarshalJSON() ([]byte, error) {
	ids := v.TrackIDs
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(map[string][]string{"track_ids": ids})
}

// MarshalJSON encodes the absent value as null.
func (NoValue) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// shapeFor returns the value shape mandated for a (valueType, operator)
// pair. is_empty carries no value regardless of value type.
func shapeFor(vt ValueType, op Operator) valueShape {
	if op == OpIsEmpty {
		return shapeNone
	}
	switch vt {
	case TypeString, TypeArray:
		if op == OpIn || op == OpNotIn {
			return shapeTextList
		}
		return shapeText
	case TypeNumber:
		if op == OpBetween {
			return shapeNumberRange
		}
		return shapeNumber
	case TypeDate:
		if op == OpBetween {
			return shapeDateRange
		}
		return shapeDate
	case TypeSimilarTo:
		return shapeSeedTracks
	}
	return shapeNone
}

// conforms reports whether v has the shape mandated for (vt, op). An
// is_empty rule may carry any value since the codec emits null for it; the
// stored value is the field default per the reset semantics.
func conforms(v Value, vt ValueType, op Operator) bool {
	if v == nil {
		return false
	}
	if op == OpIsEmpty {
		return true
	}
	return v.valueKind() == shapeFor(vt, op)
}

// DefaultValue computes the per-type default assigned when a field is newly
// selected or a rule's value is reset: "" for strings and dates, the
// declared Min for numbers, an empty list for arrays, and an empty seed set
// for similar_to.
func DefaultValue(cfg FieldConfig) Value {
	switch cfg.ValueType {
	case TypeString:
		return TextValue("")
	case TypeNumber:
		min := 0.0
		if cfg.Numeric != nil {
			min = cfg.Numeric.Min
		}
		return NumberValue{N: min, Valid: true}
	case TypeArray:
		return TextListValue{}
	case TypeDate:
		return DateValue("")
	case TypeSimilarTo:
		return SeedTracksValue{TrackIDs: []string{}}
	}
	return NoValue{}
}

// shapeDefault returns the default value for the shape mandated by
// (cfg.ValueType, op). Used when an operator change crosses value shapes
// within the same field, e.g. equals -> between on a numeric field.
func shapeDefault(cfg FieldConfig, op Operator) Value {
	switch shapeFor(cfg.ValueType, op) {
	case shapeText:
		return TextValue("")
	case shapeTextList:
		return TextListValue{}
	case shapeNumber:
		min := 0.0
		if cfg.Numeric != nil {
			min = cfg.Numeric.Min
		}
		return NumberValue{N: min, Valid: true}
	case shapeNumberRange:
		rng := NumberRangeValue{}
		if cfg.Numeric != nil {
			rng.Min = cfg.Numeric.Min
			rng.Max = cfg.Numeric.Max
		}
		return rng
	case shapeDate:
		return DateValue("")
	case shapeDateRange:
		return DateRangeValue{}
	case shapeSeedTracks:
		return SeedTracksValue{TrackIDs: []string{}}
	}
	return NoValue{}
}

// decodeValue parses a raw JSON value against the shape mandated for
// (vt, op). Unlike the editor mutations, decoding is strict: a malformed
// shape is an error, since documents arriving over the wire bypass the
// structural guarantees of the editor.
func decodeValue(vt ValueType, op Operator, raw json.RawMessage) (Value, error) {
	shape := shapeFor(vt, op)
	if shape == shapeNone {
		// is_empty carries no value; tolerate an explicit null.
		if len(raw) != 0 && string(raw) != "null" {
			return nil, fmt.Errorf("operator %s carries no value", op)
		}
		return NoValue{}, nil
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing value for operator %s", op)
	}

	switch shape {
	case shapeText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected string value: %w", err)
		}
		return TextValue(s), nil
	case shapeTextList:
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("expected string list value: %w", err)
		}
		if list == nil {
			list = []string{}
		}
		return TextListValue(list), nil
	case shapeNumber:
		if string(raw) == "null" {
			return NumberValue{}, nil
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("expected numeric value: %w", err)
		}
		return NumberValue{N: n, Valid: true}, nil
	case shapeNumberRange:
		var rng struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		}
		if err := json.Unmarshal(raw, &rng); err != nil {
			return nil, fmt.Errorf("expected numeric range value: %w", err)
		}
		if rng.Min == nil || rng.Max == nil {
			return nil, fmt.Errorf("numeric range requires min and max")
		}
		return NumberRangeValue{Min: *rng.Min, Max: *rng.Max}, nil
	case shapeDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected date value: %w", err)
		}
		return DateValue(s), nil
	case shapeDateRange:
		var rng struct {
			Min *string `json:"min"`
			Max *string `json:"max"`
		}
		if err := json.Unmarshal(raw, &rng); err != nil {
			return nil, fmt.Errorf("expected date range value: %w", err)
		}
		if rng.Min == nil || rng.Max == nil {
			return nil, fmt.Errorf("date range requires min and max")
		}
		return DateRangeValue{Min: *rng.Min, Max: *rng.Max}, nil
	case shapeSeedTracks:
		var seeds struct {
			TrackIDs []string `json:"track_ids"`
		}
		if err := json.Unmarshal(raw, &seeds); err != nil {
			return nil, fmt.Errorf("expected seed track value: %w", err)
		}
		if seeds.TrackIDs == nil {
			seeds.TrackIDs = []string{}
		}
		return SeedTracksValue{TrackIDs: seeds.TrackIDs}, nil
	}
	return nil, fmt.Errorf("unsupported value shape for %s/%s", vt, op)
}
