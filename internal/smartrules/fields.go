/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package smartrules models the filter rules that define a smart playlist:
// a closed registry of filterable fields, a typed rule value union, the
// rule-set editor, and the JSON wire codec consumed by the external
// matching engine.
package smartrules

// Field identifies a filterable track attribute.
type Field string

const (
	FieldArtist     Field = "artist"
	FieldAlbum      Field = "album"
	FieldTitle      Field = "title"
	FieldGenre      Field = "genre"
	FieldYear       Field = "year"
	FieldMood       Field = "mood"
	FieldPlays      Field = "plays"
	FieldRating     Field = "rating"
	FieldAdded      Field = "added"
	FieldLastPlayed Field = "lastPlayed"
	FieldDuration   Field = "duration"
	FieldFormat     Field = "format"
	FieldAITag      Field = "aiTag"
	FieldSimilarTo  Field = "similar_to"
)

// Category groups fields for selector presentation. Presentation only, no
// behavioural effect.
type Category string

const (
	CategoryMetadata   Category = "metadata"
	CategoryActivity   Category = "activity"
	CategoryAudio      Category = "audio_features"
	CategorySimilarity Category = "similarity"
)

// ValueType determines a field's legal operators and value shape.
type ValueType string

const (
	TypeString    ValueType = "string"
	TypeNumber    ValueType = "number"
	TypeArray     ValueType = "array"
	TypeDate      ValueType = "date"
	TypeSimilarTo ValueType = "similar_to"
)

// Operator is the closed comparison operator enum.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpBetween     Operator = "between"
	OpIsEmpty     Operator = "is_empty"
)

// NumericSpec bounds a numeric field's input. Every numeric field declares
// a finite Min; the field's default value is always that Min.
type NumericSpec struct {
	Min  float64
	Max  float64
	Step float64
	Unit string
}

// FieldConfig is the static declaration of one filterable field.
type FieldConfig struct {
	Field     Field
	Category  Category
	ValueType ValueType
	// Operators legal for this field. The first entry is the default
	// operator assigned whenever the field is (re)selected.
	Operators []Operator
	// Numeric is set only for number fields.
	Numeric *NumericSpec
}

var stringOps = []Operator{OpContains, OpNotContains, OpEquals, OpNotEquals, OpIsEmpty}
var arrayOps = []Operator{OpContains, OpNotContains, OpIn, OpNotIn, OpIsEmpty}
var numberOps = []Operator{OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpBetween}
var dateOps = []Operator{OpGreaterThan, OpLessThan, OpBetween}

// registry declares every filterable field. Declaration order is
// significant: it is the selector ordering within a category, and the first
// entry is the library-wide default field for new rules.
var registry = []FieldConfig{
	{Field: FieldArtist, Category: CategoryMetadata, ValueType: TypeString, Operators: stringOps},
	{Field: FieldAlbum, Category: CategoryMetadata, ValueType: TypeString, Operators: stringOps},
	{Field: FieldTitle, Category: CategoryMetadata, ValueType: TypeString, Operators: stringOps},
	{Field: FieldGenre, Category: CategoryMetadata, ValueType: TypeArray, Operators: arrayOps},
	{Field: FieldYear, Category: CategoryMetadata, ValueType: TypeNumber, Operators: numberOps,
		Numeric: &NumericSpec{Min: 0, Max: 2100, Step: 1}},
	{Field: FieldFormat, Category: CategoryMetadata, ValueType: TypeString,
		Operators: []Operator{OpEquals, OpNotEquals, OpIn, OpNotIn}},
	{Field: FieldPlays, Category: CategoryActivity, ValueType: TypeNumber,
		Operators: []Operator{OpGreaterThan, OpLessThan, OpEquals, OpBetween},
		Numeric:   &NumericSpec{Min: 0, Max: 1000000, Step: 1, Unit: "plays"}},
	{Field: FieldRating, Category: CategoryActivity, ValueType: TypeNumber,
		Operators: []Operator{OpGreaterThan, OpLessThan, OpEquals, OpBetween},
		Numeric:   &NumericSpec{Min: 0, Max: 100, Step: 1, Unit: "%"}},
	{Field: FieldAdded, Category: CategoryActivity, ValueType: TypeDate, Operators: dateOps},
	{Field: FieldLastPlayed, Category: CategoryActivity, ValueType: TypeDate, Operators: dateOps},
	{Field: FieldMood, Category: CategoryAudio, ValueType: TypeArray, Operators: arrayOps},
	{Field: FieldDuration, Category: CategoryAudio, ValueType: TypeNumber, Operators: numberOps,
		Numeric: &NumericSpec{Min: 0, Max: 7200, Step: 1, Unit: "s"}},
	{Field: FieldAITag, Category: CategoryAudio, ValueType: TypeArray, Operators: arrayOps},
	{Field: FieldSimilarTo, Category: CategorySimilarity, ValueType: TypeSimilarTo,
		Operators: []Operator{OpEquals}},
}

var registryIndex = buildRegistryIndex()

func buildRegistryIndex() map[Field]int {
	idx := make(map[Field]int, len(registry))
	for i, cfg := range registry {
		idx[cfg.Field] = i
	}
	return idx
}

// FieldConfigFor returns the configuration for a field. The second return
// is false only for an unknown identifier, which given the closed enum is a
// caller bug rather than a runtime error path.
func FieldConfigFor(f Field) (FieldConfig, bool) {
	i, ok := registryIndex[f]
	if !ok {
		return FieldConfig{}, false
	}
	return registry[i], true
}

// DefaultField returns the library-wide default field for new rules: the
// first field in registry declaration order.
func DefaultField() FieldConfig {
	return registry[0]
}

// Fields returns all field configurations in declaration order.
func Fields() []FieldConfig {
	out := make([]FieldConfig, len(registry))
	copy(out, registry)
	return out
}

// FieldsByCategory groups field configurations by category, preserving
// registry declaration order within each group.
func FieldsByCategory() map[Category][]FieldConfig {
	out := make(map[Category][]FieldConfig)
	for _, cfg := range registry {
		out[cfg.Category] = append(out[cfg.Category], cfg)
	}
	return out
}

// HasOperator reports whether op is legal for this field.
func (c FieldConfig) HasOperator(op Operator) bool {
	for _, candidate := range c.Operators {
		if candidate == op {
			return true
		}
	}
	return false
}

// DefaultOperator returns the operator assigned when the field is newly
// selected: the first entry of its operator list.
func (c FieldConfig) DefaultOperator() Operator {
	return c.Operators[0]
}
