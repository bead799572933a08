/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"

	"github.com/resonance-stream/resonance/internal/smartrules"
)

// fieldResponse is the wire form of one field registry entry. The editor
// UI builds its selector, operator menu and value input from this.
type fieldResponse struct {
	Field     smartrules.Field      `json:"field"`
	Category  smartrules.Category   `json:"category"`
	ValueType smartrules.ValueType  `json:"valueType"`
	Operators []smartrules.Operator `json:"operators"`
	Numeric   *numericResponse      `json:"numeric,omitempty"`
}

type numericResponse struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
	Unit string  `json:"unit,omitempty"`
}

// handleFieldsList returns the full field registry in declaration order,
// plus the ceilings the editor must enforce.
func (a *API) handleFieldsList(w http.ResponseWriter, r *http.Request) {
	fields := smartrules.Fields()
	out := make([]fieldResponse, 0, len(fields))
	for _, cfg := range fields {
		fr := fieldResponse{
			Field:     cfg.Field,
			Category:  cfg.Category,
			ValueType: cfg.ValueType,
			Operators: cfg.Operators,
		}
		if cfg.Numeric != nil {
			fr.Numeric = &numericResponse{
				Min:  cfg.Numeric.Min,
				Max:  cfg.Numeric.Max,
				Step: cfg.Numeric.Step,
				Unit: cfg.Numeric.Unit,
			}
		}
		out = append(out, fr)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fields": out,
		"limits": map[string]int{
			"maxRules":         a.limits.MaxRules,
			"maxSeedTracks":    a.limits.MaxSeedTracks,
			"maxPlaylistLimit": a.limits.MaxPlaylistLimit,
		},
	})
}
