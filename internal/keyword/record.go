// Package keyword defines the keyword record the score engine operates on and
// the typed partial update used to change it.
package keyword

import (
	"strings"

	"github.com/iwvelando/market-score/internal/journal"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoring"
	"github.com/iwvelando/market-score/internal/status"
)

// Level is a low/medium/high classification. The empty level means unset.
type Level string

const (
	LevelUnset  Level = ""
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel maps text onto a Level; anything unrecognised is unset.
func ParseLevel(value string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(value))) {
	case LevelLow:
		return LevelLow
	case LevelMedium:
		return LevelMedium
	case LevelHigh:
		return LevelHigh
	default:
		return LevelUnset
	}
}

// Record is one catalogued keyword. Records are values: the engine returns a
// new Record for every change and never edits one in place.
type Record struct {
	ID             string                     `json:"id" yaml:"id"`
	Keyword        string                     `json:"keyword" yaml:"keyword"`
	Market         string                     `json:"market" yaml:"market"`
	Observation    market.Observation         `json:"observation" yaml:"observation"`
	Structural     market.StructuralChecklist `json:"structural" yaml:"structural"`
	CatalogSignals market.CatalogSignals      `json:"catalogSignals" yaml:"catalogSignals"`
	Relevance      Level                      `json:"relevance" yaml:"relevance"`
	Competition    Level                      `json:"competition" yaml:"competition"`
	Notes          string                     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Lifecycle      status.Record              `json:"lifecycle" yaml:"lifecycle"`
	MarketScore    int                        `json:"marketScore" yaml:"marketScore"`
	Breakdown      scoring.Breakdown          `json:"breakdown" yaml:"breakdown"`
	History        []journal.Entry            `json:"history" yaml:"history"`
}

// Value returns the current value of a journaled field.
func (r Record) Value(field journal.Field) any {
	switch field {
	case journal.FieldKeyword:
		return r.Keyword
	case journal.FieldMarket:
		return r.Market
	case journal.FieldSearchVolume:
		return r.Observation.SearchVolume
	case journal.FieldCompetitorCount:
		return r.Observation.CompetitorCount
	case journal.FieldPrice:
		return r.Observation.Price
	case journal.FieldRoyaltyPerSale:
		return r.Observation.RoyaltyPerSale
	case journal.FieldTrafficSource:
		return string(r.Observation.TrafficSource)
	case journal.FieldStructural:
		return r.Structural
	case journal.FieldCatalogSignals:
		return r.CatalogSignals
	case journal.FieldRelevance:
		return string(r.Relevance)
	case journal.FieldCompetition:
		return string(r.Competition)
	case journal.FieldNotes:
		return r.Notes
	case journal.FieldStatus:
		return string(r.Lifecycle.Status)
	}
	return nil
}

// MarketInputsEqual reports whether two records would score identically.
func (r Record) MarketInputsEqual(other Record) bool {
	return r.Market == other.Market &&
		r.Observation.Equal(other.Observation) &&
		r.Structural == other.Structural &&
		r.CatalogSignals == other.CatalogSignals
}
