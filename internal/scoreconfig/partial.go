package scoreconfig

import (
	"strings"

	"github.com/iwvelando/market-score/internal/market"
)

// PartialCategory overrides part of a Category. A non-nil Bands replaces the
// whole band list.
type PartialCategory struct {
	Max   *int   `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	Bands []Band `json:"bands,omitempty" yaml:"bands,omitempty" mapstructure:"bands"`
}

// PartialStructural overrides individual structural weights.
type PartialStructural struct {
	Max                          *int `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	SelfContainedDemand          *int `json:"selfContainedDemand,omitempty" yaml:"selfContainedDemand,omitempty" mapstructure:"selfContainedDemand"`
	PlatformSuggests             *int `json:"platformSuggests,omitempty" yaml:"platformSuggests,omitempty" mapstructure:"platformSuggests"`
	MultipleTitlesSelling        *int `json:"multipleTitlesSelling,omitempty" yaml:"multipleTitlesSelling,omitempty" mapstructure:"multipleTitlesSelling"`
	IndependentAuthorsSucceeding *int `json:"independentAuthorsSucceeding,omitempty" yaml:"independentAuthorsSucceeding,omitempty" mapstructure:"independentAuthorsSucceeding"`
	TopResultsMatchIntent        *int `json:"topResultsMatchIntent,omitempty" yaml:"topResultsMatchIntent,omitempty" mapstructure:"topResultsMatchIntent"`
	VariantPotential             *int `json:"variantPotential,omitempty" yaml:"variantPotential,omitempty" mapstructure:"variantPotential"`
}

// PartialCatalog overrides individual catalog-signal weights. RangePoints is
// merged key by key.
type PartialCatalog struct {
	Max                   *int                        `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	RangeMax              *int                        `json:"rangeMax,omitempty" yaml:"rangeMax,omitempty" mapstructure:"rangeMax"`
	RangePoints           map[market.CatalogRange]int `json:"rangePoints,omitempty" yaml:"rangePoints,omitempty" mapstructure:"rangePoints"`
	ProfitableComparables *int                        `json:"profitableComparables,omitempty" yaml:"profitableComparables,omitempty" mapstructure:"profitableComparables"`
	LowReviewComparables  *int                        `json:"lowReviewComparables,omitempty" yaml:"lowReviewComparables,omitempty" mapstructure:"lowReviewComparables"`
}

// PartialThresholds overrides individual status thresholds.
type PartialThresholds struct {
	Promising *int `json:"promising,omitempty" yaml:"promising,omitempty" mapstructure:"promising"`
	Candidate *int `json:"candidate,omitempty" yaml:"candidate,omitempty" mapstructure:"candidate"`
	Pending   *int `json:"pending,omitempty" yaml:"pending,omitempty" mapstructure:"pending"`
}

// PartialScoreConfig is a user-supplied override. Every nil field falls
// through to the market's built-in default.
type PartialScoreConfig struct {
	Volume           *PartialCategory             `json:"volume,omitempty" yaml:"volume,omitempty" mapstructure:"volume"`
	Competitors      *PartialCategory             `json:"competitors,omitempty" yaml:"competitors,omitempty" mapstructure:"competitors"`
	Price            *PartialCategory             `json:"price,omitempty" yaml:"price,omitempty" mapstructure:"price"`
	Royalties        *PartialCategory             `json:"royalties,omitempty" yaml:"royalties,omitempty" mapstructure:"royalties"`
	Structural       *PartialStructural           `json:"structural,omitempty" yaml:"structural,omitempty" mapstructure:"structural"`
	CatalogSignals   *PartialCatalog              `json:"catalogSignals,omitempty" yaml:"catalogSignals,omitempty" mapstructure:"catalogSignals"`
	TrafficPenalties map[market.TrafficSource]int `json:"trafficPenalties,omitempty" yaml:"trafficPenalties,omitempty" mapstructure:"trafficPenalties"`
	StatusThresholds *PartialThresholds           `json:"statusThresholds,omitempty" yaml:"statusThresholds,omitempty" mapstructure:"statusThresholds"`
}

// IsEmpty reports whether the override changes nothing.
func (p PartialScoreConfig) IsEmpty() bool {
	return p.Volume == nil && p.Competitors == nil && p.Price == nil && p.Royalties == nil &&
		p.Structural == nil && p.CatalogSignals == nil && len(p.TrafficPenalties) == 0 &&
		p.StatusThresholds == nil
}

// Merge layers override on top of base field by field and returns the result.
// base is not modified.
func Merge(base ScoreConfig, override PartialScoreConfig) ScoreConfig {
	out := base.Clone()

	mergeCategory(&out.Volume, override.Volume)
	mergeCategory(&out.Competitors, override.Competitors)
	mergeCategory(&out.Price, override.Price)
	mergeCategory(&out.Royalties, override.Royalties)

	if s := override.Structural; s != nil {
		setInt(&out.Structural.Max, s.Max)
		setInt(&out.Structural.SelfContainedDemand, s.SelfContainedDemand)
		setInt(&out.Structural.PlatformSuggests, s.PlatformSuggests)
		setInt(&out.Structural.MultipleTitlesSelling, s.MultipleTitlesSelling)
		setInt(&out.Structural.IndependentAuthorsSucceeding, s.IndependentAuthorsSucceeding)
		setInt(&out.Structural.TopResultsMatchIntent, s.TopResultsMatchIntent)
		setInt(&out.Structural.VariantPotential, s.VariantPotential)
	}

	if c := override.CatalogSignals; c != nil {
		setInt(&out.CatalogSignals.Max, c.Max)
		setInt(&out.CatalogSignals.RangeMax, c.RangeMax)
		setInt(&out.CatalogSignals.ProfitableComparables, c.ProfitableComparables)
		setInt(&out.CatalogSignals.LowReviewComparables, c.LowReviewComparables)
		if len(c.RangePoints) > 0 && out.CatalogSignals.RangePoints == nil {
			out.CatalogSignals.RangePoints = make(map[market.CatalogRange]int, len(c.RangePoints))
		}
		for k, v := range c.RangePoints {
			out.CatalogSignals.RangePoints[market.CatalogRange(strings.TrimSpace(string(k)))] = v
		}
	}

	if len(override.TrafficPenalties) > 0 && out.TrafficPenalties == nil {
		out.TrafficPenalties = make(map[market.TrafficSource]int, len(override.TrafficPenalties))
	}
	for k, v := range override.TrafficPenalties {
		out.TrafficPenalties[market.TrafficSource(strings.ToLower(strings.TrimSpace(string(k))))] = v
	}

	if t := override.StatusThresholds; t != nil {
		setInt(&out.StatusThresholds.Promising, t.Promising)
		setInt(&out.StatusThresholds.Candidate, t.Candidate)
		setInt(&out.StatusThresholds.Pending, t.Pending)
	}

	return out
}

func mergeCategory(dst *Category, override *PartialCategory) {
	if override == nil {
		return
	}
	setInt(&dst.Max, override.Max)
	if override.Bands != nil {
		dst.Bands = append([]Band(nil), override.Bands...)
		sortBands(dst.Bands)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
