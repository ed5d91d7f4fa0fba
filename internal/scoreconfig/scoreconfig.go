// Package scoreconfig defines the thresholds and point weights used to score a
// keyword, the built-in per-market defaults, and the resolver that layers user
// overrides on top of them.
package scoreconfig

import (
	"sort"

	"github.com/iwvelando/market-score/internal/market"
)

// Band awards Points to every value greater than or equal to Min, up to the
// next band's Min.
type Band struct {
	Min    float64 `json:"min" yaml:"min" mapstructure:"min"`
	Points int     `json:"points" yaml:"points" mapstructure:"points"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}

// Category is a banded score category capped at Max points.
type Category struct {
	Max   int    `json:"max" yaml:"max" mapstructure:"max"`
	Bands []Band `json:"bands" yaml:"bands" mapstructure:"bands"`
}

// StructuralWeights holds the point value of each structural check.
type StructuralWeights struct {
	Max                          int `json:"max" yaml:"max" mapstructure:"max"`
	SelfContainedDemand          int `json:"selfContainedDemand" yaml:"selfContainedDemand" mapstructure:"selfContainedDemand"`
	PlatformSuggests             int `json:"platformSuggests" yaml:"platformSuggests" mapstructure:"platformSuggests"`
	MultipleTitlesSelling        int `json:"multipleTitlesSelling" yaml:"multipleTitlesSelling" mapstructure:"multipleTitlesSelling"`
	IndependentAuthorsSucceeding int `json:"independentAuthorsSucceeding" yaml:"independentAuthorsSucceeding" mapstructure:"independentAuthorsSucceeding"`
	TopResultsMatchIntent        int `json:"topResultsMatchIntent" yaml:"topResultsMatchIntent" mapstructure:"topResultsMatchIntent"`
	VariantPotential             int `json:"variantPotential" yaml:"variantPotential" mapstructure:"variantPotential"`
}

// Points returns the per-check points in the same order as
// market.StructuralChecklist.Checks.
func (w StructuralWeights) Points() []int {
	return []int{
		w.SelfContainedDemand,
		w.PlatformSuggests,
		w.MultipleTitlesSelling,
		w.IndependentAuthorsSucceeding,
		w.TopResultsMatchIntent,
		w.VariantPotential,
	}
}

// CatalogWeights holds the points for the catalog-signal category. The range
// contribution is capped at RangeMax before the boolean points are added, and
// the total is capped at Max.
type CatalogWeights struct {
	Max                   int                         `json:"max" yaml:"max" mapstructure:"max"`
	RangeMax              int                         `json:"rangeMax" yaml:"rangeMax" mapstructure:"rangeMax"`
	RangePoints           map[market.CatalogRange]int `json:"rangePoints" yaml:"rangePoints" mapstructure:"rangePoints"`
	ProfitableComparables int                         `json:"profitableComparables" yaml:"profitableComparables" mapstructure:"profitableComparables"`
	LowReviewComparables  int                         `json:"lowReviewComparables" yaml:"lowReviewComparables" mapstructure:"lowReviewComparables"`
}

// StatusThresholds are the minimum totals for each automatically derived
// status. Totals below Pending derive to reject.
type StatusThresholds struct {
	Promising int `json:"promising" yaml:"promising" mapstructure:"promising"`
	Candidate int `json:"candidate" yaml:"candidate" mapstructure:"candidate"`
	Pending   int `json:"pending" yaml:"pending" mapstructure:"pending"`
}

// ScoreConfig is the complete set of thresholds and weights for one market.
type ScoreConfig struct {
	Volume           Category                     `json:"volume" yaml:"volume"`
	Competitors      Category                     `json:"competitors" yaml:"competitors"`
	Price            Category                     `json:"price" yaml:"price"`
	Royalties        Category                     `json:"royalties" yaml:"royalties"`
	Structural       StructuralWeights            `json:"structural" yaml:"structural"`
	CatalogSignals   CatalogWeights               `json:"catalogSignals" yaml:"catalogSignals"`
	TrafficPenalties map[market.TrafficSource]int `json:"trafficPenalties" yaml:"trafficPenalties"`
	StatusThresholds StatusThresholds             `json:"statusThresholds" yaml:"statusThresholds"`
}

// MaxTotal sums the maxima of the six non-penalty categories. A well-formed
// config sums to exactly 100.
func (c ScoreConfig) MaxTotal() int {
	return c.Volume.Max + c.Competitors.Max + c.Price.Max + c.Royalties.Max +
		c.Structural.Max + c.CatalogSignals.Max
}

// Clone returns a deep copy with every band list sorted by Min.
func (c ScoreConfig) Clone() ScoreConfig {
	out := c
	out.Volume = c.Volume.clone()
	out.Competitors = c.Competitors.clone()
	out.Price = c.Price.clone()
	out.Royalties = c.Royalties.clone()

	if c.CatalogSignals.RangePoints != nil {
		out.CatalogSignals.RangePoints = make(map[market.CatalogRange]int, len(c.CatalogSignals.RangePoints))
		for k, v := range c.CatalogSignals.RangePoints {
			out.CatalogSignals.RangePoints[k] = v
		}
	}
	if c.TrafficPenalties != nil {
		out.TrafficPenalties = make(map[market.TrafficSource]int, len(c.TrafficPenalties))
		for k, v := range c.TrafficPenalties {
			out.TrafficPenalties[k] = v
		}
	}
	return out
}

func (c Category) clone() Category {
	out := Category{Max: c.Max}
	if c.Bands != nil {
		out.Bands = append([]Band(nil), c.Bands...)
		sortBands(out.Bands)
	}
	return out
}

func sortBands(bands []Band) {
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })
}
