// Package market defines the raw observations and checklists that seed a
// keyword's opportunity score.
package market

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TrafficSource identifies where the demand behind a keyword comes from.
type TrafficSource string

const (
	TrafficAmazon   TrafficSource = "amazon"
	TrafficExternal TrafficSource = "external"
	TrafficMixed    TrafficSource = "mixed"
	TrafficUnknown  TrafficSource = "unknown"
)

// TrafficSources lists every known traffic source in display order.
func TrafficSources() []TrafficSource {
	return []TrafficSource{TrafficAmazon, TrafficExternal, TrafficMixed, TrafficUnknown}
}

// ParseTrafficSource maps free text onto a TrafficSource. Anything that is
// not recognised becomes TrafficUnknown.
func ParseTrafficSource(value string) TrafficSource {
	switch TrafficSource(strings.ToLower(strings.TrimSpace(value))) {
	case TrafficAmazon:
		return TrafficAmazon
	case TrafficExternal:
		return TrafficExternal
	case TrafficMixed:
		return TrafficMixed
	default:
		return TrafficUnknown
	}
}

// Observation holds the manually entered market numbers for a keyword.
// SearchVolume and CompetitorCount are never negative.
type Observation struct {
	SearchVolume    int             `json:"searchVolume" yaml:"searchVolume"`
	CompetitorCount int             `json:"competitorCount" yaml:"competitorCount"`
	Price           decimal.Decimal `json:"price" yaml:"price"`
	RoyaltyPerSale  decimal.Decimal `json:"royaltyPerSale" yaml:"royaltyPerSale"`
	TrafficSource   TrafficSource   `json:"trafficSource" yaml:"trafficSource"`
}

// DefaultObservation is the observation a freshly created keyword starts with.
func DefaultObservation() Observation {
	return Observation{
		Price:          decimal.Zero,
		RoyaltyPerSale: decimal.Zero,
		TrafficSource:  TrafficUnknown,
	}
}

// Equal reports whether two observations carry the same values. Decimals are
// compared numerically so 9.9 and 9.90 are equal.
func (o Observation) Equal(other Observation) bool {
	return o.SearchVolume == other.SearchVolume &&
		o.CompetitorCount == other.CompetitorCount &&
		o.Price.Equal(other.Price) &&
		o.RoyaltyPerSale.Equal(other.RoyaltyPerSale) &&
		o.TrafficSource == other.TrafficSource
}

// Normalize clamps negative counts and amounts to zero and maps an
// unrecognised traffic source to TrafficUnknown.
func (o Observation) Normalize() Observation {
	if o.SearchVolume < 0 {
		o.SearchVolume = 0
	}
	if o.CompetitorCount < 0 {
		o.CompetitorCount = 0
	}
	if o.Price.IsNegative() {
		o.Price = decimal.Zero
	}
	if o.RoyaltyPerSale.IsNegative() {
		o.RoyaltyPerSale = decimal.Zero
	}
	o.TrafficSource = ParseTrafficSource(string(o.TrafficSource))
	return o
}

// StructuralChecklist holds the six qualitative demand checks.
type StructuralChecklist struct {
	SelfContainedDemand          bool `json:"selfContainedDemand" yaml:"selfContainedDemand"`
	PlatformSuggests             bool `json:"platformSuggests" yaml:"platformSuggests"`
	MultipleTitlesSelling        bool `json:"multipleTitlesSelling" yaml:"multipleTitlesSelling"`
	IndependentAuthorsSucceeding bool `json:"independentAuthorsSucceeding" yaml:"independentAuthorsSucceeding"`
	TopResultsMatchIntent        bool `json:"topResultsMatchIntent" yaml:"topResultsMatchIntent"`
	VariantPotential             bool `json:"variantPotential" yaml:"variantPotential"`
}

// Checks returns the checklist values in a fixed order.
func (s StructuralChecklist) Checks() []bool {
	return []bool{
		s.SelfContainedDemand,
		s.PlatformSuggests,
		s.MultipleTitlesSelling,
		s.IndependentAuthorsSucceeding,
		s.TopResultsMatchIntent,
		s.VariantPotential,
	}
}

// Passed counts the true checks.
func (s StructuralChecklist) Passed() int {
	n := 0
	for _, ok := range s.Checks() {
		if ok {
			n++
		}
	}
	return n
}

// CatalogRange is the bucketed number of comparable titles already selling.
type CatalogRange string

const (
	CatalogNone    CatalogRange = "0"
	CatalogFew     CatalogRange = "1-2"
	CatalogSeveral CatalogRange = "3-5"
	CatalogMany    CatalogRange = "6+"
)

// CatalogRanges lists the ranges from lowest to highest.
func CatalogRanges() []CatalogRange {
	return []CatalogRange{CatalogNone, CatalogFew, CatalogSeveral, CatalogMany}
}

// ParseCatalogRange accepts the canonical labels plus a few common spellings.
// Unrecognised input maps to CatalogNone.
func ParseCatalogRange(value string) CatalogRange {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	normalized = strings.NewReplacer("–", "-", "—", "-").Replace(normalized)
	switch normalized {
	case "1-2":
		return CatalogFew
	case "3-5":
		return CatalogSeveral
	case "6+", "6", "6plus":
		return CatalogMany
	default:
		return CatalogNone
	}
}

// CatalogSignals captures what the existing catalog says about the keyword.
type CatalogSignals struct {
	SellingTitles            CatalogRange `json:"sellingTitles" yaml:"sellingTitles"`
	HasProfitableComparables bool         `json:"hasProfitableComparables" yaml:"hasProfitableComparables"`
	HasLowReviewComparables  bool         `json:"hasLowReviewComparables" yaml:"hasLowReviewComparables"`
}

// Normalize replaces an unknown range with CatalogNone.
func (c CatalogSignals) Normalize() CatalogSignals {
	c.SellingTitles = ParseCatalogRange(string(c.SellingTitles))
	return c
}
