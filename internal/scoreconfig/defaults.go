package scoreconfig

import (
	"math"

	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/pkg/mathutil"
)

// Default returns the global default configuration. It is calibrated for the
// US marketplace and is used for any market without its own defaults.
func Default() ScoreConfig {
	return ScoreConfig{
		Volume: Category{
			Max: 25,
			Bands: []Band{
				{Min: 0, Points: 0},
				{Min: 100, Points: 5},
				{Min: 500, Points: 10},
				{Min: 1000, Points: 15},
				{Min: 3000, Points: 20},
				{Min: 5000, Points: 25},
			},
		},
		Competitors: Category{
			Max: 20,
			Bands: []Band{
				{Min: 0, Points: 20},
				{Min: 51, Points: 15},
				{Min: 201, Points: 10},
				{Min: 1001, Points: 5},
				{Min: 5001, Points: 0},
			},
		},
		Price: Category{
			Max: 10,
			Bands: []Band{
				{Min: 0, Points: 0},
				{Min: 2.99, Points: 3},
				{Min: 5.99, Points: 6},
				{Min: 7.99, Points: 10},
				{Min: 25, Points: 6},
			},
		},
		Royalties: Category{
			Max: 15,
			Bands: []Band{
				{Min: 0, Points: 0},
				{Min: 0.5, Points: 3},
				{Min: 1.5, Points: 7},
				{Min: 2.5, Points: 11},
				{Min: 3.5, Points: 15},
			},
		},
		Structural: StructuralWeights{
			Max:                          18,
			SelfContainedDemand:          3,
			PlatformSuggests:             3,
			MultipleTitlesSelling:        3,
			IndependentAuthorsSucceeding: 3,
			TopResultsMatchIntent:        3,
			VariantPotential:             3,
		},
		CatalogSignals: CatalogWeights{
			Max:      12,
			RangeMax: 6,
			RangePoints: map[market.CatalogRange]int{
				market.CatalogNone:    0,
				market.CatalogFew:     2,
				market.CatalogSeveral: 4,
				market.CatalogMany:    6,
			},
			ProfitableComparables: 3,
			LowReviewComparables:  3,
		},
		TrafficPenalties: map[market.TrafficSource]int{
			market.TrafficAmazon:   0,
			market.TrafficMixed:    -5,
			market.TrafficUnknown:  -3,
			market.TrafficExternal: -15,
		},
		StatusThresholds: StatusThresholds{
			Promising: 70,
			Candidate: 40,
			Pending:   20,
		},
	}
}

// ForMarketplace derives a marketplace's defaults from the global default by
// scaling demand thresholds and price thresholds. Points never change, so the
// maxima still sum to 100.
func ForMarketplace(mp market.Marketplace) ScoreConfig {
	cfg := Default()
	if mp.DemandScale > 0 && mp.DemandScale != 1 {
		cfg.Volume.Bands = scaleBands(cfg.Volume.Bands, mp.DemandScale, math.Round)
		cfg.Competitors.Bands = scaleBands(cfg.Competitors.Bands, mp.DemandScale, math.Round)
	}
	if mp.PriceScale > 0 && mp.PriceScale != 1 {
		cfg.Price.Bands = scaleBands(cfg.Price.Bands, mp.PriceScale, mathutil.Round)
		cfg.Royalties.Bands = scaleBands(cfg.Royalties.Bands, mp.PriceScale, mathutil.Round)
	}
	return cfg
}

// BuiltInDefaults returns a fresh copy of the defaults for every supported
// marketplace, keyed by marketplace code.
func BuiltInDefaults() map[string]ScoreConfig {
	defaults := make(map[string]ScoreConfig)
	for _, mp := range market.Marketplaces() {
		defaults[mp.Code] = ForMarketplace(mp)
	}
	return defaults
}

// scaleBands multiplies every lower bound by factor. Bounds that collapse onto
// the previous band after rounding are nudged up so the band order survives.
func scaleBands(bands []Band, factor float64, round func(float64) float64) []Band {
	out := make([]Band, len(bands))
	for i, band := range bands {
		out[i] = band
		out[i].Min = round(band.Min * factor)
		if i > 0 && out[i].Min <= out[i-1].Min {
			out[i].Min = out[i-1].Min + 1
		}
	}
	return out
}
