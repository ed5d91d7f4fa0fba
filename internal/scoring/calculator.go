package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"github.com/iwvelando/market-score/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Calculate scores one keyword. It is a pure function of its arguments: the
// same inputs always produce an identical Breakdown. Out-of-range observation
// values are normalised first, so the result is always usable.
func Calculate(obs market.Observation, structural market.StructuralChecklist, catalog market.CatalogSignals, cfg scoreconfig.ScoreConfig) Breakdown {
	obs = obs.Normalize()
	catalog = catalog.Normalize()

	b := Breakdown{
		Volume: bandItem(cfg.Volume, func(bound float64) bool {
			return float64(obs.SearchVolume) >= bound
		}, "searches"),
		Competitors: bandItem(cfg.Competitors, func(bound float64) bool {
			return float64(obs.CompetitorCount) >= bound
		}, "competitors"),
		Price: bandItem(cfg.Price, func(bound float64) bool {
			return obs.Price.GreaterThanOrEqual(decimal.NewFromFloat(bound))
		}, "price"),
		Royalties: bandItem(cfg.Royalties, func(bound float64) bool {
			return obs.RoyaltyPerSale.GreaterThanOrEqual(decimal.NewFromFloat(bound))
		}, "royalty"),
		Structural:     structuralItem(structural, cfg.Structural),
		CatalogSignals: catalogItem(catalog, cfg.CatalogSignals),
		Penalties:      penaltyItem(obs.TrafficSource, cfg.TrafficPenalties),
	}
	b.Total = mathutil.ClampScore(b.RawSum())
	return b
}

// bandItem awards the points of the band with the largest lower bound the
// value reaches. Bands do not need to be sorted.
func bandItem(category scoreconfig.Category, reaches func(bound float64) bool, unit string) Item {
	item := Item{Max: mathutil.NonNegativeInt(category.Max)}
	if len(category.Bands) == 0 {
		item.Label = "no bands configured"
		return item
	}

	selected := -1
	for i, band := range category.Bands {
		if !reaches(band.Min) {
			continue
		}
		if selected == -1 || band.Min > category.Bands[selected].Min {
			selected = i
		}
	}

	if selected == -1 {
		lowest := category.Bands[0].Min
		for _, band := range category.Bands[1:] {
			if band.Min < lowest {
				lowest = band.Min
			}
		}
		item.Label = fmt.Sprintf("below %s %s", formatBound(lowest), unit)
		return item
	}

	band := category.Bands[selected]
	item.Points = mathutil.ClampInt(band.Points, 0, item.Max)
	item.Label = band.Label
	if item.Label == "" {
		item.Label = rangeLabel(category.Bands, band.Min, unit)
	}
	return item
}

// rangeLabel describes the band starting at lower, e.g. "500-1000 searches" or
// "5000+ searches".
func rangeLabel(bands []scoreconfig.Band, lower float64, unit string) string {
	next, found := 0.0, false
	for _, band := range bands {
		if band.Min > lower && (!found || band.Min < next) {
			next, found = band.Min, true
		}
	}
	if !found {
		return fmt.Sprintf("%s+ %s", formatBound(lower), unit)
	}
	return fmt.Sprintf("%s-%s %s", formatBound(lower), formatBound(next), unit)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func structuralItem(checklist market.StructuralChecklist, weights scoreconfig.StructuralWeights) Item {
	item := Item{Max: mathutil.NonNegativeInt(weights.Max)}

	checks := checklist.Checks()
	points := weights.Points()
	sum := 0
	for i, passed := range checks {
		if passed {
			sum += mathutil.NonNegativeInt(points[i])
		}
	}

	item.Points = mathutil.ClampInt(sum, 0, item.Max)
	item.Label = fmt.Sprintf("%d/%d checks", checklist.Passed(), len(checks))
	return item
}

func catalogItem(signals market.CatalogSignals, weights scoreconfig.CatalogWeights) Item {
	item := Item{Max: mathutil.NonNegativeInt(weights.Max)}

	rangeMax := mathutil.ClampInt(weights.RangeMax, 0, item.Max)
	sum := mathutil.ClampInt(weights.RangePoints[signals.SellingTitles], 0, rangeMax)

	parts := []string{fmt.Sprintf("%s titles", signals.SellingTitles)}
	if signals.HasProfitableComparables {
		sum += mathutil.NonNegativeInt(weights.ProfitableComparables)
		parts = append(parts, "profitable comparables")
	}
	if signals.HasLowReviewComparables {
		sum += mathutil.NonNegativeInt(weights.LowReviewComparables)
		parts = append(parts, "low-review comparables")
	}

	item.Points = mathutil.ClampInt(sum, 0, item.Max)
	item.Label = strings.Join(parts, ", ")
	return item
}

func penaltyItem(source market.TrafficSource, penalties map[market.TrafficSource]int) Item {
	source = market.ParseTrafficSource(string(source))
	points := penalties[source]
	if points > 0 {
		points = 0
	}
	return Item{
		Points: points,
		Max:    0,
		Label:  fmt.Sprintf("%s traffic", source),
	}
}
