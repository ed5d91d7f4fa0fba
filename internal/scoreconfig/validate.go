package scoreconfig

import (
	"fmt"
	"math"

	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/pkg/constants"
)

type direction int

const (
	anyOrder direction = iota
	nonDecreasing
	nonIncreasing
)

// Validate checks the config for well-formedness and returns one message per
// problem found. A nil result means the config can be used as is.
func (c ScoreConfig) Validate() []string {
	var problems []string

	problems = append(problems, validateCategory("volume", c.Volume, nonDecreasing)...)
	problems = append(problems, validateCategory("competitors", c.Competitors, nonIncreasing)...)
	problems = append(problems, validateCategory("price", c.Price, anyOrder)...)
	problems = append(problems, validateCategory("royalties", c.Royalties, anyOrder)...)

	if c.Structural.Max < 0 {
		problems = append(problems, fmt.Sprintf("structural: max must not be negative, got %d", c.Structural.Max))
	}
	for i, points := range c.Structural.Points() {
		if points < 0 {
			problems = append(problems, fmt.Sprintf("structural: check %d has negative points %d", i+1, points))
		}
	}

	problems = append(problems, validateCatalog(c.CatalogSignals)...)

	for _, source := range market.TrafficSources() {
		if penalty := c.TrafficPenalties[source]; penalty > 0 {
			problems = append(problems, fmt.Sprintf("trafficPenalties: %s penalty must not be positive, got %d", source, penalty))
		}
	}
	for source := range c.TrafficPenalties {
		if market.ParseTrafficSource(string(source)) != source {
			problems = append(problems, fmt.Sprintf("trafficPenalties: unknown traffic source %q", source))
		}
	}

	t := c.StatusThresholds
	if t.Pending < constants.MinScore || t.Promising > constants.MaxScore || t.Pending > t.Candidate || t.Candidate > t.Promising {
		problems = append(problems, fmt.Sprintf("statusThresholds: expected %d <= pending <= candidate <= promising <= %d, got %d/%d/%d",
			constants.MinScore, constants.MaxScore, t.Pending, t.Candidate, t.Promising))
	}

	if total := c.MaxTotal(); total != constants.MaxScore {
		problems = append(problems, fmt.Sprintf("category maxima must sum to %d, got %d", constants.MaxScore, total))
	}

	return problems
}

func validateCategory(name string, category Category, order direction) []string {
	var problems []string

	if category.Max < 0 {
		problems = append(problems, fmt.Sprintf("%s: max must not be negative, got %d", name, category.Max))
	}
	if len(category.Bands) == 0 {
		return append(problems, fmt.Sprintf("%s: at least one band is required", name))
	}

	bands := category.clone().Bands
	for i, band := range bands {
		if math.IsNaN(band.Min) || math.IsInf(band.Min, 0) || band.Min < 0 {
			problems = append(problems, fmt.Sprintf("%s: band %d has invalid lower bound %v", name, i+1, band.Min))
		}
		if band.Points < 0 {
			problems = append(problems, fmt.Sprintf("%s: band %d has negative points %d", name, i+1, band.Points))
		}
		if i == 0 {
			continue
		}
		prev := bands[i-1]
		if band.Min == prev.Min {
			problems = append(problems, fmt.Sprintf("%s: duplicate band lower bound %v", name, band.Min))
		}
		switch {
		case order == nonDecreasing && band.Points < prev.Points:
			problems = append(problems, fmt.Sprintf("%s: points must not decrease as the value grows (%v awards %d, %v awards %d)",
				name, prev.Min, prev.Points, band.Min, band.Points))
		case order == nonIncreasing && band.Points > prev.Points:
			problems = append(problems, fmt.Sprintf("%s: points must not increase as the value grows (%v awards %d, %v awards %d)",
				name, prev.Min, prev.Points, band.Min, band.Points))
		}
	}

	return problems
}

func validateCatalog(c CatalogWeights) []string {
	var problems []string

	if c.Max < 0 {
		problems = append(problems, fmt.Sprintf("catalogSignals: max must not be negative, got %d", c.Max))
	}
	if c.RangeMax < 0 || c.RangeMax > c.Max {
		problems = append(problems, fmt.Sprintf("catalogSignals: rangeMax must be between 0 and %d, got %d", c.Max, c.RangeMax))
	}
	if c.ProfitableComparables < 0 || c.LowReviewComparables < 0 {
		problems = append(problems, "catalogSignals: comparable-title points must not be negative")
	}

	previous := 0
	for _, r := range market.CatalogRanges() {
		points := c.RangePoints[r]
		if points < 0 {
			problems = append(problems, fmt.Sprintf("catalogSignals: range %s has negative points %d", r, points))
		}
		if points < previous {
			problems = append(problems, fmt.Sprintf("catalogSignals: range %s awards fewer points than the range below it", r))
		}
		previous = points
	}
	for r := range c.RangePoints {
		if market.ParseCatalogRange(string(r)) != r {
			problems = append(problems, fmt.Sprintf("catalogSignals: unknown range %q", r))
		}
	}

	return problems
}
