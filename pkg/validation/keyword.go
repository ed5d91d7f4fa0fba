package validation

import (
	"fmt"
	"math"
	"strings"
)

// KeywordInput carries the raw, user-entered values of one keyword.
type KeywordInput struct {
	Name            string
	Market          string
	SearchVolume    int
	CompetitorCount int
	Price           float64
	RoyaltyPerSale  float64
	TrafficSource   string
	SellingTitles   string
}

var knownTrafficSources = []string{"amazon", "external", "mixed", "unknown"}

var knownCatalogRanges = []string{"0", "1-2", "3-5", "6+"}

// ValidateKeywordInput reports values that will be normalised before scoring.
// None of them are fatal.
func ValidateKeywordInput(in KeywordInput) []string {
	var warnings []string

	if in.SearchVolume < 0 {
		warnings = append(warnings, fmt.Sprintf("Keyword '%s' has negative search volume %d which will be treated as 0", in.Name, in.SearchVolume))
	}
	if in.CompetitorCount < 0 {
		warnings = append(warnings, fmt.Sprintf("Keyword '%s' has negative competitor count %d which will be treated as 0", in.Name, in.CompetitorCount))
	}
	if math.IsNaN(in.Price) || in.Price < 0 {
		warnings = append(warnings, fmt.Sprintf("Keyword '%s' has invalid price %v which will be treated as 0", in.Name, in.Price))
	}
	if math.IsNaN(in.RoyaltyPerSale) || in.RoyaltyPerSale < 0 {
		warnings = append(warnings, fmt.Sprintf("Keyword '%s' has invalid royalty %v which will be treated as 0", in.Name, in.RoyaltyPerSale))
	}
	if in.TrafficSource != "" && !contains(knownTrafficSources, strings.ToLower(strings.TrimSpace(in.TrafficSource))) {
		warnings = append(warnings, fmt.Sprintf("Keyword '%s' has unknown traffic source %q which will be treated as unknown", in.Name, in.TrafficSource))
	}
	if in.SellingTitles != "" && !contains(knownCatalogRanges, strings.TrimSpace(in.SellingTitles)) {
		warnings = append(warnings, fmt.Sprintf("Keyword '%s' has unrecognised selling titles range %q", in.Name, in.SellingTitles))
	}

	return warnings
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
