package market

import (
	"sort"
	"strings"

	"github.com/iwvelando/market-score/pkg/constants"
)

// Marketplace describes a supported Amazon storefront and how its numbers
// compare to the US store. DemandScale scales search volume and competitor
// thresholds, PriceScale converts USD price thresholds to local currency.
type Marketplace struct {
	Code        string
	Country     string
	Currency    string
	Host        string
	DemandScale float64
	PriceScale  float64
}

var marketplaces = map[string]Marketplace{
	"US": {Code: "US", Country: "United States", Currency: "USD", Host: "www.amazon.com", DemandScale: 1, PriceScale: 1},
	"CA": {Code: "CA", Country: "Canada", Currency: "CAD", Host: "www.amazon.ca", DemandScale: 0.25, PriceScale: 1.35},
	"GB": {Code: "GB", Country: "United Kingdom", Currency: "GBP", Host: "www.amazon.co.uk", DemandScale: 0.4, PriceScale: 0.8},
	"DE": {Code: "DE", Country: "Germany", Currency: "EUR", Host: "www.amazon.de", DemandScale: 0.35, PriceScale: 0.9},
	"FR": {Code: "FR", Country: "France", Currency: "EUR", Host: "www.amazon.fr", DemandScale: 0.2, PriceScale: 0.9},
	"ES": {Code: "ES", Country: "Spain", Currency: "EUR", Host: "www.amazon.es", DemandScale: 0.15, PriceScale: 0.9},
	"IT": {Code: "IT", Country: "Italy", Currency: "EUR", Host: "www.amazon.it", DemandScale: 0.15, PriceScale: 0.9},
	"IN": {Code: "IN", Country: "India", Currency: "INR", Host: "www.amazon.in", DemandScale: 0.2, PriceScale: 80},
	"JP": {Code: "JP", Country: "Japan", Currency: "JPY", Host: "www.amazon.co.jp", DemandScale: 0.2, PriceScale: 150},
	"AU": {Code: "AU", Country: "Australia", Currency: "AUD", Host: "www.amazon.com.au", DemandScale: 0.15, PriceScale: 1.5},
	"BR": {Code: "BR", Country: "Brazil", Currency: "BRL", Host: "www.amazon.com.br", DemandScale: 0.1, PriceScale: 5},
	"MX": {Code: "MX", Country: "Mexico", Currency: "MXN", Host: "www.amazon.com.mx", DemandScale: 0.1, PriceScale: 18},
}

// lookupAlias maps the spellings users type to canonical codes.
var lookupAlias = map[string]string{
	"UK":             "GB",
	"COM":            "US",
	"AMAZON.COM":     "US",
	"WWW.AMAZON.COM": "US",
	"CO.UK":          "GB",
	"AMAZON.CO.UK":   "GB",
	"AMAZON.DE":      "DE",
	"AMAZON.FR":      "FR",
	"AMAZON.ES":      "ES",
	"AMAZON.IT":      "IT",
	"AMAZON.CA":      "CA",
	"AMAZON.CO.JP":   "JP",
	"AMAZON.COM.AU":  "AU",
	"AMAZON.IN":      "IN",
	"AMAZON.COM.BR":  "BR",
	"AMAZON.COM.MX":  "MX",
}

// Normalize canonicalises a market identifier: trimmed, upper-cased and with
// aliases resolved. Unknown identifiers are returned canonicalised but
// otherwise untouched so callers can still key overrides by them.
func Normalize(id string) string {
	normalized := strings.ToUpper(strings.TrimSpace(id))
	if canonical, ok := lookupAlias[normalized]; ok {
		return canonical
	}
	return normalized
}

// Lookup returns the marketplace for id and whether it is a known one.
func Lookup(id string) (Marketplace, bool) {
	mp, ok := marketplaces[Normalize(id)]
	return mp, ok
}

// LookupOrDefault returns the marketplace for id, falling back to the default
// marketplace when id is unknown.
func LookupOrDefault(id string) Marketplace {
	if mp, ok := Lookup(id); ok {
		return mp
	}
	return marketplaces[constants.DefaultMarket]
}

// Marketplaces returns every supported marketplace sorted by code.
func Marketplaces() []Marketplace {
	list := make([]Marketplace, 0, len(marketplaces))
	for _, mp := range marketplaces {
		list = append(list, mp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}
