package config

import (
	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/status"
)

// Update converts the input into the keyword update applied after the record
// is created. Empty text fields are left out so they keep their defaults.
func (k KeywordInput) Update() keyword.Update {
	searchVolume := k.SearchVolume
	competitorCount := k.CompetitorCount
	price := k.Price
	royalty := k.RoyaltyPerSale
	structural := k.Structural
	catalog := k.CatalogSignals

	u := keyword.Update{
		SearchVolume:    &searchVolume,
		CompetitorCount: &competitorCount,
		Price:           &price,
		RoyaltyPerSale:  &royalty,
		Structural:      &structural,
		CatalogSignals:  &catalog,
	}
	if k.TrafficSource != "" {
		traffic := market.TrafficSource(k.TrafficSource)
		u.TrafficSource = &traffic
	}
	if k.Relevance != "" {
		relevance := keyword.Level(k.Relevance)
		u.Relevance = &relevance
	}
	if k.Competition != "" {
		competition := keyword.Level(k.Competition)
		u.Competition = &competition
	}
	if k.Notes != "" {
		notes := k.Notes
		u.Notes = &notes
	}
	if k.Status != "" {
		s := status.Status(k.Status)
		u.Status = &s
	}
	return u
}
