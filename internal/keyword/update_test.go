package keyword

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/iwvelando/market-score/internal/journal"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/status"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUnmarshalKeepsKeyOrder(t *testing.T) {
	var u Update
	err := json.Unmarshal([]byte(`{"status":"published","notes":"x","searchVolume":10,"audit":["notes"],"market":"de"}`), &u)
	require.NoError(t, err)

	assert.Equal(t, []journal.Field{
		journal.FieldStatus,
		journal.FieldNotes,
		journal.FieldSearchVolume,
		journal.FieldMarket,
	}, u.Fields())
	require.NotNil(t, u.SearchVolume)
	assert.Equal(t, 10, *u.SearchVolume)
}

func TestUpdateUnmarshalRejectsInvalid(t *testing.T) {
	var u Update
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &u))
	assert.Error(t, json.Unmarshal([]byte(`{"searchVolume":"many"}`), &u))
	assert.Error(t, json.Unmarshal([]byte(`{"searchVolume":1,"bogus":true}`), &u))
	assert.Error(t, json.Unmarshal([]byte(`{"searchVolume":100,"searchVolume":200}`), &u))
	assert.Error(t, json.Unmarshal([]byte(`{"audit":["notes"],"notes":"a","audit":["price"]}`), &u))
}

func TestUpdateFieldsCanonicalOrder(t *testing.T) {
	notes := "n"
	volume := 5
	u := Update{Notes: &notes, SearchVolume: &volume}

	assert.Equal(t, []journal.Field{journal.FieldSearchVolume, journal.FieldNotes}, u.Fields())
	assert.False(t, u.IsEmpty())
	assert.True(t, Update{}.IsEmpty())
	assert.True(t, Update{Audit: []journal.Field{journal.FieldNotes}}.IsEmpty())
}

func TestUpdateAudited(t *testing.T) {
	u := Update{Audit: []journal.Field{journal.FieldPrice}}

	assert.True(t, u.Audited(journal.FieldSearchVolume))
	assert.True(t, u.Audited(journal.FieldStatus))
	assert.True(t, u.Audited(journal.FieldPrice))
	assert.False(t, u.Audited(journal.FieldNotes))
}

func TestApplyNormalizes(t *testing.T) {
	rec := Record{Market: "US", Observation: market.DefaultObservation()}
	volume, competitors := -10, -3
	price, royalty := math.NaN(), 2.345
	traffic := market.TrafficSource("Podcast")
	term, marketID := "  puzzle book  ", " uk "
	relevance := Level("HIGH")

	out := Apply(rec, Update{
		Keyword:         &term,
		Market:          &marketID,
		SearchVolume:    &volume,
		CompetitorCount: &competitors,
		Price:           &price,
		RoyaltyPerSale:  &royalty,
		TrafficSource:   &traffic,
		Relevance:       &relevance,
		CatalogSignals:  &market.CatalogSignals{SellingTitles: "lots"},
	})

	assert.Equal(t, "puzzle book", out.Keyword)
	assert.Equal(t, "GB", out.Market)
	assert.Equal(t, 0, out.Observation.SearchVolume)
	assert.Equal(t, 0, out.Observation.CompetitorCount)
	assert.True(t, out.Observation.Price.Equal(decimal.Zero))
	assert.Equal(t, "2.35", out.Observation.RoyaltyPerSale.StringFixed(2))
	assert.Equal(t, market.TrafficUnknown, out.Observation.TrafficSource)
	assert.Equal(t, LevelHigh, out.Relevance)
	assert.Equal(t, market.CatalogNone, out.CatalogSignals.SellingTitles)
	assert.Equal(t, "US", rec.Market, "input record is untouched")
}

func TestApplyRoundsAmountsToCents(t *testing.T) {
	rec := Record{Market: "US", Observation: market.DefaultObservation()}
	price, royalty := 7.985, 3.494

	out := Apply(rec, Update{Price: &price, RoyaltyPerSale: &royalty})

	assert.Equal(t, "7.99", out.Observation.Price.String())
	assert.Equal(t, "3.49", out.Observation.RoyaltyPerSale.String())
}

func TestApplyStatus(t *testing.T) {
	rec := Record{Lifecycle: status.Record{Status: status.Candidate}}

	pinned := status.Archived
	out := Apply(rec, Update{Status: &pinned})
	assert.Equal(t, status.Record{Status: status.Archived, ManuallySet: true}, out.Lifecycle)

	unknown := status.Status("shelved")
	out = Apply(rec, Update{Status: &unknown})
	assert.Equal(t, rec.Lifecycle, out.Lifecycle)
}

func TestMarketInputsEqual(t *testing.T) {
	a := Record{Market: "US", Observation: market.Observation{Price: decimal.RequireFromString("9.9")}}
	b := a
	b.Observation.Price = decimal.RequireFromString("9.90")
	b.Notes = "different notes"
	assert.True(t, a.MarketInputsEqual(b))

	b.Structural.VariantPotential = true
	assert.False(t, a.MarketInputsEqual(b))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"low", LevelLow},
		{" Medium ", LevelMedium},
		{"HIGH", LevelHigh},
		{"extreme", LevelUnset},
		{"", LevelUnset},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
