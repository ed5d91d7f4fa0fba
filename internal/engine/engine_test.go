package engine

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/iwvelando/market-score/internal/journal"
	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"github.com/iwvelando/market-score/internal/status"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func statusPtr(s status.Status) *status.Status { return &s }
func levelPtr(l keyword.Level) *keyword.Level { return &l }
func trafficPtr(t market.TrafficSource) *market.TrafficSource {
	return &t
}

func newTestOrchestrator(overrides map[string]scoreconfig.PartialScoreConfig) *Orchestrator {
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	j := journal.NewWithClock(func() time.Time {
		tick++
		return clock.Add(time.Duration(tick) * time.Second)
	})
	return NewWithJournal(zap.NewNop(), scoreconfig.NewResolver(nil, overrides), j)
}

func topUpdate() keyword.Update {
	return keyword.Update{
		SearchVolume:    intPtr(5000),
		CompetitorCount: intPtr(10),
		Price:           floatPtr(9.99),
		RoyaltyPerSale:  floatPtr(3.50),
		TrafficSource:   trafficPtr(market.TrafficAmazon),
		Structural: &market.StructuralChecklist{
			SelfContainedDemand:          true,
			PlatformSuggests:             true,
			MultipleTitlesSelling:        true,
			IndependentAuthorsSucceeding: true,
			TopResultsMatchIntent:        true,
			VariantPotential:             true,
		},
		CatalogSignals: &market.CatalogSignals{
			SellingTitles:            market.CatalogMany,
			HasProfitableComparables: true,
			HasLowReviewComparables:  true,
		},
	}
}

func TestCreate(t *testing.T) {
	o := newTestOrchestrator(nil)

	rec, warnings := o.Create("  coloring book for adults ", "uk")

	assert.Empty(t, warnings)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "coloring book for adults", rec.Keyword)
	assert.Equal(t, "GB", rec.Market)
	assert.False(t, rec.Lifecycle.ManuallySet)
	assert.Equal(t, market.TrafficUnknown, rec.Observation.TrafficSource)
	assert.Equal(t, rec.Breakdown.Total, rec.MarketScore)
	assert.Equal(t, status.Reject, rec.Lifecycle.Status)
	assert.Empty(t, rec.History)
}

func TestEvaluateScenarioPerfectScore(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("sudoku large print", "US")

	result := o.Evaluate(rec, topUpdate())

	assert.True(t, result.Recomputed)
	assert.Equal(t, 100, result.Record.MarketScore)
	assert.Equal(t, 0, result.Record.Breakdown.Penalties.Points)
	assert.Equal(t, status.Promising, result.Record.Lifecycle.Status)
	require.Len(t, result.Record.History, 1, "only search volume is tracked")
	assert.Equal(t, journal.FieldSearchVolume, result.Record.History[0].Field)
	require.Len(t, result.Significant, 1)
}

func TestEvaluateExternalTraffic(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("sudoku large print", "US")
	rec = o.Evaluate(rec, topUpdate()).Record

	result := o.Evaluate(rec, keyword.Update{TrafficSource: trafficPtr(market.TrafficExternal)})

	assert.Equal(t, 85, result.Record.MarketScore)
	assert.Equal(t, -15, result.Record.Breakdown.Penalties.Points)
	assert.Equal(t, rec.Breakdown.Volume, result.Record.Breakdown.Volume)
	assert.Equal(t, rec.Breakdown.Structural, result.Record.Breakdown.Structural)
}

func TestEvaluateEmptyUpdateIsNoOp(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("dot markers", "US")
	rec = o.Evaluate(rec, topUpdate()).Record

	result := o.Evaluate(rec, keyword.Update{})

	assert.Equal(t, rec, result.Record)
	assert.Len(t, result.Record.History, len(rec.History))
	assert.False(t, result.Recomputed)

	result = o.Evaluate(rec, keyword.Update{Audit: []journal.Field{journal.FieldNotes}})
	assert.Equal(t, rec, result.Record)
}

func TestEvaluatePreservesManualStatus(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("dot markers", "US")
	rec = o.Evaluate(rec, keyword.Update{Status: statusPtr(status.Published)}).Record
	require.True(t, rec.Lifecycle.ManuallySet)

	result := o.Evaluate(rec, topUpdate())

	assert.NotEqual(t, rec.MarketScore, result.Record.MarketScore)
	assert.NotEqual(t, rec.Breakdown, result.Record.Breakdown)
	assert.Equal(t, status.Published, result.Record.Lifecycle.Status)
	assert.True(t, result.Record.Lifecycle.ManuallySet)
}

func TestResetStatusToAutomatic(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("dot markers", "US")
	rec = o.Evaluate(rec, keyword.Update{Status: statusPtr(status.Reject)}).Record
	rec = o.Evaluate(rec, topUpdate()).Record
	historyBefore := len(rec.History)

	reset, warnings := o.ResetStatusToAutomatic(rec)

	assert.Empty(t, warnings)
	assert.False(t, reset.Lifecycle.ManuallySet)
	assert.Equal(t, status.Derive(reset.MarketScore, scoreconfig.Default().StatusThresholds), reset.Lifecycle.Status)
	assert.Equal(t, status.Promising, reset.Lifecycle.Status)
	require.Len(t, reset.History, historyBefore+1)
	assert.Equal(t, journal.FieldStatus, reset.History[historyBefore].Field)
	assert.True(t, rec.Lifecycle.ManuallySet, "input record is untouched")
}

func TestEvaluatePinningCurrentStatusAddsNoEntry(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("dot markers", "US")
	require.Equal(t, status.Reject, rec.Lifecycle.Status)
	require.False(t, rec.Lifecycle.ManuallySet)

	result := o.Evaluate(rec, keyword.Update{Status: statusPtr(status.Reject)})

	assert.Equal(t, status.Record{Status: status.Reject, ManuallySet: true}, result.Record.Lifecycle)
	assert.Empty(t, result.Record.History)

	later := o.Evaluate(result.Record, topUpdate())
	assert.Equal(t, status.Reject, later.Record.Lifecycle.Status, "pinned status survives rescoring")
}

func TestEvaluateHistoryIsAppendOnly(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("keto cookbook", "US")
	rec = o.Evaluate(rec, keyword.Update{SearchVolume: intPtr(100)}).Record

	snapshot := append([]journal.Entry(nil), rec.History...)
	before := len(rec.History)

	volumes := []int{150, 90, 4000, 4100, 0}
	for _, v := range volumes {
		rec = o.Evaluate(rec, keyword.Update{SearchVolume: intPtr(v)}).Record
	}

	require.Len(t, rec.History, before+len(volumes))
	for i, entry := range snapshot {
		assert.Equal(t, entry, rec.History[i])
	}
	for i := 1; i < len(rec.History); i++ {
		assert.False(t, rec.History[i].Timestamp.Before(rec.History[i-1].Timestamp))
	}
}

func TestEvaluateJournalsInSuppliedOrder(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("keto cookbook", "US")

	var update keyword.Update
	require.NoError(t, json.Unmarshal([]byte(`{"competition":"low","relevance":"high","searchVolume":1200}`), &update))

	result := o.Evaluate(rec, update)

	require.Len(t, result.Record.History, 3)
	assert.Equal(t, journal.FieldCompetition, result.Record.History[0].Field)
	assert.Equal(t, journal.FieldRelevance, result.Record.History[1].Field)
	assert.Equal(t, journal.FieldSearchVolume, result.Record.History[2].Field)
}

func TestEvaluateAuditedFields(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("keto cookbook", "US")
	notes := "check seasonality"

	result := o.Evaluate(rec, keyword.Update{Notes: &notes, Price: floatPtr(12.99)})
	assert.Empty(t, result.Record.History, "notes and price are not tracked by default")

	result = o.Evaluate(rec, keyword.Update{
		Notes: &notes,
		Price: floatPtr(12.99),
		Audit: []journal.Field{journal.FieldNotes, journal.FieldPrice},
	})
	require.Len(t, result.Record.History, 2)
	assert.Equal(t, journal.FieldPrice, result.Record.History[0].Field)
	assert.Equal(t, journal.FieldNotes, result.Record.History[1].Field)
}

func TestEvaluateJournalsNumericLookingText(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("1000", "US")
	audit := []journal.Field{journal.FieldNotes, journal.FieldKeyword}

	notes, term := "1", "1000"
	rec = o.Evaluate(rec, keyword.Update{Notes: &notes, Audit: audit}).Record
	require.Len(t, rec.History, 1)

	notes, term = "1.0", "1e3"
	result := o.Evaluate(rec, keyword.Update{Keyword: &term, Notes: &notes, Audit: audit})

	require.Len(t, result.Record.History, 3)
	assert.Equal(t, journal.FieldKeyword, result.Record.History[1].Field)
	assert.Equal(t, "1e3", result.Record.History[1].NewValue)
	assert.Equal(t, journal.FieldNotes, result.Record.History[2].Field)
	assert.Equal(t, "1.0", result.Record.History[2].NewValue)
}

func TestEvaluateDuplicateJSONFieldIsRejected(t *testing.T) {
	var update keyword.Update
	err := json.Unmarshal([]byte(`{"searchVolume":100,"searchVolume":200}`), &update)
	assert.Error(t, err)
}

func TestEvaluateNormalizesMalformedInput(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("keto cookbook", "US")

	result := o.Evaluate(rec, keyword.Update{
		SearchVolume:    intPtr(-50),
		CompetitorCount: intPtr(-1),
		Price:           floatPtr(math.NaN()),
		RoyaltyPerSale:  floatPtr(-2),
	})

	assert.Equal(t, 0, result.Record.Observation.SearchVolume)
	assert.Equal(t, 0, result.Record.Observation.CompetitorCount)
	assert.True(t, result.Record.Observation.Price.Equal(decimal.Zero))
	assert.True(t, result.Record.Observation.RoyaltyPerSale.Equal(decimal.Zero))
	assert.GreaterOrEqual(t, result.Record.MarketScore, 0)
	assert.Empty(t, result.Record.History, "volume stayed at zero")
}

func TestEvaluateNonMarketFieldSkipsRecompute(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("keto cookbook", "US")

	result := o.Evaluate(rec, keyword.Update{Relevance: levelPtr(keyword.LevelHigh)})

	assert.False(t, result.Recomputed)
	assert.Equal(t, rec.Breakdown, result.Record.Breakdown)
	require.Len(t, result.Record.History, 1)
	assert.Equal(t, "", result.Record.History[0].OldValue)
	assert.Equal(t, "high", result.Record.History[0].NewValue)
}

func TestEvaluateMarketChangeRescores(t *testing.T) {
	o := newTestOrchestrator(nil)
	rec, _ := o.Create("keto cookbook", "US")
	rec = o.Evaluate(rec, keyword.Update{SearchVolume: intPtr(2500)}).Record
	require.Equal(t, 15, rec.Breakdown.Volume.Points)

	gb := "GB"
	result := o.Evaluate(rec, keyword.Update{Market: &gb})

	assert.True(t, result.Recomputed)
	assert.Equal(t, 25, result.Record.Breakdown.Volume.Points, "2500 searches is the top band in GB")
}

func TestEvaluateSurfacesOverrideWarnings(t *testing.T) {
	o := newTestOrchestrator(map[string]scoreconfig.PartialScoreConfig{
		"US": {Volume: &scoreconfig.PartialCategory{Max: intPtr(90)}},
	})
	rec, warnings := o.Create("keto cookbook", "US")
	require.Len(t, warnings, 1)

	result := o.Evaluate(rec, topUpdate())

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 100, result.Record.MarketScore, "defaults are used instead of the broken override")
}

func TestRecomputeOnly(t *testing.T) {
	o := newTestOrchestrator(nil)
	obs := market.Observation{
		SearchVolume:    5000,
		CompetitorCount: 10,
		Price:           decimal.RequireFromString("9.99"),
		RoyaltyPerSale:  decimal.RequireFromString("3.50"),
		TrafficSource:   market.TrafficMixed,
	}

	b, warnings := o.RecomputeOnly(obs, market.StructuralChecklist{}, market.CatalogSignals{}, "atlantis")

	assert.Empty(t, warnings)
	assert.Equal(t, 25+20+10+15-5, b.Total)
}
