package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/market-score/internal/journal"
	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"github.com/iwvelando/market-score/internal/scoring"
	"github.com/iwvelando/market-score/internal/status"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord(id string, score int) keyword.Record {
	return keyword.Record{
		ID:      id,
		Keyword: "sudoku " + id,
		Market:  "US",
		Observation: market.Observation{
			SearchVolume:    1200,
			CompetitorCount: 80,
			Price:           decimal.RequireFromString("7.99"),
			RoyaltyPerSale:  decimal.RequireFromString("2.10"),
			TrafficSource:   market.TrafficAmazon,
		},
		Structural:     market.StructuralChecklist{PlatformSuggests: true},
		CatalogSignals: market.CatalogSignals{SellingTitles: market.CatalogFew, HasLowReviewComparables: true},
		Relevance:      keyword.LevelHigh,
		Notes:          "seasonal",
		Lifecycle:      status.Record{Status: status.Candidate},
		MarketScore:    score,
		Breakdown: scoring.Breakdown{
			Volume: scoring.Item{Points: 15, Max: 25, Label: "1000-3000 searches"},
			Total:  score,
		},
	}
}

func entry(id string, ts time.Time, field journal.Field, oldValue, newValue any) journal.Entry {
	return journal.Entry{ID: id, Timestamp: ts, Field: field, OldValue: oldValue, NewValue: newValue}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC)

	rec := sampleRecord("a", 55)
	rec.History = []journal.Entry{
		entry("e1", ts, journal.FieldSearchVolume, 0, 1200),
		entry("e2", ts.Add(time.Second), journal.FieldStatus, "reject", "candidate"),
	}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, rec.Keyword, got.Keyword)
	assert.Equal(t, rec.Market, got.Market)
	assert.True(t, rec.Observation.Equal(got.Observation))
	assert.Equal(t, rec.Structural, got.Structural)
	assert.Equal(t, rec.CatalogSignals, got.CatalogSignals)
	assert.Equal(t, rec.Relevance, got.Relevance)
	assert.Equal(t, rec.Notes, got.Notes)
	assert.Equal(t, rec.Lifecycle, got.Lifecycle)
	assert.Equal(t, rec.Breakdown, got.Breakdown)

	require.Len(t, got.History, 2)
	assert.Equal(t, "e1", got.History[0].ID)
	assert.True(t, ts.Equal(got.History[0].Timestamp))
	assert.Equal(t, json.Number("1200"), got.History[0].NewValue)
	assert.Equal(t, "candidate", got.History[1].NewValue)
	assert.True(t, journal.Equal(got.History[0].NewValue, 1200))
}

func TestSaveAppendsHistoryOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	rec := sampleRecord("a", 40)
	rec.History = []journal.Entry{entry("e1", ts, journal.FieldSearchVolume, 0, 100)}
	require.NoError(t, s.Save(ctx, rec))

	rec.History = append(rec.History, entry("e2", ts.Add(time.Minute), journal.FieldSearchVolume, 100, 1200))
	rec.MarketScore = 60
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got.History, 2)
	assert.Equal(t, "e1", got.History[0].ID)
	assert.Equal(t, "e2", got.History[1].ID)
	assert.Equal(t, 60, got.MarketScore)

	rec.History = rec.History[:1]
	err = s.Save(ctx, rec)
	assert.True(t, errors.Is(err, ErrHistoryRewritten))
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRecord("low", 10)))
	require.NoError(t, s.Save(ctx, sampleRecord("high", 90)))
	require.NoError(t, s.Save(ctx, sampleRecord("mid", 50)))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "high", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "low", list[2].ID)

	require.NoError(t, s.Delete(ctx, "mid"))
	assert.True(t, errors.Is(s.Delete(ctx, "mid"), ErrNotFound))

	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestOverrides(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	promising := 65

	require.NoError(t, s.SaveOverride(ctx, "uk", scoreconfig.PartialScoreConfig{
		StatusThresholds: &scoreconfig.PartialThresholds{Promising: &promising},
	}))

	overrides, warnings, err := s.LoadOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Contains(t, overrides, "GB")
	assert.Equal(t, 65, *overrides["GB"].StatusThresholds.Promising)

	require.NoError(t, s.DeleteOverride(ctx, "GB"))
	overrides, _, err = s.LoadOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestLoadOverridesSkipsCorruptRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO score_overrides (market, body, updated_at) VALUES ('US', '{not json', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, s.SaveOverride(ctx, "DE", scoreconfig.PartialScoreConfig{
		TrafficPenalties: map[market.TrafficSource]int{market.TrafficMixed: -8},
	}))

	overrides, warnings, err := s.LoadOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "market US")
	assert.NotContains(t, overrides, "US")
	assert.Equal(t, -8, overrides["DE"].TrafficPenalties[market.TrafficMixed])
}
