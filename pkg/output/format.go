// Package output provides utilities for formatting and displaying scored
// keywords.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable report with one block per keyword.
func PrettyFormat(w io.Writer, records []keyword.Record) error {
	p := message.NewPrinter(language.English)
	for i, rec := range records {
		mp := market.LookupOrDefault(rec.Market)
		if _, err := fmt.Fprintf(w, "--- %s [%s] ---\n", rec.Keyword, rec.Market); err != nil {
			return err
		}
		manual := ""
		if rec.Lifecycle.ManuallySet {
			manual = " (set manually)"
		}
		price, _ := rec.Observation.Price.Float64()
		royalty, _ := rec.Observation.RoyaltyPerSale.Float64()
		_, _ = p.Fprintf(w, "Score   | %d/100, status %s%s\n", rec.MarketScore, rec.Lifecycle.Status, manual)
		_, _ = p.Fprintf(w, "Inputs  | %d searches, %d competitors, %s price, %s royalty, %s traffic\n",
			rec.Observation.SearchVolume, rec.Observation.CompetitorCount,
			format.Currency(price, mp.Currency), format.Currency(royalty, mp.Currency),
			rec.Observation.TrafficSource)
		_, _ = fmt.Fprintf(w, "Category       | Points | Max | Detail\n")
		_, _ = fmt.Fprintf(w, "________       | ______ | ___ | ______\n")
		for _, item := range rec.Breakdown.Items() {
			_, _ = fmt.Fprintf(w, "%-14s | %6d | %3d | %s\n", item.Name, item.Points, item.Max, item.Label)
		}
		if i < len(records)-1 {
			if _, err := fmt.Fprintf(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

var csvHeader = []string{
	"keyword", "market", "score", "status", "manually set",
	"search volume", "competitors", "price", "royalty", "traffic source",
	"volume points", "competitor points", "price points", "royalty points",
	"structural points", "catalog points", "penalty points",
}

// CsvFormat writes one row per keyword.
func CsvFormat(w io.Writer, records []keyword.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		b := rec.Breakdown
		row := []string{
			rec.Keyword,
			rec.Market,
			strconv.Itoa(rec.MarketScore),
			string(rec.Lifecycle.Status),
			strconv.FormatBool(rec.Lifecycle.ManuallySet),
			strconv.Itoa(rec.Observation.SearchVolume),
			strconv.Itoa(rec.Observation.CompetitorCount),
			rec.Observation.Price.StringFixed(2),
			rec.Observation.RoyaltyPerSale.StringFixed(2),
			string(rec.Observation.TrafficSource),
			strconv.Itoa(b.Volume.Points),
			strconv.Itoa(b.Competitors.Points),
			strconv.Itoa(b.Price.Points),
			strconv.Itoa(b.Royalties.Points),
			strconv.Itoa(b.Structural.Points),
			strconv.Itoa(b.CatalogSignals.Points),
			strconv.Itoa(b.Penalties.Points),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat writes the records as an indented JSON array.
func JSONFormat(w io.Writer, records []keyword.Record) error {
	if records == nil {
		records = []keyword.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
