package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoring"
	"github.com/iwvelando/market-score/internal/status"
	"github.com/shopspring/decimal"
)

func testRecords() []keyword.Record {
	return []keyword.Record{
		{
			ID:      "1",
			Keyword: "sudoku large print",
			Market:  "US",
			Observation: market.Observation{
				SearchVolume:    12500,
				CompetitorCount: 40,
				Price:           decimal.RequireFromString("9.99"),
				RoyaltyPerSale:  decimal.RequireFromString("3.5"),
				TrafficSource:   market.TrafficAmazon,
			},
			Lifecycle:   status.Record{Status: status.Promising},
			MarketScore: 88,
			Breakdown: scoring.Breakdown{
				Volume:    scoring.Item{Points: 25, Max: 25, Label: "5000+ searches"},
				Penalties: scoring.Item{Points: 0, Max: 0, Label: "amazon traffic"},
				Total:     88,
			},
		},
		{
			ID:      "2",
			Keyword: "dot markers, toddlers",
			Market:  "GB",
			Observation: market.Observation{
				Price:          decimal.RequireFromString("6.5"),
				RoyaltyPerSale: decimal.Zero,
				TrafficSource:  market.TrafficExternal,
			},
			Lifecycle:   status.Record{Status: status.Archived, ManuallySet: true},
			MarketScore: 12,
			Breakdown:   scoring.Breakdown{Penalties: scoring.Item{Points: -15, Label: "external traffic"}, Total: 12},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, testRecords()); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	expected := []string{
		"--- sudoku large print [US] ---",
		"Score   | 88/100, status promising",
		"12,500 searches",
		"$9.99 price",
		"Category       | Points | Max | Detail",
		"5000+ searches",
		"--- dot markers, toddlers [GB] ---",
		"status archived (set manually)",
		"£6.50 price",
		"external traffic",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat missing %q in:\n%s", want, output)
		}
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, testRecords()); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "keyword" || len(rows[0]) != len(rows[1]) {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[2][0] != "dot markers, toddlers" {
		t.Errorf("expected quoted keyword to survive, got %q", rows[2][0])
	}
	if rows[1][7] != "9.99" || rows[2][8] != "0.00" {
		t.Errorf("unexpected amounts %q and %q", rows[1][7], rows[2][8])
	}
	if rows[2][len(rows[2])-1] != "-15" {
		t.Errorf("expected penalty -15, got %q", rows[2][len(rows[2])-1])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, testRecords()); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0]["marketScore"].(float64) != 88 {
		t.Errorf("unexpected score %v", decoded[0]["marketScore"])
	}

	buf.Reset()
	if err := JSONFormat(&buf, nil); err != nil {
		t.Fatalf("JSONFormat(nil) error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}
