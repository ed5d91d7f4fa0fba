package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/pkg/constants"
)

func TestWrite(t *testing.T) {
	results := []keyword.Record{{Keyword: "sudoku", Market: "US", MarketScore: 42}}

	tests := []struct {
		format string
		want   string
	}{
		{constants.OutputFormatPretty, "--- sudoku [US] ---"},
		{constants.OutputFormatCSV, "sudoku,US,42"},
		{constants.OutputFormatJSON, `"marketScore": 42`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := write(&buf, tt.format, results); err != nil {
				t.Fatalf("write() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in output:\n%s", tt.want, buf.String())
			}
		})
	}
}
