// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/market-score/internal/keyword"
)

// FindKeyword finds a record by keyword text in the results slice.
// Returns a pointer to the record if found, nil otherwise.
func FindKeyword(results []keyword.Record, text string) *keyword.Record {
	for i := range results {
		if results[i].Keyword == text {
			return &results[i]
		}
	}
	return nil
}
