// Package status derives a keyword's lifecycle status from its score and
// decides when a derived status may replace the current one.
package status

import (
	"strings"

	"github.com/iwvelando/market-score/internal/scoreconfig"
)

// Status is a keyword's lifecycle status.
type Status string

const (
	Candidate Status = "candidate"
	Pending   Status = "pending"
	Promising Status = "promising"
	Reject    Status = "reject"
	// Published and Archived are only ever set by hand.
	Published Status = "published"
	Archived  Status = "archived"
)

// All lists every status, derived ones first.
func All() []Status {
	return []Status{Promising, Candidate, Pending, Reject, Published, Archived}
}

// Parse maps text onto a Status.
func Parse(value string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range All() {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// Record is the status half of a keyword. While ManuallySet is true automatic
// recomputation never touches Status.
type Record struct {
	Status      Status `json:"status" yaml:"status"`
	ManuallySet bool   `json:"manuallySet" yaml:"manuallySet"`
}

// Derive maps a total score onto a status using the banded thresholds.
func Derive(total int, thresholds scoreconfig.StatusThresholds) Status {
	switch {
	case total >= thresholds.Promising:
		return Promising
	case total >= thresholds.Candidate:
		return Candidate
	case total >= thresholds.Pending:
		return Pending
	default:
		return Reject
	}
}

// Apply installs the derived status unless the status was set by hand.
func Apply(rec Record, total int, thresholds scoreconfig.StatusThresholds) Record {
	if rec.ManuallySet {
		return rec
	}
	return Record{Status: Derive(total, thresholds)}
}

// SetManually pins status until ResetToAutomatic is called.
func SetManually(s Status) Record {
	return Record{Status: s, ManuallySet: true}
}

// ResetToAutomatic clears the manual flag and re-derives the status from
// total straight away.
func ResetToAutomatic(rec Record, total int, thresholds scoreconfig.StatusThresholds) Record {
	rec.ManuallySet = false
	return Apply(rec, total, thresholds)
}
