// Package journal records field-level changes to a keyword as immutable,
// timestamped history entries.
package journal

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/market-score/pkg/constants"
	"github.com/iwvelando/market-score/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Field names a journaled keyword field.
type Field string

const (
	FieldKeyword         Field = "keyword"
	FieldMarket          Field = "market"
	FieldSearchVolume    Field = "searchVolume"
	FieldCompetitorCount Field = "competitorCount"
	FieldPrice           Field = "price"
	FieldRoyaltyPerSale  Field = "royaltyPerSale"
	FieldTrafficSource   Field = "trafficSource"
	FieldStructural      Field = "structural"
	FieldCatalogSignals  Field = "catalogSignals"
	FieldRelevance       Field = "relevance"
	FieldCompetition     Field = "competition"
	FieldNotes           Field = "notes"
	FieldStatus          Field = "status"
)

// tracked fields are journaled on every update. Other fields are journaled
// only when the caller marks them auditable.
var tracked = map[Field]bool{
	FieldSearchVolume: true,
	FieldStatus:       true,
	FieldRelevance:    true,
	FieldCompetition:  true,
}

var numeric = map[Field]bool{
	FieldSearchVolume:    true,
	FieldCompetitorCount: true,
	FieldPrice:           true,
	FieldRoyaltyPerSale:  true,
}

// IsTracked reports whether field is journaled without being marked auditable.
func IsTracked(field Field) bool {
	return tracked[field]
}

// IsNumeric reports whether field holds a number.
func IsNumeric(field Field) bool {
	return numeric[field]
}

// Entry is one immutable history record. Timestamp marshals as RFC 3339.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Field     Field     `json:"field"`
	OldValue  any       `json:"oldValue"`
	NewValue  any       `json:"newValue"`
}

// Journal stamps entries with an id and the current time.
type Journal struct {
	now   func() time.Time
	newID func() string
}

// New returns a journal using the wall clock and random UUIDs.
func New() *Journal {
	return &Journal{now: time.Now, newID: uuid.NewString}
}

// NewWithClock returns a journal that reads time from now.
func NewWithClock(now func() time.Time) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{now: now, newID: uuid.NewString}
}

// Diff returns a new entry when oldValue and newValue differ by value, and
// nil when they are equal.
func (j *Journal) Diff(field Field, oldValue, newValue any) *Entry {
	if Equal(oldValue, newValue) {
		return nil
	}
	return &Entry{
		ID:        j.newID(),
		Timestamp: j.now().UTC(),
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
	}
}

// Append returns history followed by entries. history itself is never
// written to, so slices held by earlier record values stay intact.
func Append(history []Entry, entries ...Entry) []Entry {
	if len(entries) == 0 {
		return history
	}
	out := make([]Entry, 0, len(history)+len(entries))
	out = append(out, history...)
	return append(out, entries...)
}

// IsSignificantChange reports whether a numeric field moved by at least 30%,
// or went from zero to a positive value. Non-numeric fields never qualify.
func IsSignificantChange(field Field, oldValue, newValue any) bool {
	if !IsNumeric(field) {
		return false
	}
	oldNum, ok := ToFloat(oldValue)
	if !ok {
		return false
	}
	newNum, ok := ToFloat(newValue)
	if !ok {
		return false
	}

	ratio, defined := mathutil.RelativeChange(oldNum, newNum)
	if !defined {
		return newNum > 0
	}
	return ratio >= constants.SignificantChangeRatio-1e-9
}

// Equal compares two journal values by value. Numbers of different Go types
// compare numerically. Plain strings are text and compare exactly, so "1" and
// "1.0" differ.
func Equal(a, b any) bool {
	_, aText := a.(string)
	_, bText := b.(string)
	if aText || bText {
		return reflect.DeepEqual(a, b)
	}
	if af, ok := ToFloat(a); ok {
		if bf, ok := ToFloat(b); ok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

// ToFloat converts the numeric representations a journal value can take,
// including the strings decimals and JSON round trips produce.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
