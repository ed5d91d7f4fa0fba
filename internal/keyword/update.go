package keyword

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iwvelando/market-score/internal/journal"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/status"
	"github.com/iwvelando/market-score/pkg/constants"
	"github.com/iwvelando/market-score/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Update is a partial change to a Record. Nil fields are left alone.
// Structural and CatalogSignals replace the whole checklist.
type Update struct {
	Keyword         *string                     `json:"keyword,omitempty"`
	Market          *string                     `json:"market,omitempty"`
	SearchVolume    *int                        `json:"searchVolume,omitempty"`
	CompetitorCount *int                        `json:"competitorCount,omitempty"`
	// Price and RoyaltyPerSale are rounded half away from zero to cents
	// before they are stored or banded, so 7.985 is scored as 7.99.
	Price           *float64                    `json:"price,omitempty"`
	RoyaltyPerSale  *float64                    `json:"royaltyPerSale,omitempty"`
	TrafficSource   *market.TrafficSource       `json:"trafficSource,omitempty"`
	Structural      *market.StructuralChecklist `json:"structural,omitempty"`
	CatalogSignals  *market.CatalogSignals      `json:"catalogSignals,omitempty"`
	Relevance       *Level                      `json:"relevance,omitempty"`
	Competition     *Level                      `json:"competition,omitempty"`
	Notes           *string                     `json:"notes,omitempty"`
	Status          *status.Status              `json:"status,omitempty"`

	// Audit marks extra fields to journal for this update.
	Audit []journal.Field `json:"audit,omitempty"`

	order []journal.Field
}

// canonicalOrder is used when the update was not decoded from JSON.
var canonicalOrder = []journal.Field{
	journal.FieldKeyword,
	journal.FieldMarket,
	journal.FieldSearchVolume,
	journal.FieldCompetitorCount,
	journal.FieldPrice,
	journal.FieldRoyaltyPerSale,
	journal.FieldTrafficSource,
	journal.FieldStructural,
	journal.FieldCatalogSignals,
	journal.FieldRelevance,
	journal.FieldCompetition,
	journal.FieldNotes,
	journal.FieldStatus,
}

// UnmarshalJSON decodes the update and remembers the order its fields were
// supplied in, so journal entries come out in the same order.
func (u *Update) UnmarshalJSON(data []byte) error {
	type plain Update
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	order, err := keyOrder(data)
	if err != nil {
		return err
	}

	*u = Update(decoded)
	u.order = order
	return nil
}

func keyOrder(data []byte) ([]journal.Field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object for keyword update")
	}

	var order []journal.Field
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in keyword update", tok)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate field %q in keyword update", key)
		}
		seen[key] = true
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if key == "audit" {
			continue
		}
		field, ok := lookupField(key)
		if !ok {
			return nil, fmt.Errorf("unknown field %q in keyword update", key)
		}
		order = append(order, field)
	}
	return order, nil
}

func lookupField(key string) (journal.Field, bool) {
	for _, field := range canonicalOrder {
		if string(field) == key {
			return field, true
		}
	}
	return "", false
}

// IsEmpty reports whether the update carries no field changes.
func (u Update) IsEmpty() bool {
	return len(u.Fields()) == 0
}

// Fields lists the fields present in the update in supplied order.
func (u Update) Fields() []journal.Field {
	order := u.order
	if len(order) == 0 {
		order = canonicalOrder
	}
	fields := make([]journal.Field, 0, len(order))
	for _, field := range order {
		if u.has(field) {
			fields = append(fields, field)
		}
	}
	return fields
}

// Audited reports whether field should be journaled for this update.
func (u Update) Audited(field journal.Field) bool {
	if journal.IsTracked(field) {
		return true
	}
	for _, f := range u.Audit {
		if f == field {
			return true
		}
	}
	return false
}

func (u Update) has(field journal.Field) bool {
	switch field {
	case journal.FieldKeyword:
		return u.Keyword != nil
	case journal.FieldMarket:
		return u.Market != nil
	case journal.FieldSearchVolume:
		return u.SearchVolume != nil
	case journal.FieldCompetitorCount:
		return u.CompetitorCount != nil
	case journal.FieldPrice:
		return u.Price != nil
	case journal.FieldRoyaltyPerSale:
		return u.RoyaltyPerSale != nil
	case journal.FieldTrafficSource:
		return u.TrafficSource != nil
	case journal.FieldStructural:
		return u.Structural != nil
	case journal.FieldCatalogSignals:
		return u.CatalogSignals != nil
	case journal.FieldRelevance:
		return u.Relevance != nil
	case journal.FieldCompetition:
		return u.Competition != nil
	case journal.FieldNotes:
		return u.Notes != nil
	case journal.FieldStatus:
		return u.Status != nil
	}
	return false
}

// Apply merges the update onto rec, normalising every supplied value, and
// returns the merged copy. rec is not modified. Score, breakdown and history
// are left for the engine to maintain. A status in the update pins the
// status by hand; an unknown status is ignored.
func Apply(rec Record, u Update) Record {
	out := rec

	if u.Keyword != nil {
		out.Keyword = strings.TrimSpace(*u.Keyword)
	}
	if u.Market != nil {
		out.Market = market.Normalize(*u.Market)
	}
	if u.SearchVolume != nil {
		out.Observation.SearchVolume = mathutil.NonNegativeInt(*u.SearchVolume)
	}
	if u.CompetitorCount != nil {
		out.Observation.CompetitorCount = mathutil.NonNegativeInt(*u.CompetitorCount)
	}
	if u.Price != nil {
		out.Observation.Price = normalizeAmount(*u.Price)
	}
	if u.RoyaltyPerSale != nil {
		out.Observation.RoyaltyPerSale = normalizeAmount(*u.RoyaltyPerSale)
	}
	if u.TrafficSource != nil {
		out.Observation.TrafficSource = market.ParseTrafficSource(string(*u.TrafficSource))
	}
	if u.Structural != nil {
		out.Structural = *u.Structural
	}
	if u.CatalogSignals != nil {
		out.CatalogSignals = u.CatalogSignals.Normalize()
	}
	if u.Relevance != nil {
		out.Relevance = ParseLevel(string(*u.Relevance))
	}
	if u.Competition != nil {
		out.Competition = ParseLevel(string(*u.Competition))
	}
	if u.Notes != nil {
		out.Notes = *u.Notes
	}
	if u.Status != nil {
		if s, ok := status.Parse(string(*u.Status)); ok {
			out.Lifecycle = status.SetManually(s)
		}
	}

	return out
}

// normalizeAmount turns NaN and negative amounts into zero and rounds to
// cents.
func normalizeAmount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(mathutil.NonNegativeFloat(v)).Round(constants.DecimalPlaces)
}
