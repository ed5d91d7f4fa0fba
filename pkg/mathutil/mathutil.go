// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/market-score/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val float64) float64 {
	return math.Round(val*100) / 100
}

// ClampInt bounds v to the closed interval [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampScore bounds a raw point sum to the valid total range.
func ClampScore(v int) int {
	return ClampInt(v, constants.MinScore, constants.MaxScore)
}

// NonNegativeInt returns v, or 0 when v is negative.
func NonNegativeInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// NonNegativeFloat maps NaN, negative values and negative infinity to 0 and
// positive infinity to the largest finite float.
func NonNegativeFloat(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	}
	return v
}

// RelativeChange returns |new-old|/old. The second result is false when old
// is zero and the ratio is undefined.
func RelativeChange(oldVal, newVal float64) (float64, bool) {
	if oldVal == 0 {
		return 0, false
	}
	return math.Abs(newVal-oldVal) / math.Abs(oldVal), true
}
