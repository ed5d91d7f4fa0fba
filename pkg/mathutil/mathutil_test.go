package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 9.99, 9.99},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{-15, 0},
		{0, 0},
		{57, 57},
		{100, 100},
		{118, 100},
	}

	for _, tt := range tests {
		if got := ClampScore(tt.input); got != tt.expected {
			t.Errorf("ClampScore(%d) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestNonNegativeFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"NaN", math.NaN(), 0},
		{"Negative", -3.5, 0},
		{"Negative infinity", math.Inf(-1), 0},
		{"Positive infinity", math.Inf(1), math.MaxFloat64},
		{"Positive", 9.99, 9.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NonNegativeFloat(tt.input); got != tt.expected {
				t.Errorf("NonNegativeFloat(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNonNegativeInt(t *testing.T) {
	if got := NonNegativeInt(-42); got != 0 {
		t.Errorf("NonNegativeInt(-42) = %d, expected 0", got)
	}
	if got := NonNegativeInt(42); got != 42 {
		t.Errorf("NonNegativeInt(42) = %d, expected 42", got)
	}
}

func TestRelativeChange(t *testing.T) {
	ratio, ok := RelativeChange(100, 131)
	if !ok || math.Abs(ratio-0.31) > 1e-9 {
		t.Errorf("RelativeChange(100, 131) = %v, %v", ratio, ok)
	}

	ratio, ok = RelativeChange(200, 100)
	if !ok || ratio != 0.5 {
		t.Errorf("RelativeChange(200, 100) = %v, %v", ratio, ok)
	}

	if _, ok := RelativeChange(0, 50); ok {
		t.Error("RelativeChange(0, 50) should be undefined")
	}
}
