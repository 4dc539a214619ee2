package mathutil

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		old      float64
		new      float64
		expected float64
	}{
		{"Ten percent raise", 50000, 55000, 10},
		{"No change", 1000, 1000, 0},
		{"Pay cut", 1000, 900, -10},
		{"Doubling", 250, 500, 100},
		{"Zero old value guarded", 0, 55000, 0},
		{"Both zero", 0, 0, 0},
		{"Fractional", 3, 4, 33.333333333333336},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PercentChange(tt.old, tt.new)
			if !approxEqual(result, tt.expected) {
				t.Errorf("PercentChange(%v, %v) = %v, expected %v", tt.old, tt.new, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		percentage float64
		expected   float64
	}{
		{"Ten percent of hundred", 100, 10, 10},
		{"Zero percent", 100, 0, 0},
		{"Hundred percent", 100, 100, 100},
		{"Quarter", 1200, 25, 300},
		{"Fractional percent", 1000, 2.5, 25},
		{"Zero value", 0, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(tt.value, tt.percentage)
			if !approxEqual(result, tt.expected) {
				t.Errorf("ApplyPercentage(%v, %v) = %v, expected %v", tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}

func TestAddAndSubtractPercentage(t *testing.T) {
	if got := AddPercentage(80000, 12); !approxEqual(got, 89600) {
		t.Errorf("AddPercentage(80000, 12) = %v, expected 89600", got)
	}
	if got := AddPercentage(2000, 5); !approxEqual(got, 2100) {
		t.Errorf("AddPercentage(2000, 5) = %v, expected 2100", got)
	}
	if got := SubtractPercentage(1200, 25); !approxEqual(got, 900) {
		t.Errorf("SubtractPercentage(1200, 25) = %v, expected 900", got)
	}
	if got := SubtractPercentage(50, 100); !approxEqual(got, 0) {
		t.Errorf("SubtractPercentage(50, 100) = %v, expected 0", got)
	}
}
