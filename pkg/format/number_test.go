package format

import (
	"math"
	"testing"
)

func TestResult(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		suffix   string
		expected string
	}{
		{"Percentage two decimals", 10, "%", "10.00"},
		{"Percentage no grouping", 12345.678, "%", "12345.68"},
		{"Percentage negative", -4.5, "%", "-4.50"},
		{"Percentage stored below tie", 1.005, "%", "1.00"},
		{"Percentage stored below tie 8.575", 8.575, "%", "8.57"},
		{"Percentage exact tie", 3.125, "%", "3.13"},
		{"Percentage negative exact tie", -3.125, "%", "-3.13"},
		{"Grouped amount", 89600, "", "89,600.00"},
		{"Small amount", 900, "", "900.00"},
		{"Thousand", 2100, "", "2,100.00"},
		{"Millions", 1234567.891, "", "1,234,567.89"},
		{"Negative grouped", -1234.5, "", "-1,234.50"},
		{"Other suffix grouped", 1500, " USD", "1,500.00"},
		{"Zero", 0, "", "0.00"},
		{"Rounds half up", 0.125, "", "0.13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Result(tt.value, tt.suffix); got != tt.expected {
				t.Errorf("Result(%v, %q) = %q, expected %q", tt.value, tt.suffix, got, tt.expected)
			}
		})
	}
}

func TestDecorate(t *testing.T) {
	if got := Decorate("", "10.00", "%"); got != "10.00%" {
		t.Errorf("Decorate() = %q, expected 10.00%%", got)
	}
	if got := Decorate("$", "900.00", ""); got != "$900.00" {
		t.Errorf("Decorate() = %q, expected $900.00", got)
	}
}

func TestCount(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		12500:   "12,500",
		1000000: "1,000,000",
		-4200:   "-4,200",
	}
	for input, expected := range tests {
		if got := Count(input); got != expected {
			t.Errorf("Count(%d) = %q, expected %q", input, got, expected)
		}
	}
}

func TestNonFiniteValues(t *testing.T) {
	if got := Number(math.Inf(1)); got != "+Inf" {
		t.Errorf("Number(+Inf) = %q, expected +Inf", got)
	}
	if got := Percentage(math.NaN()); got != "NaN" {
		t.Errorf("Percentage(NaN) = %q, expected NaN", got)
	}
}
