package validation

import (
	"regexp"
	"strconv"
)

// numericInput matches an optional integer part, then an optional single
// decimal point followed by digits. Partially typed values such as "", "."
// and "12." match.
var numericInput = regexp.MustCompile(`^\d*\.?\d*$`)

// IsNumericInput reports whether raw is acceptable text for a numeric field.
// It is a syntactic filter only.
func IsNumericInput(raw string) bool {
	return numericInput.MatchString(raw)
}

// ParseNumericInput parses accepted field text. ok is false for text that
// does not yet hold a number, such as "" or ".".
func ParseNumericInput(raw string) (value float64, ok bool) {
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
