// Package format renders calculator results as display strings.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/shopspring/decimal"
)

// Result formats a computed value for the given result suffix. A percent
// suffix renders exactly two decimals; anything else also gets thousands
// separators (e.g., "89,600.00").
func Result(value float64, suffix string) string {
	if suffix == constants.PercentSuffix {
		return Percentage(value)
	}
	return Number(value)
}

// Decorate wraps a formatted value with the verbatim prefix and suffix.
func Decorate(prefix, formatted, suffix string) string {
	return prefix + formatted + suffix
}

// Percentage returns value with exactly two decimals and no grouping (e.g., "10.00").
func Percentage(value float64) string {
	if !finite(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return exact(value).Round(constants.ResultDecimals).StringFixed(constants.ResultDecimals)
}

// exact returns the full binary value of f, so ties are decided on what the
// float actually holds (2.925 is stored just below and rounds down).
func exact(f float64) decimal.Decimal {
	return decimal.RequireFromString(strconv.FormatFloat(f, 'f', 1074, 64))
}

// Number returns value with separators and exactly two decimals (e.g., "-1,234.56").
func Number(value float64) string {
	if !finite(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	rounded := decimal.NewFromFloat(value).Round(constants.ResultDecimals)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + groupDigits(rounded.Abs().StringFixed(constants.ResultDecimals))
}

// Count renders an integer with thousands separators (e.g., "12,500").
func Count(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + groupDigits(strconv.FormatInt(n, 10))
}

func groupDigits(formatted string) string {
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
