// Package mathutil provides the percentage arithmetic shared by the calculators.
package mathutil

import "github.com/iwvelando/smart-calc-suite/pkg/constants"

// PercentChange returns how much newValue differs from oldValue as a
// percentage of oldValue. A zero oldValue yields 0.
func PercentChange(oldValue, newValue float64) float64 {
	if oldValue == 0 {
		return 0
	}
	return ((newValue - oldValue) / oldValue) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// AddPercentage returns value increased by percentage percent.
func AddPercentage(value, percentage float64) float64 {
	return value + ApplyPercentage(value, percentage)
}

// SubtractPercentage returns value reduced by percentage percent.
func SubtractPercentage(value, percentage float64) float64 {
	return value - ApplyPercentage(value, percentage)
}
