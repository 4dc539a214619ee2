// Package catalog holds the four calculators of the suite and their fixed
// business formulas.
package catalog

import (
	"errors"
	"fmt"

	"github.com/iwvelando/smart-calc-suite/internal/calculator"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/mathutil"
	"github.com/iwvelando/smart-calc-suite/pkg/theme"
)

// Calculator identifiers, in page order.
const (
	AppraisalID         = "appraisal"
	SalaryExpectationID = "salary-expectation"
	DiscountID          = "discount"
	PriceIncreaseID     = "increase"
)

// ErrUnknownCalculator is returned by Lookup for an unknown id.
var ErrUnknownCalculator = errors.New("unknown calculator")

// Appraisal returns the hike of new over old as a percentage of old.
// A zero old salary yields 0.
func Appraisal(values map[string]float64) (float64, bool) {
	return mathutil.PercentChange(values["old"], values["new"]), true
}

// SalaryExpectation returns current salary raised by percent.
func SalaryExpectation(values map[string]float64) (float64, bool) {
	return mathutil.AddPercentage(values["current"], values["percent"]), true
}

// Discount returns amount reduced by percent.
func Discount(values map[string]float64) (float64, bool) {
	return mathutil.SubtractPercentage(values["amount"], values["percent"]), true
}

// PriceIncrease returns amount raised by percent.
func PriceIncrease(values map[string]float64) (float64, bool) {
	return mathutil.AddPercentage(values["amount"], values["percent"]), true
}

// Definitions returns the calculators in page order. Each call returns fresh
// slices, so callers may not mutate shared state through them.
func Definitions() []calculator.Definition {
	return []calculator.Definition{
		{
			ID:          AppraisalID,
			Title:       "Appraisal Hike",
			Description: "Calculate percentage increase between old and new salary.",
			Theme:       theme.Blue,
			Inputs: []calculator.InputSpec{
				{Label: "Old Salary", Key: "old"},
				{Label: "New Salary", Key: "new"},
			},
			Result:  calculator.ResultSpec{Label: "Hike Percentage", Suffix: constants.PercentSuffix},
			Formula: Appraisal,
		},
		{
			ID:          SalaryExpectationID,
			Title:       "Salary Expectation",
			Description: "Determine total salary based on current pay and expected %.",
			Theme:       theme.Orange,
			Inputs: []calculator.InputSpec{
				{Label: "Current Salary", Key: "current"},
				{Label: "Expected Hike", Key: "percent", Suffix: constants.PercentSuffix},
			},
			Result:  calculator.ResultSpec{Label: "Total Expected Salary"},
			Formula: SalaryExpectation,
		},
		{
			ID:          DiscountID,
			Title:       "Discount Calculator",
			Description: "Calculate final price after applying a discount percentage.",
			Theme:       theme.Green,
			Inputs: []calculator.InputSpec{
				{Label: "Original Amount", Key: "amount"},
				{Label: "Discount", Key: "percent", Suffix: constants.PercentSuffix},
			},
			Result:  calculator.ResultSpec{Label: "Discounted Amount"},
			Formula: Discount,
		},
		{
			ID:          PriceIncreaseID,
			Title:       "Price Increase",
			Description: "Calculate total value after adding a percentage increase.",
			Theme:       theme.Purple,
			Inputs: []calculator.InputSpec{
				{Label: "Original Amount", Key: "amount"},
				{Label: "Increase", Key: "percent", Suffix: constants.PercentSuffix},
			},
			Result:  calculator.ResultSpec{Label: "Total Amount"},
			Formula: PriceIncrease,
		},
	}
}

// Lookup returns the definition with the given id.
func Lookup(id string) (calculator.Definition, error) {
	for _, def := range Definitions() {
		if def.ID == id {
			return def, nil
		}
	}
	return calculator.Definition{}, fmt.Errorf("%w %q", ErrUnknownCalculator, id)
}

// IDs returns the calculator identifiers in page order.
func IDs() []string {
	defs := Definitions()
	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.ID)
	}
	return ids
}
