// Package calculator implements the input, compute and display pipeline
// shared by every percentage calculator, plus the on-demand insight request.
package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/theme"
)

// InputCount is the number of inputs every calculator declares.
const InputCount = 2

// InputSpec describes one numeric input field.
type InputSpec struct {
	Label  string `json:"label" yaml:"label"`
	Key    string `json:"key" yaml:"key"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// ResultSpec describes how the computed value is labelled and decorated.
type ResultSpec struct {
	Label  string `json:"label" yaml:"label"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// IsPercentage reports whether the result renders as a percentage.
func (r ResultSpec) IsPercentage() bool {
	return r.Suffix == constants.PercentSuffix
}

// Formula maps parsed inputs, keyed by InputSpec.Key, to a result. Returning
// false means the formula declines to produce a result. Formulas must be
// pure.
type Formula func(values map[string]float64) (float64, bool)

// Definition is the immutable description of one calculator.
type Definition struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	Theme       theme.Name  `json:"theme" yaml:"theme"`
	Inputs      []InputSpec `json:"inputs" yaml:"inputs"`
	Result      ResultSpec  `json:"result" yaml:"result"`
	Formula     Formula     `json:"-" yaml:"-"`
}

// Validate checks the structural invariants of a definition.
func (d Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if len(d.Inputs) != InputCount {
		errs = append(errs, fmt.Errorf("expected %d inputs, got %d", InputCount, len(d.Inputs)))
	}
	seen := make(map[string]struct{}, len(d.Inputs))
	for i, input := range d.Inputs {
		if input.Key == "" {
			errs = append(errs, fmt.Errorf("input %d has an empty key", i))
			continue
		}
		if _, dup := seen[input.Key]; dup {
			errs = append(errs, fmt.Errorf("duplicate input key %q", input.Key))
		}
		seen[input.Key] = struct{}{}
	}
	if d.Theme != "" {
		if _, err := theme.Parse(string(d.Theme)); err != nil {
			errs = append(errs, err)
		}
	}
	if d.Formula == nil {
		errs = append(errs, errors.New("formula is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid calculator definition %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Input returns the declared input with the given key.
func (d Definition) Input(key string) (InputSpec, bool) {
	for _, input := range d.Inputs {
		if input.Key == key {
			return input, true
		}
	}
	return InputSpec{}, false
}

func (d Definition) clone() Definition {
	c := d
	c.Inputs = append([]InputSpec(nil), d.Inputs...)
	return c
}
