package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/smart-calc-suite/internal/calculator"
)

func TestDefinitionsAreValid(t *testing.T) {
	defs := Definitions()
	if len(defs) != 4 {
		t.Fatalf("expected 4 calculators, got %d", len(defs))
	}

	seen := make(map[string]bool)
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			t.Errorf("definition %q invalid: %v", def.ID, err)
		}
		if seen[def.ID] {
			t.Errorf("duplicate calculator id %q", def.ID)
		}
		seen[def.ID] = true
	}

	want := []string{AppraisalID, SalaryExpectationID, DiscountID, PriceIncreaseID}
	for i, id := range IDs() {
		if id != want[i] {
			t.Errorf("IDs()[%d] = %q, expected %q", i, id, want[i])
		}
	}
}

func TestFormulaProperties(t *testing.T) {
	pairs := [][2]float64{
		{50000, 55000}, {1, 2}, {1200, 25}, {0.5, 100}, {999999.99, 0}, {3, 7.25}, {100, 250},
	}

	for _, p := range pairs {
		a, b := p[0], p[1]

		got, ok := Appraisal(map[string]float64{"old": a, "new": b})
		if !ok || got != (b-a)/a*100 {
			t.Errorf("Appraisal(%v, %v) = %v, expected %v", a, b, got, (b-a)/a*100)
		}

		got, ok = SalaryExpectation(map[string]float64{"current": a, "percent": b})
		if !ok || math.Abs(got-(a+a*b/100)) > 1e-9 {
			t.Errorf("SalaryExpectation(%v, %v) = %v", a, b, got)
		}

		got, ok = Discount(map[string]float64{"amount": a, "percent": b})
		if !ok || math.Abs(got-(a-a*b/100)) > 1e-9 {
			t.Errorf("Discount(%v, %v) = %v", a, b, got)
		}

		got, ok = PriceIncrease(map[string]float64{"amount": a, "percent": b})
		if !ok || math.Abs(got-(a+a*b/100)) > 1e-9 {
			t.Errorf("PriceIncrease(%v, %v) = %v", a, b, got)
		}
	}
}

func TestAppraisalZeroOldSalary(t *testing.T) {
	got, ok := Appraisal(map[string]float64{"old": 0, "new": 55000})
	if !ok || got != 0 {
		t.Errorf("Appraisal(0, 55000) = %v, %v; expected 0, true", got, ok)
	}
}

func TestEndToEndExamples(t *testing.T) {
	tests := []struct {
		id      string
		inputs  map[string]string
		display string
	}{
		{AppraisalID, map[string]string{"old": "50000", "new": "55000"}, "10.00%"},
		{DiscountID, map[string]string{"amount": "1200", "percent": "25"}, "900.00"},
		{SalaryExpectationID, map[string]string{"current": "80000", "percent": "12"}, "89,600.00"},
		{PriceIncreaseID, map[string]string{"amount": "2000", "percent": "5"}, "2,100.00"},
		{AppraisalID, map[string]string{"old": "0", "new": "100"}, "0.00%"},
		{AppraisalID, map[string]string{"old": "4", "new": "4.117"}, "2.92%"},
		{AppraisalID, map[string]string{"old": "4", "new": "4.343"}, "8.57%"},
	}

	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.display, func(t *testing.T) {
			def, err := Lookup(tt.id)
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tt.id, err)
			}
			state, err := calculator.Evaluate(def, tt.inputs)
			if err != nil {
				t.Fatalf("Evaluate() error: %v", err)
			}
			if state.Display != tt.display {
				t.Errorf("display = %q, expected %q", state.Display, tt.display)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("mortgage")
	if !errors.Is(err, ErrUnknownCalculator) {
		t.Fatalf("expected ErrUnknownCalculator, got %v", err)
	}
}

func TestDefinitionsAreIndependentCopies(t *testing.T) {
	first := Definitions()
	first[0].Inputs[0].Label = "changed"
	if Definitions()[0].Inputs[0].Label != "Old Salary" {
		t.Error("expected Definitions to return fresh slices")
	}
}
