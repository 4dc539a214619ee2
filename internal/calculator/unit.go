package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/iwvelando/smart-calc-suite/internal/insight"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/format"
	"github.com/iwvelando/smart-calc-suite/pkg/validation"
	"go.uber.org/zap"
)

var (
	// ErrUnknownInput is returned for an input key the definition does not declare.
	ErrUnknownInput = errors.New("unknown input")
	// ErrNoResult is returned when an insight is requested without a result.
	ErrNoResult = errors.New("no result to comment on")
	// ErrInsightPending is returned when an insight request is already in flight.
	ErrInsightPending = errors.New("insight request already pending")
	// ErrStaleInsight is returned when an insight resolved after the inputs
	// changed; the text was discarded.
	ErrStaleInsight = errors.New("insight discarded after input change")
)

// State is a point-in-time view of a unit.
type State struct {
	ID             string            `json:"id" yaml:"id"`
	RawInputs      map[string]string `json:"rawInputs" yaml:"rawInputs"`
	Result         *float64          `json:"result" yaml:"result"`
	Formatted      string            `json:"formatted,omitempty" yaml:"formatted,omitempty"`
	Display        string            `json:"display,omitempty" yaml:"display,omitempty"`
	Insight        *string           `json:"insight" yaml:"insight"`
	InsightPending bool              `json:"insightPending" yaml:"insightPending"`
	Phase          Phase             `json:"phase" yaml:"phase"`
}

// Unit owns the runtime state of one mounted calculator. It is safe for
// concurrent use; the insight collaborator is called without holding the lock.
type Unit struct {
	def          Definition
	collaborator insight.Collaborator
	logger       *zap.Logger

	mu       sync.Mutex
	formula  Formula
	raw      map[string]string
	result   *float64
	insight  *string
	pending  bool
	gen      uint64 // advanced by accepted edits and by each issued fetch
	fetchGen uint64 // generation of the latest issued fetch
}

// New mounts a unit for def with both inputs empty. A nil collaborator makes
// every insight request resolve to the fallback message.
func New(def Definition, collaborator insight.Collaborator, logger *zap.Logger) (*Unit, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	u := &Unit{
		def:          def.clone(),
		collaborator: collaborator,
		logger:       logger.With(zap.String("calculator", def.ID)),
		formula:      def.Formula,
		raw:          make(map[string]string, len(def.Inputs)),
	}
	for _, input := range def.Inputs {
		u.raw[input.Key] = ""
	}
	return u, nil
}

// Definition returns a copy of the unit's definition.
func (u *Unit) Definition() Definition {
	return u.def.clone()
}

// SetInput applies a text edit to the field key. Text that is not a numeric
// value in progress is rejected: the field keeps its previous value and
// accepted is false. An accepted edit clears the insight and recomputes.
func (u *Unit) SetInput(key, raw string) (accepted bool, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.raw[key]; !ok {
		return false, fmt.Errorf("%w %q for calculator %q", ErrUnknownInput, key, u.def.ID)
	}
	if !validation.IsNumericInput(raw) {
		u.logger.Debug("rejected input edit",
			zap.String("op", "calculator.SetInput"),
			zap.String("key", key),
			zap.String("raw", raw),
		)
		return false, nil
	}

	u.raw[key] = raw
	u.insight = nil
	u.gen++
	u.recomputeLocked()
	return true, nil
}

// SetFormula rebinds the formula and recomputes the result.
func (u *Unit) SetFormula(f Formula) error {
	if f == nil {
		return errors.New("formula is required")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.formula = f
	u.recomputeLocked()
	return nil
}

// Recompute derives the result from the current raw inputs again.
func (u *Unit) Recompute() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.recomputeLocked()
}

func (u *Unit) recomputeLocked() {
	values := make(map[string]float64, len(u.def.Inputs))
	for _, input := range u.def.Inputs {
		value, ok := validation.ParseNumericInput(u.raw[input.Key])
		if !ok {
			u.result = nil
			return
		}
		values[input.Key] = value
	}

	result, ok := u.formula(values)
	if !ok || math.IsNaN(result) || math.IsInf(result, 0) {
		u.result = nil
		return
	}
	u.result = &result
}

// RequestInsight asks the collaborator to comment on the current result and
// stores the answer. Collaborator failures are logged and replaced by a
// fixed fallback sentence; they never surface as errors. The returned error
// is one of ErrNoResult, ErrInsightPending or ErrStaleInsight.
func (u *Unit) RequestInsight(ctx context.Context) (string, error) {
	u.mu.Lock()
	if u.result == nil {
		u.mu.Unlock()
		return "", ErrNoResult
	}
	if u.pendingLocked() {
		u.mu.Unlock()
		return "", ErrInsightPending
	}
	u.gen++
	gen := u.gen
	u.fetchGen = gen
	u.pending = true
	req := u.insightRequestLocked()
	u.mu.Unlock()

	text, err := u.fetch(ctx, req)
	if err != nil {
		u.logger.Warn("insight fetch failed",
			zap.String("op", "calculator.RequestInsight"),
			zap.Error(err),
		)
		text = constants.InsightFallbackMessage
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fetchGen == gen {
		u.pending = false
	}
	if u.gen != gen {
		u.logger.Debug("discarding stale insight",
			zap.String("op", "calculator.RequestInsight"),
			zap.Uint64("generation", gen),
			zap.Uint64("current", u.gen),
		)
		return text, ErrStaleInsight
	}
	u.insight = &text
	return text, nil
}

func (u *Unit) fetch(ctx context.Context, req insight.Request) (text string, err error) {
	if u.collaborator == nil {
		return "", errors.New("no insight collaborator configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("insight collaborator panicked: %v", r)
		}
	}()
	return u.collaborator.Insight(ctx, req)
}

func (u *Unit) insightRequestLocked() insight.Request {
	inputs := make(map[string]float64, len(u.def.Inputs))
	for _, input := range u.def.Inputs {
		value, _ := validation.ParseNumericInput(u.raw[input.Key])
		inputs[input.Label] = value
	}
	return insight.Request{
		Context: u.def.Title,
		Inputs:  inputs,
		Result:  format.Result(*u.result, u.def.Result.Suffix),
	}
}

// pendingLocked reports whether the latest fetch is still in flight and no
// edit has happened since it was issued.
func (u *Unit) pendingLocked() bool {
	return u.pending && u.fetchGen == u.gen
}

// Snapshot returns the current state of the unit.
func (u *Unit) Snapshot() State {
	u.mu.Lock()
	defer u.mu.Unlock()

	state := State{
		ID:             u.def.ID,
		RawInputs:      make(map[string]string, len(u.raw)),
		InsightPending: u.pendingLocked(),
	}
	for key, value := range u.raw {
		state.RawInputs[key] = value
	}
	if u.result != nil {
		result := *u.result
		state.Result = &result
		state.Formatted = format.Result(result, u.def.Result.Suffix)
		state.Display = format.Decorate(u.def.Result.Prefix, state.Formatted, u.def.Result.Suffix)
	}
	if u.insight != nil {
		text := *u.insight
		state.Insight = &text
	}

	switch {
	case state.InsightPending:
		state.Phase = PhaseInsightPending
	case u.result == nil:
		state.Phase = PhaseIdle
	case u.insight != nil:
		state.Phase = PhaseHasInsight
	default:
		state.Phase = PhaseHasResult
	}
	return state
}

// Evaluate runs def once over raw inputs without keeping a unit around.
// Missing keys count as empty fields. Rejected text is reported as an error.
func Evaluate(def Definition, raw map[string]string) (State, error) {
	unit, err := New(def, nil, nil)
	if err != nil {
		return State{}, err
	}
	for key := range raw {
		if _, ok := def.Input(key); !ok {
			return State{}, fmt.Errorf("%w %q for calculator %q", ErrUnknownInput, key, def.ID)
		}
	}
	for _, input := range def.Inputs {
		value := raw[input.Key]
		accepted, err := unit.SetInput(input.Key, value)
		if err != nil {
			return State{}, err
		}
		if !accepted {
			return State{}, &RejectedInputError{Key: input.Key, Raw: value}
		}
	}
	return unit.Snapshot(), nil
}

// RejectedInputError reports field text that failed the numeric filter.
type RejectedInputError struct {
	Key string
	Raw string
}

func (e *RejectedInputError) Error() string {
	return fmt.Sprintf("input %q rejected: %q is not a non-negative decimal number", e.Key, e.Raw)
}
