package calculator

import "fmt"

// Phase is the position of a unit in its result/insight cycle.
type Phase int

const (
	// PhaseIdle means the inputs do not produce a result.
	PhaseIdle Phase = iota
	// PhaseHasResult means a result is shown without an insight.
	PhaseHasResult
	// PhaseInsightPending means an insight request is in flight.
	PhaseInsightPending
	// PhaseHasInsight means a result is shown together with its insight.
	PhaseHasInsight
)

var phaseNames = [...]string{"idle", "has_result", "insight_pending", "has_insight"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText renders the phase name for JSON and YAML encoders.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}
