package vrp

import (
	"fmt"
	"strings"
)

// ArcCostFunc is the objective strategy: the cost of travelling from one
// stop index to another.
type ArcCostFunc func(from, to int) float64

// DemandFunc returns the demand of a stop index.
type DemandFunc func(stop int) int64

type Objective int

const (
	ObjectiveDistance Objective = iota
	ObjectiveDuration
)

func (o Objective) String() string {
	switch o {
	case ObjectiveDistance:
		return "distance"
	case ObjectiveDuration:
		return "duration"
	default:
		return fmt.Sprintf("objective(%d)", int(o))
	}
}

func (o Objective) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Objective) UnmarshalText(b []byte) error {
	v, err := ParseObjective(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// ParseObjective accepts "distance" or "duration"; empty means distance.
func ParseObjective(s string) (Objective, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "distance":
		return ObjectiveDistance, nil
	case "duration", "time":
		return ObjectiveDuration, nil
	default:
		return 0, inputErr("objective", fmt.Sprintf("unknown objective %q", s))
	}
}

// ArcCost binds the objective to a matrix.
func (o Objective) ArcCost(m *CostMatrix) ArcCostFunc {
	if o == ObjectiveDuration {
		return m.Duration
	}
	return m.Distance
}
