package vrp

import (
	"fmt"
	"math"
)

// MaxVehicles bounds ProblemInput.VehicleCount.
const MaxVehicles = 10_000

// ProblemInput is the raw instance handed over by a caller.
type ProblemInput struct {
	Matrix *CostMatrix
	Depot  int

	// Demands has one entry per stop; the depot's must be 0. Demand, when
	// set, replaces it and must be a pure function of the stop index.
	Demands []int64
	Demand  DemandFunc

	VehicleCount int
	// Capacities holds either a single capacity for every vehicle or one
	// capacity per vehicle.
	Capacities []int64

	// ArcCost overrides the objective strategy when set.
	ArcCost ArcCostFunc
}

// Problem is a validated instance bound to one solve configuration.
type Problem struct {
	matrix     *CostMatrix
	depot      int
	demand     DemandFunc
	capacities []int64
	arcCost    ArcCostFunc
	cfg        Config
}

// NewProblem validates in and binds it to cfg. Failures are *InputError
// values naming the violated constraint.
func NewProblem(in ProblemInput, cfg Config) (*Problem, error) {
	if in.Matrix == nil {
		return nil, inputErr("matrix", "cost matrix is nil")
	}
	n := in.Matrix.Size()
	if n < 1 {
		return nil, inputErr("stop_count", "need at least one stop")
	}
	if in.VehicleCount < 1 {
		return nil, inputErr("vehicle_count", fmt.Sprintf("need at least one vehicle, got %d", in.VehicleCount))
	}
	if in.VehicleCount > MaxVehicles {
		return nil, inputErr("vehicle_count", fmt.Sprintf("%d vehicles exceeds the limit of %d", in.VehicleCount, MaxVehicles))
	}
	if in.Depot < 0 || in.Depot >= n {
		return nil, inputErr("depot", fmt.Sprintf("depot index %d out of range [0,%d)", in.Depot, n))
	}

	demand := in.Demand
	if demand == nil {
		if len(in.Demands) != n {
			return nil, inputErr("demands", fmt.Sprintf("got %d demands for %d stops", len(in.Demands), n))
		}
		demands := append([]int64(nil), in.Demands...)
		demand = func(stop int) int64 { return demands[stop] }
	} else if in.Demands != nil {
		return nil, inputErr("demands", "set either Demands or Demand, not both")
	}

	var total int64
	for i := 0; i < n; i++ {
		d := demand(i)
		if d < 0 {
			return nil, inputErr("demands", fmt.Sprintf("demand of stop %d is negative (%d)", i, d))
		}
		if total > math.MaxInt64-d {
			return nil, inputErr("demands", "total demand overflows int64")
		}
		total += d
	}
	if d := demand(in.Depot); d != 0 {
		return nil, inputErr("demands", fmt.Sprintf("depot demand must be 0, got %d", d))
	}

	capacities := make([]int64, in.VehicleCount)
	switch len(in.Capacities) {
	case 1:
		for k := range capacities {
			capacities[k] = in.Capacities[0]
		}
	case in.VehicleCount:
		copy(capacities, in.Capacities)
	default:
		return nil, inputErr("capacities", fmt.Sprintf("got %d capacities for %d vehicles", len(in.Capacities), in.VehicleCount))
	}
	for k, c := range capacities {
		if c <= 0 {
			return nil, inputErr("capacities", fmt.Sprintf("capacity of vehicle %d must be positive, got %d", k, c))
		}
	}

	if stop, ok := unreachableStop(in.Matrix, in.Depot); !ok {
		return nil, inputErr("reachability", fmt.Sprintf("stop %d has no direct edge to or from depot %d", stop, in.Depot))
	}

	cfg = cfg.withDefaults()

	p := &Problem{
		matrix:     in.Matrix,
		depot:      in.Depot,
		demand:     demand,
		capacities: capacities,
		cfg:        cfg,
	}

	cost := in.ArcCost
	if cost == nil {
		cost = cfg.Objective.ArcCost(in.Matrix)
	}
	// Unreachable pairs cost NoEdge whatever the strategy says.
	p.arcCost = func(from, to int) float64 {
		if !in.Matrix.Reachable(from, to) {
			return NoEdge
		}
		return cost(from, to)
	}

	return p, nil
}

// unreachableStop returns the first stop lacking a direct edge from the
// depot or back to it.
func unreachableStop(m *CostMatrix, depot int) (int, bool) {
	for i := 0; i < m.Size(); i++ {
		if i == depot {
			continue
		}
		if !m.Reachable(depot, i) || !m.Reachable(i, depot) {
			return i, false
		}
	}
	return 0, true
}

func (p *Problem) Size() int            { return p.matrix.Size() }
func (p *Problem) Vehicles() int        { return len(p.capacities) }
func (p *Problem) Depot() int           { return p.depot }
func (p *Problem) Matrix() *CostMatrix  { return p.matrix }
func (p *Problem) Config() Config       { return p.cfg }
func (p *Problem) Capacity(k int) int64 { return p.capacities[k] }

// Demand is the demand strategy bound at construction.
func (p *Problem) Demand(stop int) int64 { return p.demand(stop) }

// ArcCost is the objective strategy bound at construction.
func (p *Problem) ArcCost(from, to int) float64 { return p.arcCost(from, to) }

// Customers returns every non-depot stop index in ascending order.
func (p *Problem) Customers() []int {
	out := make([]int, 0, p.Size()-1)
	for i := 0; i < p.Size(); i++ {
		if i != p.depot {
			out = append(out, i)
		}
	}
	return out
}

func (p *Problem) totalDemand() int64 {
	var t int64
	for i := 0; i < p.Size(); i++ {
		t += p.demand(i)
	}
	return t
}

func (p *Problem) totalCapacity() int64 {
	var t int64
	for _, c := range p.capacities {
		if t > math.MaxInt64-c {
			return math.MaxInt64
		}
		t += c
	}
	return t
}
