package vrp

import (
	"fmt"
	"time"
)

// Result is the outcome of one solve.
type Result struct {
	Status Status

	// Routes holds one depot-to-depot stop sequence per vehicle. Empty when
	// the problem is infeasible and best-effort mode is off.
	Routes [][]int
	// Unserved lists the stops left out of Routes.
	Unserved []int

	// Cost is the total under the selected objective.
	Cost     float64
	Distance float64
	Duration float64

	Loads     []int64
	Distances []float64
	Durations []float64

	Stats Stats
}

// Solve runs construction then guided local search within the configured
// time limit. Only errors from a broken internal state are returned; an
// infeasible instance or an expired deadline is reported in Result.Status.
func Solve(p *Problem) (*Result, error) {
	start := time.Now()
	cfg := p.cfg
	deadline := start.Add(cfg.TimeLimit)
	dims := NewDimensionTracker(p)
	log := cfg.Logger.With().Str("component", "solver").Logger()

	if reason, ok := quickInfeasible(p, dims); !ok {
		log.Debug().Str("reason", reason).Msg("instance rejected before construction")
		if !cfg.BestEffort {
			return infeasibleResult(p, start), nil
		}
	}

	built := construct(p, dims, deadline)
	log.Debug().
		Str("strategy", cfg.FirstSolution.String()).
		Int("unserved", len(built.unserved)).
		Bool("timed_out", built.timedOut).
		Float64("cost", built.sol.totalCost()).
		Msg("construction finished")

	if len(built.unserved) > 0 {
		if !cfg.BestEffort && !built.timedOut {
			return infeasibleResult(p, start), nil
		}
		res, err := summarize(p, built.sol, StatusIncomplete)
		if err != nil {
			return nil, err
		}
		res.Unserved = built.unserved
		res.Stats.Elapsed = time.Since(start)
		return res, nil
	}

	var stats Stats
	best := built.sol
	timedOut := false
	// A lone stop has one possible tour.
	if built.sol.served() > 1 {
		best, timedOut = newGuidedSearch(p, dims, deadline).run(built.sol, &stats)
	}

	status := StatusSolved
	if timedOut {
		status = StatusDeadlineExceeded
	}
	res, err := summarize(p, best, status)
	if err != nil {
		return nil, err
	}
	stats.Elapsed = time.Since(start)
	res.Stats = stats

	log.Debug().
		Str("status", status.String()).
		Float64("cost", res.Cost).
		Int("iterations", stats.Iterations).
		Dur("elapsed", stats.Elapsed).
		Msg("solve finished")
	return res, nil
}

// quickInfeasible catches instances no assignment can satisfy.
func quickInfeasible(p *Problem, dims *DimensionTracker) (string, bool) {
	if p.totalDemand() > p.totalCapacity() {
		return fmt.Sprintf("total demand %d exceeds fleet capacity %d", p.totalDemand(), p.totalCapacity()), false
	}

	var maxCap int64
	for _, c := range p.capacities {
		maxCap = max(maxCap, c)
	}
	for _, s := range p.Customers() {
		if p.Demand(s) > maxCap {
			return fmt.Sprintf("stop %d demand %d exceeds largest capacity %d", s, p.Demand(s), maxCap), false
		}
		if dims.TimeEnabled() {
			m := p.matrix
			if !m.Reachable(p.depot, s) || !m.Reachable(s, p.depot) ||
				m.Duration(p.depot, s)+m.Duration(s, p.depot) > dims.Horizon() {
				return fmt.Sprintf("stop %d round trip exceeds horizon %g", s, dims.Horizon()), false
			}
		}
	}
	return "", true
}

func infeasibleResult(p *Problem, start time.Time) *Result {
	return &Result{
		Status:   StatusInfeasible,
		Unserved: p.Customers(),
		Stats:    Stats{Elapsed: time.Since(start)},
	}
}

// summarize decodes sol through its successor structure and totals it.
func summarize(p *Problem, sol *solution, status Status) (*Result, error) {
	routes, err := Decode(sol.successors())
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	res := &Result{
		Status:    status,
		Routes:    routes,
		Loads:     make([]int64, len(routes)),
		Distances: make([]float64, len(routes)),
		Durations: make([]float64, len(routes)),
	}
	m := p.matrix
	for k, r := range routes {
		res.Loads[k] = sol.load[k]
		if len(r) == 2 {
			continue
		}
		for i := 1; i < len(r); i++ {
			res.Distances[k] += m.Distance(r[i-1], r[i])
			res.Durations[k] += m.Duration(r[i-1], r[i])
			res.Cost += p.ArcCost(r[i-1], r[i])
		}
		res.Distance += res.Distances[k]
		res.Duration += res.Durations[k]
	}
	return res, nil
}
