package vrp

import "math"

// Cumul is the cumulative value of both dimensions on arrival at a stop.
type Cumul struct {
	Stop int
	Load int64
	Time float64
}

// DimensionTracker answers capacity and time feasibility for routes.
// Both dimensions start at zero at the depot and accrue no slack.
type DimensionTracker struct {
	p           *Problem
	timeEnabled bool
	horizon     float64
}

func NewDimensionTracker(p *Problem) *DimensionTracker {
	return &DimensionTracker{
		p:           p,
		timeEnabled: p.cfg.TimeDimension,
		horizon:     p.cfg.Horizon,
	}
}

func (t *DimensionTracker) Matrix() *CostMatrix { return t.p.matrix }
func (t *DimensionTracker) TimeEnabled() bool   { return t.timeEnabled }
func (t *DimensionTracker) Horizon() float64    { return t.horizon }

// Cursor is the state at the tail of a partial route.
type Cursor struct {
	Vehicle int
	At      int
	Load    int64
	Time    float64
}

// Start returns the cursor of an empty route for vehicle k.
func (t *DimensionTracker) Start(k int) Cursor {
	return Cursor{Vehicle: k, At: t.p.depot}
}

// Extend moves the cursor to next. It reports false when the arc does not
// exist or either dimension would exceed its ceiling, including the trip
// back to the depot.
func (t *DimensionTracker) Extend(c Cursor, next int) (Cursor, bool) {
	m := t.p.matrix
	if !m.Reachable(c.At, next) {
		return c, false
	}
	load := c.Load + t.p.Demand(next)
	if load > t.p.capacities[c.Vehicle] {
		return c, false
	}
	tm := c.Time + m.Duration(c.At, next)
	if t.timeEnabled {
		if !m.Reachable(next, t.p.depot) || tm+m.Duration(next, t.p.depot) > t.horizon {
			return c, false
		}
	}
	return Cursor{Vehicle: c.Vehicle, At: next, Load: load, Time: tm}, true
}

// Cumuls returns the cumulative values along route, which must start and
// end at the depot.
func (t *DimensionTracker) Cumuls(route []int) []Cumul {
	out := make([]Cumul, 0, len(route))
	var load int64
	var tm float64
	for i, s := range route {
		if i > 0 {
			tm += t.p.matrix.Duration(route[i-1], s)
		}
		load += t.p.Demand(s)
		out = append(out, Cumul{Stop: s, Load: load, Time: tm})
	}
	return out
}

// RouteFeasible checks a depot-to-depot route for vehicle k.
func (t *DimensionTracker) RouteFeasible(k int, route []int) bool {
	if len(route) < 2 || route[0] != t.p.depot || route[len(route)-1] != t.p.depot {
		return false
	}
	c := t.Start(k)
	for _, s := range route[1 : len(route)-1] {
		var ok bool
		if c, ok = t.Extend(c, s); !ok {
			return false
		}
	}
	if !t.p.matrix.Reachable(c.At, t.p.depot) {
		return false
	}
	return !t.timeEnabled || c.Time+t.p.matrix.Duration(c.At, t.p.depot) <= t.horizon
}

// Fits reports whether a route of vehicle k with the given totals is
// feasible. Moves compute totals incrementally and ask here.
func (t *DimensionTracker) Fits(k int, load int64, duration float64) bool {
	if load > t.p.capacities[k] {
		return false
	}
	if math.IsInf(duration, 1) || math.IsNaN(duration) {
		return false
	}
	return !t.timeEnabled || duration <= t.horizon
}
