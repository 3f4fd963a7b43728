package vrp

import (
	"math"
	"sort"
	"time"
)

type insertion struct {
	stop    int
	vehicle int
	pos     int
	delta   float64
}

// constructed is the outcome of the construction phase.
type constructed struct {
	sol      *solution
	unserved []int
	timedOut bool
}

// Build the initial solution with the configured strategy.
//
// A failed greedy pass is retried once, inserting stops by descending demand,
// before any stop is declared unserved. Bin-packing style instances often
// need the large stops placed first.
func construct(p *Problem, dims *DimensionTracker, deadline time.Time) constructed {
	customers := p.Customers()

	first := newSolution(p)
	var res constructed
	switch p.cfg.FirstSolution {
	case PathCheapestArc:
		left := pathCheapestArc(first, dims, customers)
		res = cheapestInsertion(first, dims, left, deadline)
	default:
		res = cheapestInsertion(first, dims, customers, deadline)
	}
	if len(res.unserved) == 0 || res.timedOut {
		return res
	}

	byDemand := append([]int(nil), customers...)
	sort.SliceStable(byDemand, func(i, j int) bool {
		return p.Demand(byDemand[i]) > p.Demand(byDemand[j])
	})
	retry := sequentialInsertion(newSolution(p), dims, byDemand, deadline)
	if len(retry.unserved) < len(res.unserved) {
		return retry
	}
	return res
}

// cheapestInsertion repeatedly commits the cheapest feasible insertion over
// all pending stops. Ties go to the lowest stop index, then vehicle, then
// position.
func cheapestInsertion(sol *solution, dims *DimensionTracker, pending []int, deadline time.Time) constructed {
	pending = append([]int(nil), pending...)
	sort.Ints(pending)

	for len(pending) > 0 {
		if time.Now().After(deadline) {
			return constructed{sol: sol, unserved: pending, timedOut: true}
		}

		best := insertion{delta: math.Inf(1)}
		bestIdx := -1
		for i, stop := range pending {
			ins, ok := bestInsertionFor(sol, dims, stop)
			// Strict comparison keeps the lowest stop index on equal cost.
			if ok && ins.delta < best.delta {
				best, bestIdx = ins, i
			}
		}
		if bestIdx < 0 {
			return constructed{sol: sol, unserved: pending}
		}

		sol.insert(best.vehicle, best.pos, best.stop)
		pending = append(pending[:bestIdx], pending[bestIdx+1:]...)
	}

	return constructed{sol: sol}
}

// sequentialInsertion places stops in the given order, each at its own
// cheapest feasible position.
func sequentialInsertion(sol *solution, dims *DimensionTracker, order []int, deadline time.Time) constructed {
	var unserved []int
	for i, stop := range order {
		if time.Now().After(deadline) {
			unserved = append(unserved, order[i:]...)
			sort.Ints(unserved)
			return constructed{sol: sol, unserved: unserved, timedOut: true}
		}
		ins, ok := bestInsertionFor(sol, dims, stop)
		if !ok {
			unserved = append(unserved, stop)
			continue
		}
		sol.insert(ins.vehicle, ins.pos, ins.stop)
	}
	sort.Ints(unserved)
	return constructed{sol: sol, unserved: unserved}
}

// bestInsertionFor scans every vehicle and position for stop.
func bestInsertionFor(sol *solution, dims *DimensionTracker, stop int) (insertion, bool) {
	p := sol.p
	m := p.matrix
	demand := p.Demand(stop)

	best := insertion{stop: stop, vehicle: -1, delta: math.Inf(1)}
	for k := range sol.routes {
		load := sol.load[k] + demand
		if load > p.capacities[k] {
			continue
		}
		n := len(sol.routes[k])
		for pos := 0; pos <= n; pos++ {
			prev, next := sol.at(k, pos-1), sol.at(k, pos)

			var delta, dDur float64
			if n == 0 {
				delta = p.ArcCost(prev, stop) + p.ArcCost(stop, next)
				dDur = m.Duration(prev, stop) + m.Duration(stop, next)
			} else {
				delta = p.ArcCost(prev, stop) + p.ArcCost(stop, next) - p.ArcCost(prev, next)
				dDur = m.Duration(prev, stop) + m.Duration(stop, next) - m.Duration(prev, next)
			}
			if math.IsInf(delta, 1) || !dims.Fits(k, load, sol.duration[k]+dDur) {
				continue
			}
			if delta < best.delta {
				best.vehicle, best.pos, best.delta = k, pos, delta
			}
		}
	}
	return best, best.vehicle >= 0
}

// pathCheapestArc grows one route per vehicle from the depot, always
// following the cheapest feasible arc to an unserved stop. It returns the
// stops it could not place.
func pathCheapestArc(sol *solution, dims *DimensionTracker, customers []int) []int {
	p := sol.p
	served := make([]bool, p.Size())

	for k := range sol.routes {
		cur := dims.Start(k)
		for {
			bestStop := -1
			bestCost := math.Inf(1)
			var bestCur Cursor
			for _, s := range customers {
				if served[s] {
					continue
				}
				next, ok := dims.Extend(cur, s)
				if !ok {
					continue
				}
				// Tie-breaker keeps the lowest stop index on equal cost.
				if c := p.ArcCost(cur.At, s); c < bestCost {
					bestStop, bestCost, bestCur = s, c, next
				}
			}
			if bestStop < 0 {
				break
			}
			sol.routes[k] = append(sol.routes[k], bestStop)
			served[bestStop] = true
			cur = bestCur
		}

		// Drop tail stops until the route can close at the depot.
		sol.refresh(k)
		for len(sol.routes[k]) > 0 && !dims.Fits(k, sol.load[k], sol.duration[k]) {
			last := sol.routes[k][len(sol.routes[k])-1]
			served[last] = false
			sol.routes[k] = sol.routes[k][:len(sol.routes[k])-1]
			sol.refresh(k)
		}
	}

	var left []int
	for _, s := range customers {
		if !served[s] {
			left = append(left, s)
		}
	}
	return left
}
