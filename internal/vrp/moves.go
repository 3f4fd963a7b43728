package vrp

import (
	"math"
	"time"
)

type moveKind uint8

const (
	moveRelocate moveKind = iota
	moveExchange
	moveTwoOpt
)

func (k moveKind) String() string {
	switch k {
	case moveRelocate:
		return "relocate"
	case moveExchange:
		return "exchange"
	default:
		return "two_opt"
	}
}

// maxSegment bounds the segment length of exchange moves.
const maxSegment = 3

const deltaEps = 1e-9

// move is a candidate change. Positions refer to the routes before the move;
// for a same-route relocate, i2 indexes the route with the stop removed.
type move struct {
	kind   moveKind
	r1, i1 int
	n1     int
	r2, i2 int
	n2     int
	delta  float64
}

// better orders candidates by augmented delta, then by a fixed key so the
// pick never depends on which worker found what.
func (m move) better(o move) bool {
	if m.delta < o.delta-deltaEps {
		return true
	}
	if m.delta > o.delta+deltaEps {
		return false
	}
	a := [...]int{int(m.kind), m.r1, m.i1, m.n1, m.r2, m.i2, m.n2}
	b := [...]int{int(o.kind), o.r1, o.i1, o.n1, o.r2, o.i2, o.n2}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// evaluator scores moves against a fixed solution under the augmented cost.
type evaluator struct {
	sol      *solution
	dims     *DimensionTracker
	cost     func(from, to int) float64
	deadline time.Time
}

func (e *evaluator) dur(from, to int) float64 { return e.sol.p.matrix.Duration(from, to) }

// bestFrom returns the best improving move whose first route is r1. It
// reports aborted when the deadline passes mid-scan.
func (e *evaluator) bestFrom(r1 int) (best move, found, aborted bool) {
	consider := func(m move) {
		if m.delta < -deltaEps && (!found || m.better(best)) {
			best, found = m, true
		}
	}

	n := len(e.sol.routes[r1])
	for i := 0; i < n; i++ {
		if time.Now().After(e.deadline) {
			return best, found, true
		}
		e.relocate(r1, i, consider)
		e.exchange(r1, i, consider)
		e.twoOpt(r1, i, consider)
	}
	return best, found, false
}

func (e *evaluator) relocate(r1, i int, consider func(move)) {
	s := e.sol
	p := s.p
	d := p.depot
	stop := s.routes[r1][i]
	dem := p.Demand(stop)
	n1 := len(s.routes[r1])

	a, b := s.at(r1, i-1), s.at(r1, i+1)
	var remCost, newDur1 float64
	if n1 == 1 {
		remCost = -(e.cost(d, stop) + e.cost(stop, d))
		newDur1 = 0
	} else {
		remCost = e.cost(a, b) - e.cost(a, stop) - e.cost(stop, b)
		newDur1 = s.duration[r1] + e.dur(a, b) - e.dur(a, stop) - e.dur(stop, b)
	}

	for r2 := range s.routes {
		if r2 == r1 {
			if n1 < 2 {
				continue
			}
			// Reinsert into the route with the stop removed.
			red := func(t int) int {
				switch {
				case t < 0 || t >= n1-1:
					return d
				case t < i:
					return s.routes[r1][t]
				default:
					return s.routes[r1][t+1]
				}
			}
			for j := 0; j < n1; j++ {
				if j == i {
					continue
				}
				x, y := red(j-1), red(j)
				ins := e.cost(x, stop) + e.cost(stop, y) - e.cost(x, y)
				dur := newDur1 + e.dur(x, stop) + e.dur(stop, y) - e.dur(x, y)
				if !e.dims.Fits(r1, s.load[r1], dur) {
					continue
				}
				consider(move{kind: moveRelocate, r1: r1, i1: i, n1: 1, r2: r1, i2: j, delta: remCost + ins})
			}
			continue
		}

		load2 := s.load[r2] + dem
		if load2 > p.capacities[r2] || !e.dims.Fits(r1, s.load[r1]-dem, newDur1) {
			continue
		}
		n2 := len(s.routes[r2])
		for j := 0; j <= n2; j++ {
			x, y := s.at(r2, j-1), s.at(r2, j)
			var ins, dur float64
			if n2 == 0 {
				ins = e.cost(d, stop) + e.cost(stop, d)
				dur = e.dur(d, stop) + e.dur(stop, d)
			} else {
				ins = e.cost(x, stop) + e.cost(stop, y) - e.cost(x, y)
				dur = s.duration[r2] + e.dur(x, stop) + e.dur(stop, y) - e.dur(x, y)
			}
			if !e.dims.Fits(r2, load2, dur) {
				continue
			}
			consider(move{kind: moveRelocate, r1: r1, i1: i, n1: 1, r2: r2, i2: j, delta: remCost + ins})
		}
	}
}

// exchange swaps a segment starting at i1 in r1 with a segment of another
// route, both kept in their original orientation.
func (e *evaluator) exchange(r1, i1 int, consider func(move)) {
	s := e.sol
	p := s.p
	route1 := s.routes[r1]

	var load1 int64
	var int1 float64
	for n1 := 1; n1 <= maxSegment && i1+n1 <= len(route1); n1++ {
		f1, l1 := route1[i1], route1[i1+n1-1]
		load1 += p.Demand(l1)
		if n1 > 1 {
			int1 += e.dur(route1[i1+n1-2], l1)
		}
		a1, b1 := s.at(r1, i1-1), s.at(r1, i1+n1)

		for r2 := r1 + 1; r2 < len(s.routes); r2++ {
			route2 := s.routes[r2]
			for i2 := 0; i2 < len(route2); i2++ {
				var load2 int64
				var int2 float64
				for n2 := 1; n2 <= maxSegment && i2+n2 <= len(route2); n2++ {
					f2, l2 := route2[i2], route2[i2+n2-1]
					load2 += p.Demand(l2)
					if n2 > 1 {
						int2 += e.dur(route2[i2+n2-2], l2)
					}
					a2, b2 := s.at(r2, i2-1), s.at(r2, i2+n2)

					nl1 := s.load[r1] - load1 + load2
					nl2 := s.load[r2] - load2 + load1
					if nl1 > p.capacities[r1] || nl2 > p.capacities[r2] {
						continue
					}
					nd1 := s.duration[r1] - e.dur(a1, f1) - e.dur(l1, b1) - int1 + e.dur(a1, f2) + e.dur(l2, b1) + int2
					nd2 := s.duration[r2] - e.dur(a2, f2) - e.dur(l2, b2) - int2 + e.dur(a2, f1) + e.dur(l1, b2) + int1
					if !e.dims.Fits(r1, nl1, nd1) || !e.dims.Fits(r2, nl2, nd2) {
						continue
					}

					delta := e.cost(a1, f2) + e.cost(l2, b1) + e.cost(a2, f1) + e.cost(l1, b2) -
						e.cost(a1, f1) - e.cost(l1, b1) - e.cost(a2, f2) - e.cost(l2, b2)
					consider(move{kind: moveExchange, r1: r1, i1: i1, n1: n1, r2: r2, i2: i2, n2: n2, delta: delta})
				}
			}
		}
	}
}

// twoOpt reverses route positions i..j. Inner arcs are summed in both
// directions so asymmetric matrices are scored correctly.
func (e *evaluator) twoOpt(r, i int, consider func(move)) {
	s := e.sol
	route := s.routes[r]
	a := s.at(r, i-1)

	var fwdCost, revCost, fwdDur, revDur float64
	for j := i + 1; j < len(route); j++ {
		fwdCost += e.cost(route[j-1], route[j])
		revCost += e.cost(route[j], route[j-1])
		fwdDur += e.dur(route[j-1], route[j])
		revDur += e.dur(route[j], route[j-1])

		b := s.at(r, j+1)
		dur := s.duration[r] - e.dur(a, route[i]) - fwdDur - e.dur(route[j], b) +
			e.dur(a, route[j]) + revDur + e.dur(route[i], b)
		if math.IsNaN(dur) || !e.dims.Fits(r, s.load[r], dur) {
			continue
		}
		delta := e.cost(a, route[j]) + revCost + e.cost(route[i], b) -
			e.cost(a, route[i]) - fwdCost - e.cost(route[j], b)
		consider(move{kind: moveTwoOpt, r1: r, i1: i, n1: j - i + 1, r2: r, i2: i, n2: j - i + 1, delta: delta})
	}
}

// apply commits m to sol and refreshes the totals of the touched routes.
func (m move) apply(sol *solution) {
	switch m.kind {
	case moveRelocate:
		stop := sol.routes[m.r1][m.i1]
		src := sol.routes[m.r1]
		sol.routes[m.r1] = append(src[:m.i1:m.i1], src[m.i1+1:]...)
		dst := sol.routes[m.r2]
		dst = append(dst, 0)
		copy(dst[m.i2+1:], dst[m.i2:])
		dst[m.i2] = stop
		sol.routes[m.r2] = dst

	case moveExchange:
		r1, r2 := sol.routes[m.r1], sol.routes[m.r2]
		seg1 := append([]int(nil), r1[m.i1:m.i1+m.n1]...)
		seg2 := append([]int(nil), r2[m.i2:m.i2+m.n2]...)

		nr1 := make([]int, 0, len(r1)-m.n1+m.n2)
		nr1 = append(nr1, r1[:m.i1]...)
		nr1 = append(nr1, seg2...)
		nr1 = append(nr1, r1[m.i1+m.n1:]...)

		nr2 := make([]int, 0, len(r2)-m.n2+m.n1)
		nr2 = append(nr2, r2[:m.i2]...)
		nr2 = append(nr2, seg1...)
		nr2 = append(nr2, r2[m.i2+m.n2:]...)

		sol.routes[m.r1], sol.routes[m.r2] = nr1, nr2

	case moveTwoOpt:
		r := sol.routes[m.r1]
		for lo, hi := m.i1, m.i1+m.n1-1; lo < hi; lo, hi = lo+1, hi-1 {
			r[lo], r[hi] = r[hi], r[lo]
		}
	}

	sol.refresh(m.r1)
	if m.r2 != m.r1 {
		sol.refresh(m.r2)
	}
}
