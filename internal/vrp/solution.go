package vrp

// solution is the mutable search state: one stop sequence per vehicle,
// depot excluded, plus per-route totals kept in step with the sequences.
type solution struct {
	p        *Problem
	routes   [][]int
	load     []int64
	duration []float64
	cost     []float64
}

func newSolution(p *Problem) *solution {
	k := p.Vehicles()
	return &solution{
		p:        p,
		routes:   make([][]int, k),
		load:     make([]int64, k),
		duration: make([]float64, k),
		cost:     make([]float64, k),
	}
}

func (s *solution) clone() *solution {
	c := &solution{
		p:        s.p,
		routes:   make([][]int, len(s.routes)),
		load:     append([]int64(nil), s.load...),
		duration: append([]float64(nil), s.duration...),
		cost:     append([]float64(nil), s.cost...),
	}
	for k, r := range s.routes {
		c.routes[k] = append([]int(nil), r...)
	}
	return c
}

// at returns the stop at position i of route k, or the depot when i falls
// off either end.
func (s *solution) at(k, i int) int {
	r := s.routes[k]
	if i < 0 || i >= len(r) {
		return s.p.depot
	}
	return r[i]
}

// refresh recomputes the totals of route k from its sequence.
func (s *solution) refresh(k int) {
	p := s.p
	var load int64
	var dur, cost float64
	prev := p.depot
	for _, stop := range s.routes[k] {
		load += p.Demand(stop)
		dur += p.matrix.Duration(prev, stop)
		cost += p.ArcCost(prev, stop)
		prev = stop
	}
	if len(s.routes[k]) > 0 {
		dur += p.matrix.Duration(prev, p.depot)
		cost += p.ArcCost(prev, p.depot)
	}
	s.load[k], s.duration[k], s.cost[k] = load, dur, cost
}

func (s *solution) insert(k, pos, stop int) {
	r := s.routes[k]
	r = append(r, 0)
	copy(r[pos+1:], r[pos:])
	r[pos] = stop
	s.routes[k] = r
	s.refresh(k)
}

func (s *solution) totalCost() float64 {
	var t float64
	for _, c := range s.cost {
		t += c
	}
	return t
}

func (s *solution) served() int {
	n := 0
	for _, r := range s.routes {
		n += len(r)
	}
	return n
}

// arcs calls fn for every arc of every non-empty route, depot legs included.
func (s *solution) arcs(fn func(from, to int)) {
	for _, r := range s.routes {
		if len(r) == 0 {
			continue
		}
		prev := s.p.depot
		for _, stop := range r {
			fn(prev, stop)
			prev = stop
		}
		fn(prev, s.p.depot)
	}
}

// successors exports the routes as the successor structure the decoder reads.
func (s *solution) successors() Successors {
	return Encode(s.routes, s.p.Size(), s.p.depot)
}
