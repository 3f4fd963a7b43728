package vrp

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Stats summarises one run of the improvement loop.
type Stats struct {
	Iterations   int           `json:"iterations"`
	Moves        int           `json:"moves"`
	Improvements int           `json:"improvements"`
	LocalOptima  int           `json:"local_optima"`
	Elapsed      time.Duration `json:"elapsed"`
}

// guidedSearch improves a feasible solution until the deadline. Arcs of
// local optima accrue penalties that inflate their cost in move scoring;
// the true cost decides which solution is kept as best.
type guidedSearch struct {
	p        *Problem
	dims     *DimensionTracker
	deadline time.Time
	log      zerolog.Logger

	n       int
	penalty []float64
	lambda  float64
}

func newGuidedSearch(p *Problem, dims *DimensionTracker, deadline time.Time) *guidedSearch {
	n := p.Size()
	return &guidedSearch{
		p:        p,
		dims:     dims,
		deadline: deadline,
		log:      p.cfg.Logger.With().Str("component", "local_search").Logger(),
		n:        n,
		penalty:  make([]float64, n*n),
	}
}

func (g *guidedSearch) augmented(from, to int) float64 {
	return g.p.ArcCost(from, to) + g.lambda*g.penalty[from*g.n+to]
}

// run returns the best solution seen and whether the deadline stopped it.
func (g *guidedSearch) run(init *solution, stats *Stats) (*solution, bool) {
	cfg := g.p.cfg
	cur := init.clone()
	best := init.clone()
	bestCost := best.totalCost()

	for {
		if cfg.MaxIterations > 0 && stats.Iterations >= cfg.MaxIterations {
			return best, false
		}
		if time.Now().After(g.deadline) {
			return best, true
		}
		if bestCost <= 0 {
			return best, false
		}
		stats.Iterations++

		m, found, aborted := g.bestMove(cur, cfg.Workers)
		if aborted {
			return best, true
		}

		if found {
			m.apply(cur)
			stats.Moves++
			if c := cur.totalCost(); c < bestCost-deltaEps {
				best, bestCost = cur.clone(), c
				stats.Improvements++
				g.decay()
				g.log.Debug().
					Int("iteration", stats.Iterations).
					Str("move", m.kind.String()).
					Float64("cost", c).
					Msg("new best solution")
			}
			continue
		}

		stats.LocalOptima++
		if !g.penalize(cur) {
			return best, false
		}
	}
}

// bestMove fans the neighbourhood out per source route and reduces the
// per-route winners with the deterministic order of move.better.
func (g *guidedSearch) bestMove(sol *solution, workers int) (move, bool, bool) {
	ev := &evaluator{sol: sol, dims: g.dims, cost: g.augmented, deadline: g.deadline}

	k := len(sol.routes)
	moves := make([]move, k)
	found := make([]bool, k)
	var aborted atomic.Bool

	if workers <= 1 || k == 1 {
		for r := 0; r < k; r++ {
			var ab bool
			moves[r], found[r], ab = ev.bestFrom(r)
			if ab {
				return move{}, false, true
			}
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(workers)
		for r := 0; r < k; r++ {
			eg.Go(func() error {
				if aborted.Load() {
					return nil
				}
				m, ok, ab := ev.bestFrom(r)
				if ab {
					aborted.Store(true)
					return nil
				}
				moves[r], found[r] = m, ok
				return nil
			})
		}
		_ = eg.Wait()
		if aborted.Load() {
			return move{}, false, true
		}
	}

	var best move
	ok := false
	for r := 0; r < k; r++ {
		if found[r] && (!ok || moves[r].better(best)) {
			best, ok = moves[r], true
		}
	}
	return best, ok, false
}

// penalize raises the penalty of the arcs of sol with maximum utility
// cost/(1+penalty). It reports false when there is nothing to penalize.
func (g *guidedSearch) penalize(sol *solution) bool {
	if g.lambda == 0 {
		arcs := 0
		sol.arcs(func(int, int) { arcs++ })
		if arcs == 0 {
			return false
		}
		g.lambda = g.p.cfg.PenaltyFactor * sol.totalCost() / float64(arcs)
		if g.lambda <= 0 || math.IsInf(g.lambda, 0) || math.IsNaN(g.lambda) {
			g.lambda = 0
			return false
		}
	}

	maxUtil := -1.0
	sol.arcs(func(from, to int) {
		if u := g.p.ArcCost(from, to) / (1 + g.penalty[from*g.n+to]); u > maxUtil {
			maxUtil = u
		}
	})
	if maxUtil <= 0 {
		return false
	}
	sol.arcs(func(from, to int) {
		if u := g.p.ArcCost(from, to) / (1 + g.penalty[from*g.n+to]); u >= maxUtil-deltaEps {
			g.penalty[from*g.n+to]++
		}
	})
	return true
}

// decay shrinks every penalty when a new best marks the end of a phase.
func (g *guidedSearch) decay() {
	f := g.p.cfg.PenaltyDecay
	for i, v := range g.penalty {
		if v != 0 {
			g.penalty[i] = math.Floor(v * f)
		}
	}
}
