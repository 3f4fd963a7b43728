package vrp

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every scored move must change the true cost by exactly its delta and
// leave every touched route feasible.
func TestMoveDeltasMatchAppliedCost(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := randomPoints(rng, 12)
	dist, dur := euclidean(pts, 8)
	// Make the instance asymmetric so reversal scoring is exercised.
	for i := range dist {
		for j := range dist[i] {
			if i < j {
				dist[i][j] += float64(rng.Intn(300))
			}
		}
	}
	demands := make([]int64, len(pts))
	for i := 1; i < len(pts); i++ {
		demands[i] = int64(1 + rng.Intn(4))
	}

	p := mustProblem(t, ProblemInput{
		Matrix:       mustMatrix(t, dist, dur),
		Demands:      demands,
		VehicleCount: 3,
		Capacities:   []int64{18},
	}, Config{TimeDimension: true, Horizon: 8000})
	dims := NewDimensionTracker(p)

	built := construct(p, dims, time.Now().Add(time.Minute))
	require.Empty(t, built.unserved)
	sol := built.sol

	ev := &evaluator{sol: sol, dims: dims, cost: p.ArcCost, deadline: time.Now().Add(time.Minute)}
	var moves []move
	collect := func(m move) { moves = append(moves, m) }
	for r := range sol.routes {
		for i := range sol.routes[r] {
			ev.relocate(r, i, collect)
			ev.exchange(r, i, collect)
			ev.twoOpt(r, i, collect)
		}
	}
	require.NotEmpty(t, moves)

	kinds := map[moveKind]bool{}
	before := sol.totalCost()
	for _, m := range moves {
		kinds[m.kind] = true
		next := sol.clone()
		m.apply(next)

		assert.InDelta(t, before+m.delta, next.totalCost(), 1e-6, "%s %+v", m.kind, m)
		for k, r := range next.routes {
			full := append(append([]int{0}, r...), 0)
			assert.True(t, dims.RouteFeasible(k, full), "%s left route %d infeasible", m.kind, k)
		}
		assert.Equal(t, sol.served(), next.served())
	}
	assert.Len(t, kinds, 3)
}

func TestMoveBetterIsDeterministic(t *testing.T) {
	a := move{kind: moveRelocate, r1: 0, i1: 2, delta: -5}
	b := move{kind: moveRelocate, r1: 1, i1: 0, delta: -5}
	c := move{kind: moveExchange, r1: 0, i1: 0, delta: -6}

	assert.True(t, a.better(b))
	assert.False(t, b.better(a))
	assert.True(t, c.better(a))
	assert.False(t, a.better(a))
}

func TestGuidedSearchUntanglesTour(t *testing.T) {
	// Points on a circle: the crossing-free tour is optimal.
	const n = 9
	pts := make([][2]float64, n)
	dist := make([][]float64, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / n
		pts[i] = [2]float64{1000 * math.Cos(a), 1000 * math.Sin(a)}
	}
	for i := range pts {
		dist[i] = make([]float64, n)
		for j := range pts {
			dist[i][j] = math.Hypot(pts[i][0]-pts[j][0], pts[i][1]-pts[j][1])
		}
	}
	optimal := float64(n) * dist[0][1]

	p := mustProblem(t, ProblemInput{
		Matrix:       mustMatrix(t, dist, dist),
		Demands:      make([]int64, n),
		VehicleCount: 1,
		Capacities:   []int64{1},
	}, Config{MaxIterations: 300, Workers: 1})
	dims := NewDimensionTracker(p)

	start := newSolution(p)
	start.routes[0] = []int{5, 2, 7, 1, 4, 8, 3, 6}
	start.refresh(0)
	require.Greater(t, start.totalCost(), optimal+1)

	var stats Stats
	best, timedOut := newGuidedSearch(p, dims, time.Now().Add(10*time.Second)).run(start, &stats)

	assert.False(t, timedOut)
	assert.InDelta(t, optimal, best.totalCost(), 1e-6)
	assert.Greater(t, stats.Improvements, 0)
	assert.Greater(t, stats.LocalOptima, 0, "search keeps going past the first local optimum")
	assert.Equal(t, 300, stats.Iterations)
}

func TestGuidedSearchPenalties(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0, 10, 40}, {10, 0, 20}, {40, 20, 0}}, square(3, 1))
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0, 1, 1}, VehicleCount: 1, Capacities: []int64{5}}, Config{PenaltyDecay: 0.5})
	g := newGuidedSearch(p, NewDimensionTracker(p), time.Now().Add(time.Minute))

	sol := newSolution(p)
	sol.routes[0] = []int{1, 2}
	sol.refresh(0)

	require.True(t, g.penalize(sol))
	// lambda = 0.2 * 70 / 3 arcs
	assert.InDelta(t, 0.2*70/3, g.lambda, 1e-9)
	assert.Equal(t, 1.0, g.penalty[2*3+0], "the 40m arc has maximum utility")
	assert.Equal(t, 0.0, g.penalty[0*3+1])
	assert.InDelta(t, 40+g.lambda, g.augmented(2, 0), 1e-9)

	// 40/2 = 20 ties with the 20m arc, so both are penalized next.
	require.True(t, g.penalize(sol))
	assert.Equal(t, 2.0, g.penalty[2*3+0])
	assert.Equal(t, 1.0, g.penalty[1*3+2])

	g.decay()
	assert.Equal(t, 1.0, g.penalty[2*3+0])
	assert.Equal(t, 0.0, g.penalty[1*3+2])
}

func TestGuidedSearchParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	dist, dur := euclidean(randomPoints(rng, 25), 10)
	demands := make([]int64, 25)
	for i := 1; i < 25; i++ {
		demands[i] = int64(1 + rng.Intn(5))
	}
	in := ProblemInput{Matrix: mustMatrix(t, dist, dur), Demands: demands, VehicleCount: 4, Capacities: []int64{40}}

	run := func(workers int) [][]int {
		p := mustProblem(t, in, Config{MaxIterations: 150, Workers: workers, TimeLimit: time.Minute})
		res, err := Solve(p)
		require.NoError(t, err)
		require.Equal(t, StatusSolved, res.Status)
		return res.Routes
	}

	assert.Equal(t, run(1), run(4))
}
