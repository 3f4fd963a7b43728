package vrp

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// euclidean builds distance and duration tables from planar points; speed is
// in distance units per second.
func euclidean(pts [][2]float64, speed float64) (dist, dur [][]float64) {
	n := len(pts)
	dist = make([][]float64, n)
	dur = make([][]float64, n)
	for i := range pts {
		dist[i] = make([]float64, n)
		dur[i] = make([]float64, n)
		for j := range pts {
			d := math.Round(math.Hypot(pts[i][0]-pts[j][0], pts[i][1]-pts[j][1]))
			dist[i][j] = d
			dur[i][j] = math.Round(d / speed)
		}
	}
	return dist, dur
}

func randomPoints(rng *rand.Rand, n int) [][2]float64 {
	pts := make([][2]float64, n)
	for i := range pts {
		pts[i] = [2]float64{rng.Float64() * 10000, rng.Float64() * 10000}
	}
	return pts
}

func mustMatrix(t *testing.T, dist, dur [][]float64) *CostMatrix {
	t.Helper()
	m, err := NewCostMatrix(dist, dur)
	require.NoError(t, err)
	return m
}

func mustProblem(t *testing.T, in ProblemInput, cfg Config) *Problem {
	t.Helper()
	p, err := NewProblem(in, cfg)
	require.NoError(t, err)
	return p
}

// fastConfig keeps tests bounded by iterations rather than wall clock.
func fastConfig() Config {
	return Config{TimeLimit: 5 * time.Second, MaxIterations: 200, Workers: 2}
}

// requireValidRoutes checks the partition, depot and dimension invariants
// of a feasible result.
func requireValidRoutes(t *testing.T, p *Problem, res *Result) {
	t.Helper()
	require.True(t, res.Status.Feasible(), "status %s", res.Status)
	require.Len(t, res.Routes, p.Vehicles())

	dims := NewDimensionTracker(p)
	seen := make(map[int]int)
	for k, r := range res.Routes {
		require.GreaterOrEqual(t, len(r), 2)
		require.Equal(t, p.Depot(), r[0], "route %d start", k)
		require.Equal(t, p.Depot(), r[len(r)-1], "route %d end", k)
		require.True(t, dims.RouteFeasible(k, r), "route %d infeasible: %v", k, r)

		var load int64
		for _, s := range r[1 : len(r)-1] {
			seen[s]++
			load += p.Demand(s)
		}
		require.LessOrEqual(t, load, p.Capacity(k))
		require.Equal(t, load, res.Loads[k])
		if p.Config().TimeDimension {
			require.LessOrEqual(t, res.Durations[k], p.Config().Horizon)
		}
	}

	for _, s := range p.Customers() {
		require.Equal(t, 1, seen[s], "stop %d served %d times", s, seen[s])
	}
	require.Len(t, seen, len(p.Customers()))
}
