package vrp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheapestInsertionTieBreak(t *testing.T) {
	m := mustMatrix(t, square(4, 10), square(4, 10))
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0, 1, 1, 1}, VehicleCount: 2, Capacities: []int64{10}}, Config{})

	got := construct(p, NewDimensionTracker(p), time.Now().Add(time.Minute))

	require.Empty(t, got.unserved)
	// Every insertion costs the same, so the lowest stop, vehicle and
	// position win each round.
	assert.Equal(t, [][]int{{3, 2, 1}, nil}, got.sol.routes)
}

func TestConstructionRetriesByDemand(t *testing.T) {
	// Stops 1,2 (demand 4) sit next to the depot and stops 3,4 (demand 6)
	// far away. Plain cheapest insertion pairs 1 with 2 and strands one of
	// the large stops.
	dist, dur := euclidean([][2]float64{{0, 0}, {10, 0}, {12, 0}, {1000, 0}, {1010, 0}}, 10)
	p := mustProblem(t, ProblemInput{
		Matrix:       mustMatrix(t, dist, dur),
		Demands:      []int64{0, 4, 4, 6, 6},
		VehicleCount: 2,
		Capacities:   []int64{10},
	}, Config{})
	dims := NewDimensionTracker(p)
	deadline := time.Now().Add(time.Minute)

	greedy := cheapestInsertion(newSolution(p), dims, p.Customers(), deadline)
	require.Len(t, greedy.unserved, 1)

	got := construct(p, dims, deadline)
	require.Empty(t, got.unserved)
	assert.Equal(t, []int64{10, 10}, got.sol.load)
}

func TestPathCheapestArc(t *testing.T) {
	dist, dur := euclidean([][2]float64{{0, 0}, {10, 0}, {20, 0}, {30, 0}}, 1)
	p := mustProblem(t, ProblemInput{
		Matrix:       mustMatrix(t, dist, dur),
		Demands:      []int64{0, 1, 1, 1},
		VehicleCount: 2,
		Capacities:   []int64{2},
	}, Config{FirstSolution: PathCheapestArc})

	sol := newSolution(p)
	left := pathCheapestArc(sol, NewDimensionTracker(p), p.Customers())

	assert.Empty(t, left)
	assert.Equal(t, [][]int{{1, 2}, {3}}, sol.routes)
	assert.Equal(t, 40.0+60.0, sol.totalCost())
}

func TestPathCheapestArcDropsTailOverHorizon(t *testing.T) {
	dist, dur := euclidean([][2]float64{{0, 0}, {10, 0}, {20, 0}, {30, 0}}, 1)
	p := mustProblem(t, ProblemInput{
		Matrix:       mustMatrix(t, dist, dur),
		Demands:      []int64{0, 1, 1, 1},
		VehicleCount: 2,
		Capacities:   []int64{5},
	}, Config{FirstSolution: PathCheapestArc, TimeDimension: true, Horizon: 45})
	dims := NewDimensionTracker(p)

	sol := newSolution(p)
	left := pathCheapestArc(sol, dims, p.Customers())

	// 0->1->2->0 takes 40s; stop 3 alone takes 60s and never fits.
	assert.Equal(t, [][]int{{1, 2}, nil}, sol.routes)
	assert.Equal(t, []int{3}, left)
}

func TestConstructionStopsAtDeadline(t *testing.T) {
	m := mustMatrix(t, square(4, 10), square(4, 10))
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0, 1, 1, 1}, VehicleCount: 1, Capacities: []int64{10}}, Config{})

	got := construct(p, NewDimensionTracker(p), time.Now().Add(-time.Second))

	assert.True(t, got.timedOut)
	assert.Equal(t, []int{1, 2, 3}, got.unserved)
}
