package vrp

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveOneStopPerVehicle(t *testing.T) {
	m := mustMatrix(t, square(4, 10), square(4, 10))
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0, 5, 5, 5}, VehicleCount: 3, Capacities: []int64{5}}, fastConfig())

	res, err := Solve(p)
	require.NoError(t, err)
	requireValidRoutes(t, p, res)

	for _, r := range res.Routes {
		assert.Len(t, r, 3, "each vehicle serves exactly one stop: %v", r)
	}
}

func TestSolveReportsInfeasibleFleet(t *testing.T) {
	m := mustMatrix(t, square(4, 10), square(4, 10))
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0, 5, 5, 5}, VehicleCount: 1, Capacities: []int64{5}}, fastConfig())

	res, err := Solve(p)
	require.NoError(t, err, "infeasibility is an outcome, not an error")
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Empty(t, res.Routes)
	assert.Equal(t, []int{1, 2, 3}, res.Unserved)
}

func TestSolveUsesInjectedDemand(t *testing.T) {
	m := mustMatrix(t, square(4, 10), square(4, 10))
	demand := func(stop int) int64 {
		if stop == 0 {
			return 0
		}
		return 3
	}
	p := mustProblem(t, ProblemInput{Matrix: m, Demand: demand, VehicleCount: 3, Capacities: []int64{5}}, fastConfig())

	res, err := Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, res.Status)
	require.Len(t, res.Routes, 3)
	for k := range res.Routes {
		assert.Equal(t, 0, res.Routes[k][0])
		assert.Len(t, res.Routes[k], 3)
		assert.Equal(t, int64(3), res.Loads[k])
	}
}

func TestSolveSingleVehicleTour(t *testing.T) {
	dist := [][]float64{
		{0, 10, 20},
		{10, 0, 5},
		{20, 5, 0},
	}
	p := mustProblem(t, ProblemInput{
		Matrix:       mustMatrix(t, dist, dist),
		Demands:      []int64{0, 1, 1},
		VehicleCount: 1,
		Capacities:   []int64{10},
	}, fastConfig())

	res, err := Solve(p)
	require.NoError(t, err)
	requireValidRoutes(t, p, res)
	assert.Equal(t, 35.0, res.Distance)
	assert.Equal(t, 35.0, res.Cost)
}

func TestSolveRandomInstancesKeepInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		n := 15 + rng.Intn(15)
		dist, dur := euclidean(randomPoints(rng, n), 12)
		demands := make([]int64, n)
		for i := 1; i < n; i++ {
			demands[i] = int64(1 + rng.Intn(6))
		}
		in := ProblemInput{Matrix: mustMatrix(t, dist, dur), Demands: demands, VehicleCount: 5, Capacities: []int64{30, 30, 40, 40, 50}}

		for _, obj := range []Objective{ObjectiveDistance, ObjectiveDuration} {
			cfg := fastConfig()
			cfg.Objective = obj
			cfg.TimeDimension = true
			cfg.Horizon = 9000
			p := mustProblem(t, in, cfg)

			res, err := Solve(p)
			require.NoError(t, err)
			requireValidRoutes(t, p, res)

			if obj == ObjectiveDistance {
				assert.InDelta(t, res.Distance, res.Cost, 1e-6)
			} else {
				assert.InDelta(t, res.Duration, res.Cost, 1e-6)
			}
		}
	}
}

func TestSolveImprovesOnConstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	dist, dur := euclidean(randomPoints(rng, 30), 10)
	demands := make([]int64, 30)
	for i := 1; i < 30; i++ {
		demands[i] = int64(1 + rng.Intn(4))
	}
	p := mustProblem(t, ProblemInput{Matrix: mustMatrix(t, dist, dur), Demands: demands, VehicleCount: 4, Capacities: []int64{30}}, fastConfig())

	built := construct(p, NewDimensionTracker(p), time.Now().Add(time.Minute))
	require.Empty(t, built.unserved)

	res, err := Solve(p)
	require.NoError(t, err)
	requireValidRoutes(t, p, res)
	assert.LessOrEqual(t, res.Cost, built.sol.totalCost()+1e-9)
}

func TestSolveTimeDimensionSplitsRoutes(t *testing.T) {
	dist, dur := euclidean([][2]float64{{0, 0}, {100, 0}, {0, 100}, {-100, 0}}, 1)
	in := ProblemInput{Matrix: mustMatrix(t, dist, dur), Demands: []int64{0, 1, 1, 1}, VehicleCount: 3, Capacities: []int64{10}}

	loose := mustProblem(t, in, fastConfig())
	res, err := Solve(loose)
	require.NoError(t, err)
	requireValidRoutes(t, loose, res)

	cfg := fastConfig()
	cfg.TimeDimension = true
	cfg.Horizon = 250
	tight := mustProblem(t, in, cfg)
	res, err = Solve(tight)
	require.NoError(t, err)
	requireValidRoutes(t, tight, res)

	used := 0
	for _, r := range res.Routes {
		if len(r) > 2 {
			used++
		}
	}
	assert.Equal(t, 3, used, "no two stops fit in a 250s route")
}

func TestSolveHorizonTooShort(t *testing.T) {
	dist, dur := euclidean([][2]float64{{0, 0}, {100, 0}, {500, 0}}, 1)
	in := ProblemInput{Matrix: mustMatrix(t, dist, dur), Demands: []int64{0, 1, 1}, VehicleCount: 2, Capacities: []int64{10}}

	cfg := fastConfig()
	cfg.TimeDimension = true
	cfg.Horizon = 600
	res, err := Solve(mustProblem(t, in, cfg))
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)

	cfg.BestEffort = true
	p := mustProblem(t, in, cfg)
	res, err = Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, res.Status)
	assert.Equal(t, []int{2}, res.Unserved)
	assert.Equal(t, []int{0, 1, 0}, res.Routes[0])
	assert.Equal(t, []int{0, 0}, res.Routes[1])
}

func TestSolveBestEffortCapacity(t *testing.T) {
	m := mustMatrix(t, square(4, 10), square(4, 10))
	cfg := fastConfig()
	cfg.BestEffort = true
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0, 5, 5, 5}, VehicleCount: 1, Capacities: []int64{5}}, cfg)

	res, err := Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, res.Status)
	assert.Equal(t, [][]int{{0, 1, 0}}, res.Routes)
	assert.Equal(t, []int{2, 3}, res.Unserved)
	assert.Equal(t, []int64{5}, res.Loads)
}

func TestSolveDeadlineReturnsBestFeasible(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	dist, dur := euclidean(randomPoints(rng, 20), 10)
	demands := make([]int64, 20)
	for i := 1; i < 20; i++ {
		demands[i] = 1
	}
	p := mustProblem(t, ProblemInput{Matrix: mustMatrix(t, dist, dur), Demands: demands, VehicleCount: 3, Capacities: []int64{10}},
		Config{TimeLimit: 150 * time.Millisecond})

	start := time.Now()
	res, err := Solve(p)
	require.NoError(t, err)

	assert.Equal(t, StatusDeadlineExceeded, res.Status)
	requireValidRoutes(t, p, res)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Greater(t, res.Stats.Iterations, 0)
}

func TestSolveDeadlineDuringConstruction(t *testing.T) {
	m := mustMatrix(t, square(5, 10), square(5, 10))
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0, 1, 1, 1, 1}, VehicleCount: 2, Capacities: []int64{10}},
		Config{TimeLimit: time.Nanosecond})

	res, err := Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, res.Status)
	assert.NotEmpty(t, res.Unserved)
	assert.Len(t, res.Routes, 2)
}

func TestSolveSingleStop(t *testing.T) {
	m := mustMatrix(t, square(2, 7), square(2, 7))
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0, 2}, VehicleCount: 2, Capacities: []int64{5}}, Config{})

	res, err := Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, res.Status)
	assert.Equal(t, [][]int{{0, 1, 0}, {0, 0}}, res.Routes)
	assert.Equal(t, 14.0, res.Distance)
	assert.Zero(t, res.Stats.Iterations)
}

func TestSolveDepotOnly(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0}}, [][]float64{{0}})
	p := mustProblem(t, ProblemInput{Matrix: m, Demands: []int64{0}, VehicleCount: 2, Capacities: []int64{1}}, Config{})

	res, err := Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, res.Status)
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, res.Routes)
}

func TestSolveObjectiveDoesNotChangeFeasibility(t *testing.T) {
	// Distance favours one long loop, duration is flat; capacity must bind
	// the same way under both.
	m := mustMatrix(t, square(5, 10), square(5, 3))
	in := ProblemInput{Matrix: m, Demands: []int64{0, 3, 3, 3, 3}, VehicleCount: 3, Capacities: []int64{6}}

	for _, obj := range []Objective{ObjectiveDistance, ObjectiveDuration} {
		cfg := fastConfig()
		cfg.Objective = obj
		p := mustProblem(t, in, cfg)
		res, err := Solve(p)
		require.NoError(t, err)
		requireValidRoutes(t, p, res)
		for _, l := range res.Loads {
			assert.LessOrEqual(t, l, int64(6))
		}
	}
}
