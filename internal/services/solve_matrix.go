package services

import (
	"context"
	"vrp-route-service/internal/itinerary"
	"vrp-route-service/internal/platform/apperr"
	"vrp-route-service/internal/platform/obs"
	"vrp-route-service/internal/vrp"
)

// SolveMatrixRequest is an explicit instance: no geocoding, no provider.
type SolveMatrixRequest struct {
	Distances    [][]float64
	Durations    [][]float64
	Depot        int
	Demands      []int64
	VehicleCount int
	Capacities   []int64
	Labels       []string
	Options      SolveOverrides
}

type SolveMatrixResult struct {
	Status    vrp.Status
	Routes    [][]int
	Unserved  []int
	Cost      float64
	Distance  float64
	Duration  float64
	Loads     []int64
	Distances []float64
	Durations []float64
	Itinerary itinerary.Plan
	Stats     vrp.Stats
}

// SolveMatrix validates and solves an explicit matrix instance. An
// infeasible instance is a result, not an error.
func SolveMatrix(ctx context.Context, defaults SolverDefaults, req SolveMatrixRequest) (_ *SolveMatrixResult, err error) {
	defer obs.Time(ctx, "services.SolveMatrix")(&err)

	cfg, err := defaults.config(req.Options)
	if err != nil {
		return nil, err
	}

	durations := req.Durations
	if durations == nil {
		durations = req.Distances
	}
	m, err := vrp.NewCostMatrix(req.Distances, durations)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInvalidInput, "matrix")
	}

	p, err := vrp.NewProblem(vrp.ProblemInput{
		Matrix:       m,
		Depot:        req.Depot,
		Demands:      req.Demands,
		VehicleCount: req.VehicleCount,
		Capacities:   req.Capacities,
	}, cfg)
	if err != nil {
		return nil, classify(err, "problem")
	}

	res, err := solve(p)
	if err != nil {
		return nil, err
	}

	return &SolveMatrixResult{
		Status:    res.Status,
		Routes:    res.Routes,
		Unserved:  res.Unserved,
		Cost:      res.Cost,
		Distance:  res.Distance,
		Duration:  res.Duration,
		Loads:     res.Loads,
		Distances: res.Distances,
		Durations: res.Durations,
		Itinerary: itinerary.Format(res.Routes, m.Distance, req.Labels, itinerary.Options{}),
		Stats:     res.Stats,
	}, nil
}
