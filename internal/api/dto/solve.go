package dto

import (
	"errors"
	"fmt"
	"time"
	"vrp-route-service/internal/services"
	"vrp-route-service/internal/vrp"
)

// SolveRequest is an explicit matrix instance. Missing matrix entries are
// not representable in JSON; a negative value marks an unreachable pair.
type SolveRequest struct {
	Distances     [][]float64 `json:"distances"`
	Durations     [][]float64 `json:"durations"`
	Depot         int         `json:"depot"`
	Demands       []int64     `json:"demands"`
	VehicleCount  int         `json:"vehicle_count"`
	Capacities    []int64     `json:"capacities"`
	Labels        []string    `json:"labels"`
	Objective     string      `json:"objective"`
	FirstSolution string      `json:"first_solution"`

	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	HorizonSeconds   float64 `json:"horizon_seconds"`
	TimeDimension    *bool   `json:"time_dimension"`
	BestEffort       bool    `json:"best_effort"`
}

func (r SolveRequest) Validate() error {
	if len(r.Distances) == 0 {
		return errors.New("distances is required")
	}
	if r.VehicleCount < 1 || r.VehicleCount > maxVehicleCount {
		return fmt.Errorf("vehicle_count must be between 1 and %d", maxVehicleCount)
	}
	if r.TimeLimitSeconds < 0 || r.TimeLimitSeconds > 300 {
		return errors.New("time_limit_seconds must be between 0 and 300")
	}
	return nil
}

func (r SolveRequest) ToService() services.SolveMatrixRequest {
	return services.SolveMatrixRequest{
		Distances:    unreachable(r.Distances),
		Durations:    unreachable(r.Durations),
		Depot:        r.Depot,
		Demands:      r.Demands,
		VehicleCount: r.VehicleCount,
		Capacities:   r.Capacities,
		Labels:       r.Labels,
		Options: services.SolveOverrides{
			Objective:      r.Objective,
			TimeLimit:      time.Duration(r.TimeLimitSeconds * float64(time.Second)),
			HorizonSeconds: r.HorizonSeconds,
			TimeDimension:  r.TimeDimension,
			BestEffort:     r.BestEffort,
			FirstSolution:  r.FirstSolution,
		},
	}
}

// unreachable maps the wire marker for a missing arc (-1) to NoEdge.
func unreachable(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			if v == -1 {
				v = vrp.NoEdge
			}
			out[i][j] = v
		}
	}
	return out
}

type SolveResponse struct {
	Status    string    `json:"status"`
	Routes    [][]int   `json:"routes"`
	Unserved  []int     `json:"unserved,omitempty"`
	Cost      float64   `json:"cost"`
	Distance  float64   `json:"distance"`
	Duration  float64   `json:"duration"`
	Loads     []int64   `json:"loads"`
	Distances []float64 `json:"route_distances"`
	Durations []float64 `json:"route_durations"`
	PlanText  string    `json:"plan_text"`
	Stats     vrp.Stats `json:"stats"`
}

func NewSolveResponse(res *services.SolveMatrixResult) SolveResponse {
	routes := res.Routes
	if routes == nil {
		routes = [][]int{}
	}
	return SolveResponse{
		Status:    res.Status.String(),
		Routes:    routes,
		Unserved:  res.Unserved,
		Cost:      res.Cost,
		Distance:  res.Distance,
		Duration:  res.Duration,
		Loads:     res.Loads,
		Distances: res.Distances,
		Durations: res.Durations,
		PlanText:  res.Itinerary.Text,
		Stats:     res.Stats,
	}
}
