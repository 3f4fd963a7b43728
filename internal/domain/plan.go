package domain

import "time"

// PlanRequest is what a caller asked for; it is stored with the plan.
type PlanRequest struct {
	VehicleCount     int     `json:"vehicle_count"`
	Capacities       []int64 `json:"capacities"`
	Objective        string  `json:"objective"`
	TimeLimitSeconds float64 `json:"time_limit_seconds,omitempty"`
	HorizonSeconds   float64 `json:"horizon_seconds,omitempty"`
	TimeDimension    *bool   `json:"time_dimension,omitempty"`
	BestEffort       bool    `json:"best_effort"`
	Tour             bool    `json:"tour"`
}

// PlanBundle is the machine-readable result of a planning run, consumed
// for mapping and storage.
type PlanBundle struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
	Objective string    `json:"objective"`

	// Routes are depot-to-depot stop indices into Labels.
	Routes      [][]int       `json:"routes"`
	Plans       []RoutePlan   `json:"plans"`
	Coordinates []Coordinates `json:"coordinates"`
	Labels      []string      `json:"labels"`
	Demands     []int64       `json:"demands"`
	Unserved    []string      `json:"unserved,omitempty"`

	PlanText        string  `json:"plan_text"`
	TotalDistanceKm float64 `json:"total_distance_km"`

	Request PlanRequest `json:"request"`
}
