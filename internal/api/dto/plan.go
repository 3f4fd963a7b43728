package dto

import (
	"errors"
	"fmt"
	"time"
	"vrp-route-service/internal/domain"
)

const (
	defaultVehicleCount = 3
	defaultCapacity     = 16
	maxVehicleCount     = 50
)

type PlanRequest struct {
	VehicleCount     int        `json:"vehicle_count"`
	Capacity         int64      `json:"capacity"`
	Capacities       []int64    `json:"capacities"`
	Objective        string     `json:"objective"`
	TimeLimitSeconds float64    `json:"time_limit_seconds"`
	HorizonSeconds   float64    `json:"horizon_seconds"`
	TimeDimension    *bool      `json:"time_dimension"`
	BestEffort       bool       `json:"best_effort"`
	Tour             bool       `json:"tour"`
	DepartAt         *time.Time `json:"depart_at"`
}

// Normalize applies defaults and bounds and returns the service request.
func (r PlanRequest) Normalize() (domain.PlanRequest, error) {
	out := domain.PlanRequest{
		Objective:        r.Objective,
		TimeLimitSeconds: r.TimeLimitSeconds,
		HorizonSeconds:   r.HorizonSeconds,
		TimeDimension:    r.TimeDimension,
		BestEffort:       r.BestEffort,
		Tour:             r.Tour,
	}
	if r.TimeLimitSeconds < 0 || r.TimeLimitSeconds > 300 {
		return out, errors.New("time_limit_seconds must be between 0 and 300")
	}
	if r.HorizonSeconds < 0 {
		return out, errors.New("horizon_seconds must not be negative")
	}
	if r.Tour {
		return out, nil
	}

	if r.Capacity != 0 && len(r.Capacities) > 0 {
		return out, errors.New("set either capacity or capacities, not both")
	}

	count := r.VehicleCount
	if count == 0 {
		count = len(r.Capacities)
	}
	if count == 0 {
		count = defaultVehicleCount
	}
	if count < 1 || count > maxVehicleCount {
		return out, fmt.Errorf("vehicle_count must be between 1 and %d", maxVehicleCount)
	}

	caps := r.Capacities
	switch {
	case len(caps) > 0:
		if len(caps) != 1 && len(caps) != count {
			return out, fmt.Errorf("capacities must have 1 or %d entries", count)
		}
	case r.Capacity != 0:
		caps = []int64{r.Capacity}
	default:
		caps = []int64{defaultCapacity}
	}
	for _, c := range caps {
		if c < 1 {
			return out, errors.New("capacities must be positive")
		}
	}

	out.VehicleCount = count
	out.Capacities = caps
	return out, nil
}

type PlanSummary struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Status          string    `json:"status"`
	Objective       string    `json:"objective"`
	Stops           int       `json:"stops"`
	Unserved        int       `json:"unserved"`
	TotalDistanceKm float64   `json:"total_distance_km"`
}

type ListPlansResponse struct {
	Plans []PlanSummary `json:"plans"`
}
