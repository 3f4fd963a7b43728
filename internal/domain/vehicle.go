package domain

import (
	"errors"
	"fmt"
	"time"
)

// Delivery vehicle with a capacity in demand units.
type Vehicle struct {
	VehicleID int   `json:"vehicle_id"`
	Capacity  int64 `json:"capacity"`
}

// Fleet is the set of vehicles available to one plan.
type Fleet struct {
	Vehicles []Vehicle `json:"vehicles"`
}

// NewFleet gives count vehicles either the single capacity in capacities or
// one capacity each.
func NewFleet(count int, capacities []int64) (*Fleet, error) {
	if count < 1 {
		return nil, fmt.Errorf("new fleet: vehicle count must be positive, got %d", count)
	}
	if len(capacities) != 1 && len(capacities) != count {
		return nil, fmt.Errorf("new fleet: got %d capacities for %d vehicles", len(capacities), count)
	}

	f := &Fleet{Vehicles: make([]Vehicle, count)}
	for i := range f.Vehicles {
		c := capacities[0]
		if len(capacities) == count {
			c = capacities[i]
		}
		if c <= 0 {
			return nil, fmt.Errorf("new fleet: vehicle %d capacity must be positive, got %d", i, c)
		}
		f.Vehicles[i] = Vehicle{VehicleID: i, Capacity: c}
	}
	return f, nil
}

func (f *Fleet) Capacities() []int64 {
	out := make([]int64, len(f.Vehicles))
	for i, v := range f.Vehicles {
		out[i] = v.Capacity
	}
	return out
}

func (f *Fleet) TotalCapacity() int64 {
	var t int64
	for _, v := range f.Vehicles {
		t += v.Capacity
	}
	return t
}

// ApplyPlan dispatches plan on the vehicle at departAt: it checks the load
// against capacity and stamps every stop with its arrival time.
func (v Vehicle) ApplyPlan(plan *RoutePlan, departAt time.Time) error {
	if plan == nil {
		return errors.New("apply plan: plan is nil")
	}
	if plan.VehicleID != v.VehicleID {
		return fmt.Errorf("apply plan: plan is for vehicle %d, not %d", plan.VehicleID, v.VehicleID)
	}
	if plan.Load > v.Capacity {
		return fmt.Errorf("apply plan: vehicle %d load %d exceeds capacity %d", v.VehicleID, plan.Load, v.Capacity)
	}

	depart := departAt
	plan.DepartAt = &depart
	for i := range plan.Stops {
		at := departAt.Add(time.Duration(plan.Stops[i].ElapsedSeconds * float64(time.Second)))
		plan.Stops[i].ArriveAt = &at
	}
	return nil
}
