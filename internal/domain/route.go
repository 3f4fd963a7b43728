package domain

import "time"

// Represents a single stop in a delivery route.
// Load and ElapsedSeconds are cumulative on arrival. ArriveAt is set once
// the route is dispatched with a departure time.
type RouteStop struct {
	Index            int         `json:"index"`
	Label            string      `json:"label"`
	Location         Coordinates `json:"location"`
	Demand           int64       `json:"demand"`
	Load             int64       `json:"load"`
	OrderIDs         []string    `json:"order_ids,omitempty"`
	CumulativeMeters float64     `json:"cumulative_meters"`
	ElapsedSeconds   float64     `json:"elapsed_seconds"`
	ArriveAt         *time.Time  `json:"arrive_at,omitempty"`
}

// Represents the planned route of one vehicle, depot to depot.
// It is immutable planning data and contains no side effects.
type RoutePlan struct {
	VehicleID            int         `json:"vehicle_id"`
	Capacity             int64       `json:"capacity"`
	Load                 int64       `json:"load"`
	DepartAt             *time.Time  `json:"depart_at,omitempty"`
	Stops                []RouteStop `json:"stops"`
	TotalDistanceMeters  float64     `json:"total_distance_meters"`
	TotalDurationSeconds float64     `json:"total_duration_seconds"`
}

// Used reports whether the vehicle leaves the depot at all.
func (p *RoutePlan) Used() bool { return len(p.Stops) > 2 }
