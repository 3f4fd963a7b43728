package ports

import (
	"context"
	"vrp-route-service/internal/domain"
)

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// TravelMatrix holds the pairwise metrics between N locations. Unreachable
// pairs carry +Inf, never zero.
type TravelMatrix struct {
	Distances [][]float64
	Durations [][]float64
}

// Contract for acquiring a full travel matrix between locations.
type MatrixProvider interface {
	// Return N×N distances (meters) and durations (seconds) for coords, in
	// the order given.
	GetMatrix(ctx context.Context, coords []domain.Coordinates) (*TravelMatrix, error)
}

// Port: persistent or in-memory cache of matrix rows keyed by location key.
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
	PutMany(ctx context.Context, origin string, results map[string]DistanceResult) error
}
