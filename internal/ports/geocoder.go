package ports

import (
	"context"
	"vrp-route-service/internal/domain"
)

// Contract for resolving a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Port: cache of resolved addresses.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}
