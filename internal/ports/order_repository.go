package ports

import (
	"context"
	"vrp-route-service/internal/domain"
)

// Port: a boundary for retrieving Order entities from a data source.
type OrderRepository interface {
	// Retrieve orders that still have unfulfilled items.
	ListPendingOrders(ctx context.Context) ([]*domain.Order, error)
}
