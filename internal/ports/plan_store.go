package ports

import (
	"context"
	"errors"
	"vrp-route-service/internal/domain"
)

var ErrPlanNotFound = errors.New("plan not found")

// Port: storage for planning results.
type PlanStore interface {
	SavePlan(ctx context.Context, plan *domain.PlanBundle) error
	// Return ErrPlanNotFound when id is unknown.
	GetPlan(ctx context.Context, id string) (*domain.PlanBundle, error)
	// Return at most limit plans, newest first.
	ListPlans(ctx context.Context, limit int) ([]*domain.PlanBundle, error)
}
