package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/itinerary"
	"vrp-route-service/internal/platform/apperr"
	"vrp-route-service/internal/platform/logging"
	"vrp-route-service/internal/platform/obs"
	"vrp-route-service/internal/ports"
	"vrp-route-service/internal/vrp"

	"github.com/google/uuid"
)

// Planner turns the pending orders into stored, dispatched route plans.
type Planner struct {
	Orders   ports.OrderRepository
	Geocoder ports.Geocoder
	Matrix   ports.MatrixProvider
	Store    ports.PlanStore

	// Depot is the address every vehicle starts from and returns to.
	Depot    string
	Defaults SolverDefaults

	Now   func() time.Time
	NewID func() string
}

func (pl *Planner) now() time.Time {
	if pl.Now != nil {
		return pl.Now()
	}
	return time.Now().UTC()
}

func (pl *Planner) newID() string {
	if pl.NewID != nil {
		return pl.NewID()
	}
	return uuid.NewString()
}

// stop groups the orders sharing a destination into one visit.
type stop struct {
	address  string
	demand   int64
	orderIDs []string
}

func groupStops(orders []*domain.Order) ([]*stop, error) {
	byAddr := make(map[string]*stop)
	stops := make([]*stop, 0, len(orders))
	for _, o := range orders {
		d := strings.Join(strings.Fields(o.Destination), " ")
		if d == "" {
			return nil, fmt.Errorf("order_id=%s has empty destination", o.OrderID)
		}
		s, ok := byAddr[d]
		if !ok {
			s = &stop{address: d}
			byAddr[d] = s
			stops = append(stops, s)
		}
		s.demand += o.Demand()
		s.orderIDs = append(s.orderIDs, o.OrderID)
	}
	return stops, nil
}

// PlanDeliveries plans routes for every pending order, dispatches them at
// departAt and stores the bundle. Infeasible instances produce a stored
// bundle with that status rather than an error.
func (pl *Planner) PlanDeliveries(ctx context.Context, req domain.PlanRequest, departAt time.Time) (_ *domain.PlanBundle, err error) {
	defer obs.Time(ctx, "services.PlanDeliveries")(&err)
	log := logging.FromContext(ctx)

	if strings.TrimSpace(pl.Depot) == "" {
		return nil, apperr.New(apperr.CodeInvalidInput, "plan deliveries: depot address is not configured")
	}

	cfg, err := pl.Defaults.config(SolveOverrides{
		Objective:      req.Objective,
		TimeLimit:      time.Duration(req.TimeLimitSeconds * float64(time.Second)),
		HorizonSeconds: req.HorizonSeconds,
		TimeDimension:  req.TimeDimension,
		BestEffort:     req.BestEffort,
	})
	if err != nil {
		return nil, err
	}

	orders, err := pl.Orders.ListPendingOrders(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "plan deliveries: list orders")
	}

	stops, err := groupStops(orders)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInvalidInput, "plan deliveries")
	}

	n := len(stops) + 1
	labels := make([]string, n)
	demands := make([]int64, n)
	labels[0] = pl.Depot
	for i, s := range stops {
		labels[i+1] = s.address
		demands[i+1] = s.demand
	}

	fleet, err := pl.fleet(req, demands)
	if err != nil {
		return nil, err
	}

	coords, err := pl.geocode(ctx, labels)
	if err != nil {
		return nil, err
	}

	tm, err := pl.Matrix.GetMatrix(ctx, coords)
	if err != nil {
		return nil, apperr.Wrap(fmt.Errorf("%w: %w", vrp.ErrMatrixUnavailable, err), apperr.CodeMatrixUnavailable, "plan deliveries: get matrix")
	}
	m, err := vrp.NewCostMatrix(tm.Distances, tm.Durations)
	if err != nil {
		return nil, apperr.Wrap(fmt.Errorf("%w: %w", vrp.ErrMatrixUnavailable, err), apperr.CodeMatrixUnavailable, "plan deliveries: provider matrix")
	}

	p, err := vrp.NewProblem(vrp.ProblemInput{
		Matrix:       m,
		Depot:        0,
		Demands:      demands,
		VehicleCount: len(fleet.Vehicles),
		Capacities:   fleet.Capacities(),
	}, cfg)
	if err != nil {
		return nil, classify(err, "plan deliveries: problem")
	}

	res, err := solve(p)
	if err != nil {
		return nil, err
	}

	text := itinerary.Format(res.Routes, m.Distance, labels, itinerary.Options{})

	bundle := &domain.PlanBundle{
		ID:              pl.newID(),
		CreatedAt:       pl.now(),
		Status:          res.Status.String(),
		Objective:       cfg.Objective.String(),
		Routes:          res.Routes,
		Coordinates:     coords,
		Labels:          labels,
		Demands:         demands,
		PlanText:        text.Text,
		TotalDistanceKm: text.Total,
		Request:         req,
	}
	for _, u := range res.Unserved {
		bundle.Unserved = append(bundle.Unserved, labels[u])
	}

	bundle.Plans, err = routePlans(res, vrp.NewDimensionTracker(p), fleet, stops, coords, labels, demands, departAt)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "plan deliveries: dispatch")
	}

	if pl.Store != nil {
		if err := pl.Store.SavePlan(ctx, bundle); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "plan deliveries: save plan")
		}
	}

	log.Info().
		Str("plan_id", bundle.ID).
		Str("status", bundle.Status).
		Int("orders", len(orders)).
		Int("stops", len(stops)).
		Int64("fleet_capacity", fleet.TotalCapacity()).
		Float64("total_km", bundle.TotalDistanceKm).
		Msg("plan created")

	return bundle, nil
}

// fleet builds the vehicles for req. A tour is one vehicle large enough
// for every stop.
func (pl *Planner) fleet(req domain.PlanRequest, demands []int64) (*domain.Fleet, error) {
	if req.Tour {
		var total int64
		for _, d := range demands {
			total += d
		}
		if total < 1 {
			total = 1
		}
		f, err := domain.NewFleet(1, []int64{total})
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInvalidInput, "plan deliveries: fleet")
		}
		return f, nil
	}

	f, err := domain.NewFleet(req.VehicleCount, req.Capacities)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInvalidInput, "plan deliveries: fleet")
	}
	return f, nil
}

// geocode resolves every label in order, one request at a time.
func (pl *Planner) geocode(ctx context.Context, labels []string) ([]domain.Coordinates, error) {
	coords := make([]domain.Coordinates, len(labels))
	for i, l := range labels {
		c, err := pl.Geocoder.Geocode(ctx, l)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, apperr.Wrap(err, apperr.CodeInternal, "plan deliveries: geocode")
			}
			return nil, apperr.Wrap(fmt.Errorf("%w: geocode %q: %w", vrp.ErrMatrixUnavailable, l, err), apperr.CodeMatrixUnavailable, "plan deliveries: geocode")
		}
		coords[i] = c
	}
	return coords, nil
}

func routePlans(
	res *vrp.Result,
	dims *vrp.DimensionTracker,
	fleet *domain.Fleet,
	stops []*stop,
	coords []domain.Coordinates,
	labels []string,
	demands []int64,
	departAt time.Time,
) ([]domain.RoutePlan, error) {
	plans := make([]domain.RoutePlan, 0, len(res.Routes))
	for k, route := range res.Routes {
		v := fleet.Vehicles[k]
		plan := domain.RoutePlan{
			VehicleID:            v.VehicleID,
			Capacity:             v.Capacity,
			Load:                 res.Loads[k],
			Stops:                make([]domain.RouteStop, 0, len(route)),
			TotalDistanceMeters:  res.Distances[k],
			TotalDurationSeconds: res.Durations[k],
		}

		m := dims.Matrix()
		var meters float64
		for i, c := range dims.Cumuls(route) {
			idx := c.Stop
			if i > 0 {
				meters += m.Distance(route[i-1], idx)
			}
			rs := domain.RouteStop{
				Index:            idx,
				Label:            labels[idx],
				Location:         coords[idx],
				Demand:           demands[idx],
				Load:             c.Load,
				CumulativeMeters: meters,
				ElapsedSeconds:   c.Time,
			}
			if idx > 0 {
				rs.OrderIDs = stops[idx-1].orderIDs
			}
			plan.Stops = append(plan.Stops, rs)
		}

		if err := v.ApplyPlan(&plan, departAt); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// GetPlan returns a stored plan or a NOT_FOUND error.
func (pl *Planner) GetPlan(ctx context.Context, id string) (*domain.PlanBundle, error) {
	if pl.Store == nil {
		return nil, apperr.New(apperr.CodeNotFound, "plan storage is disabled")
	}
	plan, err := pl.Store.GetPlan(ctx, id)
	if errors.Is(err, ports.ErrPlanNotFound) {
		return nil, apperr.Wrap(err, apperr.CodeNotFound, fmt.Sprintf("plan %q", id))
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "get plan")
	}
	return plan, nil
}

// ListPlans returns up to limit stored plans, newest first.
func (pl *Planner) ListPlans(ctx context.Context, limit int) ([]*domain.PlanBundle, error) {
	if pl.Store == nil {
		return []*domain.PlanBundle{}, nil
	}
	plans, err := pl.Store.ListPlans(ctx, limit)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "list plans")
	}
	return plans, nil
}
