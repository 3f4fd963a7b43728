package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"vrp-route-service/internal/adapters/distance"
	"vrp-route-service/internal/api"
	"vrp-route-service/internal/api/dto"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/metrics"
	"vrp-route-service/internal/ports"
	"vrp-route-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct{ orders []*domain.Order }

func (f *fakeOrders) ListPendingOrders(ctx context.Context) ([]*domain.Order, error) {
	return domain.PendingOrders(f.orders), nil
}

type fakePlans struct {
	mu    sync.Mutex
	order []string
	plans map[string]*domain.PlanBundle
}

func (f *fakePlans) SavePlan(ctx context.Context, p *domain.PlanBundle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.plans[p.ID]; !ok {
		f.order = append([]string{p.ID}, f.order...)
	}
	f.plans[p.ID] = p
	return nil
}

func (f *fakePlans) GetPlan(ctx context.Context, id string) (*domain.PlanBundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok {
		return nil, ports.ErrPlanNotFound
	}
	return p, nil
}

func (f *fakePlans) ListPlans(ctx context.Context, limit int) ([]*domain.PlanBundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.PlanBundle{}
	for _, id := range f.order {
		if len(out) == limit {
			break
		}
		out = append(out, f.plans[id])
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	metrics.RegisterDefault()

	orders := &fakeOrders{orders: []*domain.Order{
		{OrderID: "o1", Destination: "A", Items: []domain.OrderItem{{ProductID: "p", Quantity: 5}}},
		{OrderID: "o2", Destination: "B", Items: []domain.OrderItem{{ProductID: "p", Quantity: 5}}},
		{OrderID: "o3", Destination: "C", Items: []domain.OrderItem{{ProductID: "p", Quantity: 5}}},
		{OrderID: "o4", Destination: "D", Items: []domain.OrderItem{{ProductID: "p", Quantity: 1, Fulfilled: true}}},
	}}
	defaults := services.SolverDefaults{Objective: "distance", TimeLimit: 5 * time.Second, Workers: 2, MaxIterations: 50}
	planner := &services.Planner{
		Orders:   orders,
		Geocoder: distance.NewMockGeocoder(domain.Coordinates{Lon: -122, Lat: 37}),
		Matrix:   distance.NewMockMatrixProvider(),
		Store:    &fakePlans{plans: map[string]*domain.PlanBundle{}},
		Depot:    "Hub",
		Defaults: defaults,
	}

	srv := httptest.NewServer(api.NewRouter(orders, planner, defaults))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))

	resp = postJSON(t, srv.URL+"/health", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRequestIDPropagates(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestListOrders(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv.URL+"/orders")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.ListOrdersResponse](t, resp)
	require.Len(t, body.Orders, 3)
	assert.Equal(t, "o1", body.Orders[0].OrderID)
	assert.Equal(t, int64(5), body.Orders[0].Demand)
}

func TestCreateGetAndListPlans(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/plans", `{"vehicle_count": 3, "capacity": 5}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	plan := decode[domain.PlanBundle](t, resp)
	assert.Equal(t, "solved", plan.Status)
	require.Len(t, plan.Routes, 3)
	for _, r := range plan.Routes {
		// Scenario: every vehicle is full after one stop.
		assert.Len(t, r, 3)
	}
	assert.NotEmpty(t, plan.ID)

	resp = get(t, srv.URL+"/plans/"+plan.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.PlanBundle](t, resp)
	assert.Equal(t, plan.ID, got.ID)
	assert.Equal(t, plan.PlanText, got.PlanText)

	resp = get(t, srv.URL+"/plans?limit=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.ListPlansResponse](t, resp)
	require.Len(t, list.Plans, 1)
	assert.Equal(t, 3, list.Plans[0].Stops)

	resp = get(t, srv.URL+"/plans/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[map[string]string](t, resp)["code"])
}

func TestCreatePlan_Infeasible(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/plans", `{"vehicle_count": 1, "capacity": 5}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	plan := decode[domain.PlanBundle](t, resp)
	assert.Equal(t, "infeasible", plan.Status)
	assert.Len(t, plan.Unserved, 3)
}

func TestCreatePlan_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]string{
		"bad json":         `{`,
		"unknown field":    `{"trucks": 2}`,
		"two objects":      `{} {}`,
		"too many":         `{"vehicle_count": 500}`,
		"both capacities":  `{"capacity": 5, "capacities": [5]}`,
		"capacity count":   `{"vehicle_count": 3, "capacities": [5, 5]}`,
		"zero capacity":    `{"capacities": [0]}`,
		"bad objective":    `{"objective": "fuel"}`,
		"negative horizon": `{"horizon_seconds": -1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/plans", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_INPUT", decode[map[string]string](t, resp)["code"])
		})
	}

	resp := get(t, srv.URL+"/plans?limit=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSolve(t *testing.T) {
	srv := newTestServer(t)

	body, err := json.Marshal(dto.SolveRequest{
		Distances:    [][]float64{{0, 10, 20}, {10, 0, 5}, {20, 5, 0}},
		Demands:      []int64{0, 1, 1},
		VehicleCount: 1,
		Capacities:   []int64{10},
		Labels:       []string{"Depot", "A", "B"},
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/solve", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[dto.SolveResponse](t, resp)
	assert.Equal(t, "solved", res.Status)
	assert.InDelta(t, 35, res.Cost, 1e-9)
	assert.True(t, strings.HasPrefix(res.PlanText, "Optimized Routes:"))
}

func TestSolve_Outcomes(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/solve", `{
	  "distances": [[0,1,1,1],[1,0,1,1],[1,1,0,1],[1,1,1,0]],
	  "demands": [0,5,5,5], "vehicle_count": 1, "capacities": [5]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "infeasible", decode[dto.SolveResponse](t, resp).Status)

	resp = postJSON(t, srv.URL+"/solve", `{
	  "distances": [[0,1],[1,0]],
	  "demands": [0,5,5], "vehicle_count": 1, "capacities": [5]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/solve", `{
	  "distances": [[0,1],[1,0]],
	  "demands": [0,1], "vehicle_count": 1125899906842624, "capacities": [5]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decode[map[string]string](t, resp)["code"])

	resp = postJSON(t, srv.URL+"/solve", `{
	  "distances": [[0,-1],[1,0]],
	  "demands": [0,1], "vehicle_count": 1, "capacities": [5]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/solve", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	get(t, srv.URL+"/health")

	resp := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `http_requests_total{method="GET",path="GET /health",status="200"}`)
}
