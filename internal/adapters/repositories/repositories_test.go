package repositories_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
	"vrp-route-service/internal/adapters/repositories"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/db"
	"vrp-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, repositories.InitSchema(context.Background(), conn, db.SQLite))
	return conn
}

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const seedOrders = `[
  {"order_id": "A1", "destination": "1 Main St", "items": [
    {"product_id": "p1", "quantity": 2, "fulfilled": false},
    {"product_id": "p2", "quantity": 3, "fulfilled": true}
  ]},
  {"order_id": "B2", "destination": "2 Oak Ave", "items": [
    {"product_id": "p1", "quantity": 4, "fullfilled": true}
  ]},
  {"order_id": "C3", "destination": "3 Pine Rd", "items": [
    {"product_id": "p3", "quantity": 1}
  ]}
]`

func TestInitSchema_Idempotent(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, repositories.InitSchema(context.Background(), conn, db.SQLite))
}

func TestSeedAndListPendingOrders(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	require.NoError(t, repositories.SeedFromJSON(ctx, conn, db.SQLite, writeSeed(t, seedOrders)))

	repo := repositories.NewSQLOrderRepository(conn)
	orders, err := repo.ListPendingOrders(ctx)
	require.NoError(t, err)

	// B2 is fully fulfilled through the legacy key.
	require.Len(t, orders, 2)
	assert.Equal(t, "A1", orders[0].OrderID)
	assert.Equal(t, "1 Main St", orders[0].Destination)
	assert.Equal(t, int64(5), orders[0].Demand())
	assert.Len(t, orders[0].Items, 2)
	assert.Equal(t, "C3", orders[1].OrderID)
	assert.Equal(t, int64(1), orders[1].Demand())
}

func TestSeedFromJSON_ReseedUpdatesItems(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	repo := repositories.NewSQLOrderRepository(conn)

	require.NoError(t, repositories.SeedFromJSON(ctx, conn, db.SQLite, writeSeed(t, seedOrders)))
	require.NoError(t, repositories.SeedFromJSON(ctx, conn, db.SQLite, writeSeed(t, `[
	  {"order_id": "C3", "destination": "3 Pine Rd", "items": [
	    {"product_id": "p3", "quantity": 1, "fulfilled": true}
	  ]}
	]`)))

	orders, err := repo.ListPendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "A1", orders[0].OrderID)
}

func TestSeedFromJSON_Rejects(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	cases := map[string]string{
		"empty id":          `[{"order_id": " ", "destination": "x", "items": []}]`,
		"empty destination": `[{"order_id": "A", "destination": "", "items": []}]`,
		"negative quantity": `[{"order_id": "A", "destination": "x", "items": [{"product_id": "p", "quantity": -1}]}]`,
		"bad json":          `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, repositories.SeedFromJSON(ctx, conn, db.SQLite, writeSeed(t, body)))
		})
	}

	require.Error(t, repositories.SeedFromJSON(ctx, conn, db.SQLite, filepath.Join(t.TempDir(), "missing.json")))
}

func samplePlan(id string, created time.Time) *domain.PlanBundle {
	return &domain.PlanBundle{
		ID:        id,
		CreatedAt: created.UTC(),
		Status:    "SOLVED",
		Objective: "distance",
		Routes:    [][]int{{0, 1, 2, 0}},
		Labels:    []string{"Hub", "A1", "C3"},
		Demands:   []int64{0, 5, 1},
		PlanText:  "Optimized Routes:\n",
		Request:   domain.PlanRequest{VehicleCount: 1, Capacities: []int64{10}},
	}
}

func exercisePlanStore(t *testing.T, store ports.PlanStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	_, err := store.GetPlan(ctx, "missing")
	require.ErrorIs(t, err, ports.ErrPlanNotFound)

	require.NoError(t, store.SavePlan(ctx, samplePlan("p1", base)))
	require.NoError(t, store.SavePlan(ctx, samplePlan("p2", base.Add(time.Minute))))
	require.NoError(t, store.SavePlan(ctx, samplePlan("p3", base.Add(2*time.Minute))))

	got, err := store.GetPlan(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", got.ID)
	assert.Equal(t, [][]int{{0, 1, 2, 0}}, got.Routes)
	assert.True(t, got.CreatedAt.Equal(base.Add(time.Minute)))

	list, err := store.ListPlans(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p3", list[0].ID)
	assert.Equal(t, "p2", list[1].ID)

	updated := samplePlan("p1", base)
	updated.Status = "INFEASIBLE"
	require.NoError(t, store.SavePlan(ctx, updated))
	got, err = store.GetPlan(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "INFEASIBLE", got.Status)

	require.Error(t, store.SavePlan(ctx, &domain.PlanBundle{}))
}

func TestSQLPlanStore(t *testing.T) {
	exercisePlanStore(t, repositories.NewSQLPlanStore(openTestDB(t), db.SQLite))
}
