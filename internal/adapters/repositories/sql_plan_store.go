package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/db"
	"vrp-route-service/internal/platform/obs"
	"vrp-route-service/internal/ports"
)

// SQLPlanStore keeps plan bundles as JSON documents.
type SQLPlanStore struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLPlanStore(conn *sql.DB, dialect db.Dialect) *SQLPlanStore {
	return &SQLPlanStore{DB: conn, Dialect: dialect}
}

func (s *SQLPlanStore) SavePlan(ctx context.Context, plan *domain.PlanBundle) (err error) {
	defer obs.Time(ctx, "plans.SavePlan")(&err)

	if plan == nil || plan.ID == "" {
		return errors.New("save plan: plan id must not be empty")
	}
	body, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("save plan: marshal: %w", err)
	}

	q := fmt.Sprintf(`
	INSERT INTO plans (id, created_unix, status, body)
	VALUES (%s)
	ON CONFLICT (id) DO UPDATE
	SET status = excluded.status,
		body = excluded.body;
	`, s.Dialect.Placeholders(1, 4))
	if _, err := s.DB.ExecContext(ctx, q, plan.ID, plan.CreatedAt.UnixNano(), plan.Status, string(body)); err != nil {
		return fmt.Errorf("save plan id=%s: %w", plan.ID, err)
	}
	return nil
}

func (s *SQLPlanStore) GetPlan(ctx context.Context, id string) (_ *domain.PlanBundle, err error) {
	defer obs.Time(ctx, "plans.GetPlan")(&err)

	q := fmt.Sprintf(`SELECT body FROM plans WHERE id = %s;`, s.Dialect.Placeholder(1))
	var body string
	if err := s.DB.QueryRowContext(ctx, q, id).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan id=%s: %w", id, err)
	}

	var plan domain.PlanBundle
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return nil, fmt.Errorf("get plan id=%s: decode: %w", id, err)
	}
	return &plan, nil
}

func (s *SQLPlanStore) ListPlans(ctx context.Context, limit int) (_ []*domain.PlanBundle, err error) {
	defer obs.Time(ctx, "plans.ListPlans")(&err)

	if limit <= 0 {
		limit = 20
	}
	q := fmt.Sprintf(`
	SELECT body FROM plans
	ORDER BY created_unix DESC, id
	LIMIT %s;
	`, s.Dialect.Placeholder(1))

	rows, err := s.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.PlanBundle, 0, limit)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("list plans: scan row: %w", err)
		}
		var plan domain.PlanBundle
		if err := json.Unmarshal([]byte(body), &plan); err != nil {
			return nil, fmt.Errorf("list plans: decode: %w", err)
		}
		out = append(out, &plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: row iteration: %w", err)
	}
	return out, nil
}
