package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/obs"
)

// SQL-backed implementation of the OrderRepository port.
type SQLOrderRepository struct{ DB *sql.DB }

func NewSQLOrderRepository(conn *sql.DB) *SQLOrderRepository {
	return &SQLOrderRepository{DB: conn}
}

// Return orders with at least one unfulfilled item, oldest first.
func (s *SQLOrderRepository) ListPendingOrders(ctx context.Context) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "orders.ListPendingOrders")(&err)

	if s.DB == nil {
		return nil, errors.New("sql order repository: DB is nil")
	}

	query := `
	SELECT
		o.order_id,
		o.destination,
		o.created_unix,
		i.product_id,
		i.quantity,
		i.fulfilled
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.order_id
	ORDER BY o.created_unix, o.order_id, i.product_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, 64)
	var cur *domain.Order
	for rows.Next() {
		var (
			id, dest  string
			created   int64
			productID sql.NullString
			quantity  sql.NullInt64
			fulfilled sql.NullBool
		)
		if err := rows.Scan(&id, &dest, &created, &productID, &quantity, &fulfilled); err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}

		if cur == nil || cur.OrderID != id {
			cur = &domain.Order{OrderID: id, Destination: dest, CreatedAt: time.Unix(0, created).UTC()}
			orders = append(orders, cur)
		}
		if productID.Valid {
			cur.Items = append(cur.Items, domain.OrderItem{
				ProductID: productID.String,
				Quantity:  quantity.Int64,
				Fulfilled: fulfilled.Bool,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return domain.PendingOrders(orders), nil
}
