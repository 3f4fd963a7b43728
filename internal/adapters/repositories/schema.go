package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"vrp-route-service/internal/platform/db"
)

// Initialize the database schema for either dialect.
func InitSchema(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	floatType := "REAL"
	if dialect == db.Postgres {
		floatType = "DOUBLE PRECISION"
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		destination TEXT NOT NULL,
		created_unix BIGINT NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS order_items (
		order_id TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		quantity BIGINT NOT NULL,
		fulfilled BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (order_id, product_id)
	);
	`,
		fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters %[1]s NOT NULL,
        duration_seconds %[1]s NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`, floatType),
		fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon %[1]s NOT NULL,
        lat %[1]s NOT NULL
    );
	`, floatType),
		`
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		created_unix BIGINT NOT NULL,
		status TEXT NOT NULL,
		body TEXT NOT NULL
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
    ON distance_cache(destination, origin);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_plans_created
    ON plans(created_unix);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type OrderItemSeed struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Fulfilled bool   `json:"fulfilled"`
	// Older exports spell the flag "fullfilled".
	LegacyFulfilled *bool `json:"fullfilled,omitempty"`
}

type OrderSeed struct {
	OrderID     string          `json:"order_id"`
	Destination string          `json:"destination"`
	Items       []OrderItemSeed `json:"items"`
}

// Populate the database with order data from a JSON file.
func SeedFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed orders: read %q: %w", jsonPath, err)
	}

	var data []OrderSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed orders: parse json: %w", err)
	}

	for i := range data {
		item := &data[i]
		item.OrderID = strings.TrimSpace(item.OrderID)
		if item.OrderID == "" {
			return fmt.Errorf("seed orders: empty order_id at index %d", i+1)
		}
		item.Destination = strings.TrimSpace(item.Destination)
		if item.Destination == "" {
			return fmt.Errorf("seed orders: order %q: destination cannot be empty", item.OrderID)
		}
		for j, it := range item.Items {
			if it.Quantity < 0 {
				return fmt.Errorf("seed orders: order %q item %d: negative quantity", item.OrderID, j+1)
			}
			if it.LegacyFulfilled != nil {
				item.Items[j].Fulfilled = *it.LegacyFulfilled
			}
		}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed orders: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	orderStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO orders (order_id, destination, created_unix)
	VALUES (%s)
	ON CONFLICT (order_id) DO UPDATE SET destination = excluded.destination;
	`, dialect.Placeholders(1, 3)))
	if err != nil {
		return fmt.Errorf("seed orders: prepare order insert: %w", err)
	}
	defer orderStmt.Close()

	itemStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO order_items (order_id, product_id, quantity, fulfilled)
	VALUES (%s)
	ON CONFLICT (order_id, product_id) DO UPDATE
	SET quantity = excluded.quantity,
		fulfilled = excluded.fulfilled;
	`, dialect.Placeholders(1, 4)))
	if err != nil {
		return fmt.Errorf("seed orders: prepare item insert: %w", err)
	}
	defer itemStmt.Close()

	// Seeded orders keep file order through strictly increasing timestamps.
	base := time.Now().UnixNano()
	for i, o := range data {
		if _, err := orderStmt.ExecContext(ctx, o.OrderID, o.Destination, base+int64(i)); err != nil {
			return fmt.Errorf("seed orders: insert order_id=%s: %w", o.OrderID, err)
		}
		for _, it := range o.Items {
			if _, err := itemStmt.ExecContext(ctx, o.OrderID, it.ProductID, it.Quantity, it.Fulfilled); err != nil {
				return fmt.Errorf("seed orders: insert item %s/%s: %w", o.OrderID, it.ProductID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed orders: commit tx: %w", err)
	}

	return nil
}
