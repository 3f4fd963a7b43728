package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"vrp-route-service/internal/platform/db"
	"vrp-route-service/internal/platform/obs"
	"vrp-route-service/internal/ports"
)

// SQLDistanceCache is a SQL-backed cache for origin->destination distance
// results, keyed by location keys.
type SQLDistanceCache struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLDistanceCache(conn *sql.DB, dialect db.Dialect) *SQLDistanceCache {
	return &SQLDistanceCache{DB: conn, Dialect: dialect}
}

// Fetch cached distances for one origin and multiple destinations.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := dedupe(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	var (
		q    string
		args []any
	)
	if s.Dialect == db.Postgres {
		q = `
	SELECT destination, distance_meters, duration_seconds
    FROM distance_cache
    WHERE origin = $1
        AND destination = ANY($2::text[]);
	`
		args = []any{origin, uniq}
	} else {
		// SQLite cannot bind a slice; only the placeholder list is
		// interpolated and every value stays parameterized.
		q = fmt.Sprintf(`
	SELECT destination, distance_meters, duration_seconds
    FROM distance_cache
    WHERE origin = ?
        AND destination IN (%s);
	`, s.Dialect.Placeholders(2, len(uniq)))
		args = make([]any, 0, 1+len(uniq))
		args = append(args, origin)
		for _, d := range uniq {
			args = append(args, d)
		}
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.DistanceResult, len(uniq))
	for rows.Next() {
		var dest string
		var meters, seconds float64
		if err := rows.Scan(&dest, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[dest] = ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached distance results for a single origin.
func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO distance_cache (
        origin,
        destination,
        distance_meters,
        duration_seconds
    )
    VALUES (%s)
    ON CONFLICT (origin, destination)
    DO UPDATE SET
        distance_meters = excluded.distance_meters,
        duration_seconds = excluded.duration_seconds;
	`, s.Dialect.Placeholders(1, 4)))
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceMeters, r.DurationSeconds); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
