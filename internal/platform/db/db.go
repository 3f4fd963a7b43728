package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour spoken by the store adapters.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite"
	}
	return "pgx"
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// Placeholders returns count bind parameters starting at from, comma-joined.
func (d Dialect) Placeholders(from, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = d.Placeholder(from + i)
	}
	return strings.Join(ph, ",")
}

// ParseDialect maps a configured driver name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unknown database driver %q", s)
	}
}

// Open connects to a postgres (pgx) or sqlite database and verifies it.
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("openDB: open %s database: %w", dialect, err)
	}

	if dialect == SQLite {
		// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openDB: verify %s connection: %w", dialect, err)
	}

	return db, nil
}
