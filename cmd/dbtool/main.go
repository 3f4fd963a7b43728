package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"vrp-route-service/internal/adapters/repositories"
	"vrp-route-service/internal/config"
	"vrp-route-service/internal/platform/db"
	"vrp-route-service/internal/platform/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	logging.Init(logging.Config{Level: config.Get("LOG_LEVEL", "info"), Format: "console"})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var driver, dsn string

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Create the schema and load seed orders",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&driver, "driver", "", "database driver: sqlite or postgres (default from DB_DRIVER / DATABASE_URL)")
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "database DSN or sqlite path (default from DATABASE_URL / DB_PATH)")

	open := func() (*sql.DB, db.Dialect, error) {
		d := driver
		conn := dsn
		if url := config.Get("DATABASE_URL", ""); url != "" {
			if d == "" {
				d = config.Get("DB_DRIVER", "postgres")
			}
			if conn == "" {
				conn = url
			}
		}
		if d == "" {
			d = config.Get("DB_DRIVER", "sqlite")
		}
		if conn == "" {
			conn = config.Get("DB_PATH", "data/app.db")
		}

		dialect, err := db.ParseDialect(d)
		if err != nil {
			return nil, 0, err
		}
		c, err := db.Open(dialect, conn)
		if err != nil {
			return nil, 0, err
		}
		return c, dialect, nil
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, dialect, err := open()
			if err != nil {
				return err
			}
			defer conn.Close()
			return migrateDB(cmd.Context(), conn, dialect)
		},
	}

	var seedPath string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema, then upsert orders from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, dialect, err := open()
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrateDB(cmd.Context(), conn, dialect); err != nil {
				return err
			}
			return seedDB(cmd.Context(), conn, dialect, seedPath)
		},
	}
	seed.Flags().StringVar(&seedPath, "file", config.Get("SEED_PATH", "data/seeds/orders.json"), "orders JSON file")

	root.AddCommand(migrate, seed)
	return root
}

func migrateDB(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	log := logging.Component("dbtool")
	log.Info().Str("dialect", dialect.String()).Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info().Msg("schema ready")
	return nil
}

func seedDB(ctx context.Context, conn *sql.DB, dialect db.Dialect, path string) error {
	log := logging.Component("dbtool")
	log.Info().Str("path", path).Msg("seeding database")
	if err := repositories.SeedFromJSON(ctx, conn, dialect, path); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info().Msg("seeding complete")
	return nil
}
