package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"vrp-route-service/internal/adapters/cache"
	"vrp-route-service/internal/adapters/distance"
	"vrp-route-service/internal/adapters/repositories"
	"vrp-route-service/internal/api"
	"vrp-route-service/internal/config"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/db"
	"vrp-route-service/internal/platform/logging"
	"vrp-route-service/internal/platform/metrics"
	"vrp-route-service/internal/ports"
	"vrp-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, ORS/OSRM/Nominatim) behind ports
// and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	metrics.RegisterDefault()
	log := logging.Component("server")

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config) error {
	log := logging.Component("server")

	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	conn, err := db.Open(dialect, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, conn, dialect, cfg.SeedPath); err != nil {
		return err
	}

	geocoder, err := newGeocoder(cfg, conn, dialect)
	if err != nil {
		return err
	}
	matrix, err := newMatrixProvider(cfg, conn, dialect)
	if err != nil {
		return err
	}
	store, closeStore, err := newPlanStore(ctx, cfg, conn, dialect)
	if err != nil {
		return err
	}
	defer closeStore()

	defaults := services.SolverDefaults{
		Objective:      cfg.Solver.Objective,
		TimeLimit:      cfg.Solver.TimeLimit,
		HorizonSeconds: cfg.Solver.HorizonSeconds,
		TimeDimension:  cfg.Solver.TimeDimension,
		FirstSolution:  cfg.Solver.FirstSolution,
		Workers:        cfg.Solver.Workers,
	}
	orders := repositories.NewSQLOrderRepository(conn)
	planner := &services.Planner{
		Orders:   orders,
		Geocoder: geocoder,
		Matrix:   matrix,
		Store:    store,
		Depot:    cfg.DepotAddress,
		Defaults: defaults,
	}

	// Timeouts are tuned for cold-cache route planning (external API latency)
	// plus the solver's time limit.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(orders, planner, defaults),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120*time.Second + cfg.Solver.TimeLimit,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db", dialect.String()).
			Str("matrix", cfg.Routing.MatrixProvider).
			Str("geocoder", cfg.Routing.Geocoder).
			Str("plan_store", cfg.PlanStore).
			Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}
	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log := logging.Component("server")
		log.Warn().Str("path", seedPath).Msg("seed file not found, skipping")
		return nil
	}
	if err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

func newGeocoder(cfg config.Config, conn *sql.DB, dialect db.Dialect) (ports.Geocoder, error) {
	r := cfg.Routing

	var next ports.Geocoder
	switch strings.ToLower(r.Geocoder) {
	case "ors":
		g, err := distance.NewORSGeocoder(distance.ORSOptions{
			APIKey:         r.ORSAPIKey,
			BaseURL:        r.ORSBaseURL,
			RequestsPerSec: r.RequestsPerSec,
		})
		if err != nil {
			return nil, fmt.Errorf("geocoder: %w", err)
		}
		next = g
	case "nominatim":
		g, err := distance.NewNominatimGeocoder(distance.NominatimOptions{
			BaseURL:        r.NominatimBaseURL,
			UserAgent:      r.UserAgent,
			RequestsPerSec: r.RequestsPerSec,
		})
		if err != nil {
			return nil, fmt.Errorf("geocoder: %w", err)
		}
		next = g
	case "mock":
		return distance.NewMockGeocoder(domain.Coordinates{Lon: -112.07, Lat: 33.45}), nil
	default:
		return nil, fmt.Errorf("geocoder: unknown provider %q", r.Geocoder)
	}

	// Persistent geocode cache with an in-memory front.
	front, err := cache.NewLRUGeocodeCache(r.CacheSize, cache.NewSQLGeocodeCache(conn, dialect))
	if err != nil {
		return nil, fmt.Errorf("geocoder: %w", err)
	}
	return distance.NewCachedGeocoder(next, front), nil
}

func newMatrixProvider(cfg config.Config, conn *sql.DB, dialect db.Dialect) (ports.MatrixProvider, error) {
	r := cfg.Routing

	switch strings.ToLower(r.MatrixProvider) {
	case "ors":
		front, err := cache.NewLRUDistanceCache(r.CacheSize, cache.NewSQLDistanceCache(conn, dialect))
		if err != nil {
			return nil, fmt.Errorf("matrix provider: %w", err)
		}
		p, err := distance.NewORSMatrixProvider(distance.ORSOptions{
			APIKey:         r.ORSAPIKey,
			BaseURL:        r.ORSBaseURL,
			RequestsPerSec: r.RequestsPerSec,
			RowConcurrency: r.RowConcurrency,
		}, front)
		if err != nil {
			return nil, fmt.Errorf("matrix provider: %w", err)
		}
		return p, nil
	case "osrm":
		return distance.NewOSRMMatrixProvider(distance.OSRMOptions{
			BaseURL:        r.OSRMBaseURL,
			RequestsPerSec: r.RequestsPerSec,
		}), nil
	case "mock":
		return distance.NewMockMatrixProvider(), nil
	default:
		return nil, fmt.Errorf("matrix provider: unknown provider %q", r.MatrixProvider)
	}
}

func newPlanStore(ctx context.Context, cfg config.Config, conn *sql.DB, dialect db.Dialect) (ports.PlanStore, func(), error) {
	switch strings.ToLower(cfg.PlanStore) {
	case "", "sql":
		return repositories.NewSQLPlanStore(conn, dialect), func() {}, nil
	case "redis":
		s, err := repositories.NewRedisPlanStore(cfg.Redis.URL, cfg.Redis.Prefix, cfg.Redis.TTL)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("plan store: redis ping: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("plan store: unknown backend %q", cfg.PlanStore)
	}
}
