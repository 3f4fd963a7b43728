package api

import (
	"net/http"
	"vrp-route-service/internal/api/handlers"
	"vrp-route-service/internal/platform/metrics"
	"vrp-route-service/internal/ports"
	"vrp-route-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.OrderRepository, planner *services.Planner, defaults services.SolverDefaults) http.Handler {
	mux := http.NewServeMux()

	orderHandler := &handlers.OrderHandler{Repo: repo}
	planHandler := &handlers.PlanHandler{Planner: planner}
	solveHandler := &handlers.SolveHandler{Defaults: defaults}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /orders", orderHandler.List)
	mux.HandleFunc("POST /plans", planHandler.Create)
	mux.HandleFunc("GET /plans", planHandler.List)
	mux.HandleFunc("GET /plans/{id}", planHandler.Get)
	mux.HandleFunc("POST /solve", solveHandler.Solve)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
