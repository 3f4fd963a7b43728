package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OpDuration times adapter and service operations wrapped by obs.Time.
	OpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "operation_duration_seconds", Help: "Operation duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"op", "outcome"},
	)

	SolveOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vrp_solves_total", Help: "Solver runs by outcome status."},
		[]string{"status", "objective"},
	)
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "vrp_solve_duration_seconds", Help: "Wall-clock time per solve.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60}},
	)
	SolveIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "vrp_search_iterations", Help: "Local search iterations per solve.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
	)
	SolveStops = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "vrp_solve_stops", Help: "Stops per solve, depot included.", Buckets: prometheus.ExponentialBuckets(2, 2, 10)},
	)

	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_requests_total", Help: "Outbound routing/geocoding requests by provider and result."},
		[]string{"provider", "result"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cache_lookups_total", Help: "Cache lookups by cache and result."},
		[]string{"cache", "result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector on Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			OpDuration,
			SolveOutcomes,
			SolveDuration,
			SolveIterations,
			SolveStops,
			ProviderRequests,
			CacheLookups,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
