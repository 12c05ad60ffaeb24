package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DiscoverRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_requests_total",
		Help: "Total number of /api/discover requests",
	})
	DiscoverDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "discovery_request_duration_ms",
		Help:    "Discovery request duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_tile_cache_hits_total",
		Help: "Total tile cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_tile_cache_misses_total",
		Help: "Total tile cache misses",
	})
	DegradedResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_degraded_results_total",
		Help: "Total responses served with partial provider data",
	})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_provider_requests_total",
		Help: "Total upstream provider fetches",
	}, []string{"provider"})
	ProviderFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_provider_fail_total",
		Help: "Total upstream provider failures (error or timeout)",
	}, []string{"provider"})
	ProviderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discovery_provider_duration_ms",
		Help:    "Upstream provider call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"provider"})
	ClassifierRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_classifier_runs_total",
		Help: "Total classifier invocations that reached inference",
	})
	VotesRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_votes_recorded_total",
		Help: "Total activity votes persisted",
	})
)

func init() {
	prometheus.MustRegister(
		DiscoverRequestsTotal,
		DiscoverDurationMs,
		CacheHitsTotal,
		CacheMissesTotal,
		DegradedResultsTotal,
		ProviderRequestsTotal,
		ProviderFailTotal,
		ProviderDurationMs,
		ClassifierRunsTotal,
		VotesRecordedTotal,
	)
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
