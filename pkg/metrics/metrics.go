// Package metrics provides Prometheus metrics for astropipe. It exposes
// counters and histograms for the pipeline's observable operations:
// catalog fetches, retries, derived-quantity computations, and row
// filtering.
//
// # Basic Usage
//
//	timer := metrics.NewTimer("fetch")
//	tbl, err := fetcher.Fetch(ctx, query)
//	metrics.FetchLatency.WithLabelValues("exoarchive").Observe(timer.Stop().Seconds())
//	metrics.RowsFetched.WithLabelValues("exoarchive", "success").Add(float64(tbl.RowCount()))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsFetched tracks the total rows materialized from catalog sources.
	// Labels: source (catalog source name), status (success/failure)
	RowsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astropipe_rows_fetched_total",
			Help: "Total number of catalog rows fetched",
		},
		[]string{"source", "status"},
	)

	// FetchLatency tracks the distribution of fetch round-trip times.
	// Labels: source
	FetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "astropipe_fetch_latency_seconds",
			Help:    "Catalog fetch latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		},
		[]string{"source"},
	)

	// FetchRetries tracks retry attempts caused by transient errors.
	// Labels: source
	FetchRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astropipe_fetch_retries_total",
			Help: "Total number of fetch retries",
		},
		[]string{"source"},
	)

	// FormulasComputed tracks derived-quantity computations.
	// Labels: formula, status (success/failure)
	FormulasComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astropipe_formulas_computed_total",
			Help: "Total number of derived-quantity computations",
		},
		[]string{"formula", "status"},
	)

	// DeriveLatency tracks derived-quantity computation time.
	// Labels: formula
	DeriveLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "astropipe_derive_latency_seconds",
			Help:    "Derived-quantity computation latency in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-5, 10, 7), // 10us .. 10s
		},
		[]string{"formula"},
	)

	// RowsFiltered tracks rows removed by masks.
	// Labels: column
	RowsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astropipe_rows_filtered_total",
			Help: "Total number of rows removed by filters",
		},
		[]string{"column"},
	)
)

// Timer provides a simple timing mechanism for measuring operation
// durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop returns the elapsed duration since creation. The timer can be
// stopped multiple times, each returning the total elapsed time.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
