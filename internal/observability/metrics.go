package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation service.
type Metrics struct {
	AggregationsTotal   *prometheus.CounterVec // labels: outcome={success,error}
	AggregationDuration prometheus.Histogram
	ReportsReturned     prometheus.Histogram

	// Per-source fetch metrics.
	FetchesTotal  *prometheus.CounterVec   // labels: source={spc,hurdat,store,nhc_feed}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: source
	BulletinCache *prometheus.CounterVec   // labels: result={hit,miss}

	// Live advisory updater metrics.
	AdvisoryUpdates *prometheus.CounterVec // labels: outcome={success,skipped,error}

	// Operational hurricane store metrics.
	DBQueryDuration *prometheus.HistogramVec // labels: operation

	// HTTP surface metrics.
	HTTPRequestsTotal   *prometheus.CounterVec   // labels: method, path, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, path
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AggregationsTotal,
		m.AggregationDuration,
		m.ReportsReturned,
		m.FetchesTotal,
		m.FetchDuration,
		m.BulletinCache,
		m.AdvisoryUpdates,
		m.DBQueryDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AggregationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_reports",
			Name:      "aggregations_total",
			Help:      "Aggregation calls by outcome.",
		}, []string{"outcome"}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_reports",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of one complete report aggregation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ReportsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_reports",
			Name:      "reports_returned",
			Help:      "Number of reports returned per aggregation.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_reports",
			Name:      "fetches_total",
			Help:      "Upstream fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_reports",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration by source.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		BulletinCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_reports",
			Name:      "bulletin_cache_total",
			Help:      "SPC bulletin cache lookups by result.",
		}, []string{"result"}),
		AdvisoryUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_reports",
			Name:      "advisory_updates_total",
			Help:      "Live advisory refresh attempts by outcome.",
		}, []string{"outcome"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_reports",
			Name:      "db_query_duration_seconds",
			Help:      "Hurricane store query duration by operation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_reports",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_reports",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "path"}),
	}
}
