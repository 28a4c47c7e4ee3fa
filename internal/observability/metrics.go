// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	HoneypotOverrides  prometheus.Counter

	// Provider metrics
	ProviderFetchesTotal *prometheus.CounterVec
	ProviderFetchLatency *prometheus.HistogramVec

	// AI interpreter metrics
	AICallsTotal  *prometheus.CounterVec
	AICallLatency prometheus.Histogram
	AISkipped     prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Momentum scheduler metrics
	RescoreRunsTotal  *prometheus.CounterVec
	WatchlistDue      prometheus.Gauge
	TokensMarkedDead  prometheus.Counter
	MomentumPromotion prometheus.Counter

	// Realtime feed metrics
	WSClientsConnected prometheus.Gauge
	WSEventsBroadcast  prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_sentinel"
	}

	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "evaluations_total",
			Help:      "Total number of token evaluations by tier and status",
		}, []string{"tier", "status"}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "evaluation_duration_seconds",
			Help:      "End-to-end evaluation latency",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 4.5, 6},
		}),
		HoneypotOverrides: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "honeypot_overrides_total",
			Help:      "Evaluations where a high-confidence honeypot forced the verdict",
		}),

		ProviderFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "provider_fetches_total",
			Help:      "Total provider fetches by provider and status",
		}, []string{"provider", "status"}),
		ProviderFetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "provider_fetch_seconds",
			Help:      "Provider fetch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),

		AICallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advisor",
			Name:      "calls_total",
			Help:      "Total AI interpreter calls by status",
		}, []string{"status"}),
		AICallLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "advisor",
			Name:      "call_seconds",
			Help:      "AI interpreter call latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 10},
		}),
		AISkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advisor",
			Name:      "skipped_total",
			Help:      "AI enrichment skipped to preserve the evaluation deadline",
		}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Verdict cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Verdict cache misses (including stale entries)",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Database query errors",
		}, []string{"database", "operation"}),

		RescoreRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "momentum",
			Name:      "rescore_runs_total",
			Help:      "Momentum rescore cycles by status",
		}, []string{"status"}),
		WatchlistDue: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "momentum",
			Name:      "watchlist_due",
			Help:      "Tokens due for rescore at the last cycle",
		}),
		TokensMarkedDead: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "momentum",
			Name:      "tokens_marked_dead_total",
			Help:      "Tokens marked dead after sustained zero volume",
		}),
		MomentumPromotion: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "momentum",
			Name:      "promotions_total",
			Help:      "Tokens promoted to the fast rescore tier on momentum",
		}),

		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "clients_connected",
			Help:      "Currently connected WebSocket clients",
		}),
		WSEventsBroadcast: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_broadcast_total",
			Help:      "Verdict events broadcast to WebSocket clients",
		}),
	}
}

// DefaultMetrics is the package-level metrics instance.
var DefaultMetrics = NewMetrics("")

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEvaluation records a completed evaluation.
func RecordEvaluation(tier, status string, durationSeconds float64) {
	DefaultMetrics.EvaluationsTotal.WithLabelValues(tier, status).Inc()
	DefaultMetrics.EvaluationDuration.Observe(durationSeconds)
}

// RecordHoneypotOverride records a forced honeypot verdict.
func RecordHoneypotOverride() {
	DefaultMetrics.HoneypotOverrides.Inc()
}

// RecordProviderFetch records one provider fetch outcome.
func RecordProviderFetch(provider string, ok bool, seconds float64) {
	status := "success"
	if !ok {
		status = "error"
	}
	DefaultMetrics.ProviderFetchesTotal.WithLabelValues(provider, status).Inc()
	DefaultMetrics.ProviderFetchLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordAICall records an AI interpreter call outcome.
func RecordAICall(status string, seconds float64) {
	DefaultMetrics.AICallsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.AICallLatency.Observe(seconds)
}

// RecordAISkipped records AI enrichment being skipped for deadline reasons.
func RecordAISkipped() {
	DefaultMetrics.AISkipped.Inc()
}

// RecordCacheHit records a fresh cache hit.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordCacheMiss records a cache miss or stale entry.
func RecordCacheMiss() {
	DefaultMetrics.CacheMisses.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordRescoreRun records one momentum scheduler cycle.
func RecordRescoreRun(status string, due int) {
	DefaultMetrics.RescoreRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.WatchlistDue.Set(float64(due))
}
