package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportsTotal counts accepted submissions by status and match outcome.
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lostwatch",
		Subsystem: "registry",
		Name:      "reports_total",
		Help:      "Reports persisted, labeled by submitted status and whether they matched a counterpart.",
	}, []string{"status", "matched"})

	// ReconcileFailuresTotal counts submissions rolled back by the store.
	ReconcileFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lostwatch",
		Subsystem: "registry",
		Name:      "reconcile_failures_total",
		Help:      "Submissions whose match-and-reconcile transaction failed and rolled back.",
	})

	// NotifyFailuresTotal counts notices the configured notifier could not deliver.
	NotifyFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lostwatch",
		Subsystem: "notify",
		Name:      "failures_total",
		Help:      "Match notices that failed delivery (best-effort, never rolled back).",
	})

	// RequestDurationSeconds is per-route handler latency.
	RequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lostwatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP handler latency by route and status code.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route", "code"})
)

// Register registers all collectors on the default registry. Safe to call
// more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsTotal,
			ReconcileFailuresTotal,
			NotifyFailuresTotal,
			RequestDurationSeconds,
		)
	})
}
