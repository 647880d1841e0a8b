// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/umar-saleem/points-ledger/internal/keylock"
	"github.com/umar-saleem/points-ledger/internal/models"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "points_ledger",
			Subsystem: "balance",
			Name:      "operations_total",
			Help:      "Total number of balance operations by kind and outcome.",
		},
		[]string{"kind", "status"},
	)

	applyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "points_ledger",
			Subsystem: "balance",
			Name:      "apply_duration_seconds",
			Help:      "Duration of committed operations, queue wait included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~2s
		},
		[]string{"kind"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "points_ledger",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	Registry.MustRegister(
		operationsTotal,
		applyDuration,
		httpRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// OperationCommitted records a committed operation and its duration.
func OperationCommitted(kind models.OperationKind, d time.Duration) {
	operationsTotal.WithLabelValues(string(kind), "committed").Inc()
	applyDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// OperationRejected records an operation that failed validation or
// was refused by the domain rules.
func OperationRejected(kind models.OperationKind) {
	operationsTotal.WithLabelValues(string(kind), "rejected").Inc()
}

// HTTPRequest records one handled HTTP request.
func HTTPRequest(method, path, status string) {
	httpRequests.WithLabelValues(method, path, status).Inc()
}

// ObserveLockRegistry registers a gauge tracking how many keys hold
// queued or running operations.
func ObserveLockRegistry(locks *keylock.KeyedLock) {
	Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "points_ledger",
			Subsystem: "balance",
			Name:      "lock_registry_size",
			Help:      "Number of account keys with in-flight or queued operations.",
		},
		func() float64 { return float64(locks.Size()) },
	))
}
