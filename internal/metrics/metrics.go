// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "diplomsklad"

var (
	// OperationsTotal counts committed stock operations by type.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Committed stock operations by type.",
	}, []string{"type"})

	// OperationsRejected counts operations refused by validation or stock checks.
	OperationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_rejected_total",
		Help:      "Stock operations rejected, by type and error kind.",
	}, []string{"type", "reason"})

	// ScansTotal counts barcode scans by result (exists | created).
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Barcode scans by result.",
	}, []string{"result"})

	// BarcodeCache counts cache lookups by result (hit | miss | error) and
	// writes skipped because the key already held a newer version (stale_write).
	BarcodeCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "barcode_cache_lookups_total",
		Help:      "Barcode cache lookups by result.",
	}, []string{"result"})

	// SyncAttempts counts delivery attempts to the accounting endpoint by status.
	SyncAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_attempts_total",
		Help:      "Sync delivery attempts by status.",
	}, []string{"status"})

	// SyncDeadLettered counts jobs moved to the dead-letter queue.
	SyncDeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_dead_lettered_total",
		Help:      "Sync jobs that exhausted their retries.",
	})

	// BreakerState is 0 closed, 1 open, 2 half-open.
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "accounting_breaker_state",
		Help:      "Accounting circuit breaker state (0 closed, 1 open, 2 half-open).",
	})

	// HTTPRequests counts served requests by route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
