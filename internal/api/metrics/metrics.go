// Package metrics defines all custom Prometheus metrics for the AgriConnect
// gateway. It is the single source of truth for metric names, labels, and
// help strings; promauto registers everything with the default registry at
// package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agriconnect"

// ── Statement metrics ─────────────────────────────────────────────────────────

// StatementsTotal counts statements processed by the gateway.
// Labels:
//   - op: "query", "run", "execute" or "script"
//   - outcome: "ok" or "error"
var StatementsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "statements_total",
		Help:      "Total number of statements processed, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// StatementDuration measures how long one statement takes end-to-end.
var StatementDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "statement_duration_seconds",
		Help:      "Duration of statement execution against the active backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// Revision tracks the store's mutation counter, the coarse invalidation
// signal every live query watches.
var Revision = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "datastore_revision",
		Help:      "Current value of the datastore revision counter.",
	},
)

// ── Idempotency metrics ───────────────────────────────────────────────────────

// DedupTotal counts idempotency decisions on /api/run.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new key, applied)
var DedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "run_dedup_total",
		Help:      "Total number of idempotency checks on mutations, by result.",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsPublishedTotal counts stored notifications by level.
var NotificationsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Total number of notifications stored, by level.",
	},
	[]string{"level"},
)

// NotificationsErrorsTotal counts notifications that failed to publish.
// Label:
//   - reason: short failure description (e.g. "invalid_level", "insert_failed")
var NotificationsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_errors_total",
		Help:      "Total number of notifications that failed to publish.",
	},
	[]string{"reason"},
)
