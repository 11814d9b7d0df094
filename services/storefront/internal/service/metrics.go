package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
)

var (
	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of cart mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	upstreamFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_upstream_failures_total",
			Help: "Total number of failed marketplace API calls by classified kind",
		},
		[]string{"operation", "kind"},
	)

	snapshotErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_snapshot_errors_total",
			Help: "Total number of snapshot load and save failures",
		},
		[]string{"key", "action"},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Total number of checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Number of sessions currently held in memory",
		},
	)
)
