package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// OrdersSubmittedTotal counts submitted orders by mode and outcome.
	OrdersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_mirror_execution_orders_submitted_total",
		Help: "Total orders submitted by gateway mode and status",
	}, []string{"mode", "status"})

	// SubmitDuration tracks live order round-trip latency.
	SubmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_mirror_execution_submit_duration_seconds",
		Help:    "Time taken to sign and submit a live order (seconds)",
		Buckets: prometheus.DefBuckets,
	})

	// PaperNotionalTotal accumulates simulated fill value.
	PaperNotionalTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_execution_paper_notional_usd_total",
		Help: "Cumulative USD notional filled in paper mode",
	})
)
