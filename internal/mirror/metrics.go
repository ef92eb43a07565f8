package mirror

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// SignalsProcessedTotal counts decisions by action.
	SignalsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_mirror_loop_signals_processed_total",
		Help: "Total signals processed by decision action",
	}, []string{"action"})

	// TradesMirroredTotal counts successfully mirrored trades.
	TradesMirroredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_loop_trades_mirrored_total",
		Help: "Total trades mirrored through the gateway",
	})

	// DecisionDuration tracks end-to-end per-signal decision latency.
	DecisionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_mirror_loop_decision_duration_seconds",
		Help:    "Time taken to fully process one signal (seconds)",
		Buckets: prometheus.DefBuckets,
	})
)
