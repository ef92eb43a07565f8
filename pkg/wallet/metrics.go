package wallet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// USDCBalance tracks the funder wallet's USDC balance.
	USDCBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_mirror_wallet_usdc_balance",
		Help: "Current USDC balance in the funder wallet (USD)",
	})

	// PortfolioValue tracks balance plus mark-to-market positions.
	PortfolioValue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_mirror_wallet_portfolio_value",
		Help: "Total portfolio value: USDC + positions (USD)",
	})

	// UpdateErrorsTotal tracks failed wallet data fetches.
	UpdateErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_wallet_update_errors_total",
		Help: "Total number of failed wallet update attempts",
	})

	// FetchDuration tracks wallet data fetch latency.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_mirror_wallet_fetch_duration_seconds",
		Help:    "Time taken to fetch wallet data (seconds)",
		Buckets: prometheus.DefBuckets,
	})

	// LastUpdateTimestamp tracks the last successful tracker update.
	LastUpdateTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_mirror_wallet_last_update_timestamp",
		Help: "Unix timestamp of last successful wallet update",
	})
)
