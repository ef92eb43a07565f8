package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CurrentExposureGauge tracks total USD committed since the last reset.
	CurrentExposureGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_mirror_risk_current_exposure_usd",
		Help: "Total USD exposure committed since the last daily reset",
	})

	// DailyResetsTotal tracks daily state resets.
	DailyResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_risk_daily_resets_total",
		Help: "Total number of daily risk state resets",
	})

	// FlipsDetectedTotal tracks side flips inside the flip window.
	FlipsDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_risk_flips_detected_total",
		Help: "Total number of side flips detected within the flip window",
	})

	// GuardrailBreachesTotal tracks daily loss guardrail breaches.
	GuardrailBreachesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_risk_guardrail_breaches_total",
		Help: "Total number of daily loss guardrail breaches observed",
	})

	// MarketCapRejectionsTotal tracks per-market cap rejections.
	MarketCapRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_risk_market_cap_rejections_total",
		Help: "Total number of trades rejected by the per-market exposure cap",
	})

	// PersistFailuresTotal tracks state persistence failures.
	PersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_risk_persist_failures_total",
		Help: "Total number of risk state persistence failures",
	})
)
