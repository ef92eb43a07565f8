package markets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarketFetchDuration tracks Gamma market fetch latency.
	MarketFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_mirror_markets_fetch_duration_seconds",
		Help:    "Duration of market context fetches from the Gamma API",
		Buckets: prometheus.DefBuckets,
	})

	// MarketFetchErrorsTotal tracks Gamma market fetch failures.
	MarketFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_markets_fetch_errors_total",
		Help: "Total number of market context fetch errors",
	})

	// MetadataFetchErrorsTotal tracks CLOB metadata fetch failures.
	MetadataFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_markets_metadata_fetch_errors_total",
		Help: "Total number of order metadata fetch errors",
	})

	// MetadataCacheHitsTotal tracks cache hits for order metadata.
	MetadataCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_markets_metadata_cache_hits_total",
		Help: "Total number of order metadata cache hits",
	})

	// MetadataCacheMissesTotal tracks cache misses for order metadata.
	MetadataCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_markets_metadata_cache_misses_total",
		Help: "Total number of order metadata cache misses",
	})
)
