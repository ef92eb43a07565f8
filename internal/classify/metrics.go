package classify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClassificationsTotal tracks classification outcomes by category.
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_mirror_classify_classifications_total",
			Help: "Total number of signal classifications by category",
		},
		[]string{"category"},
	)

	// IneligibleMarketsTotal tracks signals rejected by the market filter.
	IneligibleMarketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_classify_ineligible_markets_total",
		Help: "Total number of signals rejected before classification by the market filter",
	})
)
