package journal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// DecisionsRecordedTotal counts journaled decisions by action.
	DecisionsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_mirror_journal_decisions_recorded_total",
		Help: "Total decisions recorded by action",
	}, []string{"action"})

	// WriteErrorsTotal counts failed journal writes.
	WriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_journal_write_errors_total",
		Help: "Total failed journal writes",
	})
)
