package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks the push source's connection state.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_mirror_feed_active_connections",
		Help: "Number of active feed websocket connections",
	})

	// ReconnectAttemptsTotal tracks push reconnection attempts.
	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_feed_reconnect_attempts_total",
		Help: "Total number of push feed reconnection attempts",
	})

	// ReconnectFailuresTotal tracks push reconnection failures.
	ReconnectFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_feed_reconnect_failures_total",
		Help: "Total number of push feed reconnection failures",
	})

	// MessagesReceivedTotal tracks raw messages received by source.
	MessagesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_mirror_feed_messages_received_total",
			Help: "Total number of raw feed messages received",
		},
		[]string{"source"},
	)

	// SignalsEmittedTotal tracks trade signals emitted by source.
	SignalsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_mirror_feed_signals_emitted_total",
			Help: "Total number of trade signals emitted by feed sources",
		},
		[]string{"source"},
	)

	// SignalsForwardedTotal tracks first-seen signals forwarded downstream.
	SignalsForwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_mirror_feed_signals_forwarded_total",
			Help: "Total number of deduplicated signals forwarded to the decision loop",
		},
		[]string{"source"},
	)

	// DuplicatesDroppedTotal tracks signals dropped by the shared dedup window.
	DuplicatesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_mirror_feed_duplicates_dropped_total",
			Help: "Total number of duplicate signals dropped",
		},
		[]string{"source"},
	)

	// DedupWindowSize tracks the shared dedup window occupancy.
	DedupWindowSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_mirror_feed_dedup_window_size",
		Help: "Number of keys tracked by the shared dedup window",
	})

	// PollRequestsTotal tracks pull source requests by outcome.
	PollRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_mirror_feed_poll_requests_total",
			Help: "Total number of pull feed poll requests",
		},
		[]string{"status"},
	)
)
