package risk

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// SizingInput carries everything a sizing strategy may consult.
type SizingInput struct {
	Category       string
	MarketID       string
	Outcome        string
	TotalBalance   float64
	PortfolioValue float64
	NotionalUSD    float64
	Timestamp      time.Time
}

// SizingStrategy turns an admitted signal into a USD bet size. A zero
// return means the strategy declines the trade.
type SizingStrategy interface {
	Name() string
	Size(in SizingInput) float64
}

// DripStrategy sizes every bet as a fixed fraction of the current
// balance, regardless of category or how much the tracked trader
// committed. This is the primary strategy.
type DripStrategy struct {
	ratio float64
}

// NewDripStrategy creates a drip strategy with the given balance ratio.
func NewDripStrategy(ratio float64) *DripStrategy {
	return &DripStrategy{ratio: ratio}
}

// Name returns the strategy name.
func (d *DripStrategy) Name() string {
	return "drip"
}

// Size returns balance times the configured per-trade ratio.
func (d *DripStrategy) Size(in SizingInput) float64 {
	return in.TotalBalance * d.ratio
}

// ClusterConfig holds the legacy cluster strategy thresholds.
type ClusterConfig struct {
	PruneWindow     time.Duration
	MinBuckets      int
	MinPortfolioPct float64
}

type bufferedTrade struct {
	outcome     string
	notionalUSD float64
	addedAt     time.Time
}

// ClusterStrategy is the legacy alternate: it buffers the trader's
// fills per market and only sizes a bet once the trader has built a
// cluster, meaning enough distinct outcome buckets and enough of their
// portfolio committed inside the prune window. Certainty trades bypass
// clustering and draw on the certainty pool directly.
type ClusterStrategy struct {
	mu      sync.Mutex
	cfg     ClusterConfig
	manager *Manager
	logger  *zap.Logger
	buffers map[string][]bufferedTrade
}

// NewClusterStrategy creates the cluster strategy over the given manager.
func NewClusterStrategy(cfg ClusterConfig, manager *Manager, logger *zap.Logger) *ClusterStrategy {
	return &ClusterStrategy{
		cfg:     cfg,
		manager: manager,
		logger:  logger,
		buffers: make(map[string][]bufferedTrade),
	}
}

// Name returns the strategy name.
func (c *ClusterStrategy) Name() string {
	return "cluster"
}

// Size accumulates the fill and returns a pool-driven bet size once the
// cluster condition is met, zero otherwise.
func (c *ClusterStrategy) Size(in SizingInput) float64 {
	if in.Category == "CERTAINTY" {
		return c.manager.CertaintyBetSize(in.TotalBalance, 1)
	}

	triggered, bucketCount, totalExposure := c.accumulate(in)
	if !triggered {
		c.logger.Debug("cluster-not-triggered",
			zap.String("market", in.MarketID),
			zap.Int("buckets", bucketCount),
			zap.Float64("exposure", totalExposure))
		return 0
	}

	c.logger.Info("cluster-triggered",
		zap.String("market", in.MarketID),
		zap.Int("buckets", bucketCount),
		zap.Float64("exposure", totalExposure))

	return c.manager.NormalBetSize(in.TotalBalance, bucketCount)
}

// accumulate adds the fill to the market buffer, prunes entries older
// than the window, and evaluates the cluster condition.
func (c *ClusterStrategy) accumulate(in SizingInput) (bool, int, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buffer := append(c.buffers[in.MarketID], bufferedTrade{
		outcome:     in.Outcome,
		notionalUSD: in.NotionalUSD,
		addedAt:     in.Timestamp,
	})

	cutoff := in.Timestamp.Add(-c.cfg.PruneWindow)

	kept := buffer[:0]
	for _, trade := range buffer {
		if trade.addedAt.After(cutoff) {
			kept = append(kept, trade)
		}
	}
	c.buffers[in.MarketID] = kept

	buckets := make(map[string]struct{}, len(kept))
	totalExposure := 0.0
	for _, trade := range kept {
		buckets[trade.outcome] = struct{}{}
		totalExposure += trade.notionalUSD
	}

	threshold := in.PortfolioValue * c.cfg.MinPortfolioPct
	triggered := len(buckets) >= c.cfg.MinBuckets && totalExposure >= threshold

	return triggered, len(buckets), totalExposure
}
