package wallet

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Tracker periodically refreshes the funder wallet's balance and
// portfolio gauges so operators can watch their own account drift while
// the bot mirrors trades.
type Tracker struct {
	client       *Client
	address      string
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewTracker creates a wallet tracker.
func NewTracker(client *Client, address string, pollInterval time.Duration, logger *zap.Logger) (*Tracker, error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}

	if address == "" {
		return nil, errors.New("address cannot be empty")
	}

	if pollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Tracker{
		client:       client,
		address:      address,
		pollInterval: pollInterval,
		logger:       logger,
	}, nil
}

// Run updates the wallet gauges until the context is cancelled. Fetch
// failures are logged and skipped; the gauges keep their last value.
func (t *Tracker) Run(ctx context.Context) {
	t.logger.Info("wallet-tracker-starting",
		zap.String("address", t.address),
		zap.Duration("interval", t.pollInterval))

	t.update(ctx)

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("wallet-tracker-stopped")
			return
		case <-ticker.C:
			t.update(ctx)
		}
	}
}

func (t *Tracker) update(ctx context.Context) {
	value, err := t.client.PortfolioValue(ctx, t.address)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Warn("wallet-tracker-update-failed", zap.Error(err))
		}
		return
	}

	LastUpdateTimestamp.SetToCurrentTime()

	t.logger.Debug("wallet-tracker-updated", zap.Float64("portfolio-value", value))
}
