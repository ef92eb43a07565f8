// Package feed ingests the tracked trader's fills from the Polymarket
// activity surfaces and exposes them as a single deduplicated stream of
// trade signals.
package feed

import (
	"context"
	"strings"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// Source is one feed variant producing normalized trade signals.
// Start blocks until the context is cancelled; internal errors are
// absorbed and retried, never returned mid-run. The signal channel is
// closed when Start returns.
type Source interface {
	Name() string
	Start(ctx context.Context) error
	Signals() <-chan *types.TradeSignal
}

// activityEvent is the raw shape shared by the data-api activity
// endpoint and the live-data websocket trades topic.
type activityEvent struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	ProxyWallet     string  `json:"proxyWallet"`
	User            string  `json:"user"`
	ConditionID     string  `json:"conditionId"`
	Outcome         string  `json:"outcome"`
	Side            string  `json:"side"`
	Price           float64 `json:"price"`
	Size            float64 `json:"size"`
	USDCSize        float64 `json:"usdcSize"`
	Asset           string  `json:"asset"`
	Timestamp       int64   `json:"timestamp"`
	TransactionHash string  `json:"transactionHash"`
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
}

// isTrade reports whether the event is a fill rather than a split,
// merge, redeem or other activity type.
func (e *activityEvent) isTrade() bool {
	if e.Type == "TRADE" {
		return true
	}

	return e.Side == string(types.SideBuy) || e.Side == string(types.SideSell)
}

// matchesWallet reports whether the event belongs to the tracked
// address, matching either the proxy wallet or the underlying signer.
func (e *activityEvent) matchesWallet(address string) bool {
	return strings.EqualFold(e.ProxyWallet, address) || strings.EqualFold(e.User, address)
}

// toSignal converts the raw event into a TradeSignal. Returns false for
// events that are not fills or carry no usable identity.
func (e *activityEvent) toSignal(traderAddress string) (*types.TradeSignal, bool) {
	if !e.isTrade() {
		return nil, false
	}

	if e.TransactionHash == "" {
		return nil, false
	}

	side := types.Side(strings.ToUpper(e.Side))
	if side != types.SideBuy && side != types.SideSell {
		return nil, false
	}

	return &types.TradeSignal{
		ID:            e.ID,
		MarketID:      e.ConditionID,
		Outcome:       e.Outcome,
		Side:          side,
		Price:         e.Price,
		Size:          e.Size,
		NotionalUSD:   e.USDCSize,
		AssetID:       e.Asset,
		TxHash:        e.TransactionHash,
		Timestamp:     e.Timestamp,
		TraderAddress: traderAddress,
	}, true
}
