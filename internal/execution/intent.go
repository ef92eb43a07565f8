// Package execution turns sized trade decisions into orders: a paper
// gateway that simulates fills and a live gateway that signs and submits
// CLOB orders.
package execution

import (
	"time"

	"github.com/google/uuid"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// Intent is a fully sized order request produced by the decision loop.
// Everything the gateway needs to place the order is resolved before the
// intent is created; gateways never reach back into market data.
type Intent struct {
	ID        string
	SignalKey string // dedup key of the signal that triggered this intent
	MarketID  string // condition id
	Outcome   string
	Side      types.Side
	AssetID   string // CLOB token id
	Price     float64
	SizeUSD   float64
	TickSize  float64
	NegRisk   bool
	Category  string // classification that produced the intent
	CreatedAt time.Time
}

// NewIntent assigns a fresh id and creation timestamp.
func NewIntent(signalKey, marketID, outcome string, side types.Side, assetID string, price, sizeUSD, tickSize float64, negRisk bool, category string) *Intent {
	return &Intent{
		ID:        uuid.NewString(),
		SignalKey: signalKey,
		MarketID:  marketID,
		Outcome:   outcome,
		Side:      side,
		AssetID:   assetID,
		Price:     price,
		SizeUSD:   sizeUSD,
		TickSize:  tickSize,
		NegRisk:   negRisk,
		Category:  category,
		CreatedAt: time.Now(),
	}
}

// Shares returns the outcome-token quantity implied by the USD size.
func (i *Intent) Shares() float64 {
	if i.Price <= 0 {
		return 0
	}

	return i.SizeUSD / i.Price
}

// Receipt records the outcome of submitting an intent.
type Receipt struct {
	IntentID   string
	OrderID    string
	Status     string // CLOB status for live orders, "simulated" for paper
	Mode       string // "paper" or "live"
	FilledUSD  float64
	ExecutedAt time.Time
}
