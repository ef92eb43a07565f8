// Package testutil provides shared fixtures and in-memory mocks for
// tests across the repo.
package testutil

import (
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// TestTrader is the tracked trader address used across fixtures.
const TestTrader = "0x1234567890abcdef1234567890abcdef12345678"

// CreateTestSignal creates a BUY fill by the tracked trader.
func CreateTestSignal(id, marketID string, price, size float64) *types.TradeSignal {
	return &types.TradeSignal{
		ID:            id,
		MarketID:      marketID,
		Outcome:       "Yes",
		Side:          types.SideBuy,
		Price:         price,
		Size:          size,
		NotionalUSD:   price * size,
		AssetID:       marketID + "-yes",
		TxHash:        "0xtx-" + id,
		Timestamp:     time.Now().Unix(),
		TraderAddress: TestTrader,
	}
}

// CreateTestMarket creates an eligible weather market resolving at the
// given time, with Yes and No tokens.
func CreateTestMarket(conditionID string, endDate time.Time) *types.MarketContext {
	return &types.MarketContext{
		ConditionID: conditionID,
		Question:    "Highest temperature in London on March 1?",
		Slug:        "highest-temperature-london-march-1",
		Category:    "Weather",
		Description: "Resolves according to the official weather station reading at Heathrow.",
		Active:      true,
		EndDate:     &endDate,
		TickSize:    0.01,
		Tokens: []types.Token{
			{TokenID: conditionID + "-yes", Outcome: "Yes"},
			{TokenID: conditionID + "-no", Outcome: "No"},
		},
	}
}
