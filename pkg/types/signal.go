package types

import (
	"fmt"
	"time"
)

// Side of a fill from the tracked trader's perspective.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeSignal represents one observed fill by the tracked trader,
// normalized from either feed variant. Adapters parse raw feed payloads
// into this struct at the boundary; nothing downstream sees untyped maps.
type TradeSignal struct {
	ID            string // feed-assigned event id, empty when the source has none
	MarketID      string // condition id of the market
	Outcome       string // outcome label, e.g. "Yes"
	Side          Side
	Price         float64 // 0..1
	Size          float64 // shares
	NotionalUSD   float64 // supplied by the feed, or derived size*price
	AssetID       string  // CLOB token id used for order placement
	TxHash        string
	LogIndex      *int64 // disambiguates multiple fills in one transaction
	Timestamp     int64  // unix seconds
	TraderAddress string
}

// DedupKey returns the identity key for the signal: the feed id when the
// source provides one, otherwise the transaction hash plus log index.
// Two signals with the same key are the same economic event.
func (s *TradeSignal) DedupKey() string {
	if s.ID != "" {
		return s.ID
	}

	if s.LogIndex != nil {
		return fmt.Sprintf("%s:%d", s.TxHash, *s.LogIndex)
	}

	return s.TxHash
}

// Notional returns the USD value of the fill, deriving it from size and
// price when the feed did not supply one.
func (s *TradeSignal) Notional() float64 {
	if s.NotionalUSD > 0 {
		return s.NotionalUSD
	}

	return s.Size * s.Price
}

// Time returns the fill timestamp as a time.Time.
func (s *TradeSignal) Time() time.Time {
	return time.Unix(s.Timestamp, 0)
}
