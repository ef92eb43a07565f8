// Package journal persists the decision trail: every signal the bot
// acted on or skipped, with the classification, sizing and order outcome
// that went with it.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// Decision actions.
const (
	ActionExecuted = "executed"
	ActionSkipped  = "skipped"
	ActionRejected = "rejected"
	ActionFailed   = "failed"
)

// Decision is one journal entry: what the bot decided about one signal.
type Decision struct {
	ID             string
	SignalKey      string
	MarketID       string
	Question       string
	Outcome        string
	Side           types.Side
	SignalPrice    float64
	SignalNotional float64
	Category       string
	Reason         string
	Action         string
	SizeUSD        float64
	OrderID        string
	OrderStatus    string
	Mode           string
	DecidedAt      time.Time
}

// NewDecision assigns a fresh id and timestamp.
func NewDecision(signalKey string) *Decision {
	return &Decision{
		ID:        uuid.NewString(),
		SignalKey: signalKey,
		DecidedAt: time.Now(),
	}
}

// Journal is the interface for recording mirror decisions.
type Journal interface {
	// RecordDecision persists one decision.
	RecordDecision(ctx context.Context, decision *Decision) error

	// Close closes the journal.
	Close() error
}
