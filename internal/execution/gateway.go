package execution

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway submits execution intents. Implementations must be safe for
// use from a single goroutine; the decision loop submits sequentially.
type Gateway interface {
	Name() string
	Submit(ctx context.Context, intent *Intent) (*Receipt, error)
}

// PaperGateway simulates fills without touching the exchange. Every
// intent fills immediately at its own price so the rest of the pipeline
// behaves exactly as it would in live mode.
type PaperGateway struct {
	logger *zap.Logger

	mu       sync.Mutex
	notional float64
	fills    int
}

// NewPaperGateway creates a simulated gateway.
func NewPaperGateway(logger *zap.Logger) (*PaperGateway, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &PaperGateway{logger: logger}, nil
}

// Name returns the gateway mode name.
func (g *PaperGateway) Name() string { return "paper" }

// Submit records the simulated fill and returns a receipt.
func (g *PaperGateway) Submit(_ context.Context, intent *Intent) (*Receipt, error) {
	if intent == nil {
		return nil, errors.New("intent cannot be nil")
	}

	g.mu.Lock()
	g.notional += intent.SizeUSD
	g.fills++
	total := g.notional
	g.mu.Unlock()

	OrdersSubmittedTotal.WithLabelValues("paper", "simulated").Inc()
	PaperNotionalTotal.Add(intent.SizeUSD)

	g.logger.Info("paper-order-filled",
		zap.String("intent-id", intent.ID),
		zap.String("market", intent.MarketID),
		zap.String("outcome", intent.Outcome),
		zap.String("side", string(intent.Side)),
		zap.Float64("price", intent.Price),
		zap.Float64("size-usd", intent.SizeUSD),
		zap.Float64("total-mirrored-usd", total))

	return &Receipt{
		IntentID:   intent.ID,
		OrderID:    uuid.NewString(),
		Status:     "simulated",
		Mode:       "paper",
		FilledUSD:  intent.SizeUSD,
		ExecutedAt: time.Now(),
	}, nil
}

// MirroredNotional returns the cumulative simulated fill value in USD.
func (g *PaperGateway) MirroredNotional() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.notional
}

// LiveGateway signs and submits real CLOB orders.
type LiveGateway struct {
	client *OrderClient
	logger *zap.Logger
}

// NewLiveGateway creates a gateway backed by a CLOB order client.
func NewLiveGateway(client *OrderClient, logger *zap.Logger) (*LiveGateway, error) {
	if client == nil {
		return nil, errors.New("order client cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &LiveGateway{client: client, logger: logger}, nil
}

// Name returns the gateway mode name.
func (g *LiveGateway) Name() string { return "live" }

// Submit places the order on the CLOB.
func (g *LiveGateway) Submit(ctx context.Context, intent *Intent) (*Receipt, error) {
	if intent == nil {
		return nil, errors.New("intent cannot be nil")
	}

	start := time.Now()

	resp, err := g.client.PlaceOrder(ctx, intent)

	SubmitDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		OrdersSubmittedTotal.WithLabelValues("live", "error").Inc()
		return nil, err
	}

	OrdersSubmittedTotal.WithLabelValues("live", resp.Status).Inc()

	g.logger.Info("live-order-placed",
		zap.String("intent-id", intent.ID),
		zap.String("order-id", resp.OrderID),
		zap.String("status", resp.Status),
		zap.String("market", intent.MarketID),
		zap.Float64("size-usd", intent.SizeUSD))

	return &Receipt{
		IntentID:   intent.ID,
		OrderID:    resp.OrderID,
		Status:     resp.Status,
		Mode:       "live",
		FilledUSD:  intent.SizeUSD,
		ExecutedAt: time.Now(),
	}, nil
}
