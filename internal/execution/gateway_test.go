package execution

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

func TestPaperGateway_Submit(t *testing.T) {
	t.Parallel()

	gw, err := NewPaperGateway(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	intent := NewIntent("sig-1", "0xcond", "Yes", types.SideBuy, "123", 0.5, 25, 0.01, false, "CERTAINTY")

	receipt, err := gw.Submit(context.Background(), intent)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if receipt.IntentID != intent.ID {
		t.Errorf("expected receipt for intent %s, got %s", intent.ID, receipt.IntentID)
	}

	if receipt.Mode != "paper" || receipt.Status != "simulated" {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	if receipt.OrderID == "" {
		t.Error("expected a simulated order id")
	}

	second := NewIntent("sig-2", "0xcond", "No", types.SideSell, "456", 0.4, 10, 0.01, false, "INVENTORY")
	if _, err := gw.Submit(context.Background(), second); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := gw.MirroredNotional(); got != 35 {
		t.Errorf("expected 35 USD mirrored, got %f", got)
	}
}

func TestPaperGateway_NilIntent(t *testing.T) {
	t.Parallel()

	gw, err := NewPaperGateway(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := gw.Submit(context.Background(), nil); err == nil {
		t.Error("expected error for nil intent")
	}
}

func TestNewLiveGateway_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewLiveGateway(nil, zaptest.NewLogger(t)); err == nil {
		t.Error("expected error for nil client")
	}
}

func TestIntentShares(t *testing.T) {
	t.Parallel()

	intent := &Intent{Price: 0.5, SizeUSD: 25}
	if got := intent.Shares(); got != 50 {
		t.Errorf("expected 50 shares, got %f", got)
	}

	zero := &Intent{Price: 0, SizeUSD: 25}
	if got := zero.Shares(); got != 0 {
		t.Errorf("expected 0 shares at zero price, got %f", got)
	}
}
