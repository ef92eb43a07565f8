package risk

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestDripStrategy_FixedFraction(t *testing.T) {
	t.Parallel()

	drip := NewDripStrategy(0.0025)

	// $1000 balance at a 0.25% drip gives $2.50 regardless of category
	// or the trader's own notional.
	tests := []struct {
		name string
		in   SizingInput
		want float64
	}{
		{
			name: "inventory",
			in:   SizingInput{Category: "INVENTORY", TotalBalance: 1000, NotionalUSD: 5000},
			want: 2.50,
		},
		{
			name: "certainty",
			in:   SizingInput{Category: "CERTAINTY", TotalBalance: 1000, NotionalUSD: 10},
			want: 2.50,
		},
		{
			name: "smaller_balance",
			in:   SizingInput{Category: "INVENTORY", TotalBalance: 400},
			want: 1.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := drip.Size(tt.in); got != tt.want {
				t.Errorf("expected size %.2f, got %.2f", tt.want, got)
			}
		})
	}
}

func newSizingManager(t *testing.T) *Manager {
	t.Helper()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "bot_state.json"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	m, err := NewManager(testRiskConfig(), store, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := m.RefreshBalanceIfNeeded(1000, now); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	return m
}

func TestCertaintyBetSize(t *testing.T) {
	t.Parallel()

	m := newSizingManager(t)

	// Pool is 400, per-bet cap is 1000 * 0.10 = 100. With one
	// opportunity remaining the dynamic size (400) exceeds the cap.
	if got := m.CertaintyBetSize(1000, 1); got != 100 {
		t.Errorf("expected per-bet cap 100, got %f", got)
	}

	// Spread over 8 opportunities: 400/8 = 50 < cap.
	if got := m.CertaintyBetSize(1000, 8); got != 50 {
		t.Errorf("expected dynamic size 50, got %f", got)
	}

	// Zero opportunities behaves as one.
	if got := m.CertaintyBetSize(1000, 0); got != 100 {
		t.Errorf("expected divisor floor of 1, got %f", got)
	}
}

func TestCertaintyBetSize_PoolFloor(t *testing.T) {
	t.Parallel()

	m := newSizingManager(t)

	// With a huge balance the remaining pool (400) sits below the 5%
	// floor (500), so certainty sizing declines entirely.
	if got := m.CertaintyBetSize(10000, 1); got != 0 {
		t.Errorf("expected 0 below the pool floor, got %f", got)
	}
}

func TestNormalBetSize(t *testing.T) {
	t.Parallel()

	m := newSizingManager(t)

	// Market budget is min(1000*0.05, pool 600) = 50, split across buckets.
	if got := m.NormalBetSize(1000, 2); got != 25 {
		t.Errorf("expected 25 per bucket, got %f", got)
	}

	if got := m.NormalBetSize(1000, 0); got != 50 {
		t.Errorf("expected bucket floor of 1, got %f", got)
	}
}

func TestClusterStrategy_TriggersOnBucketsAndExposure(t *testing.T) {
	t.Parallel()

	m := newSizingManager(t)

	cluster := NewClusterStrategy(ClusterConfig{
		PruneWindow:     60 * time.Minute,
		MinBuckets:      2,
		MinPortfolioPct: 0.04,
	}, m, zaptest.NewLogger(t))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := SizingInput{
		Category:       "INVENTORY",
		MarketID:       "0xmarket",
		TotalBalance:   1000,
		PortfolioValue: 1600,
	}

	// One bucket, below the 4% exposure threshold (64): declined.
	first := base
	first.Outcome = "18-20C"
	first.NotionalUSD = 30
	first.Timestamp = now

	if got := cluster.Size(first); got != 0 {
		t.Errorf("expected 0 before the cluster triggers, got %f", got)
	}

	// Second bucket pushes exposure to 70 >= 64 with 2 buckets: triggers.
	second := base
	second.Outcome = "20-22C"
	second.NotionalUSD = 40
	second.Timestamp = now.Add(5 * time.Minute)

	// Budget min(50, 600) split across 2 buckets.
	if got := cluster.Size(second); got != 25 {
		t.Errorf("expected 25 once the cluster triggers, got %f", got)
	}
}

func TestClusterStrategy_PrunesOldTrades(t *testing.T) {
	t.Parallel()

	m := newSizingManager(t)

	cluster := NewClusterStrategy(ClusterConfig{
		PruneWindow:     60 * time.Minute,
		MinBuckets:      2,
		MinPortfolioPct: 0.04,
	}, m, zaptest.NewLogger(t))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := SizingInput{
		Category:       "INVENTORY",
		MarketID:       "0xmarket",
		TotalBalance:   1000,
		PortfolioValue: 1600,
	}

	first := base
	first.Outcome = "18-20C"
	first.NotionalUSD = 30
	first.Timestamp = now

	cluster.Size(first)

	// 90 minutes later the first fill has aged out of the window, so
	// only one bucket remains and the cluster does not trigger.
	second := base
	second.Outcome = "20-22C"
	second.NotionalUSD = 70
	second.Timestamp = now.Add(90 * time.Minute)

	if got := cluster.Size(second); got != 0 {
		t.Errorf("expected 0 after the first fill aged out, got %f", got)
	}
}

func TestClusterStrategy_CertaintyBypassesClustering(t *testing.T) {
	t.Parallel()

	m := newSizingManager(t)

	cluster := NewClusterStrategy(ClusterConfig{
		PruneWindow:     60 * time.Minute,
		MinBuckets:      2,
		MinPortfolioPct: 0.04,
	}, m, zaptest.NewLogger(t))

	in := SizingInput{
		Category:     "CERTAINTY",
		MarketID:     "0xmarket",
		TotalBalance: 1000,
		NotionalUSD:  200,
		Timestamp:    time.Now(),
	}

	// Certainty draws on the pool directly: capped at 1000 * 0.10.
	if got := cluster.Size(in); got != 100 {
		t.Errorf("expected certainty pool size 100, got %f", got)
	}
}
