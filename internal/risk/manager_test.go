package risk

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap/zaptest"
)

func testRiskConfig() Config {
	return Config{
		CertaintyPoolRatio:      0.40,
		NormalPoolRatio:         0.60,
		MaxSingleMarketRatio:    0.20,
		MaxDailyLossRatio:       0.15,
		HaltDuration:            24 * time.Hour,
		FlipWindow:              600 * time.Second,
		CertaintyMaxPerBetRatio: 0.10,
		CertaintyPoolFloorRatio: 0.05,
		NormalMaxPerBetRatio:    0.05,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "bot_state.json"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	m, err := NewManager(testRiskConfig(), store, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	return m
}

func TestManager_ResetIdempotence(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// First call resets from the zero state.
	if err := m.RefreshBalanceIfNeeded(1000, now); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	first := m.Snapshot()

	if first.DailyStartBalance != 1000 {
		t.Errorf("expected start balance 1000, got %f", first.DailyStartBalance)
	}

	if first.Pools.Certainty != 400 || first.Pools.Normal != 600 {
		t.Errorf("expected pools 400/600, got %+v", first.Pools)
	}

	// Second call inside the same halt window must be a no-op, even with
	// a different balance.
	if err := m.RefreshBalanceIfNeeded(2000, now.Add(time.Hour)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second := m.Snapshot()

	if second.DailyStartBalance != first.DailyStartBalance ||
		second.LastResetTime != first.LastResetTime ||
		second.Pools != first.Pools ||
		second.CurrentLoss != first.CurrentLoss ||
		second.CurrentExposure != first.CurrentExposure {
		t.Errorf("expected state unchanged within the halt window:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestManager_ResetAfterHaltWindow(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := m.RefreshBalanceIfNeeded(1000, now); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := m.RecordExposure(50, "0xmarket"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := m.RecordLoss(20); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Past the 24h window: counters and exposures zeroed together,
	// pools rebuilt from the fresh balance.
	later := now.Add(25 * time.Hour)
	if err := m.RefreshBalanceIfNeeded(800, later); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	state := m.Snapshot()

	if state.DailyStartBalance != 800 {
		t.Errorf("expected start balance 800, got %f", state.DailyStartBalance)
	}

	if state.CurrentLoss != 0 || state.CurrentExposure != 0 {
		t.Errorf("expected counters zeroed, got loss=%f exposure=%f", state.CurrentLoss, state.CurrentExposure)
	}

	if len(state.MarketExposures) != 0 {
		t.Errorf("expected market exposures cleared, got %v", state.MarketExposures)
	}

	if state.Pools.Certainty != 320 || state.Pools.Normal != 480 {
		t.Errorf("expected pools rebuilt as 320/480, got %+v", state.Pools)
	}

	if state.LastResetTime != later.Unix() {
		t.Errorf("expected reset time %d, got %d", later.Unix(), state.LastResetTime)
	}
}

func TestManager_Guardrails(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Uninitialized start balance passes.
	if !m.GuardrailsOK() {
		t.Error("expected guardrails to pass with zero start balance")
	}

	if err := m.RefreshBalanceIfNeeded(1000, now); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := m.RecordLoss(100); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !m.GuardrailsOK() {
		t.Error("expected guardrails to pass below the loss cap")
	}

	// 150 = 1000 * 0.15 hits the cap exactly.
	if err := m.RecordLoss(50); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if m.GuardrailsOK() {
		t.Error("expected guardrails to fail at the loss cap")
	}
}

func TestManager_FlipDetection(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// First observation is never a flip.
	if m.IsFlip("0xmarket", "Yes", types.SideBuy, start) {
		t.Error("expected the first observation not to be a flip")
	}

	// Opposite side 300s later, inside the 600s window.
	if !m.IsFlip("0xmarket", "Yes", types.SideSell, start.Add(300*time.Second)) {
		t.Error("expected SELL 300s after BUY to be a flip")
	}

	// Same side again is never a flip.
	if m.IsFlip("0xmarket", "Yes", types.SideSell, start.Add(400*time.Second)) {
		t.Error("expected a repeated SELL not to be a flip")
	}
}

func TestManager_FlipWindowExpiry(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if m.IsFlip("0xmarket", "Yes", types.SideBuy, start) {
		t.Error("expected the first observation not to be a flip")
	}

	// Opposite side 700s later, past the 600s window.
	if m.IsFlip("0xmarket", "Yes", types.SideSell, start.Add(700*time.Second)) {
		t.Error("expected SELL 700s after BUY not to be a flip")
	}
}

func TestManager_FlipIsPerOutcome(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m.IsFlip("0xmarket", "Yes", types.SideBuy, start)

	// Opposite side on a different outcome is not a flip.
	if m.IsFlip("0xmarket", "No", types.SideSell, start.Add(100*time.Second)) {
		t.Error("expected a different outcome not to flip")
	}
}

func TestManager_MarketCapMonotonicity(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	// Cap is 1000 * 0.20 = 200.
	balance := 1000.0
	previous := 0.0

	for i := 0; i < 5; i++ {
		if !m.CheckMarketCap("0xmarket", 40, balance) {
			t.Fatalf("expected trade %d to fit under the cap", i)
		}

		if err := m.RecordExposure(40, "0xmarket"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		state := m.Snapshot()
		if state.MarketExposures["0xmarket"] < previous {
			t.Fatalf("expected market exposure to be non-decreasing, got %f after %f",
				state.MarketExposures["0xmarket"], previous)
		}
		previous = state.MarketExposures["0xmarket"]
	}

	// 200 committed: any further amount breaches the cap.
	if m.CheckMarketCap("0xmarket", 1, balance) {
		t.Error("expected the cap to reject once the sum would exceed balance*ratio")
	}

	// Pure check: the failed check must not have mutated state.
	if got := m.Snapshot().MarketExposures["0xmarket"]; got != 200 {
		t.Errorf("expected exposure to remain 200, got %f", got)
	}

	// Other markets are unaffected.
	if !m.CheckMarketCap("0xother", 40, balance) {
		t.Error("expected an untouched market to pass the cap check")
	}
}

func TestManager_StateSurvivesRestart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bot_state.json")
	logger := zaptest.NewLogger(t)

	store, err := NewFileStore(path, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	m, err := NewManager(testRiskConfig(), store, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := m.RefreshBalanceIfNeeded(1000, now); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := m.RecordExposure(75, "0xmarket"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// A new manager over the same file sees the persisted state.
	restarted, err := NewManager(testRiskConfig(), store, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	state := restarted.Snapshot()

	if state.DailyStartBalance != 1000 || state.CurrentExposure != 75 {
		t.Errorf("expected persisted state after restart, got %+v", state)
	}

	if state.MarketExposures["0xmarket"] != 75 {
		t.Errorf("expected market exposure 75 after restart, got %v", state.MarketExposures)
	}
}
