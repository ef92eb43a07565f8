package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// Config holds the risk thresholds.
type Config struct {
	CertaintyPoolRatio      float64
	NormalPoolRatio         float64
	MaxSingleMarketRatio    float64
	MaxDailyLossRatio       float64
	HaltDuration            time.Duration
	FlipWindow              time.Duration
	CertaintyMaxPerBetRatio float64
	CertaintyPoolFloorRatio float64
	NormalMaxPerBetRatio    float64
}

type flipKey struct {
	marketID string
	outcome  string
}

type flipEntry struct {
	side types.Side
	at   time.Time
}

// Manager is the state machine over the persisted risk state plus the
// ephemeral flip memory. The decision loop is its only mutating caller,
// so state writes are never interleaved; the mutex exists so the HTTP
// status handler can snapshot concurrently.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	store  Store
	logger *zap.Logger
	state  *State
	flips  map[flipKey]flipEntry
}

// NewManager loads the persisted state and returns a ready manager.
func NewManager(cfg Config, store Store, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load risk state: %w", err)
	}

	logger.Info("risk-state-loaded",
		zap.Float64("daily-start-balance", state.DailyStartBalance),
		zap.Float64("current-exposure", state.CurrentExposure),
		zap.Int("tracked-markets", len(state.MarketExposures)))

	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logger,
		state:  state,
		flips:  make(map[flipKey]flipEntry),
	}, nil
}

// RefreshBalanceIfNeeded performs the daily reset when the halt window
// has elapsed since the last reset: counters and per-market exposures
// are zeroed atomically, pools are rebuilt from the fresh balance, and
// the new state is persisted. No-op inside the window.
func (m *Manager) RefreshBalanceIfNeeded(balance float64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(time.Unix(m.state.LastResetTime, 0)) <= m.cfg.HaltDuration {
		return nil
	}

	m.state.DailyStartBalance = balance
	m.state.CurrentLoss = 0
	m.state.CurrentExposure = 0
	m.state.LastResetTime = now.Unix()
	m.state.MarketExposures = make(map[string]float64)
	m.state.Pools.Certainty = balance * m.cfg.CertaintyPoolRatio
	m.state.Pools.Normal = balance * m.cfg.NormalPoolRatio

	DailyResetsTotal.Inc()
	CurrentExposureGauge.Set(0)

	m.logger.Info("risk-daily-reset",
		zap.Float64("balance", balance),
		zap.Float64("certainty-pool", m.state.Pools.Certainty),
		zap.Float64("normal-pool", m.state.Pools.Normal))

	return m.persistLocked()
}

// GuardrailsOK reports whether trading may continue. False once the
// accumulated loss reaches the daily loss cap. An uninitialized start
// balance passes, since the cap cannot yet be evaluated.
func (m *Manager) GuardrailsOK() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.DailyStartBalance == 0 {
		return true
	}

	maxLoss := m.state.DailyStartBalance * m.cfg.MaxDailyLossRatio
	if m.state.CurrentLoss >= maxLoss {
		GuardrailBreachesTotal.Inc()
		return false
	}

	return true
}

// IsFlip reports whether the trader reversed side on (market, outcome)
// within the flip window. The memory entry is always overwritten with
// the current observation, flip or not, so it reflects the most recent
// trade. Stale entries never block: staleness is checked at read time.
func (m *Manager) IsFlip(marketID, outcome string, side types.Side, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := flipKey{marketID: marketID, outcome: outcome}

	flip := false
	if prev, ok := m.flips[key]; ok {
		if prev.side != side && now.Sub(prev.at) < m.cfg.FlipWindow {
			flip = true
		}
	}

	m.flips[key] = flipEntry{side: side, at: now}

	if flip {
		FlipsDetectedTotal.Inc()
	}

	return flip
}

// CheckMarketCap reports whether committing proposedAmount to the market
// stays within the per-market exposure cap. Pure check: callers must
// record the exposure separately once the trade succeeds.
func (m *Manager) CheckMarketCap(marketID string, proposedAmount, totalBalance float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.state.MarketExposures[marketID]
	maxExposure := totalBalance * m.cfg.MaxSingleMarketRatio

	if current+proposedAmount > maxExposure {
		MarketCapRejectionsTotal.Inc()
		return false
	}

	return true
}

// RecordExposure adds the committed amount to the running counters and
// persists immediately.
func (m *Manager) RecordExposure(amount float64, marketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.CurrentExposure += amount
	if marketID != "" {
		m.state.MarketExposures[marketID] += amount
	}

	CurrentExposureGauge.Set(m.state.CurrentExposure)

	return m.persistLocked()
}

// RecordLoss adds a realized loss to the daily counter and persists.
func (m *Manager) RecordLoss(amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.CurrentLoss += amount

	return m.persistLocked()
}

// CertaintyBetSize returns the pool-driven bet size for a certainty
// trade: the remaining certainty pool spread over the remaining
// opportunities, capped per bet, zero once the pool is nearly drained.
func (m *Manager) CertaintyBetSize(totalBalance float64, opportunitiesRemaining int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	poolRemaining := m.state.Pools.Certainty
	if poolRemaining < totalBalance*m.cfg.CertaintyPoolFloorRatio {
		return 0
	}

	maxBet := totalBalance * m.cfg.CertaintyMaxPerBetRatio

	divisor := opportunitiesRemaining
	if divisor < 1 {
		divisor = 1
	}

	dynamicSize := poolRemaining / float64(divisor)
	if dynamicSize < maxBet {
		return dynamicSize
	}

	return maxBet
}

// NormalBetSize returns the pool-driven bet size for a clustered normal
// trade, dividing the market budget by the cluster's bucket count.
func (m *Manager) NormalBetSize(totalBalance float64, bucketCount int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	maxMarket := totalBalance * m.cfg.NormalMaxPerBetRatio

	budget := maxMarket
	if m.state.Pools.Normal < budget {
		budget = m.state.Pools.Normal
	}

	if bucketCount < 1 {
		bucketCount = 1
	}

	return budget / float64(bucketCount)
}

// Snapshot returns a deep copy of the current state for read-only
// surfaces such as the status endpoint.
func (m *Manager) Snapshot() *State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.Clone()
}

// persistLocked writes the whole state through the store. A persistence
// failure never crashes the caller but is loudly logged: silently losing
// risk counters would be a correctness risk.
func (m *Manager) persistLocked() error {
	err := m.store.Save(m.state)
	if err != nil {
		PersistFailuresTotal.Inc()
		m.logger.Error("risk-state-persist-failed", zap.Error(err))
		return fmt.Errorf("persist risk state: %w", err)
	}

	return nil
}
