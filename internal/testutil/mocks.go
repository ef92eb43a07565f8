package testutil

import (
	"context"
	"sync"

	"github.com/mselser95/polymarket-mirror/internal/execution"
	"github.com/mselser95/polymarket-mirror/internal/journal"
	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// MockMarketData serves market contexts from an in-memory map.
type MockMarketData struct {
	mu      sync.Mutex
	Markets map[string]*types.MarketContext
	Err     error
}

// NewMockMarketData creates a market data mock.
func NewMockMarketData() *MockMarketData {
	return &MockMarketData{Markets: make(map[string]*types.MarketContext)}
}

// Add registers a market.
func (m *MockMarketData) Add(mc *types.MarketContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Markets[mc.ConditionID] = mc
}

// FetchMarket returns the registered market or nil.
func (m *MockMarketData) FetchMarket(_ context.Context, conditionID string) (*types.MarketContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	return m.Markets[conditionID], nil
}

// MockOracle returns fixed wallet values.
type MockOracle struct {
	mu           sync.Mutex
	Balance      float64
	Portfolio    float64
	BalanceErr   error
	PortfolioErr error
}

// USDCBalance returns the configured balance.
func (o *MockOracle) USDCBalance(_ context.Context, _ string) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.BalanceErr != nil {
		return 0, o.BalanceErr
	}

	return o.Balance, nil
}

// PortfolioValue returns the configured portfolio value.
func (o *MockOracle) PortfolioValue(_ context.Context, _ string) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.PortfolioErr != nil {
		return 0, o.PortfolioErr
	}

	return o.Portfolio, nil
}

// SetBalance updates the balance under lock.
func (o *MockOracle) SetBalance(balance float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Balance = balance
}

// MockGateway records submitted intents.
type MockGateway struct {
	mu      sync.Mutex
	Intents []*execution.Intent
	Err     error
}

// Name returns the mock gateway mode.
func (g *MockGateway) Name() string { return "mock" }

// Submit records the intent and returns a synthetic receipt.
func (g *MockGateway) Submit(_ context.Context, intent *execution.Intent) (*execution.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}

	g.Intents = append(g.Intents, intent)

	return &execution.Receipt{
		IntentID:  intent.ID,
		OrderID:   "order-" + intent.ID,
		Status:    "matched",
		Mode:      "mock",
		FilledUSD: intent.SizeUSD,
	}, nil
}

// Submitted returns a copy of the recorded intents.
func (g *MockGateway) Submitted() []*execution.Intent {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*execution.Intent, len(g.Intents))
	copy(out, g.Intents)

	return out
}

// MockJournal records decisions in memory.
type MockJournal struct {
	mu        sync.Mutex
	Decisions []*journal.Decision
	Err       error
}

// RecordDecision appends the decision.
func (j *MockJournal) RecordDecision(_ context.Context, decision *journal.Decision) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.Err != nil {
		return j.Err
	}

	j.Decisions = append(j.Decisions, decision)

	return nil
}

// Close is a no-op.
func (j *MockJournal) Close() error { return nil }

// Recorded returns a copy of the recorded decisions.
func (j *MockJournal) Recorded() []*journal.Decision {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*journal.Decision, len(j.Decisions))
	copy(out, j.Decisions)

	return out
}

// LastDecision returns the most recent decision or nil.
func (j *MockJournal) LastDecision() *journal.Decision {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.Decisions) == 0 {
		return nil
	}

	return j.Decisions[len(j.Decisions)-1]
}

// MockMetadata returns fixed token metadata.
type MockMetadata struct {
	TickSize     float64
	MinOrderSize float64
	Err          error
}

// GetTokenMetadata returns the configured values.
func (m *MockMetadata) GetTokenMetadata(_ context.Context, _ string) (float64, float64, error) {
	if m.Err != nil {
		return 0, 0, m.Err
	}

	return m.TickSize, m.MinOrderSize, nil
}
