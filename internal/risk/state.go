// Package risk owns the persisted risk state and the admission-control
// and sizing rules applied to every mirrored trade.
package risk

// State is the durable process-wide risk record. It is loaded at start,
// mutated only by the Manager, and written back whole after every
// mutation. The JSON layout matches the on-disk bot_state.json file.
type State struct {
	DailyStartBalance float64            `json:"daily_start_balance"`
	CurrentLoss       float64            `json:"current_loss"`
	CurrentExposure   float64            `json:"current_exposure"`
	LastResetTime     int64              `json:"last_reset_time"`
	Pools             Pools              `json:"pools"`
	MarketExposures   map[string]float64 `json:"market_exposures"`
}

// Pools are the per-category sub-budgets, rebuilt from the fresh balance
// on every daily reset.
type Pools struct {
	Certainty float64 `json:"certainty"`
	Normal    float64 `json:"normal"`
}

// NewState returns a fresh zero state.
func NewState() *State {
	return &State{
		MarketExposures: make(map[string]float64),
	}
}

// Clone returns a deep copy, used for lock-free snapshots.
func (s *State) Clone() *State {
	exposures := make(map[string]float64, len(s.MarketExposures))
	for market, amount := range s.MarketExposures {
		exposures[market] = amount
	}

	return &State{
		DailyStartBalance: s.DailyStartBalance,
		CurrentLoss:       s.CurrentLoss,
		CurrentExposure:   s.CurrentExposure,
		LastResetTime:     s.LastResetTime,
		Pools:             s.Pools,
		MarketExposures:   exposures,
	}
}
