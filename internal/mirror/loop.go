// Package mirror runs the decision loop: it drains deduplicated trade
// signals and walks each one through eligibility, classification, risk
// checks and sizing before handing an intent to the execution gateway.
// The loop is single-threaded so risk state is never updated
// concurrently.
package mirror

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-mirror/internal/classify"
	"github.com/mselser95/polymarket-mirror/internal/execution"
	"github.com/mselser95/polymarket-mirror/internal/journal"
	"github.com/mselser95/polymarket-mirror/internal/risk"
	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// MarketData fetches market context for a condition id. A nil market
// with a nil error means the market is unknown.
type MarketData interface {
	FetchMarket(ctx context.Context, conditionID string) (*types.MarketContext, error)
}

// MetadataSource provides per-token order metadata.
type MetadataSource interface {
	GetTokenMetadata(ctx context.Context, tokenID string) (tickSize, minOrderSize float64, err error)
}

// BalanceOracle values wallets: our funder balance and the tracked
// trader's portfolio.
type BalanceOracle interface {
	USDCBalance(ctx context.Context, address string) (float64, error)
	PortfolioValue(ctx context.Context, address string) (float64, error)
}

// Config holds decision loop configuration.
type Config struct {
	TraderAddress            string
	FunderAddress            string
	MinBalanceUSD            float64
	FallbackPortfolioValue   float64
	PortfolioRefreshInterval time.Duration
}

// Deps bundles the loop's collaborators.
type Deps struct {
	Signals    <-chan *types.TradeSignal
	MarketData MarketData
	Metadata   MetadataSource // optional
	Oracle     BalanceOracle
	Filter     classify.MarketFilter
	Classifier *classify.Classifier
	Manager    *risk.Manager
	Sizer      risk.SizingStrategy
	Gateway    execution.Gateway
	Journal    journal.Journal
	Logger     *zap.Logger
}

// Loop is the single consumer of the signal stream.
type Loop struct {
	cfg  Config
	deps Deps

	// Trader portfolio is refreshed on an interval; our balance is
	// fetched per decision with the last good value as fallback.
	portfolioValue   float64
	portfolioFetched time.Time
	balance          float64
	balanceKnown     bool
}

// New creates a decision loop.
func New(cfg Config, deps Deps) (*Loop, error) {
	if deps.Signals == nil {
		return nil, errors.New("signals channel cannot be nil")
	}

	if deps.MarketData == nil {
		return nil, errors.New("market data cannot be nil")
	}

	if deps.Oracle == nil {
		return nil, errors.New("balance oracle cannot be nil")
	}

	if deps.Classifier == nil {
		return nil, errors.New("classifier cannot be nil")
	}

	if deps.Manager == nil {
		return nil, errors.New("risk manager cannot be nil")
	}

	if deps.Sizer == nil {
		return nil, errors.New("sizing strategy cannot be nil")
	}

	if deps.Gateway == nil {
		return nil, errors.New("gateway cannot be nil")
	}

	if deps.Journal == nil {
		return nil, errors.New("journal cannot be nil")
	}

	if deps.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Loop{cfg: cfg, deps: deps}, nil
}

// Run processes signals until the context is cancelled or the signal
// channel closes. A single bad signal never stops the loop; every
// failure path journals a decision and moves on.
func (l *Loop) Run(ctx context.Context) {
	l.deps.Logger.Info("decision-loop-starting",
		zap.String("trader", l.cfg.TraderAddress),
		zap.String("gateway", l.deps.Gateway.Name()),
		zap.String("sizing", l.deps.Sizer.Name()))

	for {
		select {
		case <-ctx.Done():
			l.deps.Logger.Info("decision-loop-stopped")
			return
		case sig, ok := <-l.deps.Signals:
			if !ok {
				l.deps.Logger.Info("signal-stream-closed")
				return
			}

			start := time.Now()
			l.handle(ctx, sig)
			DecisionDuration.Observe(time.Since(start).Seconds())
		}
	}
}

func (l *Loop) handle(ctx context.Context, sig *types.TradeSignal) {
	key := sig.DedupKey()
	now := time.Now()

	l.deps.Logger.Debug("signal-received",
		zap.String("key", key),
		zap.String("market", sig.MarketID),
		zap.String("side", string(sig.Side)),
		zap.Float64("price", sig.Price))

	decision := journal.NewDecision(key)
	decision.MarketID = sig.MarketID
	decision.Outcome = sig.Outcome
	decision.Side = sig.Side
	decision.SignalPrice = sig.Price
	decision.SignalNotional = sig.Notional()
	decision.Mode = l.deps.Gateway.Name()

	mc, err := l.deps.MarketData.FetchMarket(ctx, sig.MarketID)
	if err != nil {
		l.skip(ctx, decision, journal.ActionFailed, "market fetch failed: "+err.Error())
		return
	}

	if mc != nil {
		decision.Question = mc.Question
	}

	if !l.deps.Filter.Eligible(mc) {
		classify.IneligibleMarketsTotal.Inc()
		l.skip(ctx, decision, journal.ActionSkipped, "market not eligible")
		return
	}

	if l.deps.Manager.IsFlip(sig.MarketID, sig.Outcome, sig.Side, sig.Time()) {
		l.skip(ctx, decision, journal.ActionRejected, "side flip inside flip window")
		return
	}

	portfolio := l.traderPortfolio(ctx)

	alloc := 0.0
	if portfolio > 0 {
		alloc = sig.Notional() / portfolio
	}

	result := l.deps.Classifier.Classify(sig, mc, alloc, now)
	decision.Category = string(result.Category)

	if result.Category == classify.None {
		l.skip(ctx, decision, journal.ActionSkipped, result.Reason)
		return
	}

	balance, ok := l.funderBalance(ctx)
	if !ok {
		l.skip(ctx, decision, journal.ActionFailed, "funder balance unavailable")
		return
	}

	if err := l.deps.Manager.RefreshBalanceIfNeeded(balance, now); err != nil {
		l.deps.Logger.Warn("daily-reset-persist-failed", zap.Error(err))
	}

	if !l.deps.Manager.GuardrailsOK() {
		l.skip(ctx, decision, journal.ActionRejected, "daily loss guardrail breached")
		return
	}

	if balance < l.cfg.MinBalanceUSD {
		l.skip(ctx, decision, journal.ActionSkipped, "balance below trading minimum")
		return
	}

	size := l.deps.Sizer.Size(risk.SizingInput{
		Category:       string(result.Category),
		MarketID:       sig.MarketID,
		Outcome:        sig.Outcome,
		TotalBalance:   balance,
		PortfolioValue: portfolio,
		NotionalUSD:    sig.Notional(),
		Timestamp:      sig.Time(),
	})
	decision.SizeUSD = size

	if size <= 0 {
		l.skip(ctx, decision, journal.ActionSkipped, "sizing strategy declined")
		return
	}

	token := mc.TokenForOutcome(sig.Outcome)
	if token == nil {
		l.skip(ctx, decision, journal.ActionFailed, "market has no token for outcome "+sig.Outcome)
		return
	}

	tickSize, minOrderSize := l.tokenMetadata(ctx, mc, token.TokenID)

	if size < minOrderSize {
		l.skip(ctx, decision, journal.ActionSkipped, "size below venue minimum order")
		return
	}

	if !l.deps.Manager.CheckMarketCap(sig.MarketID, size, balance) {
		l.skip(ctx, decision, journal.ActionRejected, "per-market exposure cap")
		return
	}

	intent := execution.NewIntent(key, sig.MarketID, sig.Outcome, sig.Side,
		token.TokenID, sig.Price, size, tickSize, mc.NegRisk, string(result.Category))

	receipt, err := l.deps.Gateway.Submit(ctx, intent)
	if err != nil {
		l.skip(ctx, decision, journal.ActionFailed, "order submit failed: "+err.Error())
		return
	}

	if err := l.deps.Manager.RecordExposure(size, sig.MarketID); err != nil {
		l.deps.Logger.Warn("exposure-persist-failed", zap.Error(err))
	}

	decision.Action = journal.ActionExecuted
	decision.Reason = result.Reason
	decision.OrderID = receipt.OrderID
	decision.OrderStatus = receipt.Status

	SignalsProcessedTotal.WithLabelValues(journal.ActionExecuted).Inc()
	TradesMirroredTotal.Inc()

	l.record(ctx, decision)

	l.deps.Logger.Info("trade-mirrored",
		zap.String("key", key),
		zap.String("market", sig.MarketID),
		zap.String("category", string(result.Category)),
		zap.Float64("size-usd", size),
		zap.String("order-id", receipt.OrderID))
}

// skip journals a non-executed decision.
func (l *Loop) skip(ctx context.Context, decision *journal.Decision, action, reason string) {
	decision.Action = action
	decision.Reason = reason

	SignalsProcessedTotal.WithLabelValues(action).Inc()

	l.deps.Logger.Debug("signal-not-mirrored",
		zap.String("key", decision.SignalKey),
		zap.String("action", action),
		zap.String("reason", reason))

	l.record(ctx, decision)
}

func (l *Loop) record(ctx context.Context, decision *journal.Decision) {
	if err := l.deps.Journal.RecordDecision(ctx, decision); err != nil {
		l.deps.Logger.Warn("journal-record-failed", zap.Error(err))
	}
}

// traderPortfolio returns the tracked trader's portfolio value, cached
// for the refresh interval. Falls back to the last good value, then to
// the configured fallback, so classification never stalls on API
// trouble.
func (l *Loop) traderPortfolio(ctx context.Context) float64 {
	if l.portfolioValue > 0 && time.Since(l.portfolioFetched) < l.cfg.PortfolioRefreshInterval {
		return l.portfolioValue
	}

	value, err := l.deps.Oracle.PortfolioValue(ctx, l.cfg.TraderAddress)
	if err != nil || value <= 0 {
		if l.portfolioValue > 0 {
			l.deps.Logger.Warn("portfolio-refresh-failed-using-stale", zap.Error(err))
			return l.portfolioValue
		}

		l.deps.Logger.Warn("portfolio-unavailable-using-fallback",
			zap.Float64("fallback", l.cfg.FallbackPortfolioValue), zap.Error(err))
		return l.cfg.FallbackPortfolioValue
	}

	l.portfolioValue = value
	l.portfolioFetched = time.Now()

	return value
}

// funderBalance fetches our USDC balance, tolerating transient failures
// by reusing the last known value.
func (l *Loop) funderBalance(ctx context.Context) (float64, bool) {
	balance, err := l.deps.Oracle.USDCBalance(ctx, l.cfg.FunderAddress)
	if err != nil {
		if l.balanceKnown {
			l.deps.Logger.Warn("balance-fetch-failed-using-stale", zap.Error(err))
			return l.balance, true
		}

		return 0, false
	}

	l.balance = balance
	l.balanceKnown = true

	return balance, true
}

// tokenMetadata resolves tick size and minimum order size, preferring
// the Gamma market context and falling back to the CLOB metadata client.
func (l *Loop) tokenMetadata(ctx context.Context, mc *types.MarketContext, tokenID string) (tickSize, minOrderSize float64) {
	tickSize = mc.TickSize
	minOrderSize = 0

	if l.deps.Metadata == nil {
		if tickSize <= 0 {
			tickSize = 0.01
		}
		return tickSize, minOrderSize
	}

	metaTick, metaMin, err := l.deps.Metadata.GetTokenMetadata(ctx, tokenID)
	if err == nil {
		if tickSize <= 0 {
			tickSize = metaTick
		}
		minOrderSize = metaMin
	} else if tickSize <= 0 {
		tickSize = 0.01
	}

	return tickSize, minOrderSize
}
