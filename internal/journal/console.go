package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ConsoleJournal implements Journal by pretty-printing executed trades
// to the console and logging everything else.
type ConsoleJournal struct {
	logger *zap.Logger
}

// NewConsoleJournal creates a console journal.
func NewConsoleJournal(logger *zap.Logger) *ConsoleJournal {
	logger.Info("console-journal-initialized")
	return &ConsoleJournal{
		logger: logger,
	}
}

// RecordDecision pretty-prints executed trades; skipped and failed
// decisions go through the structured log only.
func (c *ConsoleJournal) RecordDecision(_ context.Context, decision *Decision) error {
	DecisionsRecordedTotal.WithLabelValues(decision.Action).Inc()

	if decision.Action != ActionExecuted {
		c.logger.Info("decision-recorded",
			zap.String("signal-key", decision.SignalKey),
			zap.String("market", decision.MarketID),
			zap.String("category", decision.Category),
			zap.String("action", decision.Action),
			zap.String("reason", decision.Reason))
		return nil
	}

	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("🪞 TRADE MIRRORED\n")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Market:   %s\n", decision.Question)
	fmt.Printf("Outcome:  %s %s @ %.4f\n", decision.Side, decision.Outcome, decision.SignalPrice)
	fmt.Printf("Category: %s\n", decision.Category)
	fmt.Printf("Time:     %s\n", decision.DecidedAt.Format("2006-01-02 15:04:05"))
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("💰 SIZING\n")
	fmt.Printf("  Their Size:  $%.2f\n", decision.SignalNotional)
	fmt.Printf("  Our Size:    $%.2f\n", decision.SizeUSD)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("📋 ORDER\n")
	fmt.Printf("  Mode:    %s\n", decision.Mode)
	fmt.Printf("  Status:  %s\n", decision.OrderStatus)
	if decision.OrderID != "" {
		fmt.Printf("  ID:      %s\n", decision.OrderID)
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	return nil
}

// Close is a no-op for the console journal.
func (c *ConsoleJournal) Close() error {
	c.logger.Info("closing-console-journal")
	return nil
}
