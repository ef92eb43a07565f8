package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-mirror/internal/risk"
)

//nolint:gochecknoglobals // Cobra boilerplate
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the persisted risk state",
	Long: `Reads the bot's risk state file and prints the daily baseline,
realized loss, open exposure, and the per-market exposure breakdown.`,
	RunE: runState,
}

//nolint:gochecknoglobals // Cobra boilerplate
var stateFilePath string

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringVarP(&stateFilePath, "file", "f", "bot_state.json", "Risk state file path")
}

func runState(cmd *cobra.Command, args []string) error {
	store, err := risk.NewFileStore(stateFilePath, zap.NewNop())
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}

	state, err := store.Load()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	fmt.Print(formatState(state))

	return nil
}

// formatState renders a risk state snapshot for the terminal.
func formatState(state *risk.State) string {
	var b strings.Builder

	b.WriteString("=== Risk State ===\n\n")

	if state.LastResetTime == 0 {
		b.WriteString("Last Reset: never (fresh state)\n")
	} else {
		b.WriteString(fmt.Sprintf("Last Reset: %s\n",
			time.Unix(state.LastResetTime, 0).UTC().Format(time.RFC3339)))
	}

	b.WriteString(fmt.Sprintf("Daily Start Balance: $%.2f\n", state.DailyStartBalance))
	b.WriteString(fmt.Sprintf("Current Loss: $%.2f\n", state.CurrentLoss))
	b.WriteString(fmt.Sprintf("Current Exposure: $%.2f\n", state.CurrentExposure))

	b.WriteString("\nPools:\n")
	b.WriteString(fmt.Sprintf("  Certainty: $%.2f\n", state.Pools.Certainty))
	b.WriteString(fmt.Sprintf("  Normal: $%.2f\n", state.Pools.Normal))

	if len(state.MarketExposures) == 0 {
		b.WriteString("\nNo open market exposure\n")
		return b.String()
	}

	markets := make([]string, 0, len(state.MarketExposures))
	for market := range state.MarketExposures {
		markets = append(markets, market)
	}
	sort.Strings(markets)

	b.WriteString(fmt.Sprintf("\nMarket Exposures (%d):\n", len(markets)))
	for _, market := range markets {
		b.WriteString(fmt.Sprintf("  %s: $%.2f\n", market, state.MarketExposures[market]))
	}

	return b.String()
}
