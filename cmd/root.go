package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "polymarket-mirror",
	Short: "Polymarket copy-trading bot",
	Long: `Polymarket copy-trading bot that watches one trader's fills,
classifies each one as an inventory rebalance or a conviction bet,
and mirrors the conviction bets with strict risk controls.

The bot ingests fills over the live-data websocket and the data API,
deduplicates them, checks market eligibility, and sizes its own orders
from the current balance in paper or live mode.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
