package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-mirror/pkg/wallet"
)

//nolint:gochecknoglobals // Cobra boilerplate
var resolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "Resolve an address to its Polymarket proxy wallet",
	Long: `Looks up the Gamma public profile for an externally-owned account
and prints the proxy wallet Polymarket trades through. Addresses without
a profile resolve to themselves.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	address := args[0]
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return fmt.Errorf("invalid address: %s", address)
	}

	client, err := wallet.NewClient(wallet.Config{
		RPCURL:       getEnvOrDefault("POLYGON_RPC_URL", "https://polygon-rpc.com"),
		USDCContract: getEnvOrDefault("USDC_CONTRACT", "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		DataAPIURL:   getEnvOrDefault("POLYMARKET_DATA_API_URL", "https://data-api.polymarket.com"),
		GammaAPIURL:  getEnvOrDefault("POLYMARKET_GAMMA_API_URL", "https://gamma-api.polymarket.com"),
		Logger:       zap.NewNop(),
	})
	if err != nil {
		return fmt.Errorf("create wallet client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	proxy, err := client.ResolveProxy(ctx, address)
	if err != nil {
		return fmt.Errorf("resolve proxy: %w", err)
	}

	if strings.EqualFold(proxy, address) {
		fmt.Printf("%s trades directly (no proxy wallet)\n", address)
	} else {
		fmt.Printf("%s trades through proxy %s\n", address, proxy)
	}

	return nil
}
