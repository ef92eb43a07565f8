package cmd

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-mirror/pkg/wallet"
)

//nolint:gochecknoglobals // Cobra boilerplate
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Check a wallet's USDC balance and positions",
	Long: `Display the current holdings for a wallet:
- USDC balance (for trading)
- Active positions (outcome tokens held)
- Total portfolio value

The address comes from --address, or is derived from PRIVATE_KEY in the
environment when the flag is omitted.`,
	RunE: runBalance,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	balanceAddress string
	balanceRPC     string
	showPositions  bool
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVarP(&balanceAddress, "address", "a", "", "Wallet address to inspect")
	balanceCmd.Flags().StringVarP(&balanceRPC, "rpc", "r", "https://polygon-rpc.com", "Polygon RPC endpoint")
	balanceCmd.Flags().BoolVarP(&showPositions, "positions", "p", true, "Show active positions")
}

func runBalance(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	address := balanceAddress
	if address == "" {
		derived, err := deriveAddressFromKey(os.Getenv("PRIVATE_KEY"))
		if err != nil {
			return fmt.Errorf("no --address given and PRIVATE_KEY unusable: %w", err)
		}
		address = derived
	}

	client, err := wallet.NewClient(wallet.Config{
		RPCURL:       balanceRPC,
		USDCContract: getEnvOrDefault("USDC_CONTRACT", "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		DataAPIURL:   getEnvOrDefault("POLYMARKET_DATA_API_URL", "https://data-api.polymarket.com"),
		GammaAPIURL:  getEnvOrDefault("POLYMARKET_GAMMA_API_URL", "https://gamma-api.polymarket.com"),
		Logger:       zap.NewNop(),
	})
	if err != nil {
		return fmt.Errorf("create wallet client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("=== Wallet Balance Sheet ===\n\n")
	fmt.Printf("Address: %s\n\n", address)

	balance, err := client.USDCBalance(ctx, address)
	if err != nil {
		return fmt.Errorf("get USDC balance: %w", err)
	}

	fmt.Printf("USDC Balance: $%.2f\n", balance)

	positionsValue := 0.0

	if showPositions {
		positions, err := client.Positions(ctx, address)
		if err != nil {
			fmt.Printf("\nError fetching positions: %v\n", err)
		} else if len(positions) == 0 {
			fmt.Printf("\nNo active positions\n")
		} else {
			fmt.Printf("\n=== Active Positions ===\n\n")
			for _, pos := range positions {
				fmt.Printf("Market: %s\n", pos.MarketSlug)
				fmt.Printf("  Outcome: %s\n", pos.Outcome)
				fmt.Printf("  Size: %.2f tokens\n", pos.Size)
				fmt.Printf("  Value: $%.2f\n", pos.Value)
				fmt.Printf("  PnL: $%.2f\n\n", pos.CashPnL)
				positionsValue += pos.Value
			}
		}
	}

	fmt.Printf("=== Summary ===\n")
	fmt.Printf("Cash: $%.2f\n", balance)
	fmt.Printf("Positions: $%.2f\n", positionsValue)
	fmt.Printf("Portfolio Value: $%.2f\n", balance+positionsValue)

	return nil
}

// deriveAddressFromKey derives the checksummed EOA address from a hex
// private key, with or without a 0x prefix.
func deriveAddressFromKey(privateKeyHex string) (string, error) {
	if privateKeyHex == "" {
		return "", fmt.Errorf("private key is empty")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("unexpected public key type")
	}

	return crypto.PubkeyToAddress(*publicKey).Hex(), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
