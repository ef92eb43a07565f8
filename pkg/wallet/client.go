// Package wallet resolves trading identities and values wallets: USDC
// balance on Polygon, portfolio value from the data API, and proxy
// wallet resolution through the Gamma public profile.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const usdcDecimals = 1e6

// Config holds wallet client configuration.
type Config struct {
	RPCURL       string
	USDCContract string
	DataAPIURL   string
	GammaAPIURL  string
	Logger       *zap.Logger
}

// Client fetches wallet data from the chain and the Polymarket APIs.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Position represents a market position from the data API.
type Position struct {
	MarketSlug   string
	Outcome      string
	Size         float64
	Value        float64 // Current USD value
	InitialValue float64 // Cost basis USD
	CashPnL      float64 // USD P&L
}

// dataAPIPosition represents the response from the Polymarket data API.
type dataAPIPosition struct {
	Asset        string  `json:"asset"`
	ConditionID  string  `json:"conditionId"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	InitialValue float64 `json:"initialValue"`
	CurrentValue float64 `json:"currentValue"`
	CashPnL      float64 `json:"cashPnl"`
	Slug         string  `json:"slug"`
	Outcome      string  `json:"outcome"`
}

// NewClient creates a new wallet client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpcURL cannot be empty")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: cfg.Logger,
	}, nil
}

// USDCBalance fetches the wallet's USDC balance in whole USD.
func (c *Client) USDCBalance(ctx context.Context, address string) (float64, error) {
	start := time.Now()

	client, err := ethclient.DialContext(ctx, c.cfg.RPCURL)
	if err != nil {
		UpdateErrorsTotal.Inc()
		return 0, fmt.Errorf("dial RPC: %w", err)
	}
	defer client.Close()

	raw, err := c.getERC20Balance(ctx, client, common.HexToAddress(address), c.cfg.USDCContract)
	if err != nil {
		UpdateErrorsTotal.Inc()
		return 0, fmt.Errorf("get USDC balance: %w", err)
	}

	balance := rawToUSD(raw)

	USDCBalance.Set(balance)
	FetchDuration.Observe(time.Since(start).Seconds())

	return balance, nil
}

// getERC20Balance fetches an ERC20 token balance for an address.
func (c *Client) getERC20Balance(
	ctx context.Context,
	client *ethclient.Client,
	owner common.Address,
	tokenAddr string,
) (*big.Int, error) {
	balanceOfABI := `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}]`

	parsedABI, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("parse ABI: %w", err)
	}

	data, err := parsedABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("pack ABI: %w", err)
	}

	tokenAddress := common.HexToAddress(tokenAddr)
	msg := ethereum.CallMsg{
		To:   &tokenAddress,
		Data: data,
	}

	result, err := client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call contract: %w", err)
	}

	return new(big.Int).SetBytes(result), nil
}

// Positions fetches open positions from the data API.
func (c *Client) Positions(ctx context.Context, address string) ([]Position, error) {
	url := fmt.Sprintf("%s/positions?user=%s&sizeThreshold=0.01", c.cfg.DataAPIURL, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var apiPositions []dataAPIPosition
	err = json.NewDecoder(resp.Body).Decode(&apiPositions)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	positions := make([]Position, 0, len(apiPositions))
	for _, pos := range apiPositions {
		if pos.Size > 0 {
			positions = append(positions, Position{
				MarketSlug:   pos.Slug,
				Outcome:      pos.Outcome,
				Size:         pos.Size,
				Value:        pos.CurrentValue,
				InitialValue: pos.InitialValue,
				CashPnL:      pos.CashPnL,
			})
		}
	}

	return positions, nil
}

// PortfolioValue returns balance plus the mark-to-market value of open
// positions for the address.
func (c *Client) PortfolioValue(ctx context.Context, address string) (float64, error) {
	balance, err := c.USDCBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("portfolio balance: %w", err)
	}

	positions, err := c.Positions(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("portfolio positions: %w", err)
	}

	total := balance
	for _, pos := range positions {
		total += pos.Value
	}

	PortfolioValue.Set(total)

	return total, nil
}

// ResolveProxy maps an externally-owned account to its Polymarket proxy
// wallet via the Gamma public profile. A missing profile (404) or any
// failure resolves to the input address unchanged.
func (c *Client) ResolveProxy(ctx context.Context, address string) (string, error) {
	url := fmt.Sprintf("%s/public-profile?address=%s", c.cfg.GammaAPIURL, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return address, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return address, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Info("proxy-profile-not-found-using-as-is", zap.String("address", address))
		return address, nil
	}

	if resp.StatusCode != http.StatusOK {
		return address, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var profile struct {
		ProxyWallet string `json:"proxyWallet"`
	}
	err = json.NewDecoder(resp.Body).Decode(&profile)
	if err != nil {
		return address, fmt.Errorf("decode response: %w", err)
	}

	if profile.ProxyWallet != "" && !strings.EqualFold(profile.ProxyWallet, address) {
		c.logger.Info("resolved-proxy-wallet",
			zap.String("eoa", address),
			zap.String("proxy", profile.ProxyWallet))
		return profile.ProxyWallet, nil
	}

	return address, nil
}

// rawToUSD converts a 6-decimal USDC amount to whole USD.
func rawToUSD(raw *big.Int) float64 {
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), big.NewFloat(usdcDecimals)).Float64()
	return value
}
