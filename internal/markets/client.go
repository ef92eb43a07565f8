// Package markets talks to the Polymarket market-data surfaces: the
// Gamma API for market context and the CLOB API for order metadata.
package markets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// Client is an HTTP client for the Polymarket Gamma API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Gamma API client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FetchMarket fetches the market context for one condition id. Returns
// (nil, nil) when the Gamma API knows no such market.
func (c *Client) FetchMarket(ctx context.Context, conditionID string) (*types.MarketContext, error) {
	start := time.Now()

	endpoint := fmt.Sprintf("%s/markets", c.baseURL)

	params := url.Values{}
	params.Add("condition_ids", conditionID)

	requestURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "polymarket-mirror/1.0")

	c.logger.Debug("fetching-market", zap.String("condition-id", conditionID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		MarketFetchErrorsTotal.Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		MarketFetchErrorsTotal.Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	// Gamma API returns a direct array, not wrapped in an object
	var markets []types.MarketContext
	err = json.Unmarshal(body, &markets)
	if err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	MarketFetchDuration.Observe(time.Since(start).Seconds())

	if len(markets) == 0 {
		return nil, nil
	}

	return &markets[0], nil
}
