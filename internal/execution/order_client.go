package execution

import (
	"context"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/polymarket/go-order-utils/pkg/builder"
	"github.com/polymarket/go-order-utils/pkg/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// OrderClient signs orders with the funder's key and submits them to the
// Polymarket CLOB using L2 (HMAC) authentication.
type OrderClient struct {
	baseURL       string
	apiKey        string
	secret        string
	passphrase    string
	privateKey    *ecdsa.PrivateKey
	address       string // EOA address (signer)
	proxyAddress  string // proxy address (maker/funder)
	signatureType model.SignatureType
	orderBuilder  builder.ExchangeOrderBuilder
	httpClient    *http.Client
	logger        *zap.Logger
}

// OrderClientConfig holds configuration for the order client.
type OrderClientConfig struct {
	BaseURL       string
	APIKey        string
	Secret        string
	Passphrase    string
	PrivateKey    string
	ProxyAddress  string
	SignatureType int
	Logger        *zap.Logger
}

// NewOrderClient creates an order client. The signer address is derived
// from the private key; the maker defaults to the proxy wallet when one
// is configured.
func NewOrderClient(cfg *OrderClientConfig) (*OrderClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("derive public key")
	}
	address := crypto.PubkeyToAddress(*publicKey).Hex()

	chainID := big.NewInt(137) // Polygon mainnet
	orderBuilder := builder.NewExchangeOrderBuilderImpl(chainID, nil)

	return &OrderClient{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		secret:        cfg.Secret,
		passphrase:    cfg.Passphrase,
		privateKey:    privateKey,
		address:       address,
		proxyAddress:  cfg.ProxyAddress,
		signatureType: model.SignatureType(cfg.SignatureType),
		orderBuilder:  orderBuilder,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		logger:        cfg.Logger,
	}, nil
}

// SignedOrderJSON is the wire format the CLOB expects for a signed order.
type SignedOrderJSON struct {
	Salt          int64  `json:"salt"` // integer, not string
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Side          string `json:"side"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	SignatureType int    `json:"signatureType"` // integer, not string
	Signature     string `json:"signature"`
}

// OrderResponse represents the API response for an order.
type OrderResponse struct {
	OrderID      string `json:"orderID"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMsg"`
}

// PlaceOrder builds, signs and submits one order for the intent. The
// limit price is the intent price rounded to the market's tick size.
func (c *OrderClient) PlaceOrder(ctx context.Context, intent *Intent) (*OrderResponse, error) {
	if intent == nil {
		return nil, errors.New("intent cannot be nil")
	}

	if intent.AssetID == "" {
		return nil, &types.OrderError{Code: "MISSING_ASSET_ID", Message: "intent has no token id", IntentID: intent.ID}
	}

	price := roundToTick(intent.Price, intent.TickSize)
	if price <= 0 || price >= 1 {
		return nil, &types.OrderError{
			Code:     types.ErrInvalidMinTickSize,
			Message:  fmt.Sprintf("price %.4f outside (0, 1) after tick rounding", price),
			IntentID: intent.ID,
		}
	}

	makerAddress := c.address
	if c.proxyAddress != "" {
		makerAddress = c.proxyAddress
	}

	// BUY spends USDC for outcome tokens; SELL is the reverse.
	shares := intent.SizeUSD / price

	var side model.Side
	var makerAmount, takerAmount string
	switch intent.Side {
	case types.SideBuy:
		side = model.BUY
		makerAmount = usdToRawAmount(intent.SizeUSD)
		takerAmount = usdToRawAmount(shares)
	case types.SideSell:
		side = model.SELL
		makerAmount = usdToRawAmount(shares)
		takerAmount = usdToRawAmount(intent.SizeUSD)
	default:
		return nil, &types.OrderError{Code: "INVALID_SIDE", Message: string(intent.Side), IntentID: intent.ID}
	}

	orderData := &model.OrderData{
		Maker:         makerAddress,
		Taker:         zeroAddress,
		TokenId:       intent.AssetID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Side:          side,
		FeeRateBps:    "0",
		Nonce:         "0",
		Signer:        c.address,
		Expiration:    "0",
		SignatureType: c.signatureType,
	}

	contract := model.CTFExchange
	if intent.NegRisk {
		contract = model.NegRiskCTFExchange
	}

	signedOrder, err := c.orderBuilder.BuildSignedOrder(c.privateKey, orderData, contract)
	if err != nil {
		return nil, fmt.Errorf("build order: %w", err)
	}

	c.logger.Debug("order-built",
		zap.String("intent-id", intent.ID),
		zap.String("maker", makerAddress),
		zap.String("side", string(intent.Side)),
		zap.Float64("price", price),
		zap.Float64("size-usd", intent.SizeUSD))

	return c.submitOrder(ctx, intent.ID, signedOrder)
}

func (c *OrderClient) submitOrder(ctx context.Context, intentID string, order *model.SignedOrder) (*OrderResponse, error) {
	sideStr := "BUY"
	if order.Side.Uint64() == uint64(model.SELL) {
		sideStr = "SELL"
	}

	jsonOrder := SignedOrderJSON{
		Salt:          order.Salt.Int64(),
		Maker:         order.Maker.Hex(),
		Signer:        order.Signer.Hex(),
		Taker:         order.Taker.Hex(),
		TokenID:       order.TokenId.String(),
		MakerAmount:   order.MakerAmount.String(),
		TakerAmount:   order.TakerAmount.String(),
		Side:          sideStr,
		Expiration:    order.Expiration.String(),
		Nonce:         order.Nonce.String(),
		FeeRateBps:    order.FeeRateBps.String(),
		SignatureType: int(order.SignatureType.Int64()),
		Signature:     "0x" + common.Bytes2Hex(order.Signature),
	}

	// "owner" is the API key, not the maker address.
	orderRequest := map[string]interface{}{
		"order":     jsonOrder,
		"owner":     c.apiKey,
		"orderType": "GTC",
	}

	reqBody, err := json.Marshal(orderRequest)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	method := http.MethodPost
	requestPath := "/order"

	signaturePayload := timestamp + method + requestPath + string(reqBody)

	// The CLOB uses URL-safe base64 for both the secret and the signature.
	secretBytes, err := base64.URLEncoding.DecodeString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}

	h := hmac.New(sha256.New, secretBytes)
	h.Write([]byte(signaturePayload))
	signature := base64.URLEncoding.EncodeToString(h.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// POLY_ADDRESS is the EOA that signed, even when a proxy is the maker.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("POLY_API_KEY", c.apiKey)
	req.Header.Set("POLY_SIGNATURE", signature)
	req.Header.Set("POLY_TIMESTAMP", timestamp)
	req.Header.Set("POLY_PASSPHRASE", c.passphrase)
	req.Header.Set("POLY_ADDRESS", c.address)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, clobError(intentID, resp.StatusCode, body)
	}

	var orderResp OrderResponse
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &orderResp, nil
}

// clobError converts a failed CLOB response into a typed order error so
// callers can match on known rejection codes.
func clobError(intentID string, status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}

	code := fmt.Sprintf("HTTP_%d", status)
	message := string(body)

	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error

		switch {
		case strings.Contains(payload.Error, types.ErrNotEnoughBalance):
			code = types.ErrNotEnoughBalance
		case strings.Contains(payload.Error, types.ErrInvalidMinTickSize):
			code = types.ErrInvalidMinTickSize
		case strings.Contains(payload.Error, types.ErrFOKNotFilled):
			code = types.ErrFOKNotFilled
		case strings.Contains(payload.Error, types.ErrMarketNotReady):
			code = types.ErrMarketNotReady
		}
	}

	return &types.OrderError{Code: code, Message: message, IntentID: intentID}
}

// roundToTick snaps a price to the nearest multiple of the tick size.
func roundToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}

	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)

	rounded, _ := p.Div(t).Round(0).Mul(t).Float64()

	return rounded
}

// usdToRawAmount converts USD to a 6-decimal raw amount string.
func usdToRawAmount(usd float64) string {
	return decimal.NewFromFloat(usd).Shift(6).Round(0).String()
}
