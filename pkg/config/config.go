package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Tracked trader
	TraderAddress string

	// Polymarket API
	PolymarketWSURL      string
	PolymarketDataURL    string
	PolymarketGammaURL   string
	PolymarketCLOBURL    string
	PolymarketAPIKey     string
	PolymarketSecret     string
	PolymarketPassphrase string

	// Feed
	FeedMode         string // "push", "pull" or "both"
	PollInterval     time.Duration
	PollLookback     time.Duration
	PollRateLimit    float64
	FeedRetryDelay   time.Duration
	WSDialTimeout    time.Duration
	WSReconnectBase  time.Duration
	WSReconnectCap   int
	SignalBufferSize int
	DedupWindowMax   int
	DedupWindowTrim  int

	// Market filter
	MarketCategory         string
	MarketTopicFilter      string
	MarketSubtypeFilter    string
	MarketResolutionSource string

	// Classifier
	MinNotionalUSD        float64
	InventoryMinPrice     float64
	InventoryMaxPrice     float64
	InventoryAllocCeiling float64
	CertaintyHighPrice    float64
	CertaintyLowPrice     float64
	HugeSizeThreshold     float64
	ResolutionCutoff      time.Duration

	// Risk
	CertaintyPoolRatio      float64
	NormalPoolRatio         float64
	MaxSingleMarketRatio    float64
	MaxDailyLossRatio       float64
	MaxSingleTradeRatio     float64
	HaltDuration            time.Duration
	FlipWindow              time.Duration
	MinBalanceUSD           float64
	StateFilePath           string
	SizingStrategy          string // "drip" or "cluster"
	CertaintyMaxPerBetRatio float64
	CertaintyPoolFloorRatio float64
	NormalMaxPerBetRatio    float64
	ClusterPruneWindow      time.Duration
	ClusterMinBuckets       int
	ClusterMinPortfolioPct  float64

	// Wallet
	PolygonRPCURL            string
	USDCContract             string
	FallbackPortfolioValue   float64
	PortfolioRefreshInterval time.Duration

	// Execution
	ExecutionMode string // "paper" or "live"
	PrivateKey    string
	FunderAddress string
	SignatureType int

	// Journal
	JournalMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Tracked trader
		TraderAddress: os.Getenv("TRADER_ADDRESS"),

		// Polymarket API defaults
		PolymarketWSURL:      getEnvOrDefault("POLYMARKET_WS_URL", "wss://ws-live-data.polymarket.com"),
		PolymarketDataURL:    getEnvOrDefault("POLYMARKET_DATA_API_URL", "https://data-api.polymarket.com"),
		PolymarketGammaURL:   getEnvOrDefault("POLYMARKET_GAMMA_API_URL", "https://gamma-api.polymarket.com"),
		PolymarketCLOBURL:    getEnvOrDefault("POLYMARKET_CLOB_API_URL", "https://clob.polymarket.com"),
		PolymarketAPIKey:     os.Getenv("POLYMARKET_API_KEY"),
		PolymarketSecret:     os.Getenv("POLYMARKET_SECRET"),
		PolymarketPassphrase: os.Getenv("POLYMARKET_PASSPHRASE"),

		// Feed defaults
		FeedMode:         getEnvOrDefault("FEED_MODE", "both"),
		PollInterval:     getDurationOrDefault("POLL_INTERVAL", 3*time.Second),
		PollLookback:     getDurationOrDefault("POLL_LOOKBACK", 60*time.Second),
		PollRateLimit:    getFloat64OrDefault("POLL_RATE_LIMIT", 1.0),
		FeedRetryDelay:   getDurationOrDefault("FEED_RETRY_DELAY", 5*time.Second),
		WSDialTimeout:    getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSReconnectBase:  getDurationOrDefault("WS_RECONNECT_BASE_DELAY", 1*time.Second),
		WSReconnectCap:   getIntOrDefault("WS_RECONNECT_ATTEMPT_CAP", 30),
		SignalBufferSize: getIntOrDefault("SIGNAL_BUFFER_SIZE", 256),
		DedupWindowMax:   getIntOrDefault("DEDUP_WINDOW_MAX", 500),
		DedupWindowTrim:  getIntOrDefault("DEDUP_WINDOW_TRIM", 250),

		// Market filter defaults
		MarketCategory:         getEnvOrDefault("MARKET_CATEGORY", "Weather"),
		MarketTopicFilter:      getEnvOrDefault("MARKET_TOPIC_FILTER", "London"),
		MarketSubtypeFilter:    getEnvOrDefault("MARKET_SUBTYPE_FILTER", "Highest temperature"),
		MarketResolutionSource: getEnvOrDefault("MARKET_RESOLUTION_SOURCE", "official weather station"),

		// Classifier defaults
		MinNotionalUSD:        getFloat64OrDefault("MIN_NOTIONAL_USD", 1.0),
		InventoryMinPrice:     getFloat64OrDefault("INVENTORY_MIN_PRICE", 0.05),
		InventoryMaxPrice:     getFloat64OrDefault("INVENTORY_MAX_PRICE", 0.80),
		InventoryAllocCeiling: getFloat64OrDefault("INVENTORY_ALLOC_CEILING", 0.04),
		CertaintyHighPrice:    getFloat64OrDefault("CERTAINTY_HIGH_PRICE", 0.95),
		CertaintyLowPrice:     getFloat64OrDefault("CERTAINTY_LOW_PRICE", 0.02),
		HugeSizeThreshold:     getFloat64OrDefault("HUGE_SIZE_THRESHOLD", 0.06),
		ResolutionCutoff:      getDurationOrDefault("RESOLUTION_CUTOFF", 60*time.Minute),

		// Risk defaults
		CertaintyPoolRatio:      getFloat64OrDefault("CERTAINTY_POOL_RATIO", 0.40),
		NormalPoolRatio:         getFloat64OrDefault("NORMAL_POOL_RATIO", 0.60),
		MaxSingleMarketRatio:    getFloat64OrDefault("MAX_SINGLE_MARKET_RATIO", 0.20),
		MaxDailyLossRatio:       getFloat64OrDefault("MAX_DAILY_LOSS_RATIO", 0.15),
		MaxSingleTradeRatio:     getFloat64OrDefault("MAX_SINGLE_TRADE_RATIO", 0.0025),
		HaltDuration:            getDurationOrDefault("HALT_DURATION", 24*time.Hour),
		FlipWindow:              getDurationOrDefault("FLIP_WINDOW", 10*time.Minute),
		MinBalanceUSD:           getFloat64OrDefault("MIN_BALANCE_USD", 5.0),
		StateFilePath:           getEnvOrDefault("STATE_FILE_PATH", "bot_state.json"),
		SizingStrategy:          getEnvOrDefault("SIZING_STRATEGY", "drip"),
		CertaintyMaxPerBetRatio: getFloat64OrDefault("CERTAINTY_MAX_PER_BET_RATIO", 0.10),
		CertaintyPoolFloorRatio: getFloat64OrDefault("CERTAINTY_POOL_FLOOR_RATIO", 0.05),
		NormalMaxPerBetRatio:    getFloat64OrDefault("NORMAL_MAX_PER_BET_RATIO", 0.05),
		ClusterPruneWindow:      getDurationOrDefault("CLUSTER_PRUNE_WINDOW", 60*time.Minute),
		ClusterMinBuckets:       getIntOrDefault("CLUSTER_MIN_BUCKETS", 2),
		ClusterMinPortfolioPct:  getFloat64OrDefault("CLUSTER_MIN_PORTFOLIO_PCT", 0.04),

		// Wallet defaults
		PolygonRPCURL:            getEnvOrDefault("POLYGON_RPC_URL", "https://polygon-rpc.com"),
		USDCContract:             getEnvOrDefault("USDC_CONTRACT", "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		FallbackPortfolioValue:   getFloat64OrDefault("FALLBACK_PORTFOLIO_VALUE", 1600.0),
		PortfolioRefreshInterval: getDurationOrDefault("PORTFOLIO_REFRESH_INTERVAL", 1*time.Hour),

		// Execution defaults
		ExecutionMode: getEnvOrDefault("EXECUTION_MODE", "paper"),
		PrivateKey:    os.Getenv("PRIVATE_KEY"),
		FunderAddress: os.Getenv("FUNDER_ADDRESS"),
		SignatureType: getIntOrDefault("SIGNATURE_TYPE", 1),

		// Journal defaults
		JournalMode:  getEnvOrDefault("JOURNAL_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "polymarket"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "polymarket123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "polymarket_mirror"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.TraderAddress == "" {
		return fmt.Errorf("TRADER_ADDRESS cannot be empty")
	}

	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.FeedMode != "push" && c.FeedMode != "pull" && c.FeedMode != "both" {
		return fmt.Errorf("FEED_MODE must be 'push', 'pull' or 'both', got %q", c.FeedMode)
	}

	if c.ExecutionMode != "paper" && c.ExecutionMode != "live" {
		return fmt.Errorf("EXECUTION_MODE must be 'paper' or 'live', got %q", c.ExecutionMode)
	}

	if c.ExecutionMode == "live" && c.PrivateKey == "" {
		return fmt.Errorf("PRIVATE_KEY cannot be empty in live execution mode")
	}

	if c.SizingStrategy != "drip" && c.SizingStrategy != "cluster" {
		return fmt.Errorf("SIZING_STRATEGY must be 'drip' or 'cluster', got %q", c.SizingStrategy)
	}

	if c.JournalMode != "console" && c.JournalMode != "postgres" {
		return fmt.Errorf("JOURNAL_MODE must be 'console' or 'postgres', got %q", c.JournalMode)
	}

	if c.InventoryMinPrice <= 0 || c.InventoryMaxPrice >= 1.0 || c.InventoryMinPrice >= c.InventoryMaxPrice {
		return fmt.Errorf("inventory price band must satisfy 0 < min < max < 1.0, got [%f, %f]",
			c.InventoryMinPrice, c.InventoryMaxPrice)
	}

	if c.MaxSingleTradeRatio <= 0 || c.MaxSingleTradeRatio >= 1.0 {
		return fmt.Errorf("MAX_SINGLE_TRADE_RATIO must be between 0 and 1.0, got %f", c.MaxSingleTradeRatio)
	}

	if c.MaxSingleMarketRatio <= 0 || c.MaxSingleMarketRatio > 1.0 {
		return fmt.Errorf("MAX_SINGLE_MARKET_RATIO must be between 0 and 1.0, got %f", c.MaxSingleMarketRatio)
	}

	if c.DedupWindowTrim <= 0 || c.DedupWindowTrim >= c.DedupWindowMax {
		return fmt.Errorf("DEDUP_WINDOW_TRIM must be between 0 and DEDUP_WINDOW_MAX (%d), got %d",
			c.DedupWindowMax, c.DedupWindowTrim)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
