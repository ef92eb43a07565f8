package config

import (
	"os"
	"testing"
	"time"
)

func validTestConfig() *Config {
	return &Config{
		TraderAddress:        "0x1234567890abcdef1234567890abcdef12345678",
		HTTPPort:             "8080",
		FeedMode:             "both",
		ExecutionMode:        "paper",
		SizingStrategy:       "drip",
		JournalMode:          "console",
		InventoryMinPrice:    0.05,
		InventoryMaxPrice:    0.80,
		MaxSingleTradeRatio:  0.0025,
		MaxSingleMarketRatio: 0.20,
		DedupWindowMax:       500,
		DedupWindowTrim:      250,
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Setenv("TRADER_ADDRESS", "0x1234567890abcdef1234567890abcdef12345678")
	t.Cleanup(func() {
		os.Unsetenv("TRADER_ADDRESS")
	})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.FeedMode != "both" {
		t.Errorf("expected FeedMode to be 'both', got %q", cfg.FeedMode)
	}

	if cfg.PollInterval != 3*time.Second {
		t.Errorf("expected PollInterval to be 3s, got %v", cfg.PollInterval)
	}

	if cfg.HaltDuration != 24*time.Hour {
		t.Errorf("expected HaltDuration to be 24h, got %v", cfg.HaltDuration)
	}

	if cfg.FlipWindow != 10*time.Minute {
		t.Errorf("expected FlipWindow to be 10m, got %v", cfg.FlipWindow)
	}

	if cfg.MaxSingleTradeRatio != 0.0025 {
		t.Errorf("expected MaxSingleTradeRatio to be 0.0025, got %f", cfg.MaxSingleTradeRatio)
	}

	if cfg.DedupWindowMax != 500 || cfg.DedupWindowTrim != 250 {
		t.Errorf("expected dedup window 500/250, got %d/%d", cfg.DedupWindowMax, cfg.DedupWindowTrim)
	}
}

func TestLoadFromEnv_MissingTraderAddress(t *testing.T) {
	os.Unsetenv("TRADER_ADDRESS")

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("expected error for missing TRADER_ADDRESS, got nil")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	os.Setenv("TRADER_ADDRESS", "0x1234567890abcdef1234567890abcdef12345678")
	os.Setenv("FEED_MODE", "pull")
	os.Setenv("FLIP_WINDOW", "600s")
	os.Setenv("MAX_SINGLE_TRADE_RATIO", "0.005")
	t.Cleanup(func() {
		os.Unsetenv("TRADER_ADDRESS")
		os.Unsetenv("FEED_MODE")
		os.Unsetenv("FLIP_WINDOW")
		os.Unsetenv("MAX_SINGLE_TRADE_RATIO")
	})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.FeedMode != "pull" {
		t.Errorf("expected FeedMode to be 'pull', got %q", cfg.FeedMode)
	}

	if cfg.FlipWindow != 600*time.Second {
		t.Errorf("expected FlipWindow to be 600s, got %v", cfg.FlipWindow)
	}

	if cfg.MaxSingleTradeRatio != 0.005 {
		t.Errorf("expected MaxSingleTradeRatio to be 0.005, got %f", cfg.MaxSingleTradeRatio)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "invalid_feed_mode",
			mutate: func(c *Config) { c.FeedMode = "stream" },
		},
		{
			name:   "invalid_execution_mode",
			mutate: func(c *Config) { c.ExecutionMode = "dry-run" },
		},
		{
			name:   "live_without_private_key",
			mutate: func(c *Config) { c.ExecutionMode = "live"; c.PrivateKey = "" },
		},
		{
			name:   "invalid_sizing_strategy",
			mutate: func(c *Config) { c.SizingStrategy = "kelly" },
		},
		{
			name:   "invalid_journal_mode",
			mutate: func(c *Config) { c.JournalMode = "kafka" },
		},
		{
			name:   "inverted_price_band",
			mutate: func(c *Config) { c.InventoryMinPrice = 0.90 },
		},
		{
			name:   "trade_ratio_too_large",
			mutate: func(c *Config) { c.MaxSingleTradeRatio = 1.5 },
		},
		{
			name:   "dedup_trim_above_max",
			mutate: func(c *Config) { c.DedupWindowTrim = 600 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
