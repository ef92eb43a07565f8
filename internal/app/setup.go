package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-mirror/internal/classify"
	"github.com/mselser95/polymarket-mirror/internal/execution"
	"github.com/mselser95/polymarket-mirror/internal/feed"
	"github.com/mselser95/polymarket-mirror/internal/journal"
	"github.com/mselser95/polymarket-mirror/internal/markets"
	"github.com/mselser95/polymarket-mirror/internal/mirror"
	"github.com/mselser95/polymarket-mirror/internal/risk"
	"github.com/mselser95/polymarket-mirror/pkg/cache"
	"github.com/mselser95/polymarket-mirror/pkg/config"
	"github.com/mselser95/polymarket-mirror/pkg/healthprobe"
	"github.com/mselser95/polymarket-mirror/pkg/httpserver"
	"github.com/mselser95/polymarket-mirror/pkg/wallet"
)

// New creates a new application instance. Components that need the
// resolved trader identity (feed adapters, the decision loop) are built
// in Run, after proxy resolution.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	metaCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	walletClient, err := wallet.NewClient(wallet.Config{
		RPCURL:       cfg.PolygonRPCURL,
		USDCContract: cfg.USDCContract,
		DataAPIURL:   cfg.PolymarketDataURL,
		GammaAPIURL:  cfg.PolymarketGammaURL,
		Logger:       logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup wallet client: %w", err)
	}

	riskManager, err := setupRiskManager(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup risk manager: %w", err)
	}

	decisionJournal, err := setupJournal(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup journal: %w", err)
	}

	gateway, err := setupGateway(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup gateway: %w", err)
	}

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		StatusHandler: httpserver.NewStatusHandler(
			riskManager, cfg.TraderAddress, cfg.ExecutionMode, cfg.SizingStrategy, logger),
	})

	var tracker *wallet.Tracker
	if cfg.FunderAddress != "" {
		tracker, err = wallet.NewTracker(walletClient, cfg.FunderAddress, cfg.PortfolioRefreshInterval, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("setup wallet tracker: %w", err)
		}
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		metaCache:     metaCache,
		walletClient:  walletClient,
		tracker:       tracker,
		riskManager:   riskManager,
		sizer:         setupSizer(cfg, riskManager, logger),
		gateway:       gateway,
		journal:       decisionJournal,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupRiskManager(cfg *config.Config, logger *zap.Logger) (*risk.Manager, error) {
	store, err := risk.NewFileStore(cfg.StateFilePath, logger)
	if err != nil {
		return nil, fmt.Errorf("create state store: %w", err)
	}

	return risk.NewManager(risk.Config{
		CertaintyPoolRatio:      cfg.CertaintyPoolRatio,
		NormalPoolRatio:         cfg.NormalPoolRatio,
		MaxSingleMarketRatio:    cfg.MaxSingleMarketRatio,
		MaxDailyLossRatio:       cfg.MaxDailyLossRatio,
		HaltDuration:            cfg.HaltDuration,
		FlipWindow:              cfg.FlipWindow,
		CertaintyMaxPerBetRatio: cfg.CertaintyMaxPerBetRatio,
		CertaintyPoolFloorRatio: cfg.CertaintyPoolFloorRatio,
		NormalMaxPerBetRatio:    cfg.NormalMaxPerBetRatio,
	}, store, logger)
}

func setupSizer(cfg *config.Config, manager *risk.Manager, logger *zap.Logger) risk.SizingStrategy {
	if cfg.SizingStrategy == "cluster" {
		return risk.NewClusterStrategy(risk.ClusterConfig{
			PruneWindow:     cfg.ClusterPruneWindow,
			MinBuckets:      cfg.ClusterMinBuckets,
			MinPortfolioPct: cfg.ClusterMinPortfolioPct,
		}, manager, logger)
	}

	return risk.NewDripStrategy(cfg.MaxSingleTradeRatio)
}

func setupJournal(cfg *config.Config, logger *zap.Logger) (journal.Journal, error) {
	if cfg.JournalMode == "postgres" {
		pg, err := journal.NewPostgresJournal(&journal.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres journal: %w", err)
		}
		return pg, nil
	}

	return journal.NewConsoleJournal(logger), nil
}

func setupGateway(cfg *config.Config, logger *zap.Logger) (execution.Gateway, error) {
	if cfg.ExecutionMode == "live" {
		orderClient, err := execution.NewOrderClient(&execution.OrderClientConfig{
			BaseURL:       cfg.PolymarketCLOBURL,
			APIKey:        cfg.PolymarketAPIKey,
			Secret:        cfg.PolymarketSecret,
			Passphrase:    cfg.PolymarketPassphrase,
			PrivateKey:    cfg.PrivateKey,
			ProxyAddress:  cfg.FunderAddress,
			SignatureType: cfg.SignatureType,
			Logger:        logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create order client: %w", err)
		}

		return execution.NewLiveGateway(orderClient, logger)
	}

	return execution.NewPaperGateway(logger)
}

// setupFeed builds the adapters for the configured feed mode over a
// shared dedup window.
func (a *App) setupFeed(traderAddress string) (*feed.Deduplicator, error) {
	var sources []feed.Source

	if a.cfg.FeedMode == "push" || a.cfg.FeedMode == "both" {
		push, err := feed.NewPushSource(feed.PushConfig{
			URL:           a.cfg.PolymarketWSURL,
			TraderAddress: traderAddress,
			DialTimeout:   a.cfg.WSDialTimeout,
			ReconnectBase: a.cfg.WSReconnectBase,
			ReconnectCap:  a.cfg.WSReconnectCap,
			BufferSize:    a.cfg.SignalBufferSize,
			Logger:        a.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create push source: %w", err)
		}

		sources = append(sources, push)
	}

	if a.cfg.FeedMode == "pull" || a.cfg.FeedMode == "both" {
		pull, err := feed.NewPullSource(feed.PullConfig{
			BaseURL:       a.cfg.PolymarketDataURL,
			TraderAddress: traderAddress,
			Interval:      a.cfg.PollInterval,
			Lookback:      a.cfg.PollLookback,
			RateLimit:     a.cfg.PollRateLimit,
			RetryDelay:    a.cfg.FeedRetryDelay,
			BufferSize:    a.cfg.SignalBufferSize,
			Logger:        a.logger,
		}, feed.NewWindow(a.cfg.DedupWindowMax, a.cfg.DedupWindowTrim))
		if err != nil {
			return nil, fmt.Errorf("create pull source: %w", err)
		}

		sources = append(sources, pull)
	}

	window := feed.NewWindow(a.cfg.DedupWindowMax, a.cfg.DedupWindowTrim)

	return feed.NewDeduplicator(sources, window, a.logger, a.cfg.SignalBufferSize), nil
}

// setupLoop builds the decision loop over the deduplicated stream.
func (a *App) setupLoop(dedup *feed.Deduplicator, traderAddress string) (*mirror.Loop, error) {
	gammaClient := markets.NewClient(a.cfg.PolymarketGammaURL, a.logger)
	metadataClient := markets.NewCachedMetadataClient(
		markets.NewMetadataClient(a.cfg.PolymarketCLOBURL), a.metaCache)

	return mirror.New(mirror.Config{
		TraderAddress:            traderAddress,
		FunderAddress:            a.cfg.FunderAddress,
		MinBalanceUSD:            a.cfg.MinBalanceUSD,
		FallbackPortfolioValue:   a.cfg.FallbackPortfolioValue,
		PortfolioRefreshInterval: a.cfg.PortfolioRefreshInterval,
	}, mirror.Deps{
		Signals:    dedup.Signals(),
		MarketData: gammaClient,
		Metadata:   metadataClient,
		Oracle:     a.walletClient,
		Filter: classify.MarketFilter{
			Category:         a.cfg.MarketCategory,
			TopicFilter:      a.cfg.MarketTopicFilter,
			SubtypeFilter:    a.cfg.MarketSubtypeFilter,
			ResolutionSource: a.cfg.MarketResolutionSource,
		},
		Classifier: classify.New(classify.Config{
			MinNotionalUSD:        a.cfg.MinNotionalUSD,
			InventoryMinPrice:     a.cfg.InventoryMinPrice,
			InventoryMaxPrice:     a.cfg.InventoryMaxPrice,
			InventoryAllocCeiling: a.cfg.InventoryAllocCeiling,
			CertaintyHighPrice:    a.cfg.CertaintyHighPrice,
			CertaintyLowPrice:     a.cfg.CertaintyLowPrice,
			HugeSizeThreshold:     a.cfg.HugeSizeThreshold,
			ResolutionCutoff:      a.cfg.ResolutionCutoff,
		}),
		Manager: a.riskManager,
		Sizer:   a.sizer,
		Gateway: a.gateway,
		Journal: a.journal,
		Logger:  a.logger,
	})
}

// resolveTrader maps the configured trader address to its proxy wallet.
// Resolution failures fall back to the configured address so startup
// never blocks on the Gamma API.
func (a *App) resolveTrader() string {
	ctx, cancel := context.WithTimeout(a.ctx, 15*time.Second)
	defer cancel()

	resolved, err := a.walletClient.ResolveProxy(ctx, a.cfg.TraderAddress)
	if err != nil {
		a.logger.Warn("proxy-resolution-failed-using-configured-address", zap.Error(err))
	}

	return resolved
}
