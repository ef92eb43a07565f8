// Package app wires the bot together: feed adapters, deduplication,
// classification, risk, execution and the operational HTTP surface.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-mirror/internal/execution"
	"github.com/mselser95/polymarket-mirror/internal/feed"
	"github.com/mselser95/polymarket-mirror/internal/journal"
	"github.com/mselser95/polymarket-mirror/internal/mirror"
	"github.com/mselser95/polymarket-mirror/internal/risk"
	"github.com/mselser95/polymarket-mirror/pkg/cache"
	"github.com/mselser95/polymarket-mirror/pkg/config"
	"github.com/mselser95/polymarket-mirror/pkg/healthprobe"
	"github.com/mselser95/polymarket-mirror/pkg/httpserver"
	"github.com/mselser95/polymarket-mirror/pkg/wallet"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	metaCache     cache.Cache
	walletClient  *wallet.Client
	tracker       *wallet.Tracker
	riskManager   *risk.Manager
	sizer         risk.SizingStrategy
	gateway       execution.Gateway
	journal       journal.Journal

	// Built in Run once the trader's proxy wallet is resolved.
	dedup *feed.Deduplicator
	loop  *mirror.Loop

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}
