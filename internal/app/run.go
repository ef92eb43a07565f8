package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("trader", a.cfg.TraderAddress),
		zap.String("execution-mode", a.cfg.ExecutionMode),
		zap.String("sizing-strategy", a.cfg.SizingStrategy),
		zap.String("feed-mode", a.cfg.FeedMode),
		zap.String("log-level", a.cfg.LogLevel))

	a.healthChecker.SetComponentReady("feed", false)
	a.healthChecker.SetComponentReady("loop", false)

	err := a.startComponents()
	if err != nil {
		return err
	}

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("ws-url", a.cfg.PolymarketWSURL))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give the HTTP server a moment to bind.
	time.Sleep(100 * time.Millisecond)

	if a.tracker != nil {
		a.wg.Add(1)
		go a.runWalletTracker()
	}

	trader := a.resolveTrader()

	dedup, err := a.setupFeed(trader)
	if err != nil {
		return fmt.Errorf("setup feed: %w", err)
	}
	a.dedup = dedup

	loop, err := a.setupLoop(dedup, trader)
	if err != nil {
		return fmt.Errorf("setup decision loop: %w", err)
	}
	a.loop = loop

	a.dedup.Start(a.ctx)
	a.healthChecker.SetComponentReady("feed", true)

	a.wg.Add(1)
	go a.runDecisionLoop()
	a.healthChecker.SetComponentReady("loop", true)

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runWalletTracker() {
	defer a.wg.Done()
	a.tracker.Run(a.ctx)
}

func (a *App) runDecisionLoop() {
	defer a.wg.Done()
	defer a.healthChecker.SetComponentReady("loop", false)
	a.loop.Run(a.ctx)
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
