package feed

import (
	"context"
	"sync"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// Deduplicator merges the output of one or more sources into a single
// stream, dropping signals whose key has already been seen. Running both
// feed variants concurrently still yields each fill exactly once
// downstream. Output order is arrival order across sources; each source
// emits in ascending timestamp order internally.
type Deduplicator struct {
	sources []Source
	window  *Window
	logger  *zap.Logger
	out     chan *types.TradeSignal
}

// NewDeduplicator creates a deduplicator over the given sources.
func NewDeduplicator(sources []Source, window *Window, logger *zap.Logger, bufferSize int) *Deduplicator {
	return &Deduplicator{
		sources: sources,
		window:  window,
		logger:  logger,
		out:     make(chan *types.TradeSignal, bufferSize),
	}
}

// Start runs every source and forwards first-seen signals to the output
// channel. It returns immediately; the output channel closes once all
// sources have stopped.
func (d *Deduplicator) Start(ctx context.Context) {
	var wg sync.WaitGroup

	for _, src := range d.sources {
		wg.Add(1)

		go func(src Source) {
			defer wg.Done()

			err := src.Start(ctx)
			if err != nil && ctx.Err() == nil {
				d.logger.Error("feed-source-stopped", zap.String("source", src.Name()), zap.Error(err))
			}
		}(src)

		wg.Add(1)

		go func(src Source) {
			defer wg.Done()
			d.forward(src)
		}(src)
	}

	go func() {
		wg.Wait()
		close(d.out)
	}()
}

// forward drains one source channel through the shared dedup window.
func (d *Deduplicator) forward(src Source) {
	for signal := range src.Signals() {
		key := signal.DedupKey()

		if d.window.Seen(key) {
			DuplicatesDroppedTotal.WithLabelValues(src.Name()).Inc()
			d.logger.Debug("duplicate-signal-dropped",
				zap.String("source", src.Name()),
				zap.String("key", key))
			continue
		}

		DedupWindowSize.Set(float64(d.window.Len()))
		SignalsForwardedTotal.WithLabelValues(src.Name()).Inc()

		d.out <- signal
	}
}

// Signals returns the deduplicated output channel.
func (d *Deduplicator) Signals() <-chan *types.TradeSignal {
	return d.out
}
