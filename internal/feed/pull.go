package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PullConfig holds pull source configuration.
type PullConfig struct {
	BaseURL       string
	TraderAddress string
	Interval      time.Duration
	Lookback      time.Duration
	RateLimit     float64
	RetryDelay    time.Duration
	BufferSize    int
	PageLimit     int
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// PullSource polls the data-api activity endpoint for the tracked
// trader's recent fills. The upstream response order is not guaranteed,
// so items are sorted by timestamp before processing. A local seen-set
// plus a low-watermark timestamp guarantee each fill is emitted at most
// once even across out-of-order arrivals. The first successful poll is
// a priming poll: it populates the seen-set without emitting, so a
// restart never replays historic fills as new signals. Priming stays
// armed across failed polls; only a poll that actually fetched data
// disarms it.
type PullSource struct {
	cfg        PullConfig
	logger     *zap.Logger
	client     *http.Client
	limiter    *rate.Limiter
	seen       *Window
	out        chan *types.TradeSignal
	lastSeenTS int64
	primed     bool
}

// NewPullSource creates a pull source.
func NewPullSource(cfg PullConfig, seen *Window) (*PullSource, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	if cfg.TraderAddress == "" {
		return nil, fmt.Errorf("trader address cannot be empty")
	}

	if seen == nil {
		return nil, fmt.Errorf("seen window cannot be nil")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 50
	}

	return &PullSource{
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("source", "pull")),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		seen:    seen,
		out:     make(chan *types.TradeSignal, cfg.BufferSize),
	}, nil
}

// Name returns the source name.
func (s *PullSource) Name() string {
	return "pull"
}

// Signals returns the channel of emitted trade signals.
func (s *PullSource) Signals() <-chan *types.TradeSignal {
	return s.out
}

// Start runs the polling loop until the context is cancelled. Transient
// failures are logged and treated as no data this tick; unexpected
// errors are absorbed with a fixed retry delay.
func (s *PullSource) Start(ctx context.Context) error {
	defer close(s.out)

	s.logger.Info("pull-source-starting",
		zap.String("url", s.cfg.BaseURL),
		zap.String("trader", s.cfg.TraderAddress),
		zap.Duration("interval", s.cfg.Interval))

	// Priming poll: record history, emit nothing.
	err := s.poll(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("pull-priming-poll-failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("pull-source-stopped")
			return nil
		case <-ticker.C:
			err := s.poll(ctx)
			if err != nil && ctx.Err() == nil {
				s.logger.Warn("pull-poll-failed", zap.Error(err))

				select {
				case <-time.After(s.cfg.RetryDelay):
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// poll fetches the trader's recent activity and emits unseen fills in
// ascending timestamp order.
func (s *PullSource) poll(ctx context.Context) error {
	err := s.limiter.Wait(ctx)
	if err != nil {
		return nil
	}

	events, err := s.fetchActivity(ctx)
	if err != nil {
		PollRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	PollRequestsTotal.WithLabelValues("ok").Inc()

	// Only a poll that fetched data can disarm priming. A failed first
	// poll must not leave the next successful one replaying history.
	priming := !s.primed
	s.primed = true

	trades := make([]activityEvent, 0, len(events))
	for _, e := range events {
		if e.isTrade() {
			trades = append(trades, e)
		}
	}

	// Upstream order is not guaranteed; process oldest first.
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})

	watermark := s.lastSeenTS - int64(s.cfg.Lookback.Seconds())

	emitted := 0
	for i := range trades {
		signal, ok := trades[i].toSignal(s.cfg.TraderAddress)
		if !ok {
			continue
		}

		if s.lastSeenTS > 0 && signal.Timestamp < watermark {
			continue
		}

		if s.seen.Seen(signal.DedupKey()) {
			continue
		}

		if signal.Timestamp > s.lastSeenTS {
			s.lastSeenTS = signal.Timestamp
		}

		if priming {
			continue
		}

		SignalsEmittedTotal.WithLabelValues("pull").Inc()
		emitted++

		select {
		case s.out <- signal:
		case <-ctx.Done():
			return nil
		}
	}

	if emitted > 0 {
		s.logger.Info("pull-new-signals", zap.Int("count", emitted))
	}

	return nil
}

// fetchActivity requests the trader's recent activity page.
func (s *PullSource) fetchActivity(ctx context.Context) ([]activityEvent, error) {
	params := url.Values{}
	params.Set("user", strings.ToLower(s.cfg.TraderAddress))
	params.Set("limit", fmt.Sprintf("%d", s.cfg.PageLimit))

	reqURL := fmt.Sprintf("%s/activity?%s", s.cfg.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var events []activityEvent
	err = json.Unmarshal(body, &events)
	if err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	return events, nil
}
