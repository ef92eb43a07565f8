package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// PushConfig holds push source configuration.
type PushConfig struct {
	URL           string
	TraderAddress string
	DialTimeout   time.Duration
	ReconnectBase time.Duration
	ReconnectCap  int
	BufferSize    int
	Logger        *zap.Logger
}

// PushSource maintains one long-lived websocket subscription to the
// live-data activity stream and emits fills by the tracked trader.
// Connection loss, including the stream ending normally, is recoverable:
// the source reconnects with a linearly growing delay (base delay times
// the attempt count, capped) and retries until the context is cancelled.
type PushSource struct {
	cfg      PushConfig
	logger   *zap.Logger
	out      chan *types.TradeSignal
	attempts int
}

// pushEnvelope wraps one inbound message on the activity topic.
type pushEnvelope struct {
	Topic   string        `json:"topic"`
	Type    string        `json:"type"`
	Payload activityEvent `json:"payload"`
}

// NewPushSource creates a push source.
func NewPushSource(cfg PushConfig) (*PushSource, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	if cfg.TraderAddress == "" {
		return nil, fmt.Errorf("trader address cannot be empty")
	}

	return &PushSource{
		cfg:    cfg,
		logger: cfg.Logger.With(zap.String("source", "push")),
		out:    make(chan *types.TradeSignal, cfg.BufferSize),
	}, nil
}

// Name returns the source name.
func (s *PushSource) Name() string {
	return "push"
}

// Signals returns the channel of emitted trade signals.
func (s *PushSource) Signals() <-chan *types.TradeSignal {
	return s.out
}

// Start runs the subscribe/read/reconnect loop until the context is
// cancelled. Reconnection is unbounded; all errors are absorbed.
func (s *PushSource) Start(ctx context.Context) error {
	defer close(s.out)

	s.logger.Info("push-source-starting",
		zap.String("url", s.cfg.URL),
		zap.String("trader", s.cfg.TraderAddress))

	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, err := s.connect(ctx)
		if err != nil {
			s.logger.Warn("push-connect-failed", zap.Error(err))
			ReconnectFailuresTotal.Inc()

			if !s.waitBackoff(ctx) {
				return nil
			}
			continue
		}

		s.attempts = 0
		ActiveConnections.Set(1)
		s.logger.Info("push-connected")

		// Cancellation must unblock the read loop: close the conn when
		// the context ends so ReadMessage returns instead of waiting on
		// an idle stream.
		closed := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-closed:
			}
		}()

		s.readLoop(ctx, conn)

		close(closed)
		conn.Close()
		ActiveConnections.Set(0)

		if ctx.Err() != nil {
			return nil
		}

		s.logger.Warn("push-connection-lost")

		if !s.waitBackoff(ctx) {
			return nil
		}
	}
}

// connect dials the stream and subscribes to the activity trades topic.
func (s *PushSource) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.DialTimeout,
	}

	headers := http.Header{}
	headers.Set("Origin", "https://polymarket.com")

	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, headers)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	subscribeMsg := map[string]interface{}{
		"action": "subscribe",
		"subscriptions": []map[string]interface{}{
			{
				"topic": "activity",
				"type":  "trades",
			},
		},
	}

	err = conn.WriteJSON(subscribeMsg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("write subscribe message: %w", err)
	}

	return conn, nil
}

// readLoop reads messages until the connection fails or the context is
// cancelled. Malformed or irrelevant messages are dropped silently.
func (s *PushSource) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("push-read-error", zap.Error(err))
			}
			return
		}

		MessagesReceivedTotal.WithLabelValues("push").Inc()

		var envelope pushEnvelope
		err = json.Unmarshal(message, &envelope)
		if err != nil {
			s.logger.Debug("push-unparseable-message",
				zap.Error(err),
				zap.Int("bytes", len(message)))
			continue
		}

		if envelope.Topic != "activity" {
			s.logger.Debug("push-non-activity-message", zap.String("topic", envelope.Topic))
			continue
		}

		if !envelope.Payload.matchesWallet(s.cfg.TraderAddress) {
			continue
		}

		signal, ok := envelope.Payload.toSignal(s.cfg.TraderAddress)
		if !ok {
			continue
		}

		SignalsEmittedTotal.WithLabelValues("push").Inc()
		s.logger.Info("push-signal",
			zap.String("market", signal.MarketID),
			zap.String("outcome", signal.Outcome),
			zap.String("side", string(signal.Side)),
			zap.Float64("price", signal.Price),
			zap.Float64("size", signal.Size))

		select {
		case s.out <- signal:
		case <-ctx.Done():
			return
		}
	}
}

// waitBackoff sleeps for the next reconnect delay. The delay grows
// linearly with the attempt count up to the configured cap and the
// counter resets to zero on a successful connect. Returns false when
// the context was cancelled while waiting.
func (s *PushSource) waitBackoff(ctx context.Context) bool {
	s.attempts++

	steps := s.attempts
	if steps > s.cfg.ReconnectCap {
		steps = s.cfg.ReconnectCap
	}

	delay := s.cfg.ReconnectBase * time.Duration(steps)

	s.logger.Info("push-reconnect-waiting",
		zap.Duration("delay", delay),
		zap.Int("attempt", s.attempts))

	ReconnectAttemptsTotal.Inc()

	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}
