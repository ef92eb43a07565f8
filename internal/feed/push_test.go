package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
)

func tradeEnvelope(wallet, id string) string {
	return fmt.Sprintf(`{
		"topic": "activity",
		"type": "trades",
		"payload": {
			"id": %q,
			"type": "TRADE",
			"proxyWallet": %q,
			"conditionId": "0xcondition",
			"outcome": "Yes",
			"side": "BUY",
			"price": 0.42,
			"size": 50,
			"usdcSize": 21,
			"asset": "token-1",
			"timestamp": 1700000000,
			"transactionHash": "0xhash-%s"
		}
	}`, id, wallet, id)
}

func newTestPushSource(t *testing.T, serverURL string) *PushSource {
	t.Helper()

	src, err := NewPushSource(PushConfig{
		URL:           "ws" + strings.TrimPrefix(serverURL, "http"),
		TraderAddress: testTrader,
		DialTimeout:   time.Second,
		ReconnectBase: 10 * time.Millisecond,
		ReconnectCap:  3,
		BufferSize:    16,
		Logger:        zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	return src
}

func TestPushSource_FiltersForeignWallets(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Consume the subscribe message first.
		_, _, err = conn.ReadMessage()
		if err != nil {
			return
		}

		conn.WriteMessage(websocket.TextMessage, []byte(tradeEnvelope("0xsomeoneelse", "e1")))
		conn.WriteMessage(websocket.TextMessage, []byte("not json at all"))
		conn.WriteMessage(websocket.TextMessage, []byte(tradeEnvelope(testTrader, "e2")))

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	src := newTestPushSource(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		src.Start(ctx)
	}()

	select {
	case signal := <-src.Signals():
		if signal.ID != "e2" {
			t.Errorf("expected only the tracked trader's fill e2, got %q", signal.ID)
		}
		if !strings.EqualFold(signal.TraderAddress, testTrader) {
			t.Errorf("expected trader address %q, got %q", testTrader, signal.TraderAddress)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal")
	}

	cancel()
	<-done
}

func TestPushSource_StopsWhileReadBlocked(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}

		// One fill to prove the connection is up, then silence.
		conn.WriteMessage(websocket.TextMessage, []byte(tradeEnvelope(testTrader, "q1")))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	src := newTestPushSource(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		src.Start(ctx)
	}()

	select {
	case <-src.Signals():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the connection to come up")
	}

	// With the stream idle, cancellation alone must unblock the read
	// loop and return from Start.
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Start to return after context cancellation")
	}
}

func TestPushSource_ReconnectsAfterDrop(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	var connections atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}

		// First connection drops immediately after the subscribe;
		// the second delivers a fill.
		if connections.Add(1) == 1 {
			return
		}

		conn.WriteMessage(websocket.TextMessage, []byte(tradeEnvelope(testTrader, "r1")))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	src := newTestPushSource(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		src.Start(ctx)
	}()

	select {
	case signal := <-src.Signals():
		if signal.ID != "r1" {
			t.Errorf("expected signal r1 after reconnect, got %q", signal.ID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected the push source to reconnect and emit r1")
	}

	if connections.Load() < 2 {
		t.Errorf("expected at least 2 connections, got %d", connections.Load())
	}

	cancel()
	<-done
}
