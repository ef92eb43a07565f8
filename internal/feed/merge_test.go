package feed

import (
	"context"
	"testing"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap/zaptest"
)

// stubSource replays a fixed sequence of signals and stops.
type stubSource struct {
	name    string
	signals []*types.TradeSignal
	out     chan *types.TradeSignal
}

func newStubSource(name string, signals ...*types.TradeSignal) *stubSource {
	return &stubSource{
		name:    name,
		signals: signals,
		out:     make(chan *types.TradeSignal),
	}
}

func (s *stubSource) Name() string {
	return s.name
}

func (s *stubSource) Signals() <-chan *types.TradeSignal {
	return s.out
}

func (s *stubSource) Start(ctx context.Context) error {
	defer close(s.out)

	for _, signal := range s.signals {
		select {
		case s.out <- signal:
		case <-ctx.Done():
			return nil
		}
	}

	return nil
}

func signalWithID(id string) *types.TradeSignal {
	return &types.TradeSignal{
		ID:       id,
		MarketID: "0xcondition",
		Outcome:  "Yes",
		Side:     types.SideBuy,
		Price:    0.5,
		Size:     10,
	}
}

func collect(t *testing.T, ch <-chan *types.TradeSignal) []*types.TradeSignal {
	t.Helper()

	var got []*types.TradeSignal
	timeout := time.After(2 * time.Second)

	for {
		select {
		case signal, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, signal)
		case <-timeout:
			t.Fatal("timed out waiting for output channel to close")
		}
	}
}

func TestDeduplicator_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	src := newStubSource("push",
		signalWithID("k1"),
		signalWithID("k1"),
		signalWithID("k2"),
		signalWithID("k1"),
		signalWithID("k3"),
	)

	d := NewDeduplicator([]Source{src}, NewWindow(500, 250), zaptest.NewLogger(t), 16)
	d.Start(context.Background())

	got := collect(t, d.Signals())

	want := []string{"k1", "k2", "k3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d signals, got %d", len(want), len(got))
	}

	for i, signal := range got {
		if signal.DedupKey() != want[i] {
			t.Errorf("position %d: expected key %q, got %q", i, want[i], signal.DedupKey())
		}
	}
}

func TestDeduplicator_AcrossSources(t *testing.T) {
	t.Parallel()

	a := newStubSource("push",
		signalWithID("k1"),
		signalWithID("k2"),
		signalWithID("k3"),
	)
	b := newStubSource("pull",
		signalWithID("k2"),
		signalWithID("k3"),
		signalWithID("k4"),
	)

	d := NewDeduplicator([]Source{a, b}, NewWindow(500, 250), zaptest.NewLogger(t), 16)
	d.Start(context.Background())

	got := collect(t, d.Signals())

	seen := make(map[string]int)
	for _, signal := range got {
		seen[signal.DedupKey()]++
	}

	for _, key := range []string{"k1", "k2", "k3", "k4"} {
		if seen[key] != 1 {
			t.Errorf("expected key %q exactly once, got %d", key, seen[key])
		}
	}

	if len(got) != 4 {
		t.Errorf("expected 4 unique signals, got %d", len(got))
	}
}

func TestDeduplicator_TxHashKey(t *testing.T) {
	t.Parallel()

	logIndex := int64(2)
	first := &types.TradeSignal{TxHash: "0xabc", LogIndex: &logIndex, Side: types.SideBuy}
	dup := &types.TradeSignal{TxHash: "0xabc", LogIndex: &logIndex, Side: types.SideBuy}
	other := &types.TradeSignal{TxHash: "0xabc", Side: types.SideBuy}

	src := newStubSource("pull", first, dup, other)

	d := NewDeduplicator([]Source{src}, NewWindow(500, 250), zaptest.NewLogger(t), 16)
	d.Start(context.Background())

	got := collect(t, d.Signals())

	// Same tx hash with and without a log index are distinct events.
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(got))
	}
}
