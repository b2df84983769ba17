package trend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dexpulse/trendwatch/internal/gecko"
	"github.com/sirupsen/logrus"
)

var testNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

// fakeTrades serves canned trades per pool ID and can fail selected pools
type fakeTrades struct {
	trades map[string][]gecko.Trade
	fail   map[string]bool
	calls  int
}

func (f *fakeTrades) ListTrades(ctx context.Context, network, poolID string) ([]gecko.Trade, error) {
	f.calls++
	if f.fail[poolID] {
		return nil, fmt.Errorf("boom")
	}
	return f.trades[poolID], nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestScorer(src TradeSource, weights Weights) *Scorer {
	s := NewScorer(src, weights, quietLogger())
	s.now = func() time.Time { return testNow }
	return s
}

func tradeAt(minutesAgo int, volume, price float64, side string) gecko.Trade {
	return gecko.Trade{
		Timestamp: testNow.Add(-time.Duration(minutesAgo) * time.Minute),
		VolumeUSD: volume,
		PriceUSD:  price,
		Side:      side,
	}
}

func TestScoreDeterminism(t *testing.T) {
	src := &fakeTrades{trades: map[string][]gecko.Trade{
		"a": {tradeAt(8, 1000, 1.0, "buy"), tradeAt(2, 2000, 1.2, "sell")},
		"b": {tradeAt(5, 500, 2.0, "buy")},
	}}
	pools := []gecko.Pool{
		{ID: "a", Volume24hUSD: 100000},
		{ID: "b", Volume24hUSD: 50000},
	}

	s := newTestScorer(src, DefaultWeights())

	first := s.Score(context.Background(), "testnet", pools, 10)
	second := s.Score(context.Background(), "testnet", pools, 10)

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Pool.ID != second[i].Pool.ID || first[i].Score != second[i].Score {
			t.Errorf("rank %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestScoreExcludesPoolsWithoutRecentTrades(t *testing.T) {
	src := &fakeTrades{trades: map[string][]gecko.Trade{
		"active": {tradeAt(3, 1000, 1.0, "buy")},
		"stale":  {tradeAt(120, 9999, 1.0, "buy")},
		"silent": {},
	}}
	pools := []gecko.Pool{
		{ID: "active", Volume24hUSD: 10000},
		{ID: "stale", Volume24hUSD: 10000},
		{ID: "silent", Volume24hUSD: 10000},
	}

	s := newTestScorer(src, DefaultWeights())
	scored := s.Score(context.Background(), "testnet", pools, 10)

	if len(scored) != 1 {
		t.Fatalf("expected 1 scored pool, got %d", len(scored))
	}
	if scored[0].Pool.ID != "active" {
		t.Errorf("expected pool 'active', got %s", scored[0].Pool.ID)
	}
}

func TestScoreIsolatesPerPoolFailures(t *testing.T) {
	trades := map[string][]gecko.Trade{}
	pools := make([]gecko.Pool, 0, 5)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("p%d", i)
		trades[id] = []gecko.Trade{tradeAt(3, float64(100*(i+1)), 1.0, "buy")}
		pools = append(pools, gecko.Pool{ID: id, Volume24hUSD: 10000})
	}
	src := &fakeTrades{trades: trades, fail: map[string]bool{"p2": true}}

	s := newTestScorer(src, DefaultWeights())
	scored := s.Score(context.Background(), "testnet", pools, 10)

	if len(scored) != 4 {
		t.Fatalf("expected 4 scored pools when one fetch fails, got %d", len(scored))
	}
	for _, sp := range scored {
		if sp.Pool.ID == "p2" {
			t.Error("failed pool should be excluded")
		}
	}
}

func TestScorePriceChangeAndSpikeRatio(t *testing.T) {
	src := &fakeTrades{trades: map[string][]gecko.Trade{
		"a": {
			tradeAt(9, 100, 2.0, "buy"),  // chronologically first
			tradeAt(1, 300, 2.5, "sell"), // chronologically last
		},
	}}
	pools := []gecko.Pool{{ID: "a", Volume24hUSD: 4000}}

	s := newTestScorer(src, DefaultWeights())
	scored := s.Score(context.Background(), "testnet", pools, 10)
	if len(scored) != 1 {
		t.Fatalf("expected 1 scored pool, got %d", len(scored))
	}

	sp := scored[0]
	if sp.ShortVolumeUSD != 400 {
		t.Errorf("short volume: got %v, want 400", sp.ShortVolumeUSD)
	}
	// (2.5/2.0 - 1) * 100 = 25
	if diff := sp.PriceChangePct - 25.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("price change: got %v, want 25", sp.PriceChangePct)
	}
	// 400 / 4000 = 0.1
	if diff := sp.SpikeRatio - 0.1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("spike ratio: got %v, want 0.1", sp.SpikeRatio)
	}
	// buys 100, sells 300
	if sp.NetBuyVolumeUSD != -200 {
		t.Errorf("net buy volume: got %v, want -200", sp.NetBuyVolumeUSD)
	}
}

func TestScoreGuardsZeroFirstPrice(t *testing.T) {
	src := &fakeTrades{trades: map[string][]gecko.Trade{
		"a": {tradeAt(9, 100, 0, ""), tradeAt(1, 100, 5.0, "")},
	}}
	pools := []gecko.Pool{{ID: "a", Volume24hUSD: 1000}}

	s := newTestScorer(src, DefaultWeights())
	scored := s.Score(context.Background(), "testnet", pools, 10)
	if len(scored) != 1 {
		t.Fatalf("expected 1 scored pool, got %d", len(scored))
	}
	if scored[0].PriceChangePct != 0 {
		t.Errorf("zero first price must yield 0%% change, got %v", scored[0].PriceChangePct)
	}
}

func TestScoreSpikeRatioDefaultWithoutBaseline(t *testing.T) {
	src := &fakeTrades{trades: map[string][]gecko.Trade{
		"a": {tradeAt(2, 100, 1.0, "")},
	}}
	pools := []gecko.Pool{{ID: "a", Volume24hUSD: 0}}

	s := newTestScorer(src, DefaultWeights())
	scored := s.Score(context.Background(), "testnet", pools, 10)
	if len(scored) != 1 {
		t.Fatalf("expected 1 scored pool, got %d", len(scored))
	}
	if scored[0].SpikeRatio != DefaultSpikeRatio {
		t.Errorf("spike ratio without 24h baseline: got %v, want %v", scored[0].SpikeRatio, DefaultSpikeRatio)
	}
}

func TestScoreOrdersDescendingWithStableTiebreak(t *testing.T) {
	// Identical trades → identical scores → tie broken by pool ID
	identical := []gecko.Trade{tradeAt(3, 1000, 1.0, "buy")}
	src := &fakeTrades{trades: map[string][]gecko.Trade{
		"zzz": identical,
		"aaa": identical,
		"big": {tradeAt(3, 50000, 1.0, "buy")},
	}}
	pools := []gecko.Pool{
		{ID: "zzz", Volume24hUSD: 10000},
		{ID: "big", Volume24hUSD: 10000},
		{ID: "aaa", Volume24hUSD: 10000},
	}

	s := newTestScorer(src, DefaultWeights())
	scored := s.Score(context.Background(), "testnet", pools, 10)

	if len(scored) != 3 {
		t.Fatalf("expected 3 scored pools, got %d", len(scored))
	}
	if scored[0].Pool.ID != "big" {
		t.Errorf("highest score first: got %s", scored[0].Pool.ID)
	}
	if scored[1].Pool.ID != "aaa" || scored[2].Pool.ID != "zzz" {
		t.Errorf("ties must break by pool ID: got %s, %s", scored[1].Pool.ID, scored[2].Pool.ID)
	}
}

func TestScoreMonotoneInPositiveSignals(t *testing.T) {
	base := []gecko.Trade{tradeAt(5, 1000, 1.0, "buy")}
	moreVolume := []gecko.Trade{tradeAt(5, 2000, 1.0, "buy")}
	moreTrades := []gecko.Trade{tradeAt(5, 500, 1.0, "buy"), tradeAt(4, 500, 1.0, "buy")}

	pool := gecko.Pool{ID: "p", Volume24hUSD: 100000}
	s := newTestScorer(&fakeTrades{}, DefaultWeights())

	scoreOf := func(trades []gecko.Trade) float64 {
		return s.scorePool(pool, trades).Score
	}

	if scoreOf(moreVolume) <= scoreOf(base) {
		t.Error("more volume must not decrease the score")
	}
	if scoreOf(moreTrades) <= scoreOf(base) {
		t.Error("more trades at equal volume must not decrease the score")
	}
}
