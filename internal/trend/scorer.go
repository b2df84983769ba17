package trend

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/dexpulse/trendwatch/internal/gecko"
	"github.com/sirupsen/logrus"
)

// DefaultSpikeRatio stands in for the spike ratio when a pool reports no
// 24h volume to compare against.
const DefaultSpikeRatio = 0.01

// TradeSource provides recent trades for one pool
type TradeSource interface {
	ListTrades(ctx context.Context, network, poolID string) ([]gecko.Trade, error)
}

// Weights is the tunable linear combination behind the trend score. Every
// weight must be >= 0 so the score stays monotonically increasing in each
// positive signal.
type Weights struct {
	ShortVolume  float64
	PriceChange  float64
	TradeCount   float64
	SpikeRatio   float64
	Liquidity    float64
	NetBuyVolume float64
}

// DefaultWeights returns the tuned production weights
func DefaultWeights() Weights {
	return Weights{
		ShortVolume: 0.5,
		PriceChange: 100.0,
		TradeCount:  20.0,
		SpikeRatio:  200.0,
	}
}

// ScoredPool is the immutable result of scoring one pool against its recent
// trades for one observation window
type ScoredPool struct {
	Score           float64
	Pool            gecko.Pool
	ShortVolumeUSD  float64
	PriceChangePct  float64
	TradeCount      int
	SpikeRatio      float64
	NetBuyVolumeUSD float64
}

// RankedSnapshot is an ordered, truncated ranking for one network, tagged
// with the window that actually produced it (after fallback)
type RankedSnapshot struct {
	Network       string
	WindowMinutes int
	Pools         []ScoredPool
}

// Empty reports whether the snapshot carries no ranked pools
func (s RankedSnapshot) Empty() bool {
	return len(s.Pools) == 0
}

// Scorer computes trend scores over a short observation window
type Scorer struct {
	trades  TradeSource
	weights Weights
	now     func() time.Time
	log     *logrus.Logger
}

// NewScorer creates a new scorer
func NewScorer(trades TradeSource, weights Weights, log *logrus.Logger) *Scorer {
	return &Scorer{
		trades:  trades,
		weights: weights,
		now:     time.Now,
		log:     log,
	}
}

// Score ranks the given pools by activity within the trailing window.
// Pools with no qualifying trades are excluded: no recent trades means "no
// signal", not a zero score. A trade fetch failing for one pool drops only
// that pool from the candidate set.
func (s *Scorer) Score(ctx context.Context, network string, pools []gecko.Pool, windowMinutes int) []ScoredPool {
	cutoff := s.now().UTC().Add(-time.Duration(windowMinutes) * time.Minute)

	scored := make([]ScoredPool, 0, len(pools))
	for _, pool := range pools {
		trades, err := s.trades.ListTrades(ctx, network, pool.ID)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"network": network,
				"pool":    pool.ID,
			}).Warn("Skipping pool, trade fetch failed")
			continue
		}

		recent := filterSince(trades, cutoff)
		if len(recent) == 0 {
			continue
		}

		scored = append(scored, s.scorePool(pool, recent))
	}

	// Descending by score; equal scores break by pool ID so the ranking
	// never depends on provider order.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Pool.ID < scored[j].Pool.ID
	})

	return scored
}

func (s *Scorer) scorePool(pool gecko.Pool, recent []gecko.Trade) ScoredPool {
	var shortVolume, netBuy float64
	for _, tr := range recent {
		shortVolume += tr.VolumeUSD
		switch tr.Side {
		case "buy":
			netBuy += tr.VolumeUSD
		case "sell":
			netBuy -= tr.VolumeUSD
		}
	}

	firstPrice := recent[0].PriceUSD
	lastPrice := recent[len(recent)-1].PriceUSD
	priceChange := 0.0
	if firstPrice > 0 {
		priceChange = (lastPrice/firstPrice - 1) * 100
	}

	spikeRatio := DefaultSpikeRatio
	if pool.Volume24hUSD > 0 {
		spikeRatio = shortVolume / pool.Volume24hUSD
	}

	w := s.weights
	score := w.ShortVolume*shortVolume +
		w.PriceChange*math.Abs(priceChange) +
		w.TradeCount*float64(len(recent)) +
		w.SpikeRatio*spikeRatio +
		w.Liquidity*pool.ReserveUSD +
		w.NetBuyVolume*netBuy

	return ScoredPool{
		Score:           score,
		Pool:            pool,
		ShortVolumeUSD:  shortVolume,
		PriceChangePct:  priceChange,
		TradeCount:      len(recent),
		SpikeRatio:      spikeRatio,
		NetBuyVolumeUSD: netBuy,
	}
}

// filterSince keeps trades at or after the cutoff, in chronological order.
// Trades with an unparseable timestamp carry no window information and are
// dropped.
func filterSince(trades []gecko.Trade, cutoff time.Time) []gecko.Trade {
	recent := make([]gecko.Trade, 0, len(trades))
	for _, tr := range trades {
		if tr.Timestamp.IsZero() {
			continue
		}
		if !tr.Timestamp.Before(cutoff) {
			recent = append(recent, tr)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.Before(recent[j].Timestamp)
	})
	return recent
}
