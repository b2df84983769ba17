package trend

import (
	"context"

	"github.com/dexpulse/trendwatch/internal/gecko"
	"github.com/sirupsen/logrus"
)

// Fallback widens the observation window when the narrowest window yields
// nothing. Short windows carry the better trend signal but sparse activity
// can leave them empty at random; widening trades sensitivity for
// availability.
type Fallback struct {
	scorer  *Scorer
	windows []int // minutes, narrowest first
	topN    int
	log     *logrus.Logger
}

// NewFallback creates a fallback policy over the given ordered windows
func NewFallback(scorer *Scorer, windows []int, topN int, log *logrus.Logger) *Fallback {
	return &Fallback{
		scorer:  scorer,
		windows: windows,
		topN:    topN,
		log:     log,
	}
}

// Rank tries each window in order and returns the first non-empty ranking,
// truncated to top-N. If every window comes up empty the snapshot is empty
// and tagged with the largest window attempted, so the formatter can render
// "quiet market" instead of stale data.
func (f *Fallback) Rank(ctx context.Context, network string, pools []gecko.Pool) RankedSnapshot {
	window := 0
	for _, window = range f.windows {
		scored := f.scorer.Score(ctx, network, pools, window)
		if len(scored) > 0 {
			if len(scored) > f.topN {
				scored = scored[:f.topN]
			}
			return RankedSnapshot{
				Network:       network,
				WindowMinutes: window,
				Pools:         scored,
			}
		}

		f.log.WithFields(logrus.Fields{
			"network":        network,
			"window_minutes": window,
		}).Info("No qualifying activity in window, widening")
	}

	return RankedSnapshot{
		Network:       network,
		WindowMinutes: window,
	}
}
