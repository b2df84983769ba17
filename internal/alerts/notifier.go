package alerts

import (
	"context"
	"math"
	"time"

	"github.com/dexpulse/trendwatch/internal/metrics"
	"github.com/dexpulse/trendwatch/internal/trend"
	"github.com/sirupsen/logrus"
)

// AlertLedger extends Ledger with recording, so fired alerts enter the
// cooldown window.
type AlertLedger interface {
	Ledger
	RecordAlert(ctx context.Context, network, poolID string, at time.Time)
}

// Notifier scans ranked snapshots for surge candidates and dispatches
// deduplicated alerts.
type Notifier struct {
	thresholdPct float64
	dedup        *Deduper
	sender       Sender
	ledger       AlertLedger
	log          *logrus.Logger
}

// NewNotifier creates a surge notifier
func NewNotifier(thresholdPct float64, cooldown time.Duration, sender Sender, ledger AlertLedger, log *logrus.Logger) *Notifier {
	return &Notifier{
		thresholdPct: thresholdPct,
		dedup:        NewDeduper(cooldown, ledger),
		sender:       sender,
		ledger:       ledger,
		log:          log,
	}
}

// Scan fires an alert for every pool in the snapshot whose absolute
// price change meets the threshold and is not suppressed by the
// cooldown. A failed send is logged and does not enter the ledger, so
// the pool can alert again next scan.
func (n *Notifier) Scan(ctx context.Context, snap trend.RankedSnapshot, now time.Time) {
	for _, sp := range snap.Pools {
		if math.Abs(sp.PriceChangePct) < n.thresholdPct {
			continue
		}
		if !n.dedup.ShouldAlert(snap.Network, sp.Pool.ID, now) {
			metrics.AlertsSuppressed.Inc()
			n.log.WithFields(logrus.Fields{
				"network": snap.Network,
				"pair":    sp.Pool.Pair,
			}).Debug("Surge alert suppressed by cooldown")
			continue
		}

		payload := &AlertPayload{
			Network:        snap.Network,
			PoolID:         sp.Pool.ID,
			Pair:           sp.Pool.Pair,
			URL:            sp.Pool.URL,
			PriceChangePct: sp.PriceChangePct,
			ShortVolumeUSD: sp.ShortVolumeUSD,
			TradeCount:     sp.TradeCount,
			WindowMinutes:  snap.WindowMinutes,
			Timestamp:      now,
		}
		if err := n.sender.Send(ctx, payload); err != nil {
			metrics.RecordAlert("surge", err)
			n.log.WithError(err).WithFields(logrus.Fields{
				"network": snap.Network,
				"pair":    sp.Pool.Pair,
			}).Error("Failed to send surge alert")
			continue
		}

		n.ledger.RecordAlert(ctx, snap.Network, sp.Pool.ID, now)
		metrics.RecordAlert("surge", nil)
	}
}
