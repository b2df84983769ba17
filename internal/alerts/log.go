package alerts

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender sends alerts to the logger
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender creates a new log sender
func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the alert
func (s *LogSender) Send(ctx context.Context, payload *AlertPayload) error {
	s.log.WithFields(logrus.Fields{
		"network":          payload.Network,
		"pair":             payload.Pair,
		"price_change_pct": payload.PriceChangePct,
		"short_volume_usd": payload.ShortVolumeUSD,
		"trade_count":      payload.TradeCount,
		"window_minutes":   payload.WindowMinutes,
	}).Info("Surge alert")
	return nil
}
