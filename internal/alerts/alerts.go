// Package alerts detects and delivers surge alerts for pools whose
// short-window price move crosses the configured threshold.
package alerts

import (
	"context"
	"time"
)

// AlertPayload contains all information for a surge alert
type AlertPayload struct {
	Network        string
	PoolID         string
	Pair           string
	URL            string
	PriceChangePct float64
	ShortVolumeUSD float64
	TradeCount     int
	WindowMinutes  int
	Timestamp      time.Time
}

// Sender defines the interface for alert senders
type Sender interface {
	Send(ctx context.Context, payload *AlertPayload) error
}
