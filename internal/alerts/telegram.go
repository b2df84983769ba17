package alerts

import (
	"context"
	"fmt"
	"strings"

	"github.com/dexpulse/trendwatch/internal/format"
	"github.com/sirupsen/logrus"
)

// MessageSender posts a message to the chat
type MessageSender interface {
	SendMessage(ctx context.Context, text string) (int64, error)
}

// TelegramSender sends alerts to the Telegram chat
type TelegramSender struct {
	messenger MessageSender
	log       *logrus.Logger
}

// NewTelegramSender creates a new Telegram alert sender
func NewTelegramSender(messenger MessageSender, log *logrus.Logger) *TelegramSender {
	return &TelegramSender{messenger: messenger, log: log}
}

// Send posts the alert as an unpinned HTML message
func (s *TelegramSender) Send(ctx context.Context, payload *AlertPayload) error {
	if _, err := s.messenger.SendMessage(ctx, renderAlert(payload)); err != nil {
		return fmt.Errorf("send surge alert: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"network": payload.Network,
		"pair":    payload.Pair,
	}).Debug("Surge alert delivered")
	return nil
}

func renderAlert(p *AlertPayload) string {
	direction := "\U0001f4c8 up"
	if p.PriceChangePct < 0 {
		direction = "\U0001f4c9 down"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\U0001f6a8 <b>Surge: %s</b> on %s\n", p.Pair, format.NetworkTitle(p.Network))
	fmt.Fprintf(&b, "%s %+.2f%% in %dm | Vol: %s | Trades: %d\n",
		direction, p.PriceChangePct, p.WindowMinutes, format.FormatUSD(p.ShortVolumeUSD), p.TradeCount)
	fmt.Fprintf(&b, "<a href='%s'>View</a>", p.URL)
	return b.String()
}
