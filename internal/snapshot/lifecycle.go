// Package snapshot manages the pinned-message lifecycle: each publish
// replaces the previous snapshot so the channel carries exactly one
// pinned trending message per network.
package snapshot

import (
	"context"
	"fmt"

	"github.com/dexpulse/trendwatch/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Publisher is the messaging surface the lifecycle needs
type Publisher interface {
	SendMessage(ctx context.Context, text string) (int64, error)
	DeleteMessage(ctx context.Context, messageID int64) error
	PinMessage(ctx context.Context, messageID int64) error
	UnpinAll(ctx context.Context) error
}

// Checkpoint tracks the last published message id per network
type Checkpoint interface {
	LastMessageID(network string) int64
	SetLastMessageID(ctx context.Context, network string, id int64)
}

// Manager publishes snapshot messages and retires their predecessors
type Manager struct {
	pub   Publisher
	state Checkpoint
	log   *logrus.Logger
}

// NewManager creates a snapshot lifecycle manager
func NewManager(pub Publisher, state Checkpoint, log *logrus.Logger) *Manager {
	return &Manager{pub: pub, state: state, log: log}
}

// Publish sends a new snapshot message for a network, removing and
// unpinning the previous one first. Cleanup failures are logged and
// tolerated; only a failed send aborts the cycle, leaving the recorded
// message id untouched.
func (m *Manager) Publish(ctx context.Context, network, text string) error {
	if prev := m.state.LastMessageID(network); prev != 0 {
		if err := m.pub.DeleteMessage(ctx, prev); err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"network":    network,
				"message_id": prev,
			}).Warn("Failed to delete previous snapshot")
		}
	}
	if err := m.pub.UnpinAll(ctx); err != nil {
		m.log.WithError(err).WithField("network", network).Warn("Failed to unpin previous messages")
	}

	id, err := m.pub.SendMessage(ctx, text)
	if err != nil {
		metrics.RecordSnapshot(network, err)
		return fmt.Errorf("send snapshot for %s: %w", network, err)
	}

	if err := m.pub.PinMessage(ctx, id); err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{
			"network":    network,
			"message_id": id,
		}).Warn("Failed to pin snapshot")
	}

	m.state.SetLastMessageID(ctx, network, id)
	metrics.RecordSnapshot(network, nil)

	m.log.WithFields(logrus.Fields{
		"network":    network,
		"message_id": id,
	}).Info("Snapshot published")
	return nil
}
