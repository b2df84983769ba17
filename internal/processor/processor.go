// Package processor orchestrates one polling cycle: fetch pools, rank
// trendiness, publish the pinned snapshot and scan for surge alerts.
package processor

import (
	"context"
	"time"

	"github.com/dexpulse/trendwatch/internal/format"
	"github.com/dexpulse/trendwatch/internal/gecko"
	"github.com/dexpulse/trendwatch/internal/trend"
	"github.com/sirupsen/logrus"
)

// PoolSource lists the candidate pools for a network
type PoolSource interface {
	ListPools(ctx context.Context, network string, pageSize int) ([]gecko.Pool, error)
}

// Ranker produces a ranked snapshot from candidate pools
type Ranker interface {
	Rank(ctx context.Context, network string, pools []gecko.Pool) trend.RankedSnapshot
}

// SnapshotPublisher replaces the pinned snapshot message for a network
type SnapshotPublisher interface {
	Publish(ctx context.Context, network, text string) error
}

// AlertScanner inspects a snapshot for surge candidates
type AlertScanner interface {
	Scan(ctx context.Context, snap trend.RankedSnapshot, now time.Time)
}

// Processor runs the trending and alert cycles across all networks
type Processor struct {
	pools     PoolSource
	ranker    Ranker
	publisher SnapshotPublisher
	scanner   AlertScanner
	networks  []string
	pageSize  int
	log       *logrus.Logger

	now func() time.Time
}

// New creates a processor. scanner may be nil when alerts are disabled.
func New(pools PoolSource, ranker Ranker, publisher SnapshotPublisher, scanner AlertScanner, networks []string, pageSize int, log *logrus.Logger) *Processor {
	return &Processor{
		pools:     pools,
		ranker:    ranker,
		publisher: publisher,
		scanner:   scanner,
		networks:  networks,
		pageSize:  pageSize,
		log:       log,
		now:       time.Now,
	}
}

// PublishSnapshots runs one trending cycle: every network gets a fresh
// ranked snapshot published to the chat. One network failing does not
// stop the others; the first error is returned after all networks ran.
func (p *Processor) PublishSnapshots(ctx context.Context) error {
	var firstErr error
	for _, network := range p.networks {
		if err := p.publishNetwork(ctx, network); err != nil {
			p.log.WithError(err).WithField("network", network).Error("Snapshot cycle failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *Processor) publishNetwork(ctx context.Context, network string) error {
	snap, err := p.rankNetwork(ctx, network)
	if err != nil {
		return err
	}

	text := format.Snapshot(snap, p.now())
	return p.publisher.Publish(ctx, network, text)
}

// ScanAlerts runs one surge-alert cycle over every network
func (p *Processor) ScanAlerts(ctx context.Context) error {
	if p.scanner == nil {
		return nil
	}

	var firstErr error
	for _, network := range p.networks {
		snap, err := p.rankNetwork(ctx, network)
		if err != nil {
			p.log.WithError(err).WithField("network", network).Error("Alert cycle failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.scanner.Scan(ctx, snap, p.now())
	}
	return firstErr
}

func (p *Processor) rankNetwork(ctx context.Context, network string) (trend.RankedSnapshot, error) {
	pools, err := p.pools.ListPools(ctx, network, p.pageSize)
	if err != nil {
		return trend.RankedSnapshot{}, err
	}
	return p.ranker.Rank(ctx, network, pools), nil
}
